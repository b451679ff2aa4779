// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/tlb"
	"github.com/openton/tonstate/ton"
)

// TickTock marks a special account invoked at the start or end of every
// masterchain block.
type TickTock struct {
	Tick bool
	Tock bool
}

// StoreTo implements tlb.Serializable.
func (tt *TickTock) StoreTo(b *cell.Builder) error {
	if err := b.StoreBool(tt.Tick); err != nil {
		return err
	}
	return b.StoreBool(tt.Tock)
}

// LoadFrom implements tlb.Deserializable.
func (tt *TickTock) LoadFrom(s *cell.Slice) error {
	tick, err := s.LoadBool()
	if err != nil {
		return err
	}
	tock, err := s.LoadBool()
	if err != nil {
		return err
	}
	tt.Tick, tt.Tock = tick, tock
	return nil
}

// SimpleLib is a public or private library cell attached to an account.
type SimpleLib struct {
	Public bool
	Root   *cell.Cell
}

// StateInit is the code and data installed into an account on
// activation. Its cell hash doubles as the account address in the
// basechain.
//
//	_ split_depth:(Maybe (## 5)) special:(Maybe TickTock)
//	  code:(Maybe ^Cell) data:(Maybe ^Cell)
//	  library:(HashmapE 256 SimpleLib) = StateInit;
type StateInit struct {
	SplitDepth *uint8
	Special    *TickTock
	Code       *cell.Cell
	Data       *cell.Cell
	Library    *cell.Dictionary
}

// NewStateInit returns an empty StateInit with an empty library map.
func NewStateInit() *StateInit {
	return &StateInit{Library: cell.NewDict(256)}
}

// Hash is the content hash of the serialized StateInit. For a freshly
// deployed account it must equal the account id part of the address.
func (si *StateInit) Hash() (ton.Bytes32, error) {
	return tlb.HashOf(si)
}

// SetLibrary inserts or replaces the library keyed by the hash of its
// root cell.
func (si *StateInit) SetLibrary(lib *SimpleLib) error {
	if si.Library == nil {
		si.Library = cell.NewDict(256)
	}
	v := cell.NewBuilder()
	if err := v.StoreBool(lib.Public); err != nil {
		return err
	}
	if err := v.StoreRef(lib.Root); err != nil {
		return err
	}
	key := lib.Root.Hash()
	return si.Library.Set(key[:], v)
}

// DeleteLibrary removes the library with the given root hash, reporting
// whether it was present.
func (si *StateInit) DeleteLibrary(hash ton.Bytes32) (bool, error) {
	if si.Library == nil {
		return false, nil
	}
	return si.Library.Delete(hash[:])
}

// GetLibrary fetches the library with the given root hash, nil when
// absent.
func (si *StateInit) GetLibrary(hash ton.Bytes32) (*SimpleLib, error) {
	if si.Library == nil {
		return nil, nil
	}
	v, err := si.Library.Get(hash[:])
	if err != nil || v == nil {
		return nil, err
	}
	public, err := v.LoadBool()
	if err != nil {
		return nil, err
	}
	root, err := v.LoadRef()
	if err != nil {
		return nil, err
	}
	return &SimpleLib{Public: public, Root: root}, nil
}

// StoreTo implements tlb.Serializable.
func (si *StateInit) StoreTo(b *cell.Builder) error {
	err := tlb.StoreMaybe(b, si.SplitDepth != nil, func(b *cell.Builder) error {
		return b.StoreUInt(uint64(*si.SplitDepth), 5)
	})
	if err != nil {
		return err
	}
	err = tlb.StoreMaybe(b, si.Special != nil, func(b *cell.Builder) error {
		return si.Special.StoreTo(b)
	})
	if err != nil {
		return err
	}
	err = tlb.StoreMaybe(b, si.Code != nil, func(b *cell.Builder) error {
		return b.StoreRef(si.Code)
	})
	if err != nil {
		return err
	}
	err = tlb.StoreMaybe(b, si.Data != nil, func(b *cell.Builder) error {
		return b.StoreRef(si.Data)
	})
	if err != nil {
		return err
	}
	lib := si.Library
	if lib == nil {
		lib = cell.NewDict(256)
	}
	return lib.Store(b)
}

// LoadFrom implements tlb.Deserializable.
func (si *StateInit) LoadFrom(s *cell.Slice) error {
	var splitDepth *uint8
	_, err := tlb.LoadMaybe(s, func(s *cell.Slice) error {
		v, err := s.LoadUInt(5)
		if err != nil {
			return err
		}
		d := uint8(v)
		splitDepth = &d
		return nil
	})
	if err != nil {
		return err
	}
	var special *TickTock
	_, err = tlb.LoadMaybe(s, func(s *cell.Slice) error {
		var tt TickTock
		if err := tt.LoadFrom(s); err != nil {
			return err
		}
		special = &tt
		return nil
	})
	if err != nil {
		return err
	}
	var code, data *cell.Cell
	_, err = tlb.LoadMaybe(s, func(s *cell.Slice) error {
		var err2 error
		code, err2 = s.LoadRef()
		return err2
	})
	if err != nil {
		return err
	}
	_, err = tlb.LoadMaybe(s, func(s *cell.Slice) error {
		var err2 error
		data, err2 = s.LoadRef()
		return err2
	})
	if err != nil {
		return err
	}
	lib, err := cell.LoadDict(s, 256)
	if err != nil {
		return err
	}
	si.SplitDepth, si.Special = splitDepth, special
	si.Code, si.Data, si.Library = code, data, lib
	return nil
}
