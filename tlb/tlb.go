// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tlb provides the serialization glue between typed values and
// cells: codec interfaces, variable-length integer coding, optional-field
// tags and the multi-currency balance type.
package tlb

import (
	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/ton"
)

// Serializable is a value that can be written into a cell builder.
type Serializable interface {
	StoreTo(b *cell.Builder) error
}

// Deserializable is a value that can be read from a cell slice.
type Deserializable interface {
	LoadFrom(s *cell.Slice) error
}

// ToCell serializes v into a fresh cell.
func ToCell(v Serializable) (*cell.Cell, error) {
	b := cell.NewBuilder()
	if err := v.StoreTo(b); err != nil {
		return nil, err
	}
	return b.EndCell()
}

// HashOf returns the content hash of v's serialized form.
func HashOf(v Serializable) (ton.Bytes32, error) {
	c, err := ToCell(v)
	if err != nil {
		return ton.Bytes32{}, err
	}
	return c.Hash(), nil
}

// StoreMaybe stores a presence bit, then the payload when present.
func StoreMaybe(b *cell.Builder, present bool, store func(*cell.Builder) error) error {
	if err := b.StoreBool(present); err != nil {
		return err
	}
	if !present {
		return nil
	}
	return store(b)
}

// LoadMaybe loads a presence bit and invokes load when it is set.
// It reports whether the payload was present.
func LoadMaybe(s *cell.Slice, load func(*cell.Slice) error) (bool, error) {
	present, err := s.LoadBool()
	if err != nil || !present {
		return false, err
	}
	return true, load(s)
}

// StoreMaybeBytes32 stores an optional 256-bit hash.
func StoreMaybeBytes32(b *cell.Builder, h *ton.Bytes32) error {
	return StoreMaybe(b, h != nil, func(b *cell.Builder) error {
		return b.StoreBytes32(*h)
	})
}

// LoadMaybeBytes32 loads an optional 256-bit hash, nil when absent.
func LoadMaybeBytes32(s *cell.Slice) (*ton.Bytes32, error) {
	var h ton.Bytes32
	present, err := LoadMaybe(s, func(s *cell.Slice) error {
		var err2 error
		h, err2 = s.LoadBytes32()
		return err2
	})
	if err != nil || !present {
		return nil, err
	}
	return &h, nil
}
