// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package shard holds the shard-level account index, the shard state
// cell layout and Merkle proof extraction for single accounts.
package shard

import (
	"github.com/pkg/errors"

	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/state"
	"github.com/openton/tonstate/tlb"
	"github.com/openton/tonstate/ton"
)

// DepthBalanceInfo rides along every index leaf so split decisions can
// read balances without decoding accounts.
//
//	depth_balance$_ split_depth:(#<= 30) balance:CurrencyCollection
type DepthBalanceInfo struct {
	SplitDepth uint8
	Balance    tlb.CurrencyCollection
}

// StoreTo implements tlb.Serializable.
func (d *DepthBalanceInfo) StoreTo(b *cell.Builder) error {
	if err := b.StoreUInt(uint64(d.SplitDepth), 5); err != nil {
		return err
	}
	return d.Balance.StoreTo(b)
}

// LoadFrom implements tlb.Deserializable.
func (d *DepthBalanceInfo) LoadFrom(s *cell.Slice) error {
	depth, err := s.LoadUInt(5)
	if err != nil {
		return err
	}
	var balance tlb.CurrencyCollection
	if err := balance.LoadFrom(s); err != nil {
		return err
	}
	d.SplitDepth, d.Balance = uint8(depth), balance
	return nil
}

// Accounts is the shard account index, a dictionary keyed by 256-bit
// account id. Each leaf carries a DepthBalanceInfo followed by the
// ShardAccount record.
type Accounts struct {
	dict *cell.Dictionary
}

// NewAccounts returns an empty index.
func NewAccounts() *Accounts {
	return &Accounts{dict: cell.NewDict(256)}
}

// LoadAccounts reads the index from a slice.
func LoadAccounts(s *cell.Slice) (*Accounts, error) {
	dict, err := cell.LoadDict(s, 256)
	if err != nil {
		return nil, err
	}
	return &Accounts{dict: dict}, nil
}

// IsEmpty reports whether the index holds no accounts.
func (a *Accounts) IsEmpty() bool { return a.dict.IsEmpty() }

// Get fetches the record for the given account id, nil when absent.
func (a *Accounts) Get(accountID ton.Bytes32) (*state.ShardAccount, error) {
	v, err := a.dict.Get(accountID[:])
	if err != nil || v == nil {
		return nil, err
	}
	var aug DepthBalanceInfo
	if err := aug.LoadFrom(v); err != nil {
		return nil, err
	}
	var sa state.ShardAccount
	if err := sa.LoadFrom(v); err != nil {
		return nil, err
	}
	return &sa, nil
}

// GetAug fetches both the balance augmentation and the record.
func (a *Accounts) GetAug(accountID ton.Bytes32) (*DepthBalanceInfo, *state.ShardAccount, error) {
	v, err := a.dict.Get(accountID[:])
	if err != nil || v == nil {
		return nil, nil, err
	}
	var aug DepthBalanceInfo
	if err := aug.LoadFrom(v); err != nil {
		return nil, nil, err
	}
	var sa state.ShardAccount
	if err := sa.LoadFrom(v); err != nil {
		return nil, nil, err
	}
	return &aug, &sa, nil
}

// Put inserts or replaces the record, keyed by the address of the
// wrapped account and augmented with its balance and split depth.
// Records wrapping the none account are rejected, it has no address.
func (a *Accounts) Put(sa *state.ShardAccount) error {
	acc, err := sa.ReadAccount()
	if err != nil {
		return err
	}
	if acc.IsNone() {
		return errors.Wrap(state.ErrAccountNone, "index put")
	}
	aug := DepthBalanceInfo{Balance: *acc.Balance()}
	if d := acc.SplitDepth(); d != nil {
		aug.SplitDepth = *d
	}
	v := cell.NewBuilder()
	if err := aug.StoreTo(v); err != nil {
		return err
	}
	if err := sa.StoreTo(v); err != nil {
		return err
	}
	key := acc.AccountID()
	return a.dict.Set(key[:], v)
}

// Delete removes the record for the given account id, reporting whether
// it was present.
func (a *Accounts) Delete(accountID ton.Bytes32) (bool, error) {
	return a.dict.Delete(accountID[:])
}

// ForEach walks the index in key order. Returning false stops the walk.
func (a *Accounts) ForEach(fn func(accountID ton.Bytes32, aug *DepthBalanceInfo, sa *state.ShardAccount) (bool, error)) error {
	return a.dict.ForEach(func(key []byte, v *cell.Slice) (bool, error) {
		var aug DepthBalanceInfo
		if err := aug.LoadFrom(v); err != nil {
			return false, err
		}
		var sa state.ShardAccount
		if err := sa.LoadFrom(v); err != nil {
			return false, err
		}
		return fn(ton.BytesToBytes32(key), &aug, &sa)
	})
}

// StoreTo implements tlb.Serializable.
func (a *Accounts) StoreTo(b *cell.Builder) error {
	return a.dict.Store(b)
}

// LoadFrom implements tlb.Deserializable.
func (a *Accounts) LoadFrom(s *cell.Slice) error {
	loaded, err := LoadAccounts(s)
	if err != nil {
		return err
	}
	a.dict = loaded.dict
	return nil
}

// ToCell serializes the index into a fresh cell.
func (a *Accounts) ToCell() (*cell.Cell, error) {
	return tlb.ToCell(a)
}
