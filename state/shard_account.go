// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/tlb"
	"github.com/openton/tonstate/ton"
)

// ShardAccount wraps an account root cell with the hash and logical
// time of the last transaction applied to it. The account stays in cell
// form until a consumer asks for it, so shard-wide scans never pay for
// decoding.
//
//	account_descr$_ account:^Account last_trans_hash:bits256
//	  last_trans_lt:uint64 = ShardAccount;
type ShardAccount struct {
	accountRoot   *cell.Cell
	lastTransHash ton.Bytes32
	lastTransLT   uint64
}

// NewShardAccount wraps acc with transaction bookkeeping.
func NewShardAccount(acc *Account, lastTransHash ton.Bytes32, lastTransLT uint64) (*ShardAccount, error) {
	root, err := tlb.ToCell(acc)
	if err != nil {
		return nil, err
	}
	return &ShardAccount{
		accountRoot:   root,
		lastTransHash: lastTransHash,
		lastTransLT:   lastTransLT,
	}, nil
}

// ShardAccountWithRoot wraps an already serialized account.
func ShardAccountWithRoot(root *cell.Cell, lastTransHash ton.Bytes32, lastTransLT uint64) *ShardAccount {
	return &ShardAccount{
		accountRoot:   root,
		lastTransHash: lastTransHash,
		lastTransLT:   lastTransLT,
	}
}

// ReadAccount decodes the wrapped account. Each call decodes afresh, so
// callers own the returned value and may mutate it freely.
func (sa *ShardAccount) ReadAccount() (*Account, error) {
	return LoadAccount(sa.accountRoot)
}

// WriteAccount serializes acc and replaces the wrapped root.
func (sa *ShardAccount) WriteAccount(acc *Account) error {
	root, err := tlb.ToCell(acc)
	if err != nil {
		return err
	}
	sa.accountRoot = root
	return nil
}

// AccountCell returns the wrapped account root.
func (sa *ShardAccount) AccountCell() *cell.Cell { return sa.accountRoot }

// SetAccountCell replaces the wrapped account root.
func (sa *ShardAccount) SetAccountCell(root *cell.Cell) { sa.accountRoot = root }

// LastTransHash returns the hash of the last applied transaction.
func (sa *ShardAccount) LastTransHash() ton.Bytes32 { return sa.lastTransHash }

// SetLastTransHash records the hash of the last applied transaction.
func (sa *ShardAccount) SetLastTransHash(h ton.Bytes32) { sa.lastTransHash = h }

// LastTransLT returns the logical time of the last applied transaction.
func (sa *ShardAccount) LastTransLT() uint64 { return sa.lastTransLT }

// SetLastTransLT records the logical time of the last applied
// transaction.
func (sa *ShardAccount) SetLastTransLT(lt uint64) { sa.lastTransLT = lt }

// Equal compares by account root hash and bookkeeping fields.
func (sa *ShardAccount) Equal(other *ShardAccount) bool {
	return sa.accountRoot.Hash() == other.accountRoot.Hash() &&
		sa.lastTransHash == other.lastTransHash &&
		sa.lastTransLT == other.lastTransLT
}

// StoreTo implements tlb.Serializable.
func (sa *ShardAccount) StoreTo(b *cell.Builder) error {
	if err := b.StoreRef(sa.accountRoot); err != nil {
		return err
	}
	if err := b.StoreBytes32(sa.lastTransHash); err != nil {
		return err
	}
	return b.StoreUInt(sa.lastTransLT, 64)
}

// LoadFrom implements tlb.Deserializable.
func (sa *ShardAccount) LoadFrom(s *cell.Slice) error {
	root, err := s.LoadRef()
	if err != nil {
		return err
	}
	hash, err := s.LoadBytes32()
	if err != nil {
		return err
	}
	lt, err := s.LoadUInt(64)
	if err != nil {
		return err
	}
	sa.accountRoot, sa.lastTransHash, sa.lastTransLT = root, hash, lt
	return nil
}
