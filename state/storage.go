// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/tlb"
	"github.com/openton/tonstate/ton"
)

// Footprint counters are VarUInteger 7, so they saturate validation at
// 2^48-1. Exceeding the bound is a hard error, not a wrap.
var maxFootprint = tlb.MaxVarUInt(7)

const (
	storageExtraNoneTag = 0b000
	storageExtraDictTag = 0b001
)

// StorageUsed is the deduplicated storage footprint of an account,
// charged for rent. Extra, when present, pins the hash of an auxiliary
// dictionary attached by validators.
//
//	storage_used$_ cells:(VarUInteger 7) bits:(VarUInteger 7)
//	  extra:StorageExtraInfo
//	storage_extra_none$000 = StorageExtraInfo;
//	storage_extra_information$001 dict_hash:uint256 = StorageExtraInfo;
type StorageUsed struct {
	Cells uint64
	Bits  uint64
	Extra *ton.Bytes32
}

// StoreTo implements tlb.Serializable.
func (u *StorageUsed) StoreTo(b *cell.Builder) error {
	if err := tlb.StoreVarUInt(b, u.Cells, 7); err != nil {
		return err
	}
	if err := tlb.StoreVarUInt(b, u.Bits, 7); err != nil {
		return err
	}
	if u.Extra == nil {
		return b.StoreUInt(storageExtraNoneTag, 3)
	}
	if err := b.StoreUInt(storageExtraDictTag, 3); err != nil {
		return err
	}
	return b.StoreBytes32(*u.Extra)
}

// LoadFrom implements tlb.Deserializable.
func (u *StorageUsed) LoadFrom(s *cell.Slice) error {
	cells, err := tlb.LoadVarUInt(s, 7)
	if err != nil {
		return err
	}
	bits, err := tlb.LoadVarUInt(s, 7)
	if err != nil {
		return err
	}
	tag, err := s.LoadUInt(3)
	if err != nil {
		return err
	}
	var extra *ton.Bytes32
	switch tag {
	case storageExtraNoneTag:
	case storageExtraDictTag:
		h, err := s.LoadBytes32()
		if err != nil {
			return err
		}
		extra = &h
	default:
		return errors.Wrapf(ErrUnknownTag, "storage extra %03b", tag)
	}
	u.Cells, u.Bits, u.Extra = cells, bits, extra
	return nil
}

// StorageUsedShort accumulates a deduplicated cell-tree footprint. The
// visited set persists across Append calls, so appending overlapping
// trees counts every distinct cell exactly once.
type StorageUsedShort struct {
	Cells uint64
	Bits  uint64

	visited mapset.Set[ton.Bytes32]
}

// NewStorageUsedShort returns an empty accumulator.
func NewStorageUsedShort() *StorageUsedShort {
	return &StorageUsedShort{visited: mapset.NewThreadUnsafeSet[ton.Bytes32]()}
}

// Append walks the tree rooted at c and adds every cell not yet seen by
// this accumulator. Counters are checked against the VarUInteger 7 bound.
func (u *StorageUsedShort) Append(c *cell.Cell) error {
	metricFootprintWalkCount().Add(1)
	if u.visited == nil {
		u.visited = mapset.NewThreadUnsafeSet[ton.Bytes32]()
	}
	stack := []*cell.Cell{c}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !u.visited.Add(cur.Hash()) {
			continue
		}
		if u.Cells >= maxFootprint || maxFootprint-u.Bits < uint64(cur.BitLen()) {
			return ErrFootprintOverflow
		}
		u.Cells++
		u.Bits += uint64(cur.BitLen())
		for i := 0; i < cur.RefCount(); i++ {
			stack = append(stack, cur.Ref(i))
		}
	}
	return nil
}

// StoreTo implements tlb.Serializable.
func (u *StorageUsedShort) StoreTo(b *cell.Builder) error {
	if err := tlb.StoreVarUInt(b, u.Cells, 7); err != nil {
		return err
	}
	return tlb.StoreVarUInt(b, u.Bits, 7)
}

// LoadFrom implements tlb.Deserializable. The visited set starts fresh.
func (u *StorageUsedShort) LoadFrom(s *cell.Slice) error {
	cells, err := tlb.LoadVarUInt(s, 7)
	if err != nil {
		return err
	}
	bits, err := tlb.LoadVarUInt(s, 7)
	if err != nil {
		return err
	}
	u.Cells, u.Bits = cells, bits
	u.visited = mapset.NewThreadUnsafeSet[ton.Bytes32]()
	return nil
}

// StorageUsedFor measures the serialized footprint of v.
func StorageUsedFor(v tlb.Serializable) (*StorageUsedShort, error) {
	c, err := tlb.ToCell(v)
	if err != nil {
		return nil, err
	}
	u := NewStorageUsedShort()
	if err := u.Append(c); err != nil {
		return nil, err
	}
	return u, nil
}

// StorageInfo pairs the footprint with rent bookkeeping.
//
//	storage_info$_ used:StorageUsed last_paid:uint32
//	  due_payment:(Maybe Grams) = StorageInfo;
type StorageInfo struct {
	Used       StorageUsed
	LastPaid   uint32
	DuePayment *tlb.Grams
}

// SetLastPaid records the unixtime of the last storage-fee collection.
func (si *StorageInfo) SetLastPaid(t uint32) { si.LastPaid = t }

// SetDuePayment sets or clears the outstanding storage debt.
func (si *StorageInfo) SetDuePayment(g *tlb.Grams) { si.DuePayment = g }

// StoreTo implements tlb.Serializable.
func (si *StorageInfo) StoreTo(b *cell.Builder) error {
	if err := si.Used.StoreTo(b); err != nil {
		return err
	}
	if err := b.StoreUInt(uint64(si.LastPaid), 32); err != nil {
		return err
	}
	return tlb.StoreMaybe(b, si.DuePayment != nil, func(b *cell.Builder) error {
		return si.DuePayment.StoreTo(b)
	})
}

// LoadFrom implements tlb.Deserializable.
func (si *StorageInfo) LoadFrom(s *cell.Slice) error {
	var used StorageUsed
	if err := used.LoadFrom(s); err != nil {
		return err
	}
	lastPaid, err := s.LoadUInt(32)
	if err != nil {
		return err
	}
	var due tlb.Grams
	present, err := tlb.LoadMaybe(s, due.LoadFrom)
	if err != nil {
		return err
	}
	si.Used, si.LastPaid = used, uint32(lastPaid)
	if present {
		si.DuePayment = &due
	} else {
		si.DuePayment = nil
	}
	return nil
}
