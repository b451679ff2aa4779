// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/tlb"
	"github.com/openton/tonstate/ton"
)

func buildCell(t *testing.T, build func(b *cell.Builder) error) *cell.Cell {
	b := cell.NewBuilder()
	require.NoError(t, build(b))
	c, err := b.EndCell()
	require.NoError(t, err)
	return c
}

// wideCell is a 100-bit leaf, wider than a single StoreUInt can hold.
func wideCell(t *testing.T) *cell.Cell {
	return buildCell(t, func(b *cell.Builder) error {
		return b.StoreRaw([]byte{
			0xA5, 0xA5, 0xA5, 0xA5, 0xA5, 0xA5, 0xA5,
			0xA5, 0xA5, 0xA5, 0xA5, 0xA5, 0xA0,
		}, 100)
	})
}

func TestFootprintCountsSharedSubtreeOnce(t *testing.T) {
	shared := wideCell(t)
	root := buildCell(t, func(b *cell.Builder) error {
		if err := b.StoreUInt(1, 20); err != nil {
			return err
		}
		if err := b.StoreRef(shared); err != nil {
			return err
		}
		return b.StoreRef(shared)
	})

	u := NewStorageUsedShort()
	require.NoError(t, u.Append(root))
	assert.Equal(t, uint64(2), u.Cells)
	assert.Equal(t, uint64(120), u.Bits)
}

func TestFootprintDedupSpansAppends(t *testing.T) {
	shared := wideCell(t)
	a := buildCell(t, func(b *cell.Builder) error {
		if err := b.StoreUInt(1, 10); err != nil {
			return err
		}
		return b.StoreRef(shared)
	})
	b := buildCell(t, func(b *cell.Builder) error {
		if err := b.StoreUInt(2, 10); err != nil {
			return err
		}
		return b.StoreRef(shared)
	})

	u := NewStorageUsedShort()
	require.NoError(t, u.Append(a))
	require.NoError(t, u.Append(b))
	// the shared subtree is counted once even across separate appends
	assert.Equal(t, uint64(3), u.Cells)
	assert.Equal(t, uint64(120), u.Bits)

	// re-appending an already seen tree changes nothing
	require.NoError(t, u.Append(a))
	assert.Equal(t, uint64(3), u.Cells)
	assert.Equal(t, uint64(120), u.Bits)

	// measuring each tree with a fresh accumulator counts the shared
	// leaf twice, so the naive sum strictly exceeds the deduped total
	ua := NewStorageUsedShort()
	require.NoError(t, ua.Append(a))
	ub := NewStorageUsedShort()
	require.NoError(t, ub.Append(b))
	assert.Greater(t, ua.Bits+ub.Bits, u.Bits)
	assert.Greater(t, ua.Cells+ub.Cells, u.Cells)
}

func TestStorageUsedForMeasuresSerializedForm(t *testing.T) {
	g := tlb.NewGrams(100)
	u, err := StorageUsedFor(&g)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.Cells)
	assert.Equal(t, uint64(4+8), u.Bits)
}

func TestStorageUsedCodec(t *testing.T) {
	for _, extra := range []*ton.Bytes32{
		nil,
		ptrBytes32(ton.MustParseBytes32("0x3333333333333333333333333333333333333333333333333333333333333333")),
	} {
		u := StorageUsed{Cells: 12, Bits: 3456, Extra: extra}
		c, err := tlb.ToCell(&u)
		require.NoError(t, err)

		var got StorageUsed
		require.NoError(t, got.LoadFrom(c.BeginParse()))
		assert.Equal(t, u.Cells, got.Cells)
		assert.Equal(t, u.Bits, got.Bits)
		if extra == nil {
			assert.Nil(t, got.Extra)
		} else {
			require.NotNil(t, got.Extra)
			assert.Equal(t, *extra, *got.Extra)
		}
	}
}

func TestStorageUsedRejectsUnknownExtraTag(t *testing.T) {
	b := cell.NewBuilder()
	require.NoError(t, tlb.StoreVarUInt(b, 1, 7))
	require.NoError(t, tlb.StoreVarUInt(b, 1, 7))
	require.NoError(t, b.StoreUInt(0b111, 3))
	c, err := b.EndCell()
	require.NoError(t, err)

	var got StorageUsed
	assert.ErrorIs(t, got.LoadFrom(c.BeginParse()), ErrUnknownTag)
}

func TestStorageInfoCodec(t *testing.T) {
	due := tlb.NewGrams(55)
	si := StorageInfo{
		Used:       StorageUsed{Cells: 1, Bits: 2},
		LastPaid:   1700000000,
		DuePayment: &due,
	}
	c, err := tlb.ToCell(&si)
	require.NoError(t, err)

	var got StorageInfo
	require.NoError(t, got.LoadFrom(c.BeginParse()))
	assert.Equal(t, si.Used, got.Used)
	assert.Equal(t, si.LastPaid, got.LastPaid)
	require.NotNil(t, got.DuePayment)
	assert.Equal(t, 0, due.Cmp(got.DuePayment))

	si.DuePayment = nil
	c, err = tlb.ToCell(&si)
	require.NoError(t, err)
	require.NoError(t, got.LoadFrom(c.BeginParse()))
	assert.Nil(t, got.DuePayment)
}

func ptrBytes32(h ton.Bytes32) *ton.Bytes32 { return &h }
