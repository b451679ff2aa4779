// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/ton"
)

func TestStateRoundtrip(t *testing.T) {
	ident, err := ton.NewShardIdent(ton.BasechainID, 2, 0x4000000000000000)
	require.NoError(t, err)

	st := NewState(-239, ident)
	st.SeqNo = 100
	st.VertSeqNo = 1
	st.GenUnixTime = 1700000000
	st.GenLT = 123456
	st.MinRefMcSeqNo = 99
	st.BeforeSplit = true

	id := ton.MustParseBytes32("0x5100000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, st.Accounts().Put(testShardAccount(t, id, 10, 1)))

	root, err := st.ToCell()
	require.NoError(t, err)

	var got State
	require.NoError(t, got.LoadFrom(root.BeginParse()))
	assert.Equal(t, int32(-239), got.GlobalID)
	assert.Equal(t, ident, got.Ident)
	assert.Equal(t, uint32(100), got.SeqNo)
	assert.Equal(t, uint32(1), got.VertSeqNo)
	assert.Equal(t, uint32(1700000000), got.GenUnixTime)
	assert.Equal(t, uint64(123456), got.GenLT)
	assert.Equal(t, uint32(99), got.MinRefMcSeqNo)
	assert.True(t, got.BeforeSplit)
	assert.Nil(t, got.Custom)

	sa, err := got.Accounts().Get(id)
	require.NoError(t, err)
	require.NotNil(t, sa)
}

func TestStateCustomRef(t *testing.T) {
	st := NewState(0, ton.FullShard(ton.MasterchainID))
	b := cell.NewBuilder()
	require.NoError(t, b.StoreUInt(0xCC, 8))
	custom, err := b.EndCell()
	require.NoError(t, err)
	st.Custom = custom

	root, err := st.ToCell()
	require.NoError(t, err)
	var got State
	require.NoError(t, got.LoadFrom(root.BeginParse()))
	require.NotNil(t, got.Custom)
	assert.Equal(t, custom.Hash(), got.Custom.Hash())
}

func TestStateRejectsBadTag(t *testing.T) {
	b := cell.NewBuilder()
	require.NoError(t, b.StoreUInt(0xDEADBEEF, 32))
	require.NoError(t, b.StoreUInt(0, 64))
	c, err := b.EndCell()
	require.NoError(t, err)

	var got State
	assert.ErrorIs(t, got.LoadFrom(c.BeginParse()), ErrBadStateTag)
}
