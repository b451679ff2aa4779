// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package ton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullShard(t *testing.T) {
	s := FullShard(BasechainID)
	assert.True(t, s.IsFull())
	assert.False(t, s.IsMasterchain())
	assert.Equal(t, uint8(0), s.PfxBits())
	assert.Equal(t, uint64(0x8000000000000000), s.Prefix())

	assert.True(t, s.ContainsAccount(Bytes32{}))
	assert.True(t, s.ContainsAccount(MustParseBytes32("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")))

	assert.True(t, FullShard(MasterchainID).IsMasterchain())
}

func TestShardSplitHalves(t *testing.T) {
	left, err := NewShardIdent(BasechainID, 1, 0)
	require.NoError(t, err)
	right, err := NewShardIdent(BasechainID, 1, 0x8000000000000000)
	require.NoError(t, err)

	assert.Equal(t, uint8(1), left.PfxBits())
	assert.Equal(t, uint64(0x4000000000000000), left.Prefix())
	assert.Equal(t, uint64(0xC000000000000000), right.Prefix())

	lo := MustParseBytes32("0x1000000000000000000000000000000000000000000000000000000000000000")
	hi := MustParseBytes32("0x9000000000000000000000000000000000000000000000000000000000000000")

	assert.True(t, left.ContainsAccount(lo))
	assert.False(t, left.ContainsAccount(hi))
	assert.False(t, right.ContainsAccount(lo))
	assert.True(t, right.ContainsAccount(hi))
}

func TestShardPrefixMasking(t *testing.T) {
	// low bits beyond the prefix length are discarded
	s, err := NewShardIdent(BasechainID, 4, 0xABCD000000000000)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), s.PfxBits())
	assert.Equal(t, uint64(0xA800000000000000), s.Prefix())

	assert.True(t, s.ContainsAccount(MustParseBytes32("0xa000000000000000000000000000000000000000000000000000000000000000")))
	assert.False(t, s.ContainsAccount(MustParseBytes32("0xb000000000000000000000000000000000000000000000000000000000000000")))
}

func TestShardPrefixTooLong(t *testing.T) {
	_, err := NewShardIdent(BasechainID, MaxShardPfxBits+1, 0)
	assert.Error(t, err)
}
