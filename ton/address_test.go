// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package ton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress(t *testing.T) {
	id := MustParseBytes32("0x00000000000000000000000000000000000000000000000000006d6173746572")
	a := NewAddress(BasechainID, id)

	assert.Equal(t, BasechainID, a.Workchain())
	assert.Equal(t, id, a.AccountID())
	assert.Nil(t, a.Anycast())
	assert.False(t, a.IsZero())
	assert.True(t, a.Equal(NewAddress(BasechainID, id)))
	assert.False(t, a.Equal(NewAddress(MasterchainID, id)))
	assert.Equal(t, "0:00000000000000000000000000000000000000000000000000006d6173746572", a.String())

	assert.True(t, Address{}.IsZero())
}

func TestAnycastAddress(t *testing.T) {
	id := MustParseBytes32("0x1100000000000000000000000000000000000000000000000000000000000000")
	ac := Anycast{Depth: 5, RewritePfx: 0b10110}
	a, err := NewAnycastAddress(BasechainID, id, ac)
	require.NoError(t, err)

	got := a.Anycast()
	require.NotNil(t, got)
	assert.Equal(t, ac, *got)

	// returned copy, mutation must not reach the address
	got.Depth = 1
	assert.Equal(t, uint8(5), a.Anycast().Depth)

	assert.False(t, a.Equal(NewAddress(BasechainID, id)))
}

func TestAnycastValidity(t *testing.T) {
	assert.False(t, Anycast{Depth: 0, RewritePfx: 0}.Valid())
	assert.True(t, Anycast{Depth: 1, RewritePfx: 1}.Valid())
	assert.False(t, Anycast{Depth: 1, RewritePfx: 2}.Valid())
	assert.True(t, Anycast{Depth: MaxAnycastDepth, RewritePfx: 1<<MaxAnycastDepth - 1}.Valid())
	assert.False(t, Anycast{Depth: MaxAnycastDepth + 1, RewritePfx: 0}.Valid())

	_, err := NewAnycastAddress(0, Bytes32{}, Anycast{Depth: 31})
	assert.Error(t, err)
}
