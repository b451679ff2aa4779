// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package ton

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes32JSON(t *testing.T) {
	originalHex := `"0x00000000000000000000000000000000000000000000000000006d6173746572"`

	var v Bytes32
	require.NoError(t, json.Unmarshal([]byte(originalHex), &v))

	data, err := json.Marshal(&v)
	require.NoError(t, err)
	assert.Equal(t, originalHex, string(data))
}

func TestParseBytes32(t *testing.T) {
	with0x := "0x00000000000000000000000000000000000000000000000000006d6173746572"
	parsed, err := ParseBytes32(with0x)
	require.NoError(t, err)
	assert.Equal(t, with0x, parsed.String())

	bare, err := ParseBytes32(with0x[2:])
	require.NoError(t, err)
	assert.Equal(t, parsed, bare)

	_, err = ParseBytes32("0x1234")
	assert.Error(t, err)
	_, err = ParseBytes32("zz" + with0x[4:])
	assert.Error(t, err)
}

func TestBytesToBytes32(t *testing.T) {
	short := BytesToBytes32([]byte{0xAB})
	assert.Equal(t, byte(0xAB), short[31])
	assert.True(t, Bytes32{}.IsZero())
	assert.False(t, short.IsZero())
}

func TestSha256(t *testing.T) {
	a := Sha256([]byte("hello"))
	b := Sha256([]byte("hello"))
	c := Sha256([]byte("world"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "0x2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", a.String())
}
