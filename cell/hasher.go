// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import (
	"hash"
	"sync"

	"github.com/openton/tonstate/ton"
)

type hasher struct {
	tmp sliceBuffer
	sha hash.Hash
}

type sliceBuffer []byte

func (b *sliceBuffer) Write(data []byte) (n int, err error) {
	*b = append(*b, data...)
	return len(data), nil
}

func (b *sliceBuffer) Reset() {
	*b = (*b)[:0]
}

// hashers live in a global pool.
var hasherPool = sync.Pool{
	New: func() any {
		return &hasher{
			tmp: make(sliceBuffer, 0, 2+128+MaxRefs*34),
			sha: ton.NewSha256(),
		}
	},
}

// reprHash computes the representation hash of an ordinary cell:
// sha256 over the two descriptor bytes, the data bytes with a completion
// tag, then the depths and hashes of the child references.
func reprHash(c *Cell) (h ton.Bytes32) {
	hr := hasherPool.Get().(*hasher)
	defer func() {
		hr.tmp.Reset()
		hr.sha.Reset()
		hasherPool.Put(hr)
	}()

	nbytes := (c.bitLen + 7) / 8
	d1 := byte(len(c.refs))
	d2 := byte(c.bitLen/8 + nbytes)
	hr.tmp = append(hr.tmp, d1, d2)
	hr.tmp = append(hr.tmp, c.data[:nbytes]...)
	if c.bitLen%8 != 0 {
		// completion tag: a single one bit right after the data
		hr.tmp[2+nbytes-1] |= 0x80 >> (c.bitLen % 8)
	}
	for _, ref := range c.refs {
		hr.tmp = append(hr.tmp, byte(ref.depth>>8), byte(ref.depth))
	}
	for _, ref := range c.refs {
		hr.tmp = append(hr.tmp, ref.hash[:]...)
	}

	hr.sha.Write(hr.tmp)
	hr.sha.Sum(h[:0])
	return h
}
