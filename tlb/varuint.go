// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tlb

import (
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/openton/tonstate/cell"
)

// ErrVarUIntOverflow is returned when a value does not fit the target
// VarUInteger width. Overflow is always a hard failure, never a wrap.
var ErrVarUIntOverflow = errors.New("tlb: varuint overflow")

// VarUInteger n holds up to n-1 bytes: a length prefix of ceil(log2(n))
// bits, then length value bytes, big-endian. VarUInteger 7 carries
// footprint counters, 16 carries Grams, 32 carries extra currencies.

// MaxVarUInt returns the largest value representable by VarUInteger n,
// for n whose payload fits 64 bits.
func MaxVarUInt(n int) uint64 {
	if (n-1)*8 >= 64 {
		return ^uint64(0)
	}
	return 1<<uint((n-1)*8) - 1
}

func lenPrefixBits(n int) int {
	return bits.Len(uint(n - 1))
}

// StoreVarUInt stores v as VarUInteger n.
func StoreVarUInt(b *cell.Builder, v uint64, n int) error {
	byteLen := (bits.Len64(v) + 7) / 8
	if byteLen > n-1 {
		return ErrVarUIntOverflow
	}
	if err := b.StoreUInt(uint64(byteLen), lenPrefixBits(n)); err != nil {
		return err
	}
	return b.StoreUInt(v, byteLen*8)
}

// LoadVarUInt loads a VarUInteger n whose payload fits 64 bits.
func LoadVarUInt(s *cell.Slice, n int) (uint64, error) {
	byteLen, err := s.LoadUInt(lenPrefixBits(n))
	if err != nil {
		return 0, err
	}
	if int(byteLen) > n-1 || byteLen > 8 {
		return 0, errors.Wrapf(ErrVarUIntOverflow, "length %d", byteLen)
	}
	return s.LoadUInt(int(byteLen) * 8)
}

// StoreVarUInt256 stores v as VarUInteger n for widths beyond 64 bits.
func StoreVarUInt256(b *cell.Builder, v *uint256.Int, n int) error {
	byteLen := (v.BitLen() + 7) / 8
	if byteLen > n-1 {
		return ErrVarUIntOverflow
	}
	if err := b.StoreUInt(uint64(byteLen), lenPrefixBits(n)); err != nil {
		return err
	}
	if byteLen == 0 {
		return nil
	}
	return b.StoreRaw(v.Bytes(), byteLen*8)
}

// LoadVarUInt256 loads a VarUInteger n into a 256-bit integer.
func LoadVarUInt256(s *cell.Slice, n int) (*uint256.Int, error) {
	byteLen, err := s.LoadUInt(lenPrefixBits(n))
	if err != nil {
		return nil, err
	}
	if int(byteLen) > n-1 || byteLen > 32 {
		return nil, errors.Wrapf(ErrVarUIntOverflow, "length %d", byteLen)
	}
	raw, err := s.LoadRaw(int(byteLen) * 8)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(raw), nil
}
