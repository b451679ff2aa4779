// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import (
	"github.com/pkg/errors"

	"github.com/openton/tonstate/ton"
)

var (
	// ErrBitOverflow is returned when a store would exceed the cell's
	// data capacity.
	ErrBitOverflow = errors.New("cell: not enough space in builder")
	// ErrRefOverflow is returned when a store would exceed the cell's
	// reference capacity.
	ErrRefOverflow = errors.New("cell: too many refs in builder")
)

// Builder assembles a cell bit by bit. Completed cells are immutable and
// obtained via EndCell, which computes the content hash.
type Builder struct {
	data   []byte
	bitLen int
	refs   []*Cell
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{data: make([]byte, 0, 128)}
}

// BitLen returns the number of bits stored so far.
func (b *Builder) BitLen() int { return b.bitLen }

// BitsLeft returns the remaining data capacity in bits.
func (b *Builder) BitsLeft() int { return MaxBitLen - b.bitLen }

// RefsLeft returns the remaining reference capacity.
func (b *Builder) RefsLeft() int { return MaxRefs - len(b.refs) }

func (b *Builder) grow(bits int) {
	need := (b.bitLen + bits + 7) / 8
	for len(b.data) < need {
		b.data = append(b.data, 0)
	}
}

// appendBits stores the low sz bits of v, MSB first.
func (b *Builder) appendBits(v uint64, sz int) {
	b.grow(sz)
	for i := sz - 1; i >= 0; i-- {
		if v&(1<<uint(i)) != 0 {
			b.data[b.bitLen/8] |= 0x80 >> (b.bitLen % 8)
		}
		b.bitLen++
	}
}

// StoreUInt stores the low sz bits of v, most significant bit first.
func (b *Builder) StoreUInt(v uint64, sz int) error {
	if sz < 0 || sz > 64 {
		return errors.Errorf("cell: bad uint size %d", sz)
	}
	if sz < 64 && v >= 1<<uint(sz) {
		return errors.Errorf("cell: value %d does not fit in %d bits", v, sz)
	}
	if b.bitLen+sz > MaxBitLen {
		return ErrBitOverflow
	}
	b.appendBits(v, sz)
	return nil
}

// StoreInt stores v as an sz-bit two's complement integer.
func (b *Builder) StoreInt(v int64, sz int) error {
	if sz < 1 || sz > 64 {
		return errors.Errorf("cell: bad int size %d", sz)
	}
	if sz < 64 {
		if v >= 1<<uint(sz-1) || v < -(1<<uint(sz-1)) {
			return errors.Errorf("cell: value %d does not fit in %d bits", v, sz)
		}
	}
	if b.bitLen+sz > MaxBitLen {
		return ErrBitOverflow
	}
	b.appendBits(uint64(v)&(^uint64(0)>>uint(64-sz)), sz)
	return nil
}

// StoreBool stores a single bit.
func (b *Builder) StoreBool(v bool) error {
	if b.bitLen+1 > MaxBitLen {
		return ErrBitOverflow
	}
	if v {
		b.appendBits(1, 1)
	} else {
		b.appendBits(0, 1)
	}
	return nil
}

// StoreBytes32 stores 256 bits.
func (b *Builder) StoreBytes32(h ton.Bytes32) error {
	return b.StoreRaw(h[:], 256)
}

// StoreRaw stores the first bits of data, most significant bit of each
// byte first.
func (b *Builder) StoreRaw(data []byte, bits int) error {
	if bits < 0 || bits > len(data)*8 {
		return errors.Errorf("cell: bad raw length %d", bits)
	}
	if b.bitLen+bits > MaxBitLen {
		return ErrBitOverflow
	}
	if b.bitLen%8 == 0 {
		// aligned fast path
		b.grow(bits)
		copy(b.data[b.bitLen/8:], data[:(bits+7)/8])
		if bits%8 != 0 {
			b.data[(b.bitLen+bits)/8] &= 0xFF << (8 - bits%8)
		}
		b.bitLen += bits
		return nil
	}
	for i := 0; i < bits; i++ {
		var v uint64
		if data[i/8]&(0x80>>(i%8)) != 0 {
			v = 1
		}
		b.appendBits(v, 1)
	}
	return nil
}

// StoreRef appends a child reference.
func (b *Builder) StoreRef(c *Cell) error {
	if c == nil {
		return errors.New("cell: nil ref")
	}
	if len(b.refs) >= MaxRefs {
		return ErrRefOverflow
	}
	b.refs = append(b.refs, c)
	return nil
}

// StoreBuilder appends another builder's bits and refs.
func (b *Builder) StoreBuilder(sub *Builder) error {
	if len(b.refs)+len(sub.refs) > MaxRefs {
		return ErrRefOverflow
	}
	if b.bitLen+sub.bitLen > MaxBitLen {
		return ErrBitOverflow
	}
	if err := b.StoreRaw(sub.data, sub.bitLen); err != nil {
		return err
	}
	b.refs = append(b.refs, sub.refs...)
	return nil
}

// StoreSlice appends the remaining bits and refs of a slice.
func (b *Builder) StoreSlice(s *Slice) error {
	if len(b.refs)+s.RefsLeft() > MaxRefs {
		return ErrRefOverflow
	}
	bits := s.BitsLeft()
	if b.bitLen+bits > MaxBitLen {
		return ErrBitOverflow
	}
	for i := 0; i < bits; i++ {
		v, err := s.LoadUInt(1)
		if err != nil {
			return err
		}
		b.appendBits(v, 1)
	}
	for s.RefsLeft() > 0 {
		ref, err := s.LoadRef()
		if err != nil {
			return err
		}
		b.refs = append(b.refs, ref)
	}
	return nil
}

// EndCell finalizes the builder into an immutable cell, computing its
// content hash. The builder must not be used afterwards.
func (b *Builder) EndCell() (*Cell, error) {
	return finalize(b.data, b.bitLen, b.refs)
}
