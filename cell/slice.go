// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import (
	"github.com/pkg/errors"

	"github.com/openton/tonstate/ton"
)

var (
	// ErrBitUnderflow is returned when a load runs past the end of the
	// bit stream.
	ErrBitUnderflow = errors.New("cell: not enough bits in slice")
	// ErrRefUnderflow is returned when a load runs past the last child
	// reference.
	ErrRefUnderflow = errors.New("cell: not enough refs in slice")
)

// Slice is a bit cursor over a cell's data and references. Loads advance
// the cursor; a failed load aborts decoding with no partial value.
type Slice struct {
	data   []byte
	bitLen int
	bitPos int
	refs   []*Cell
	refPos int
	usage  *usageMarker
}

// BitsLeft returns the number of unread bits.
func (s *Slice) BitsLeft() int { return s.bitLen - s.bitPos }

// RefsLeft returns the number of unread child references.
func (s *Slice) RefsLeft() int { return len(s.refs) - s.refPos }

// IsEmpty reports whether neither bits nor refs remain.
func (s *Slice) IsEmpty() bool { return s.BitsLeft() == 0 && s.RefsLeft() == 0 }

// LoadUInt loads sz bits as an unsigned integer, most significant first.
func (s *Slice) LoadUInt(sz int) (uint64, error) {
	if sz < 0 || sz > 64 {
		return 0, errors.Errorf("cell: bad uint size %d", sz)
	}
	if s.BitsLeft() < sz {
		return 0, ErrBitUnderflow
	}
	var v uint64
	for i := 0; i < sz; i++ {
		v <<= 1
		if s.data[s.bitPos/8]&(0x80>>(s.bitPos%8)) != 0 {
			v |= 1
		}
		s.bitPos++
	}
	return v, nil
}

// LoadInt loads sz bits as a two's complement signed integer.
func (s *Slice) LoadInt(sz int) (int64, error) {
	v, err := s.LoadUInt(sz)
	if err != nil {
		return 0, err
	}
	if sz < 64 && v&(1<<uint(sz-1)) != 0 {
		v |= ^uint64(0) << uint(sz)
	}
	return int64(v), nil
}

// LoadBool loads a single bit.
func (s *Slice) LoadBool() (bool, error) {
	v, err := s.LoadUInt(1)
	return v == 1, err
}

// LoadBytes32 loads 256 bits.
func (s *Slice) LoadBytes32() (ton.Bytes32, error) {
	raw, err := s.LoadRaw(256)
	if err != nil {
		return ton.Bytes32{}, err
	}
	return ton.BytesToBytes32(raw), nil
}

// LoadRaw loads bits into a fresh byte slice, left-aligned.
func (s *Slice) LoadRaw(bits int) ([]byte, error) {
	if bits < 0 {
		return nil, errors.Errorf("cell: bad raw length %d", bits)
	}
	if s.BitsLeft() < bits {
		return nil, ErrBitUnderflow
	}
	out := make([]byte, (bits+7)/8)
	if s.bitPos%8 == 0 {
		copy(out, s.data[s.bitPos/8:])
		if bits%8 != 0 {
			out[len(out)-1] &= 0xFF << (8 - bits%8)
		}
		s.bitPos += bits
		return out, nil
	}
	for i := 0; i < bits; i++ {
		if s.data[s.bitPos/8]&(0x80>>(s.bitPos%8)) != 0 {
			out[i/8] |= 0x80 >> (i % 8)
		}
		s.bitPos++
	}
	return out, nil
}

// LoadRef loads the next child reference. Usage tracking, when active,
// propagates to the returned cell.
func (s *Slice) LoadRef() (*Cell, error) {
	if s.RefsLeft() == 0 {
		return nil, ErrRefUnderflow
	}
	ref := s.refs[s.refPos]
	s.refPos++
	if s.usage != nil {
		cpy := *ref
		cpy.usage = s.usage
		ref = &cpy
	}
	return ref, nil
}

// LoadMaybeRef loads a presence bit followed by a reference when set.
func (s *Slice) LoadMaybeRef() (*Cell, error) {
	present, err := s.LoadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return s.LoadRef()
}
