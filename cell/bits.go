// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

// bitstr is a small immutable bit string used for dictionary labels and
// key prefixes. max records the key bits remaining at the edge the label
// belongs to, which fixes the width of binary length encodings.
type bitstr struct {
	data []byte
	len  int
	max  int
}

// keyBit returns bit i of a key, MSB first.
func keyBit(key []byte, i int) int {
	if key[i/8]&(0x80>>(i%8)) != 0 {
		return 1
	}
	return 0
}

// keyLabel extracts key bits [from, to) as a label for an edge at
// position from.
func keyLabel(key []byte, from, to int) bitstr {
	s := bitstr{max: to - from}
	for i := from; i < to; i++ {
		s = s.concatBit(keyBit(key, i) == 1)
	}
	return s
}

func (s bitstr) at(i int) int {
	if s.data[i/8]&(0x80>>(i%8)) != 0 {
		return 1
	}
	return 0
}

// sub returns bits [from, to), positioned from bits deeper in the key.
func (s bitstr) sub(from, to int) bitstr {
	out := bitstr{max: s.max - from}
	for i := from; i < to; i++ {
		out = out.concatBit(s.at(i) == 1)
	}
	return out
}

// concatBit returns a copy with one bit appended. max is kept.
func (s bitstr) concatBit(v bool) bitstr {
	out := bitstr{data: make([]byte, (s.len+1+7)/8), len: s.len + 1, max: s.max}
	copy(out.data, s.data)
	if v {
		out.data[s.len/8] |= 0x80 >> (s.len % 8)
	}
	return out
}

// concat returns a copy with other's bits appended. max is kept.
func (s bitstr) concat(other bitstr) bitstr {
	out := bitstr{data: make([]byte, (s.len+other.len+7)/8), len: s.len, max: s.max}
	copy(out.data, s.data)
	for i := 0; i < other.len; i++ {
		if other.at(i) == 1 {
			out.data[out.len/8] |= 0x80 >> (out.len % 8)
		}
		out.len++
	}
	return out
}

// bytes returns the left-aligned byte form.
func (s bitstr) bytes() []byte {
	out := make([]byte, (s.len+7)/8)
	copy(out, s.data)
	return out
}

// store appends the raw bits to a builder.
func (s bitstr) store(b *Builder) error {
	return b.StoreRaw(s.data, s.len)
}
