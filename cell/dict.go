// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import (
	"math/bits"

	"github.com/pkg/errors"
)

// ErrBadLabel is returned when an edge label cannot be decoded.
var ErrBadLabel = errors.New("cell: malformed dictionary label")

// Dictionary is a binary prefix tree over fixed-width bit keys, stored as
// cells: each edge carries a compressed label (one of three encodings,
// the shortest is chosen on write), inner nodes fork on the next key bit,
// leaves hold the value inline. An empty dictionary has no root.
//
// Values are looked up by parsing edge cells, so a lookup performed
// through a usage tree records exactly the path to the leaf — sibling
// subtrees stay untouched and can be pruned out of a proof.
type Dictionary struct {
	keySz int
	root  *Cell
}

// NewDict creates an empty dictionary with keySz-bit keys.
func NewDict(keySz int) *Dictionary {
	return &Dictionary{keySz: keySz}
}

// LoadDict loads the maybe-ref form: a presence bit, then the root cell
// as a reference.
func LoadDict(s *Slice, keySz int) (*Dictionary, error) {
	root, err := s.LoadMaybeRef()
	if err != nil {
		return nil, err
	}
	return &Dictionary{keySz: keySz, root: root}, nil
}

// Store stores the maybe-ref form.
func (d *Dictionary) Store(b *Builder) error {
	if d == nil || d.root == nil {
		return b.StoreBool(false)
	}
	if err := b.StoreBool(true); err != nil {
		return err
	}
	return b.StoreRef(d.root)
}

// KeySize returns the key width in bits.
func (d *Dictionary) KeySize() int { return d.keySz }

// IsEmpty reports whether the dictionary holds no entries.
func (d *Dictionary) IsEmpty() bool { return d.root == nil }

// RootCell returns the root cell, nil when empty.
func (d *Dictionary) RootCell() *Cell { return d.root }

// Equal compares two dictionaries by root content hash.
func (d *Dictionary) Equal(other *Dictionary) bool {
	if d.root == nil || other.root == nil {
		return (d.root == nil) == (other.root == nil)
	}
	return d.root.Equal(other.root)
}

func (d *Dictionary) checkKey(key []byte) error {
	if len(key)*8 < d.keySz {
		return errors.Errorf("cell: key too short for %d-bit dictionary", d.keySz)
	}
	return nil
}

// Get returns a slice over the value stored under key, or nil when the
// key is absent.
func (d *Dictionary) Get(key []byte) (*Slice, error) {
	if err := d.checkKey(key); err != nil {
		return nil, err
	}
	if d.root == nil {
		return nil, nil
	}
	c, pos := d.root, 0
	for {
		s := c.BeginParse()
		label, err := readLabel(s, d.keySz-pos)
		if err != nil {
			return nil, err
		}
		for i := 0; i < label.len; i++ {
			if label.at(i) != keyBit(key, pos+i) {
				return nil, nil
			}
		}
		pos += label.len
		if pos == d.keySz {
			return s, nil
		}
		left, err := s.LoadRef()
		if err != nil {
			return nil, errors.WithMessage(err, "broken dictionary fork")
		}
		right, err := s.LoadRef()
		if err != nil {
			return nil, errors.WithMessage(err, "broken dictionary fork")
		}
		if keyBit(key, pos) == 0 {
			c = left
		} else {
			c = right
		}
		pos++
	}
}

// Set stores the value under key, replacing any previous value.
func (d *Dictionary) Set(key []byte, value *Builder) error {
	if err := d.checkKey(key); err != nil {
		return err
	}
	if d.root == nil {
		leaf, err := makeEdge(keyLabel(key, 0, d.keySz), value, nil, nil)
		if err != nil {
			return err
		}
		d.root = leaf
		return nil
	}
	root, err := d.insert(d.root, key, 0, value)
	if err != nil {
		return err
	}
	d.root = root
	return nil
}

func (d *Dictionary) insert(c *Cell, key []byte, pos int, value *Builder) (*Cell, error) {
	s := c.BeginParse()
	label, err := readLabel(s, d.keySz-pos)
	if err != nil {
		return nil, err
	}
	cp := 0
	for cp < label.len && label.at(cp) == keyBit(key, pos+cp) {
		cp++
	}
	if cp == label.len {
		if pos+cp == d.keySz {
			// existing leaf, replace value
			return makeEdge(label, value, nil, nil)
		}
		left, err := s.LoadRef()
		if err != nil {
			return nil, errors.WithMessage(err, "broken dictionary fork")
		}
		right, err := s.LoadRef()
		if err != nil {
			return nil, errors.WithMessage(err, "broken dictionary fork")
		}
		if keyBit(key, pos+cp) == 0 {
			if left, err = d.insert(left, key, pos+cp+1, value); err != nil {
				return nil, err
			}
		} else {
			if right, err = d.insert(right, key, pos+cp+1, value); err != nil {
				return nil, err
			}
		}
		return makeEdge(label, nil, left, right)
	}

	// labels diverge at cp: fork there, the old edge keeps its tail
	oldEdge, err := makeEdgeFromSlice(label.sub(cp+1, label.len), s)
	if err != nil {
		return nil, err
	}
	newEdge, err := makeEdge(keyLabel(key, pos+cp+1, d.keySz), value, nil, nil)
	if err != nil {
		return nil, err
	}
	left, right := oldEdge, newEdge
	if keyBit(key, pos+cp) == 0 {
		left, right = newEdge, oldEdge
	}
	return makeEdge(label.sub(0, cp), nil, left, right)
}

// Delete removes the value under key and reports whether it was present.
func (d *Dictionary) Delete(key []byte) (bool, error) {
	if err := d.checkKey(key); err != nil {
		return false, err
	}
	if d.root == nil {
		return false, nil
	}
	root, found, err := d.remove(d.root, key, 0)
	if err != nil || !found {
		return found, err
	}
	d.root = root
	return true, nil
}

// remove returns the replacement edge, or nil when the subtree became
// empty.
func (d *Dictionary) remove(c *Cell, key []byte, pos int) (*Cell, bool, error) {
	s := c.BeginParse()
	label, err := readLabel(s, d.keySz-pos)
	if err != nil {
		return nil, false, err
	}
	for i := 0; i < label.len; i++ {
		if label.at(i) != keyBit(key, pos+i) {
			return c, false, nil
		}
	}
	pos += label.len
	if pos == d.keySz {
		return nil, true, nil
	}
	left, err := s.LoadRef()
	if err != nil {
		return nil, false, errors.WithMessage(err, "broken dictionary fork")
	}
	right, err := s.LoadRef()
	if err != nil {
		return nil, false, errors.WithMessage(err, "broken dictionary fork")
	}
	branch, sibling, sibBit := left, right, 1
	if keyBit(key, pos) == 1 {
		branch, sibling, sibBit = right, left, 0
	}
	replaced, found, err := d.remove(branch, key, pos+1)
	if err != nil || !found {
		return c, found, err
	}
	if replaced == nil {
		// fork collapses: splice the sibling's label onto this edge
		ss := sibling.BeginParse()
		sibLabel, err := readLabel(ss, d.keySz-pos-1)
		if err != nil {
			return nil, false, err
		}
		merged := label.concatBit(sibBit == 1).concat(sibLabel)
		spliced, err := makeEdgeFromSlice(merged, ss)
		if err != nil {
			return nil, false, err
		}
		return spliced, true, nil
	}
	if keyBit(key, pos) == 0 {
		left = replaced
	} else {
		right = replaced
	}
	rebuilt, err := makeEdge(label, nil, left, right)
	if err != nil {
		return nil, false, err
	}
	return rebuilt, true, nil
}

// ForEach visits entries in ascending key order. The callback may return
// false to stop early.
func (d *Dictionary) ForEach(fn func(key []byte, value *Slice) (bool, error)) error {
	if d.root == nil {
		return nil
	}
	_, err := d.walk(d.root, bitstr{}, fn)
	return err
}

func (d *Dictionary) walk(c *Cell, prefix bitstr, fn func([]byte, *Slice) (bool, error)) (bool, error) {
	s := c.BeginParse()
	label, err := readLabel(s, d.keySz-prefix.len)
	if err != nil {
		return false, err
	}
	prefix = prefix.concat(label)
	if prefix.len == d.keySz {
		return fn(prefix.bytes(), s)
	}
	left, err := s.LoadRef()
	if err != nil {
		return false, errors.WithMessage(err, "broken dictionary fork")
	}
	right, err := s.LoadRef()
	if err != nil {
		return false, errors.WithMessage(err, "broken dictionary fork")
	}
	if cont, err := d.walk(left, prefix.concatBit(false), fn); err != nil || !cont {
		return cont, err
	}
	return d.walk(right, prefix.concatBit(true), fn)
}

// makeEdge builds an edge cell: label, then either the inline value
// (leaf) or the two fork references.
func makeEdge(label bitstr, value *Builder, left, right *Cell) (*Cell, error) {
	b := NewBuilder()
	if err := writeLabel(b, label); err != nil {
		return nil, err
	}
	if value != nil {
		if err := b.StoreBuilder(value); err != nil {
			return nil, err
		}
	} else {
		if err := b.StoreRef(left); err != nil {
			return nil, err
		}
		if err := b.StoreRef(right); err != nil {
			return nil, err
		}
	}
	return b.EndCell()
}

// makeEdgeFromSlice builds an edge cell with the given label and the
// remainder of s as node content.
func makeEdgeFromSlice(label bitstr, s *Slice) (*Cell, error) {
	b := NewBuilder()
	if err := writeLabel(b, label); err != nil {
		return nil, err
	}
	if err := b.StoreSlice(s); err != nil {
		return nil, err
	}
	return b.EndCell()
}

// lenBits returns the bit width needed to encode a length in 0..m.
func lenBits(m int) int {
	return bits.Len(uint(m))
}

// writeLabel stores the label in the shortest of its three encodings:
//
//	short: '0' + unary length + bits
//	long:  '10' + binary length + bits
//	same:  '11' + bit + binary count (all-equal labels only)
//
// The label's max length was fixed by the caller via bitstr.max.
func writeLabel(b *Builder, label bitstr) error {
	n, m := label.len, label.max
	shortSz := 1 + n + 1 + n
	longSz := 2 + lenBits(m) + n
	sameSz := shortSz + 1 // effectively unreachable unless uniform
	uniform := n > 0
	for i := 1; i < n; i++ {
		if label.at(i) != label.at(0) {
			uniform = false
			break
		}
	}
	if uniform {
		sameSz = 2 + 1 + lenBits(m)
	}
	switch {
	case uniform && sameSz < shortSz && sameSz < longSz:
		if err := b.StoreUInt(0b11, 2); err != nil {
			return err
		}
		if err := b.StoreUInt(uint64(label.at(0)), 1); err != nil {
			return err
		}
		return b.StoreUInt(uint64(n), lenBits(m))
	case longSz < shortSz:
		if err := b.StoreUInt(0b10, 2); err != nil {
			return err
		}
		if err := b.StoreUInt(uint64(n), lenBits(m)); err != nil {
			return err
		}
		return label.store(b)
	default:
		if err := b.StoreUInt(0, 1); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := b.StoreUInt(1, 1); err != nil {
				return err
			}
		}
		if err := b.StoreUInt(0, 1); err != nil {
			return err
		}
		return label.store(b)
	}
}

// readLabel decodes an edge label; m is the number of key bits left.
func readLabel(s *Slice, m int) (bitstr, error) {
	kind, err := s.LoadUInt(1)
	if err != nil {
		return bitstr{}, err
	}
	if kind == 0 {
		// unary length
		n := 0
		for {
			bit, err := s.LoadUInt(1)
			if err != nil {
				return bitstr{}, err
			}
			if bit == 0 {
				break
			}
			n++
			if n > m {
				return bitstr{}, ErrBadLabel
			}
		}
		return loadBits(s, n, m)
	}
	kind, err = s.LoadUInt(1)
	if err != nil {
		return bitstr{}, err
	}
	if kind == 0 {
		n, err := s.LoadUInt(lenBits(m))
		if err != nil {
			return bitstr{}, err
		}
		if int(n) > m {
			return bitstr{}, ErrBadLabel
		}
		return loadBits(s, int(n), m)
	}
	v, err := s.LoadUInt(1)
	if err != nil {
		return bitstr{}, err
	}
	n, err := s.LoadUInt(lenBits(m))
	if err != nil {
		return bitstr{}, err
	}
	if int(n) > m {
		return bitstr{}, ErrBadLabel
	}
	label := bitstr{max: m}
	for i := 0; i < int(n); i++ {
		label = label.concatBit(v == 1)
	}
	return label, nil
}

func loadBits(s *Slice, n, m int) (bitstr, error) {
	raw, err := s.LoadRaw(n)
	if err != nil {
		return bitstr{}, err
	}
	return bitstr{data: raw, len: n, max: m}, nil
}
