// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cell implements the content-addressed node primitive of the
// state tree: an immutable node holding up to 1023 data bits and up to 4
// child references. Node identity derives from the representation hash of
// its own bits plus its ordered child hashes, so identical content is
// physically deduplicated and subtree sharing forms a Merkle DAG.
package cell

import (
	"encoding/binary"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/openton/tonstate/ton"
)

const (
	// MaxBitLen is the data capacity of a single cell.
	MaxBitLen = 1023
	// MaxRefs is the child reference capacity of a single cell.
	MaxRefs = 4
	// MaxDepth bounds the DAG height.
	MaxDepth = 65535

	prunedTag    = 0x01
	prunedBitLen = 8 + 256 + 16
)

var (
	// ErrDepthLimit is returned when a cell would exceed the depth bound.
	ErrDepthLimit = errors.New("cell: depth limit exceeded")
)

// interned is the arena of finalized cells, keyed by content hash.
// Identical content always resolves to the shared node.
var interned, _ = lru.NewARC(65536)

// Cell is an immutable content-addressed node. Instances are created via
// Builder (which computes the hash) or NewPruned, never directly, so
// "identity = content hash" holds by construction.
type Cell struct {
	data   []byte
	bitLen int
	refs   []*Cell
	pruned bool

	// set when the cell or any descendant is a placeholder. Such cells
	// hash identically to their fully materialized counterparts, so they
	// must never be interned: the arena would hand back the full
	// content a proof deliberately withholds.
	hasPruned bool

	hash  ton.Bytes32
	depth uint16

	// non-deduplicated subtree totals, maintained at construction.
	// They intentionally count shared nodes once per edge; see
	// TreeBitsCount.
	treeBits  uint64
	treeCells uint64

	usage *usageMarker
}

// finalize computes identity and verifies the structural limits. data is
// owned by the caller and not copied; callers must not retain it.
func finalize(data []byte, bitLen int, refs []*Cell) (*Cell, error) {
	if bitLen > MaxBitLen {
		return nil, errors.Errorf("cell: data overflow, %d bits", bitLen)
	}
	if len(refs) > MaxRefs {
		return nil, errors.Errorf("cell: too many refs, %d", len(refs))
	}
	c := &Cell{
		data:      data,
		bitLen:    bitLen,
		refs:      refs,
		treeBits:  uint64(bitLen),
		treeCells: 1,
	}
	for _, ref := range refs {
		if ref.depth >= MaxDepth {
			return nil, ErrDepthLimit
		}
		if d := ref.depth + 1; d > c.depth {
			c.depth = d
		}
		c.treeBits += ref.treeBits
		c.treeCells += ref.treeCells
		c.hasPruned = c.hasPruned || ref.hasPruned
	}
	c.hash = reprHash(c)
	if !c.hasPruned {
		if cached, ok := interned.Get(c.hash); ok {
			return cached.(*Cell), nil
		}
		interned.Add(c.hash, c)
	}
	return c, nil
}

// NewPruned creates a placeholder standing for a pruned-away subtree,
// carrying only its hash and depth.
func NewPruned(hash ton.Bytes32, depth uint16) *Cell {
	data := make([]byte, 35)
	data[0] = prunedTag
	copy(data[1:33], hash[:])
	binary.BigEndian.PutUint16(data[33:35], depth)
	return &Cell{
		data:      data,
		bitLen:    prunedBitLen,
		pruned:    true,
		hasPruned: true,
		hash:      hash,
		depth:     depth,
		treeBits:  prunedBitLen,
		treeCells: 1,
	}
}

// Hash returns the content hash. For a pruned placeholder it is the hash
// of the subtree the placeholder stands for.
func (c *Cell) Hash() ton.Bytes32 { return c.hash }

// Depth returns the height of the subtree under the cell.
func (c *Cell) Depth() uint16 { return c.depth }

// BitLen returns the cell's own data bit length, not including children.
func (c *Cell) BitLen() int { return c.bitLen }

// RefCount returns the number of child references.
func (c *Cell) RefCount() int { return len(c.refs) }

// Ref returns the i-th child reference. It panics on a bad index, like
// slice indexing.
func (c *Cell) Ref(i int) *Cell { return c.refs[i] }

// IsPruned reports whether the cell is a pruned-branch placeholder.
func (c *Cell) IsPruned() bool { return c.pruned }

// TreeBitsCount returns the total bit count of the subtree without
// hash deduplication: shared nodes are counted once per reference edge.
// For exact footprints use the dedup walk in the state package.
func (c *Cell) TreeBitsCount() uint64 { return c.treeBits }

// TreeCellsCount returns the total cell count of the subtree without
// hash deduplication.
func (c *Cell) TreeCellsCount() uint64 { return c.treeCells }

// Equal reports content equality, which is hash equality.
func (c *Cell) Equal(other *Cell) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.hash == other.hash
}

// BeginParse opens a bit cursor over the cell. If the cell was obtained
// through a usage tree, parsing records the visit.
func (c *Cell) BeginParse() *Slice {
	if c.usage != nil {
		c.usage.mark(c.hash)
	}
	return &Slice{
		data:   c.data,
		bitLen: c.bitLen,
		refs:   c.refs,
		usage:  c.usage,
	}
}
