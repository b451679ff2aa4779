// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import (
	"github.com/openton/tonstate/ton"
)

// usageMarker records visits. It is shared by every cell handed out
// through a single UsageTree.
type usageMarker struct {
	visited map[ton.Bytes32]struct{}
}

func (m *usageMarker) mark(h ton.Bytes32) {
	m.visited[h] = struct{}{}
}

// UsageTree wraps a root cell in a traversal-interception layer: every
// cell parsed through the wrapped root is recorded, so the visited set
// afterwards describes exactly the nodes a decoder touched. Used to prune
// untouched subtrees into a succinct proof.
type UsageTree struct {
	root   *Cell
	marker *usageMarker
}

// NewUsageTree creates a usage tree over the given root.
func NewUsageTree(root *Cell) *UsageTree {
	return &UsageTree{
		root:   root,
		marker: &usageMarker{visited: make(map[ton.Bytes32]struct{})},
	}
}

// Root returns the tracked view of the root cell. Parsing it, or any cell
// reached from it, records the visit.
func (t *UsageTree) Root() *Cell {
	cpy := *t.root
	cpy.usage = t.marker
	return &cpy
}

// Visited reports whether a cell with the given hash was parsed through
// the tree.
func (t *UsageTree) Visited(h ton.Bytes32) bool {
	_, ok := t.marker.visited[h]
	return ok
}

// VisitedCount returns the number of distinct cells parsed.
func (t *UsageTree) VisitedCount() int {
	return len(t.marker.visited)
}
