// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import (
	"github.com/pkg/errors"
)

// ErrRootNotVisited is returned when a proof is requested over a usage
// tree whose root was never parsed.
var ErrRootNotVisited = errors.New("cell: proof root was never parsed")

// MerkleProof builds a pruned copy of root: cells recorded by the usage
// tree are retained verbatim, every untouched subtree is replaced by a
// placeholder carrying only its hash and depth. The result's root hash
// equals the input root's hash while revealing none of the pruned
// content.
func MerkleProof(root *Cell, tree *UsageTree) (*Cell, error) {
	if !tree.Visited(root.Hash()) {
		return nil, ErrRootNotVisited
	}
	proof, err := prune(root, tree)
	if err != nil {
		return nil, err
	}
	if proof.Hash() != root.Hash() {
		// cannot happen while placeholders report the pruned hash
		return nil, errors.New("cell: proof root hash mismatch")
	}
	return proof, nil
}

func prune(c *Cell, tree *UsageTree) (*Cell, error) {
	b := NewBuilder()
	if err := b.StoreRaw(c.data, c.bitLen); err != nil {
		return nil, err
	}
	for i := 0; i < c.RefCount(); i++ {
		ref := c.Ref(i)
		var (
			child *Cell
			err   error
		)
		if !ref.IsPruned() && tree.Visited(ref.Hash()) {
			child, err = prune(ref, tree)
			if err != nil {
				return nil, err
			}
		} else {
			child = NewPruned(ref.Hash(), ref.Depth())
		}
		if err := b.StoreRef(child); err != nil {
			return nil, err
		}
	}
	return b.EndCell()
}
