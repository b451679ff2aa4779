// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageTreeMarksParsedCells(t *testing.T) {
	left := mustCell(t, func(b *Builder) { _ = b.StoreUInt(1, 8) })
	right := mustCell(t, func(b *Builder) { _ = b.StoreUInt(2, 8) })
	root := mustCell(t, func(b *Builder) {
		_ = b.StoreUInt(0, 4)
		_ = b.StoreRef(left)
		_ = b.StoreRef(right)
	})

	tree := NewUsageTree(root)
	assert.Equal(t, 0, tree.VisitedCount())

	s := tree.Root().BeginParse()
	assert.True(t, tree.Visited(root.Hash()))
	assert.False(t, tree.Visited(left.Hash()))

	_, err := s.LoadUInt(4)
	require.NoError(t, err)
	l, err := s.LoadRef()
	require.NoError(t, err)
	l.BeginParse()
	assert.True(t, tree.Visited(left.Hash()))
	assert.False(t, tree.Visited(right.Hash()))
}

func TestUsageDoesNotLeakAcrossTrees(t *testing.T) {
	c := mustCell(t, func(b *Builder) { _ = b.StoreUInt(5, 8) })
	a := NewUsageTree(c)
	b := NewUsageTree(c)
	a.Root().BeginParse()
	assert.Equal(t, 1, a.VisitedCount())
	assert.Equal(t, 0, b.VisitedCount())
}

func TestMerkleProofPrunesUnvisited(t *testing.T) {
	secret := mustCell(t, func(b *Builder) { _ = b.StoreUInt(0x5ec7e7, 32) })
	wanted := mustCell(t, func(b *Builder) { _ = b.StoreUInt(0x1234, 32) })
	root := mustCell(t, func(b *Builder) {
		_ = b.StoreUInt(9, 8)
		_ = b.StoreRef(wanted)
		_ = b.StoreRef(secret)
	})

	tree := NewUsageTree(root)
	s := tree.Root().BeginParse()
	_, err := s.LoadUInt(8)
	require.NoError(t, err)
	w, err := s.LoadRef()
	require.NoError(t, err)
	w.BeginParse()

	proof, err := MerkleProof(root, tree)
	require.NoError(t, err)
	assert.Equal(t, root.Hash(), proof.Hash())

	require.Equal(t, 2, proof.RefCount())
	assert.False(t, proof.Ref(0).IsPruned())
	assert.True(t, proof.Ref(1).IsPruned())
	assert.Equal(t, secret.Hash(), proof.Ref(1).Hash())
	// the placeholder carries no content beyond the hash
	assert.NotEqual(t, secret.BitLen(), proof.Ref(1).BitLen())
}

func TestMerkleProofRootNotVisited(t *testing.T) {
	root := mustCell(t, func(b *Builder) { _ = b.StoreUInt(1, 8) })
	tree := NewUsageTree(root)
	_, err := MerkleProof(root, tree)
	assert.ErrorIs(t, err, ErrRootNotVisited)
}

func TestMerkleProofDeepPath(t *testing.T) {
	var leaves []*Cell
	for i := uint64(0); i < 4; i++ {
		leaves = append(leaves, mustCell(t, func(b *Builder) { _ = b.StoreUInt(i, 16) }))
	}
	mid0 := mustCell(t, func(b *Builder) {
		_ = b.StoreRef(leaves[0])
		_ = b.StoreRef(leaves[1])
	})
	mid1 := mustCell(t, func(b *Builder) {
		_ = b.StoreRef(leaves[2])
		_ = b.StoreRef(leaves[3])
	})
	root := mustCell(t, func(b *Builder) {
		_ = b.StoreRef(mid0)
		_ = b.StoreRef(mid1)
	})

	// walk to leaves[2] only
	tree := NewUsageTree(root)
	s := tree.Root().BeginParse()
	_, err := s.LoadRef()
	require.NoError(t, err)
	m1, err := s.LoadRef()
	require.NoError(t, err)
	ms := m1.BeginParse()
	l2, err := ms.LoadRef()
	require.NoError(t, err)
	l2.BeginParse()

	proof, err := MerkleProof(root, tree)
	require.NoError(t, err)
	assert.Equal(t, root.Hash(), proof.Hash())

	assert.True(t, proof.Ref(0).IsPruned())
	kept := proof.Ref(1)
	assert.False(t, kept.IsPruned())
	assert.False(t, kept.Ref(0).IsPruned())
	assert.True(t, kept.Ref(1).IsPruned())
	assert.Equal(t, leaves[3].Hash(), kept.Ref(1).Hash())
}
