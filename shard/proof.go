// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shard

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/state"
	"github.com/openton/tonstate/ton"
)

// ErrAccountNotFound is returned when the requested account has no
// record in the shard, either because the address falls outside the
// shard's prefix or because the index has no leaf for it.
var ErrAccountNotFound = errors.New("shard: account not found")

// PrepareAccountProof extracts a Merkle proof of the account addressed
// by addr from a shard state root. The proof keeps the state header and
// the index path down to the account leaf, every sibling subtree is
// replaced by its hash. The proof root hashes identically to stateRoot.
func PrepareAccountProof(stateRoot *cell.Cell, addr ton.Address) (*cell.Cell, error) {
	tree := cell.NewUsageTree(stateRoot)

	var st State
	if err := st.LoadFrom(tree.Root().BeginParse()); err != nil {
		return nil, errors.Wrap(err, "parse state root")
	}
	if addr.Workchain() != st.Ident.Workchain() || !st.Ident.ContainsAccount(addr.AccountID()) {
		return nil, errors.Wrapf(ErrAccountNotFound, "address %v outside shard %v", addr, st.Ident)
	}
	sa, err := st.Accounts().Get(addr.AccountID())
	if err != nil {
		return nil, err
	}
	if sa == nil {
		return nil, errors.Wrapf(ErrAccountNotFound, "address %v", addr)
	}
	acc, err := sa.ReadAccount()
	if err != nil {
		return nil, err
	}
	if acc.IsNone() {
		return nil, errors.Wrapf(state.ErrAccountNone, "address %v", addr)
	}

	proof, err := cell.MerkleProof(stateRoot, tree)
	if err != nil {
		return nil, err
	}
	metricProofPreparedCount().Add(1)
	log.Debug("prepared account proof",
		"address", addr, "shard", st.Ident, "cells", proof.TreeCellsCount())
	return proof, nil
}

// PrepareProof extracts a Merkle proof for an already decoded account.
// The none account carries no address to look up.
func PrepareProof(stateRoot *cell.Cell, acc *state.Account) (*cell.Cell, error) {
	if acc.IsNone() {
		return nil, errors.Wrap(state.ErrAccountNone, "prepare proof")
	}
	return PrepareAccountProof(stateRoot, acc.Address())
}
