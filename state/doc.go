// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state models the persistent representation of a single ledger
// account: its lifecycle state machine, the versioned bit-exact wire
// codec, the deduplicating storage-footprint engine used for rent
// accounting, and the lazy content-addressed account reference stored in
// the shard-wide index.
package state
