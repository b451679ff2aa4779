// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ton

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
)

const (
	// MasterchainID is the workchain id of the masterchain.
	MasterchainID int32 = -1
	// BasechainID is the workchain id of the base workchain.
	BasechainID int32 = 0

	// MaxShardPfxBits caps the shard split depth.
	MaxShardPfxBits = 60

	fullShardPrefix uint64 = 0x8000_0000_0000_0000
)

// ShardIdent identifies a shard: a workchain plus a binary prefix of the
// account-id space. The prefix is kept in tagged form, the lowest set bit
// terminating it.
type ShardIdent struct {
	workchain int32
	prefix    uint64 // tagged
}

// FullShard returns the ident covering the whole workchain.
func FullShard(workchain int32) ShardIdent {
	return ShardIdent{workchain: workchain, prefix: fullShardPrefix}
}

// NewShardIdent creates a shard ident from a prefix length and the prefix
// bits left-aligned in a uint64.
func NewShardIdent(workchain int32, pfxBits uint8, prefix uint64) (ShardIdent, error) {
	if pfxBits > MaxShardPfxBits {
		return ShardIdent{}, errors.New("shard prefix too long")
	}
	tag := fullShardPrefix >> pfxBits
	mask := ^(tag<<1 - 1)
	return ShardIdent{workchain: workchain, prefix: prefix&mask | tag}, nil
}

// Workchain returns the workchain identifier.
func (s ShardIdent) Workchain() int32 { return s.workchain }

// Prefix returns the tagged shard prefix.
func (s ShardIdent) Prefix() uint64 { return s.prefix }

// PfxBits returns the number of significant prefix bits.
func (s ShardIdent) PfxBits() uint8 {
	return uint8(63 - bits.TrailingZeros64(s.prefix))
}

// IsMasterchain reports whether the shard belongs to the masterchain.
func (s ShardIdent) IsMasterchain() bool {
	return s.workchain == MasterchainID
}

// IsFull reports whether the shard covers the whole workchain.
func (s ShardIdent) IsFull() bool {
	return s.prefix == fullShardPrefix
}

// ContainsAccount reports whether the account id falls under the shard's
// prefix. The workchain is checked separately by the caller.
func (s ShardIdent) ContainsAccount(accountID Bytes32) bool {
	if s.IsFull() {
		return true
	}
	tag := s.prefix & -s.prefix
	mask := ^(tag<<1 - 1)
	hi := binary.BigEndian.Uint64(accountID[:8])
	return (hi^s.prefix)&mask == 0
}

// String implements stringer.
func (s ShardIdent) String() string {
	return fmt.Sprintf("%d:%016x", s.workchain, s.prefix)
}
