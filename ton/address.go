// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ton

import (
	"errors"
	"fmt"
)

// MaxAnycastDepth is the upper bound of an anycast rewrite prefix length.
const MaxAnycastDepth = 30

// Anycast is the optional rewrite prefix of an address.
type Anycast struct {
	Depth      uint8  // number of significant bits, 1..30
	RewritePfx uint32 // prefix bits, right-aligned
}

// Valid reports whether the rewrite depth is in range.
func (a Anycast) Valid() bool {
	return a.Depth >= 1 && a.Depth <= MaxAnycastDepth && a.RewritePfx < 1<<a.Depth
}

// Address identifies a ledger account: workchain + fixed-width account id,
// with an optional anycast rewrite prefix. Immutable once an account exists.
type Address struct {
	workchain int32
	accountID Bytes32
	anycast   *Anycast
}

// NewAddress creates a standard address.
func NewAddress(workchain int32, accountID Bytes32) Address {
	return Address{workchain: workchain, accountID: accountID}
}

// NewAnycastAddress creates an address carrying an anycast rewrite prefix.
func NewAnycastAddress(workchain int32, accountID Bytes32, anycast Anycast) (Address, error) {
	if !anycast.Valid() {
		return Address{}, errors.New("invalid anycast rewrite prefix")
	}
	return Address{workchain: workchain, accountID: accountID, anycast: &anycast}, nil
}

// Workchain returns the workchain identifier.
func (a Address) Workchain() int32 { return a.workchain }

// AccountID returns the 256-bit account id.
func (a Address) AccountID() Bytes32 { return a.accountID }

// Anycast returns the rewrite prefix, or nil for a standard address.
func (a Address) Anycast() *Anycast {
	if a.anycast == nil {
		return nil
	}
	cpy := *a.anycast
	return &cpy
}

// IsZero returns if the address is the zero value.
func (a Address) IsZero() bool {
	return a.workchain == 0 && a.accountID.IsZero() && a.anycast == nil
}

// Equal compares two addresses field by field.
func (a Address) Equal(b Address) bool {
	if a.workchain != b.workchain || a.accountID != b.accountID {
		return false
	}
	if (a.anycast == nil) != (b.anycast == nil) {
		return false
	}
	return a.anycast == nil || *a.anycast == *b.anycast
}

// String implements stringer, in raw workchain:hex form.
func (a Address) String() string {
	return fmt.Sprintf("%d:%x", a.workchain, a.accountID[:])
}
