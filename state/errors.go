// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/pkg/errors"

var (
	// ErrUnknownTag is returned when a decoder meets a discriminator it
	// does not know. Unknown future formats are rejected, never guessed.
	ErrUnknownTag = errors.New("state: unknown tag")

	// ErrFootprintOverflow is returned when a footprint counter would
	// exceed its wire representation. Counters fail, they never wrap.
	ErrFootprintOverflow = errors.New("state: footprint counter overflow")

	// ErrStateInitMismatch is returned when activation is attempted with
	// a state init whose hash does not match the required commitment.
	ErrStateInitMismatch = errors.New("state: state init does not match commitment")

	// ErrAccountNone is returned when an operation needs an existing
	// account but got the absence marker.
	ErrAccountNone = errors.New("state: account is none")
)
