// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/openton/tonstate/tlb"
	"github.com/openton/tonstate/ton"
)

// Message is the slice of an inbound internal message that account
// materialization looks at. Transport framing lives elsewhere.
type Message struct {
	Dst    ton.Address
	Value  *tlb.CurrencyCollection
	Bounce bool
	Init   *StateInit
}
