// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/openton/tonstate/cell"
)

// AccountStatus is the fixed 2-bit enumeration of the four lifecycle
// positions, used for external reporting. It is a standalone encoding,
// distinct from the variable-length AccountState prefix code embedded in
// account storage.
//
//	acc_state_uninit$00 acc_state_frozen$01
//	acc_state_active$10 acc_state_nonexist$11
type AccountStatus uint8

const (
	StatusUninit AccountStatus = iota
	StatusFrozen
	StatusActive
	StatusNonexist
)

// String implements stringer.
func (st AccountStatus) String() string {
	switch st {
	case StatusUninit:
		return "uninit"
	case StatusFrozen:
		return "frozen"
	case StatusActive:
		return "active"
	case StatusNonexist:
		return "nonexist"
	default:
		return "invalid"
	}
}

// StoreTo implements tlb.Serializable.
func (st AccountStatus) StoreTo(b *cell.Builder) error {
	if st > StatusNonexist {
		return errors.Errorf("state: invalid account status %d", st)
	}
	return b.StoreUInt(uint64(st), 2)
}

// LoadAccountStatus reads the 2-bit status code.
func LoadAccountStatus(s *cell.Slice) (AccountStatus, error) {
	v, err := s.LoadUInt(2)
	if err != nil {
		return 0, err
	}
	return AccountStatus(v), nil
}
