// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tlb

import (
	"github.com/pkg/errors"

	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/ton"
)

// ErrUnknownAddrTag is returned for address tags this codec does not
// accept; decoding never guesses.
var ErrUnknownAddrTag = errors.New("tlb: unknown address tag")

// Address wire layout:
//
//	addr_std$10 anycast:(Maybe Anycast) workchain_id:int8 address:bits256
//	anycast_info$_ depth:(#<= 30) rewrite_pfx:(bits depth)
func StoreAddr(b *cell.Builder, addr ton.Address) error {
	if err := b.StoreUInt(0b10, 2); err != nil {
		return err
	}
	anycast := addr.Anycast()
	if err := StoreMaybe(b, anycast != nil, func(b *cell.Builder) error {
		if err := b.StoreUInt(uint64(anycast.Depth), 5); err != nil {
			return err
		}
		return b.StoreUInt(uint64(anycast.RewritePfx), int(anycast.Depth))
	}); err != nil {
		return err
	}
	wc := addr.Workchain()
	if wc < -128 || wc > 127 {
		return errors.Errorf("tlb: workchain %d out of int8 range", wc)
	}
	if err := b.StoreInt(int64(wc), 8); err != nil {
		return err
	}
	return b.StoreBytes32(addr.AccountID())
}

// LoadAddr decodes a standard internal address.
func LoadAddr(s *cell.Slice) (ton.Address, error) {
	tag, err := s.LoadUInt(2)
	if err != nil {
		return ton.Address{}, err
	}
	if tag != 0b10 {
		return ton.Address{}, errors.Wrapf(ErrUnknownAddrTag, "%02b", tag)
	}
	var anycast *ton.Anycast
	if _, err := LoadMaybe(s, func(s *cell.Slice) error {
		depth, err := s.LoadUInt(5)
		if err != nil {
			return err
		}
		if depth > ton.MaxAnycastDepth {
			return errors.New("tlb: anycast depth out of range")
		}
		pfx, err := s.LoadUInt(int(depth))
		if err != nil {
			return err
		}
		anycast = &ton.Anycast{Depth: uint8(depth), RewritePfx: uint32(pfx)}
		return nil
	}); err != nil {
		return ton.Address{}, err
	}
	wc, err := s.LoadInt(8)
	if err != nil {
		return ton.Address{}, err
	}
	id, err := s.LoadBytes32()
	if err != nil {
		return ton.Address{}, err
	}
	if anycast != nil {
		return ton.NewAnycastAddress(int32(wc), id, *anycast)
	}
	return ton.NewAddress(int32(wc), id), nil
}
