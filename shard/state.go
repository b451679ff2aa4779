// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shard

import (
	"github.com/pkg/errors"

	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/tlb"
	"github.com/openton/tonstate/ton"
)

// shard_state#9023afe2
const stateTag = 0x9023afe2

// ErrBadStateTag is returned when a cell presented as a shard state does
// not start with the shard-state constructor tag.
var ErrBadStateTag = errors.New("shard: bad state tag")

var emptyCell = func() *cell.Cell {
	c, err := cell.NewBuilder().EndCell()
	if err != nil {
		panic(err)
	}
	return c
}()

// State is the unsplit shard state. The out-message queue, block extras
// and masterchain custom data are carried as opaque cell references,
// only the account index is interpreted here.
type State struct {
	GlobalID      int32
	Ident         ton.ShardIdent
	SeqNo         uint32
	VertSeqNo     uint32
	GenUnixTime   uint32
	GenLT         uint64
	MinRefMcSeqNo uint32
	OutMsgQueue   *cell.Cell
	BeforeSplit   bool
	Extras        *cell.Cell
	Custom        *cell.Cell

	accounts *Accounts
}

// NewState returns an empty state for the given shard.
func NewState(globalID int32, ident ton.ShardIdent) *State {
	return &State{
		GlobalID:    globalID,
		Ident:       ident,
		OutMsgQueue: emptyCell,
		Extras:      emptyCell,
		accounts:    NewAccounts(),
	}
}

// Accounts returns the account index.
func (st *State) Accounts() *Accounts { return st.accounts }

// SetAccounts replaces the account index.
func (st *State) SetAccounts(a *Accounts) { st.accounts = a }

// shard_ident$00 shard_pfx_bits:(#<= 60) workchain_id:int32
// shard_prefix:uint64
func storeShardIdent(b *cell.Builder, id ton.ShardIdent) error {
	if err := b.StoreUInt(0b00, 2); err != nil {
		return err
	}
	if err := b.StoreUInt(uint64(id.PfxBits()), 6); err != nil {
		return err
	}
	if err := b.StoreInt(int64(id.Workchain()), 32); err != nil {
		return err
	}
	// stored without the terminating tag bit
	tag := id.Prefix() & -id.Prefix()
	return b.StoreUInt(id.Prefix()^tag, 64)
}

func loadShardIdent(s *cell.Slice) (ton.ShardIdent, error) {
	tag, err := s.LoadUInt(2)
	if err != nil {
		return ton.ShardIdent{}, err
	}
	if tag != 0b00 {
		return ton.ShardIdent{}, errors.Errorf("shard: bad shard ident tag %02b", tag)
	}
	pfxBits, err := s.LoadUInt(6)
	if err != nil {
		return ton.ShardIdent{}, err
	}
	workchain, err := s.LoadInt(32)
	if err != nil {
		return ton.ShardIdent{}, err
	}
	prefix, err := s.LoadUInt(64)
	if err != nil {
		return ton.ShardIdent{}, err
	}
	return ton.NewShardIdent(int32(workchain), uint8(pfxBits), prefix)
}

// StoreTo implements tlb.Serializable.
func (st *State) StoreTo(b *cell.Builder) error {
	if err := b.StoreUInt(stateTag, 32); err != nil {
		return err
	}
	if err := b.StoreInt(int64(st.GlobalID), 32); err != nil {
		return err
	}
	if err := storeShardIdent(b, st.Ident); err != nil {
		return err
	}
	if err := b.StoreUInt(uint64(st.SeqNo), 32); err != nil {
		return err
	}
	if err := b.StoreUInt(uint64(st.VertSeqNo), 32); err != nil {
		return err
	}
	if err := b.StoreUInt(uint64(st.GenUnixTime), 32); err != nil {
		return err
	}
	if err := b.StoreUInt(st.GenLT, 64); err != nil {
		return err
	}
	if err := b.StoreUInt(uint64(st.MinRefMcSeqNo), 32); err != nil {
		return err
	}
	if err := b.StoreRef(st.OutMsgQueue); err != nil {
		return err
	}
	if err := b.StoreBool(st.BeforeSplit); err != nil {
		return err
	}
	accountsCell, err := st.accounts.ToCell()
	if err != nil {
		return err
	}
	if err := b.StoreRef(accountsCell); err != nil {
		return err
	}
	if err := b.StoreRef(st.Extras); err != nil {
		return err
	}
	return tlb.StoreMaybe(b, st.Custom != nil, func(b *cell.Builder) error {
		return b.StoreRef(st.Custom)
	})
}

// LoadFrom implements tlb.Deserializable.
func (st *State) LoadFrom(s *cell.Slice) error {
	tag, err := s.LoadUInt(32)
	if err != nil {
		return err
	}
	if tag != stateTag {
		return errors.Wrapf(ErrBadStateTag, "%#08x", tag)
	}
	globalID, err := s.LoadInt(32)
	if err != nil {
		return err
	}
	ident, err := loadShardIdent(s)
	if err != nil {
		return err
	}
	seqNo, err := s.LoadUInt(32)
	if err != nil {
		return err
	}
	vertSeqNo, err := s.LoadUInt(32)
	if err != nil {
		return err
	}
	genUnixTime, err := s.LoadUInt(32)
	if err != nil {
		return err
	}
	genLT, err := s.LoadUInt(64)
	if err != nil {
		return err
	}
	minRefMcSeqNo, err := s.LoadUInt(32)
	if err != nil {
		return err
	}
	outMsgQueue, err := s.LoadRef()
	if err != nil {
		return err
	}
	beforeSplit, err := s.LoadBool()
	if err != nil {
		return err
	}
	accountsCell, err := s.LoadRef()
	if err != nil {
		return err
	}
	accounts, err := LoadAccounts(accountsCell.BeginParse())
	if err != nil {
		return err
	}
	extras, err := s.LoadRef()
	if err != nil {
		return err
	}
	custom, err := s.LoadMaybeRef()
	if err != nil {
		return err
	}
	st.GlobalID, st.Ident = int32(globalID), ident
	st.SeqNo, st.VertSeqNo = uint32(seqNo), uint32(vertSeqNo)
	st.GenUnixTime, st.GenLT = uint32(genUnixTime), genLT
	st.MinRefMcSeqNo = uint32(minRefMcSeqNo)
	st.OutMsgQueue, st.BeforeSplit = outMsgQueue, beforeSplit
	st.accounts, st.Extras, st.Custom = accounts, extras, custom
	return nil
}

// ToCell serializes the state into a fresh root cell.
func (st *State) ToCell() (*cell.Cell, error) {
	return tlb.ToCell(st)
}
