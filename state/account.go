// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/tlb"
	"github.com/openton/tonstate/ton"
)

const (
	accountNoneTag     = 0b000
	accountExtendedTag = 0b001
)

// AccountState is the sealed state position of an existing account.
//
//	account_uninit$00 = AccountState;
//	account_active$1 _:StateInit = AccountState;
//	account_frozen$01 state_hash:uint256 = AccountState;
type AccountState interface {
	Status() AccountStatus
	storeTo(b *cell.Builder) error
}

// UninitState is an account that holds funds but no code yet.
type UninitState struct{}

// Status implements AccountState.
func (UninitState) Status() AccountStatus { return StatusUninit }

func (UninitState) storeTo(b *cell.Builder) error {
	return b.StoreUInt(0b00, 2)
}

// ActiveState carries the installed code and data.
type ActiveState struct {
	Init *StateInit
}

// Status implements AccountState.
func (ActiveState) Status() AccountStatus { return StatusActive }

func (st ActiveState) storeTo(b *cell.Builder) error {
	if err := b.StoreBool(true); err != nil {
		return err
	}
	return st.Init.StoreTo(b)
}

// FrozenState pins the hash of the state the account held before it was
// frozen. Thawing requires presenting a StateInit with this exact hash.
type FrozenState struct {
	InitHash ton.Bytes32
}

// Status implements AccountState.
func (FrozenState) Status() AccountStatus { return StatusFrozen }

func (st FrozenState) storeTo(b *cell.Builder) error {
	if err := b.StoreUInt(0b01, 2); err != nil {
		return err
	}
	return b.StoreBytes32(st.InitHash)
}

func loadAccountState(s *cell.Slice) (AccountState, error) {
	active, err := s.LoadBool()
	if err != nil {
		return nil, err
	}
	if active {
		init := NewStateInit()
		if err := init.LoadFrom(s); err != nil {
			return nil, err
		}
		return ActiveState{Init: init}, nil
	}
	frozen, err := s.LoadBool()
	if err != nil {
		return nil, err
	}
	if !frozen {
		return UninitState{}, nil
	}
	hash, err := s.LoadBytes32()
	if err != nil {
		return nil, err
	}
	return FrozenState{InitHash: hash}, nil
}

// AccountStorage is the mutable payload of an existing account.
type AccountStorage struct {
	LastTransLT  uint64
	Balance      tlb.CurrencyCollection
	State        AccountState
	InitCodeHash *ton.Bytes32
}

// StoreTo implements tlb.Serializable. InitCodeHash is not part of this
// record, it is carried by the extended account layout.
func (as *AccountStorage) StoreTo(b *cell.Builder) error {
	if err := b.StoreUInt(as.LastTransLT, 64); err != nil {
		return err
	}
	if err := as.Balance.StoreTo(b); err != nil {
		return err
	}
	return as.State.storeTo(b)
}

// LoadFrom implements tlb.Deserializable.
func (as *AccountStorage) LoadFrom(s *cell.Slice) error {
	lt, err := s.LoadUInt(64)
	if err != nil {
		return err
	}
	var balance tlb.CurrencyCollection
	if err := balance.LoadFrom(s); err != nil {
		return err
	}
	st, err := loadAccountState(s)
	if err != nil {
		return err
	}
	as.LastTransLT, as.Balance, as.State = lt, balance, st
	return nil
}

// AccountStuff groups everything an existing account holds.
type AccountStuff struct {
	Addr        ton.Address
	StorageStat StorageInfo
	Storage     AccountStorage
}

// Account is a full account record. The zero stuff pointer is the
// distinguished "none" account, which serializes to a single 0 bit.
type Account struct {
	stuff *AccountStuff
}

// NewAccount returns the none account.
func NewAccount() *Account {
	return &Account{}
}

func accountWithStuff(stuff *AccountStuff) *Account {
	return &Account{stuff: stuff}
}

// AccountWithAddress returns an uninitialized account at addr with a
// zero balance.
func AccountWithAddress(addr ton.Address) *Account {
	return accountWithStuff(&AccountStuff{
		Addr: addr,
		Storage: AccountStorage{
			Balance: tlb.NewCurrencyCollection(0),
			State:   UninitState{},
		},
	})
}

// AccountWithAddressAndBalance returns an uninitialized account holding
// the given balance, with its storage footprint measured.
func AccountWithAddressAndBalance(addr ton.Address, balance tlb.CurrencyCollection) (*Account, error) {
	acc := accountWithStuff(&AccountStuff{
		Addr: addr,
		Storage: AccountStorage{
			Balance: balance,
			State:   UninitState{},
		},
	})
	if err := acc.UpdateStorageStat(); err != nil {
		return nil, err
	}
	return acc, nil
}

// UninitAccount returns an uninitialized account with the given balance
// and measured footprint.
func UninitAccount(addr ton.Address, balance tlb.CurrencyCollection) (*Account, error) {
	return AccountWithAddressAndBalance(addr, balance)
}

// ActiveAccount returns an active account with init installed. When
// deriveInitCodeHash is set and init carries code, the hash of that code
// is pinned in the extended layout field.
func ActiveAccount(
	addr ton.Address,
	balance tlb.CurrencyCollection,
	lastTransLT uint64,
	lastPaid uint32,
	init *StateInit,
	deriveInitCodeHash bool,
) (*Account, error) {
	var initCodeHash *ton.Bytes32
	if deriveInitCodeHash && init.Code != nil {
		h := init.Code.Hash()
		initCodeHash = &h
	}
	acc := accountWithStuff(&AccountStuff{
		Addr:        addr,
		StorageStat: StorageInfo{LastPaid: lastPaid},
		Storage: AccountStorage{
			LastTransLT:  lastTransLT,
			Balance:      balance,
			State:        ActiveState{Init: init},
			InitCodeHash: initCodeHash,
		},
	})
	if err := acc.UpdateStorageStat(); err != nil {
		return nil, err
	}
	return acc, nil
}

// FrozenAccount returns a frozen account pinning stateHash.
func FrozenAccount(
	addr ton.Address,
	balance tlb.CurrencyCollection,
	lastTransLT uint64,
	lastPaid uint32,
	stateHash ton.Bytes32,
) (*Account, error) {
	acc := accountWithStuff(&AccountStuff{
		Addr:        addr,
		StorageStat: StorageInfo{LastPaid: lastPaid},
		Storage: AccountStorage{
			LastTransLT: lastTransLT,
			Balance:     balance,
			State:       FrozenState{InitHash: stateHash},
		},
	})
	if err := acc.UpdateStorageStat(); err != nil {
		return nil, err
	}
	return acc, nil
}

// AccountFromMessage materializes the account an inbound message would
// create. It returns nil without error when the message cannot create
// one: no attached value, or a bounceable message without init.
// A carried StateInit must include code to take effect.
func AccountFromMessage(msg *Message, deriveInitCodeHash bool) (*Account, error) {
	if msg.Value == nil || msg.Value.Grams().IsZero() {
		return nil, nil
	}
	storage := AccountStorage{Balance: *msg.Value}
	if msg.Init != nil && msg.Init.Code != nil {
		if deriveInitCodeHash {
			h := msg.Init.Code.Hash()
			storage.InitCodeHash = &h
		}
		storage.State = ActiveState{Init: msg.Init}
	} else if msg.Bounce {
		return nil, nil
	} else {
		storage.State = UninitState{}
	}
	acc := accountWithStuff(&AccountStuff{Addr: msg.Dst, Storage: storage})
	if err := acc.UpdateStorageStat(); err != nil {
		return nil, err
	}
	return acc, nil
}

// IsNone reports whether the account is the none account.
func (a *Account) IsNone() bool { return a.stuff == nil }

// Status returns the lifecycle position, StatusNonexist for none.
func (a *Account) Status() AccountStatus {
	if a.stuff == nil {
		return StatusNonexist
	}
	return a.stuff.Storage.State.Status()
}

// Address returns the account address, the zero address for none.
func (a *Account) Address() ton.Address {
	if a.stuff == nil {
		return ton.Address{}
	}
	return a.stuff.Addr
}

// AccountID returns the 256-bit account id part of the address.
func (a *Account) AccountID() ton.Bytes32 {
	return a.Address().AccountID()
}

// Balance returns the balance, nil for none.
func (a *Account) Balance() *tlb.CurrencyCollection {
	if a.stuff == nil {
		return nil
	}
	return &a.stuff.Storage.Balance
}

// BalanceChecked returns the balance or ErrAccountNone.
func (a *Account) BalanceChecked() (*tlb.CurrencyCollection, error) {
	if a.stuff == nil {
		return nil, ErrAccountNone
	}
	return &a.stuff.Storage.Balance, nil
}

// StorageInfo returns the rent bookkeeping record, nil for none.
func (a *Account) StorageInfo() *StorageInfo {
	if a.stuff == nil {
		return nil
	}
	return &a.stuff.StorageStat
}

// LastPaid returns the unixtime of the last storage-fee collection.
func (a *Account) LastPaid() uint32 {
	if a.stuff == nil {
		return 0
	}
	return a.stuff.StorageStat.LastPaid
}

// SetLastPaid records the unixtime of the last storage-fee collection.
// No effect on none.
func (a *Account) SetLastPaid(t uint32) {
	if a.stuff != nil {
		a.stuff.StorageStat.LastPaid = t
	}
}

// DuePayment returns the outstanding storage debt, nil when absent.
func (a *Account) DuePayment() *tlb.Grams {
	if a.stuff == nil {
		return nil
	}
	return a.stuff.StorageStat.DuePayment
}

// SetDuePayment sets or clears the outstanding storage debt. No effect
// on none.
func (a *Account) SetDuePayment(g *tlb.Grams) {
	if a.stuff != nil {
		a.stuff.StorageStat.DuePayment = g
	}
}

// LastTransLT returns the logical time of the last applied transaction.
func (a *Account) LastTransLT() uint64 {
	if a.stuff == nil {
		return 0
	}
	return a.stuff.Storage.LastTransLT
}

// SetLastTransLT advances the logical time. No effect on none.
func (a *Account) SetLastTransLT(lt uint64) {
	if a.stuff != nil {
		a.stuff.Storage.LastTransLT = lt
	}
}

// StateInit returns the installed state, nil unless active.
func (a *Account) StateInit() *StateInit {
	if a.stuff == nil {
		return nil
	}
	if st, ok := a.stuff.Storage.State.(ActiveState); ok {
		return st.Init
	}
	return nil
}

// Code returns the installed code cell, nil unless active with code.
func (a *Account) Code() *cell.Cell {
	if init := a.StateInit(); init != nil {
		return init.Code
	}
	return nil
}

// CodeHash returns the hash of the installed code, nil when absent.
func (a *Account) CodeHash() *ton.Bytes32 {
	if code := a.Code(); code != nil {
		h := code.Hash()
		return &h
	}
	return nil
}

// SetCode replaces the installed code, reporting whether the account was
// active.
func (a *Account) SetCode(code *cell.Cell) bool {
	if init := a.StateInit(); init != nil {
		init.Code = code
		return true
	}
	return false
}

// Data returns the installed data cell, nil unless active with data.
func (a *Account) Data() *cell.Cell {
	if init := a.StateInit(); init != nil {
		return init.Data
	}
	return nil
}

// SetData replaces the installed data, reporting whether the account was
// active.
func (a *Account) SetData(data *cell.Cell) bool {
	if init := a.StateInit(); init != nil {
		init.Data = data
		return true
	}
	return false
}

// FrozenHash returns the pinned state hash, nil unless frozen.
func (a *Account) FrozenHash() *ton.Bytes32 {
	if a.stuff == nil {
		return nil
	}
	if st, ok := a.stuff.Storage.State.(FrozenState); ok {
		h := st.InitHash
		return &h
	}
	return nil
}

// InitCodeHash returns the pinned hash of the originally deployed code,
// nil when the account was stored in the legacy layout or never
// activated with derivation on.
func (a *Account) InitCodeHash() *ton.Bytes32 {
	if a.stuff == nil {
		return nil
	}
	return a.stuff.Storage.InitCodeHash
}

// SplitDepth returns the split depth of the installed state, nil when
// absent.
func (a *Account) SplitDepth() *uint8 {
	if init := a.StateInit(); init != nil {
		return init.SplitDepth
	}
	return nil
}

// TickTock returns the special-account marker, nil when absent.
func (a *Account) TickTock() *TickTock {
	if init := a.StateInit(); init != nil {
		return init.Special
	}
	return nil
}

// Libraries returns the library map of the installed state, nil unless
// active.
func (a *Account) Libraries() *cell.Dictionary {
	if init := a.StateInit(); init != nil {
		return init.Library
	}
	return nil
}

// SetLibrary attaches a library cell. No effect unless active.
func (a *Account) SetLibrary(lib *SimpleLib) error {
	init := a.StateInit()
	if init == nil {
		return nil
	}
	return init.SetLibrary(lib)
}

// DeleteLibrary removes the library with the given root hash.
func (a *Account) DeleteLibrary(hash ton.Bytes32) (bool, error) {
	init := a.StateInit()
	if init == nil {
		return false, nil
	}
	return init.DeleteLibrary(hash)
}

// Activate installs init. From Uninit the init hash must equal the
// account id of the address; from Frozen it must equal the pinned hash.
// A mismatch is ErrStateInitMismatch and leaves the account untouched.
// From Active the call is a no-op that still rewrites the init code
// hash field. Activating none is an error.
func (a *Account) Activate(init *StateInit, deriveInitCodeHash bool) error {
	if a.stuff == nil {
		return ErrAccountNone
	}
	var initCodeHash *ton.Bytes32
	switch st := a.stuff.Storage.State.(type) {
	case UninitState:
		hash, err := init.Hash()
		if err != nil {
			return err
		}
		if hash != a.stuff.Addr.AccountID() {
			return errors.Wrap(ErrStateInitMismatch, "activate from uninit")
		}
		if deriveInitCodeHash && init.Code != nil {
			h := init.Code.Hash()
			initCodeHash = &h
		}
		a.stuff.Storage.State = ActiveState{Init: init}
	case FrozenState:
		hash, err := init.Hash()
		if err != nil {
			return err
		}
		if hash != st.InitHash {
			return errors.Wrap(ErrStateInitMismatch, "activate from frozen")
		}
		a.stuff.Storage.State = ActiveState{Init: init}
	default:
	}
	a.stuff.Storage.InitCodeHash = initCodeHash
	return nil
}

// Freeze pins the hash of the installed state and drops the state
// itself. No effect unless active.
func (a *Account) Freeze() error {
	if a.stuff == nil {
		return nil
	}
	st, ok := a.stuff.Storage.State.(ActiveState)
	if !ok {
		return nil
	}
	hash, err := st.Init.Hash()
	if err != nil {
		return err
	}
	a.stuff.Storage.State = FrozenState{InitHash: hash}
	return nil
}

// ResetToUninit discards the installed state. No effect unless active.
func (a *Account) ResetToUninit() {
	if a.stuff == nil {
		return
	}
	if _, ok := a.stuff.Storage.State.(ActiveState); ok {
		a.stuff.Storage.State = UninitState{}
	}
}

// AddFunds credits the balance, saturating per currency. Crediting none
// does nothing.
func (a *Account) AddFunds(funds *tlb.CurrencyCollection) error {
	if a.stuff == nil {
		return nil
	}
	return a.stuff.Storage.Balance.Add(funds)
}

// SubFunds debits the balance as a whole. When any component is
// insufficient nothing is debited and false is returned. Debiting none
// reports an insufficient balance without error.
func (a *Account) SubFunds(funds *tlb.CurrencyCollection) (bool, error) {
	if a.stuff == nil {
		return false, nil
	}
	return a.stuff.Storage.Balance.Sub(funds)
}

// UpdateStorageStat remeasures the deduplicated footprint of the
// account payload and stores it. No effect on none.
func (a *Account) UpdateStorageStat() error {
	if a.stuff == nil {
		return nil
	}
	used, err := StorageUsedFor(&a.stuff.Storage)
	if err != nil {
		return err
	}
	a.stuff.StorageStat.Used = StorageUsed{Cells: used.Cells, Bits: used.Bits}
	return nil
}

// UpdateStorageStatFast takes the footprint from the precomputed tree
// totals of the serialized payload. Unlike UpdateStorageStat it does not
// deduplicate shared subtrees, so it can only overcount.
func (a *Account) UpdateStorageStatFast() error {
	if a.stuff == nil {
		return nil
	}
	c, err := tlb.ToCell(&a.stuff.Storage)
	if err != nil {
		return err
	}
	bits, cells := c.TreeBitsCount(), c.TreeCellsCount()
	if bits > maxFootprint || cells > maxFootprint {
		return ErrFootprintOverflow
	}
	a.stuff.StorageStat.Used = StorageUsed{Cells: cells, Bits: bits}
	return nil
}

// BelongsToShard reports whether the account id falls into the shard.
// The workchains must match and the account must exist.
func (a *Account) BelongsToShard(shard ton.ShardIdent) (bool, error) {
	if a.stuff == nil {
		return false, ErrAccountNone
	}
	addr := a.stuff.Addr
	return addr.Workchain() == shard.Workchain() &&
		shard.ContainsAccount(addr.AccountID()), nil
}

// StoreTo implements tlb.Serializable. Accounts without an init code
// hash keep the legacy single-bit layout so their hashes match records
// written before the extended layout existed.
func (a *Account) StoreTo(b *cell.Builder) error {
	if a.stuff == nil {
		return b.StoreBool(false)
	}
	if a.stuff.Storage.InitCodeHash == nil {
		if err := b.StoreBool(true); err != nil {
			return err
		}
		return a.storeStuff(b)
	}
	if err := b.StoreBool(false); err != nil {
		return err
	}
	if err := b.StoreUInt(accountExtendedTag, 3); err != nil {
		return err
	}
	if err := a.storeStuff(b); err != nil {
		return err
	}
	return tlb.StoreMaybeBytes32(b, a.stuff.Storage.InitCodeHash)
}

func (a *Account) storeStuff(b *cell.Builder) error {
	if err := tlb.StoreAddr(b, a.stuff.Addr); err != nil {
		return err
	}
	if err := a.stuff.StorageStat.StoreTo(b); err != nil {
		return err
	}
	return a.stuff.Storage.StoreTo(b)
}

// LoadFrom implements tlb.Deserializable.
func (a *Account) LoadFrom(s *cell.Slice) error {
	exists, err := s.LoadBool()
	if err != nil {
		return err
	}
	if exists {
		stuff, err := loadStuff(s)
		if err != nil {
			return err
		}
		a.stuff = stuff
		metricAccountDecodedCount().AddWithLabel(1, map[string]string{"format": "legacy"})
		return nil
	}
	if s.BitsLeft() == 0 {
		a.stuff = nil
		metricAccountDecodedCount().AddWithLabel(1, map[string]string{"format": "none"})
		return nil
	}
	tag, err := s.LoadUInt(3)
	if err != nil {
		return err
	}
	switch tag {
	case accountNoneTag:
		a.stuff = nil
		metricAccountDecodedCount().AddWithLabel(1, map[string]string{"format": "none"})
		return nil
	case accountExtendedTag:
		stuff, err := loadStuff(s)
		if err != nil {
			return err
		}
		initCodeHash, err := tlb.LoadMaybeBytes32(s)
		if err != nil {
			return err
		}
		stuff.Storage.InitCodeHash = initCodeHash
		a.stuff = stuff
		metricAccountDecodedCount().AddWithLabel(1, map[string]string{"format": "extended"})
		return nil
	default:
		return errors.Wrapf(ErrUnknownTag, "account %03b", tag)
	}
}

func loadStuff(s *cell.Slice) (*AccountStuff, error) {
	addr, err := tlb.LoadAddr(s)
	if err != nil {
		return nil, err
	}
	var stat StorageInfo
	if err := stat.LoadFrom(s); err != nil {
		return nil, err
	}
	var storage AccountStorage
	if err := storage.LoadFrom(s); err != nil {
		return nil, err
	}
	return &AccountStuff{Addr: addr, StorageStat: stat, Storage: storage}, nil
}

// LoadAccount decodes an account from its root cell.
func LoadAccount(c *cell.Cell) (*Account, error) {
	var a Account
	if err := a.LoadFrom(c.BeginParse()); err != nil {
		return nil, err
	}
	return &a, nil
}

// Equal compares accounts by serialized content.
func (a *Account) Equal(other *Account) bool {
	if a.stuff == nil || other.stuff == nil {
		return a.stuff == nil && other.stuff == nil
	}
	ha, err := tlb.HashOf(a)
	if err != nil {
		return false
	}
	hb, err := tlb.HashOf(other)
	if err != nil {
		return false
	}
	return ha == hb
}
