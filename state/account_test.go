// Copyright (c) 2025 The OpenTON developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openton/tonstate/cell"
	"github.com/openton/tonstate/tlb"
	"github.com/openton/tonstate/ton"
)

func testStateInit(t *testing.T, seed uint64) *StateInit {
	init := NewStateInit()
	init.Code = buildCell(t, func(b *cell.Builder) error { return b.StoreUInt(seed, 32) })
	init.Data = buildCell(t, func(b *cell.Builder) error { return b.StoreUInt(seed+1, 32) })
	return init
}

// deployedAccount returns an uninit account whose address matches the
// hash of init, ready for activation.
func deployedAccount(t *testing.T, init *StateInit) *Account {
	hash, err := init.Hash()
	require.NoError(t, err)
	acc, err := AccountWithAddressAndBalance(
		ton.NewAddress(ton.BasechainID, hash), tlb.NewCurrencyCollection(1000))
	require.NoError(t, err)
	return acc
}

func roundtrip(t *testing.T, acc *Account) *Account {
	c, err := tlb.ToCell(acc)
	require.NoError(t, err)
	got, err := LoadAccount(c)
	require.NoError(t, err)
	return got
}

func TestNoneAccount(t *testing.T) {
	acc := NewAccount()
	assert.True(t, acc.IsNone())
	assert.Equal(t, StatusNonexist, acc.Status())
	assert.Nil(t, acc.Balance())
	_, err := acc.BalanceChecked()
	assert.ErrorIs(t, err, ErrAccountNone)

	c, err := tlb.ToCell(acc)
	require.NoError(t, err)
	assert.Equal(t, 1, c.BitLen())

	got := roundtrip(t, acc)
	assert.True(t, got.IsNone())
	assert.True(t, acc.Equal(got))
}

func TestUninitAccountRoundtrip(t *testing.T) {
	addr := ton.NewAddress(ton.BasechainID,
		ton.MustParseBytes32("0x4444444444444444444444444444444444444444444444444444444444444444"))
	acc, err := AccountWithAddressAndBalance(addr, tlb.NewCurrencyCollection(500))
	require.NoError(t, err)

	assert.Equal(t, StatusUninit, acc.Status())
	assert.NotZero(t, acc.StorageInfo().Used.Cells)

	got := roundtrip(t, acc)
	assert.Equal(t, StatusUninit, got.Status())
	assert.True(t, addr.Equal(got.Address()))
	assert.Equal(t, uint64(500), got.Balance().Grams().Uint64())
	assert.True(t, acc.Equal(got))
}

func TestActiveAccountRoundtrip(t *testing.T) {
	init := testStateInit(t, 1)
	addr := ton.NewAddress(ton.BasechainID, ton.Bytes32{})
	acc, err := ActiveAccount(addr, tlb.NewCurrencyCollection(7), 10, 20, init, false)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, acc.Status())
	assert.Nil(t, acc.InitCodeHash())
	assert.NotNil(t, acc.Code())
	assert.NotNil(t, acc.Data())

	got := roundtrip(t, acc)
	assert.Equal(t, StatusActive, got.Status())
	require.NotNil(t, got.Code())
	assert.Equal(t, init.Code.Hash(), got.Code().Hash())
	assert.Equal(t, uint64(10), got.LastTransLT())
	assert.Equal(t, uint32(20), got.LastPaid())
	assert.True(t, acc.Equal(got))
}

func TestExtendedLayoutRoundtrip(t *testing.T) {
	init := testStateInit(t, 2)
	addr := ton.NewAddress(ton.BasechainID, ton.Bytes32{})
	acc, err := ActiveAccount(addr, tlb.NewCurrencyCollection(7), 0, 0, init, true)
	require.NoError(t, err)

	require.NotNil(t, acc.InitCodeHash())
	assert.Equal(t, init.Code.Hash(), *acc.InitCodeHash())

	got := roundtrip(t, acc)
	require.NotNil(t, got.InitCodeHash())
	assert.Equal(t, init.Code.Hash(), *got.InitCodeHash())
	assert.True(t, acc.Equal(got))
}

func TestFrozenAccountRoundtrip(t *testing.T) {
	hash := ton.MustParseBytes32("0x5555555555555555555555555555555555555555555555555555555555555555")
	addr := ton.NewAddress(ton.BasechainID, ton.Bytes32{})
	acc, err := FrozenAccount(addr, tlb.NewCurrencyCollection(3), 1, 2, hash)
	require.NoError(t, err)

	assert.Equal(t, StatusFrozen, acc.Status())
	require.NotNil(t, acc.FrozenHash())
	assert.Equal(t, hash, *acc.FrozenHash())

	got := roundtrip(t, acc)
	assert.Equal(t, StatusFrozen, got.Status())
	require.NotNil(t, got.FrozenHash())
	assert.Equal(t, hash, *got.FrozenHash())
}

func TestAccountRejectsUnknownTag(t *testing.T) {
	b := cell.NewBuilder()
	require.NoError(t, b.StoreBool(false))
	require.NoError(t, b.StoreUInt(0b010, 3))
	c, err := b.EndCell()
	require.NoError(t, err)

	_, err = LoadAccount(c)
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestExplicitNoneTag(t *testing.T) {
	b := cell.NewBuilder()
	require.NoError(t, b.StoreBool(false))
	require.NoError(t, b.StoreUInt(0b000, 3))
	c, err := b.EndCell()
	require.NoError(t, err)

	acc, err := LoadAccount(c)
	require.NoError(t, err)
	assert.True(t, acc.IsNone())
}

func TestActivateFromUninit(t *testing.T) {
	init := testStateInit(t, 3)
	acc := deployedAccount(t, init)

	require.NoError(t, acc.Activate(init, true))
	assert.Equal(t, StatusActive, acc.Status())
	require.NotNil(t, acc.InitCodeHash())
	assert.Equal(t, init.Code.Hash(), *acc.InitCodeHash())
}

func TestActivateHashGate(t *testing.T) {
	init := testStateInit(t, 4)
	other := testStateInit(t, 5)
	acc := deployedAccount(t, init)

	err := acc.Activate(other, false)
	assert.ErrorIs(t, err, ErrStateInitMismatch)
	assert.Equal(t, StatusUninit, acc.Status())

	require.NoError(t, acc.Activate(init, false))
	assert.Equal(t, StatusActive, acc.Status())
	assert.Nil(t, acc.InitCodeHash())
}

func TestFreezeAndThaw(t *testing.T) {
	init := testStateInit(t, 6)
	acc := deployedAccount(t, init)
	require.NoError(t, acc.Activate(init, false))

	initHash, err := init.Hash()
	require.NoError(t, err)

	require.NoError(t, acc.Freeze())
	assert.Equal(t, StatusFrozen, acc.Status())
	require.NotNil(t, acc.FrozenHash())
	assert.Equal(t, initHash, *acc.FrozenHash())

	// thaw requires the exact pinned state
	err = acc.Activate(testStateInit(t, 7), false)
	assert.ErrorIs(t, err, ErrStateInitMismatch)
	assert.Equal(t, StatusFrozen, acc.Status())

	require.NoError(t, acc.Activate(init, true))
	assert.Equal(t, StatusActive, acc.Status())
	// thawing never derives an init code hash
	assert.Nil(t, acc.InitCodeHash())
}

func TestActivateNoopFromActive(t *testing.T) {
	init := testStateInit(t, 8)
	acc := deployedAccount(t, init)
	require.NoError(t, acc.Activate(init, true))
	require.NotNil(t, acc.InitCodeHash())

	// repeat activation keeps the state but clears the derived hash
	require.NoError(t, acc.Activate(testStateInit(t, 9), true))
	assert.Equal(t, StatusActive, acc.Status())
	assert.Equal(t, init.Code.Hash(), acc.Code().Hash())
	assert.Nil(t, acc.InitCodeHash())
}

func TestLifecycleOnNone(t *testing.T) {
	acc := NewAccount()
	assert.ErrorIs(t, acc.Activate(testStateInit(t, 10), false), ErrAccountNone)
	_, err := acc.BelongsToShard(ton.FullShard(0))
	assert.ErrorIs(t, err, ErrAccountNone)

	// balance and freeze mutators quietly do nothing on none
	credit := tlb.NewCurrencyCollection(5)
	require.NoError(t, acc.AddFunds(&credit))
	ok, err := acc.SubFunds(&credit)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, acc.Freeze())
	assert.True(t, acc.IsNone())
	assert.Equal(t, StatusNonexist, acc.Status())
}

func TestFreezeNonActiveNoop(t *testing.T) {
	acc, err := AccountWithAddressAndBalance(
		ton.NewAddress(0, ton.Bytes32{}), tlb.NewCurrencyCollection(1))
	require.NoError(t, err)
	require.NoError(t, acc.Freeze())
	assert.Equal(t, StatusUninit, acc.Status())
}

func TestResetToUninit(t *testing.T) {
	init := testStateInit(t, 11)
	acc := deployedAccount(t, init)
	require.NoError(t, acc.Activate(init, false))

	acc.ResetToUninit()
	assert.Equal(t, StatusUninit, acc.Status())
	assert.Nil(t, acc.StateInit())

	// idempotent on non-active states
	acc.ResetToUninit()
	assert.Equal(t, StatusUninit, acc.Status())
}

func TestFunds(t *testing.T) {
	acc, err := AccountWithAddressAndBalance(
		ton.NewAddress(0, ton.Bytes32{}), tlb.NewCurrencyCollection(100))
	require.NoError(t, err)

	credit := tlb.NewCurrencyCollection(60)
	require.NoError(t, acc.AddFunds(&credit))
	assert.Equal(t, uint64(160), acc.Balance().Grams().Uint64())

	big := tlb.NewCurrencyCollection(1000)
	ok, err := acc.SubFunds(&big)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint64(160), acc.Balance().Grams().Uint64())

	ok, err = acc.SubFunds(&credit)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(100), acc.Balance().Grams().Uint64())
}

func TestUpdateStorageStatVariants(t *testing.T) {
	init := testStateInit(t, 12)
	// install the same cell as both code and data: the exact stat
	// dedups it, the fast stat counts it twice
	init.Data = init.Code
	addr := ton.NewAddress(ton.BasechainID, ton.Bytes32{})
	acc, err := ActiveAccount(addr, tlb.NewCurrencyCollection(1), 0, 0, init, false)
	require.NoError(t, err)

	exact := acc.StorageInfo().Used
	require.NoError(t, acc.UpdateStorageStatFast())
	fast := acc.StorageInfo().Used

	assert.Equal(t, exact.Cells+1, fast.Cells)
	assert.Equal(t, exact.Bits+uint64(init.Code.BitLen()), fast.Bits)
}

func TestBelongsToShard(t *testing.T) {
	id := ton.MustParseBytes32("0x9100000000000000000000000000000000000000000000000000000000000000")
	acc, err := AccountWithAddressAndBalance(
		ton.NewAddress(ton.BasechainID, id), tlb.NewCurrencyCollection(1))
	require.NoError(t, err)

	ok, err := acc.BelongsToShard(ton.FullShard(ton.BasechainID))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = acc.BelongsToShard(ton.FullShard(ton.MasterchainID))
	require.NoError(t, err)
	assert.False(t, ok)

	right, err := ton.NewShardIdent(ton.BasechainID, 1, 0x8000000000000000)
	require.NoError(t, err)
	ok, err = acc.BelongsToShard(right)
	require.NoError(t, err)
	assert.True(t, ok)

	left, err := ton.NewShardIdent(ton.BasechainID, 1, 0)
	require.NoError(t, err)
	ok, err = acc.BelongsToShard(left)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAccountFromMessage(t *testing.T) {
	init := testStateInit(t, 13)
	hash, err := init.Hash()
	require.NoError(t, err)
	dst := ton.NewAddress(ton.BasechainID, hash)
	value := tlb.NewCurrencyCollection(250)

	// no value attached
	acc, err := AccountFromMessage(&Message{Dst: dst}, false)
	require.NoError(t, err)
	assert.Nil(t, acc)

	// bounceable without init cannot create anything
	acc, err = AccountFromMessage(&Message{Dst: dst, Value: &value, Bounce: true}, false)
	require.NoError(t, err)
	assert.Nil(t, acc)

	// plain transfer creates an uninit account
	acc, err = AccountFromMessage(&Message{Dst: dst, Value: &value}, false)
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, StatusUninit, acc.Status())
	assert.Equal(t, uint64(250), acc.Balance().Grams().Uint64())

	// init with code deploys directly
	acc, err = AccountFromMessage(&Message{Dst: dst, Value: &value, Init: init}, true)
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, StatusActive, acc.Status())
	require.NotNil(t, acc.InitCodeHash())
	assert.Equal(t, init.Code.Hash(), *acc.InitCodeHash())
}

func TestAccountStatusCodec(t *testing.T) {
	for _, st := range []AccountStatus{StatusUninit, StatusFrozen, StatusActive, StatusNonexist} {
		c, err := tlb.ToCell(st)
		require.NoError(t, err)
		assert.Equal(t, 2, c.BitLen())
		got, err := LoadAccountStatus(c.BeginParse())
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	assert.Equal(t, "frozen", StatusFrozen.String())
}
