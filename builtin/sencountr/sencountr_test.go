// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sencountr

import (
	"errors"
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/test/datagen"
)

type fixture struct {
	ledger   *Ledger
	staking  enctr.Address
	treasury enctr.Address
}

func newFixture(t *testing.T) *fixture {
	initializer := datagen.RandAddress()
	f := &fixture{
		ledger:   New(enctr.BytesToAddress([]byte("sENCTR")), datagen.NewState(t)),
		staking:  datagen.RandAddress(),
		treasury: datagen.RandAddress(),
	}
	require.NoError(t, f.ledger.Deploy(initializer))
	require.NoError(t, f.ledger.SetIndex(initializer, big.NewInt(1e9)))
	require.NoError(t, f.ledger.Initialize(initializer, f.staking, f.treasury))

	err := f.ledger.Initialize(initializer, f.staking, f.treasury)
	require.True(t, errors.Is(err, reverts.ErrAlreadyInitialized))
	return f
}

func (f *fixture) balance(t *testing.T, addr enctr.Address) string {
	bal, err := f.ledger.BalanceOf(addr)
	require.NoError(t, err)
	return bal.String()
}

type fakeWrapped struct{ supply *big.Int }

func (w fakeWrapped) TotalSupply() (*big.Int, error) { return new(big.Int).Set(w.supply), nil }
func (w fakeWrapped) BalanceFrom(amount *big.Int) (*big.Int, error) {
	return new(big.Int).Mul(amount, big.NewInt(2)), nil
}

type fakeWarmup struct{ supply *big.Int }

func (w fakeWarmup) SupplyInWarmup() (*big.Int, error) { return new(big.Int).Set(w.supply), nil }

func TestConstants(t *testing.T) {
	assert.True(t, new(uint256.Int).Mod(TotalGons, InitialFragmentsSupply).IsZero())
	assert.Equal(t, 128, MaxSupply.BitLen())
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)

	supply, err := f.ledger.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, InitialFragmentsSupply.Dec(), supply.String())
	assert.Equal(t, supply.String(), f.balance(t, f.staking))

	index, err := f.ledger.Index()
	require.NoError(t, err)
	assert.Equal(t, "1000000000", index.String())

	circulating, err := f.ledger.CirculatingSupply()
	require.NoError(t, err)
	assert.Equal(t, "0", circulating.String())
}

func TestSetIndexOnce(t *testing.T) {
	initializer := datagen.RandAddress()
	ledger := New(enctr.BytesToAddress([]byte("sENCTR")), datagen.NewState(t))
	require.NoError(t, ledger.Deploy(initializer))

	err := ledger.SetIndex(datagen.RandAddress(), big.NewInt(1))
	assert.True(t, errors.Is(err, reverts.ErrUnauthorized))

	require.NoError(t, ledger.SetIndex(initializer, big.NewInt(7)))
	err = ledger.SetIndex(initializer, big.NewInt(8))
	assert.EqualError(t, err, "Cannot set INDEX again")
	assert.True(t, errors.Is(err, reverts.ErrAlreadyInitialized))
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	alice := datagen.RandAddress()
	bob := datagen.RandAddress()

	require.NoError(t, f.ledger.Transfer(f.staking, alice, big.NewInt(1000)))
	assert.Equal(t, "1000", f.balance(t, alice))

	err := f.ledger.Transfer(alice, bob, big.NewInt(1001))
	assert.True(t, errors.Is(err, reverts.ErrInsufficientBalance))

	err = f.ledger.Transfer(alice, enctr.Address{}, big.NewInt(1))
	assert.True(t, errors.Is(err, reverts.ErrInvalidAddress))

	require.NoError(t, f.ledger.Approve(alice, bob, big.NewInt(300)))
	require.NoError(t, f.ledger.TransferFrom(bob, alice, bob, big.NewInt(200)))
	assert.Equal(t, "800", f.balance(t, alice))
	assert.Equal(t, "200", f.balance(t, bob))

	require.NoError(t, f.ledger.DecreaseAllowance(alice, bob, big.NewInt(500)))
	allowance, err := f.ledger.Allowance(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, "0", allowance.String())

	circulating, err := f.ledger.CirculatingSupply()
	require.NoError(t, err)
	assert.Equal(t, "1000", circulating.String())
}

func TestRebase(t *testing.T) {
	f := newFixture(t)
	alice := datagen.RandAddress()
	require.NoError(t, f.ledger.Transfer(f.staking, alice, big.NewInt(1000)))

	_, err := f.ledger.Rebase(alice, big.NewInt(10), 1)
	assert.True(t, errors.Is(err, reverts.ErrUnauthorized))

	supply, err := f.ledger.Rebase(f.staking, big.NewInt(10), 1)
	require.NoError(t, err)
	// 10 * 5e15 / 1000 added to the supply
	assert.Equal(t, "5050000000000000", supply.String())
	assert.Equal(t, "1010", f.balance(t, alice))

	index, err := f.ledger.Index()
	require.NoError(t, err)
	assert.Equal(t, "1010000000", index.String())

	_, err = f.ledger.Rebase(f.staking, big.NewInt(10), 1)
	assert.True(t, errors.Is(err, reverts.ErrAlreadyActive))
	_, err = f.ledger.Rebase(f.staking, big.NewInt(10), 0)
	assert.True(t, errors.Is(err, reverts.ErrAlreadyActive))

	// zero profit records the epoch only
	supply, err = f.ledger.Rebase(f.staking, new(big.Int), 2)
	require.NoError(t, err)
	assert.Equal(t, "5050000000000000", supply.String())

	count, err := f.ledger.RebaseCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	rebase, err := f.ledger.Rebases(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rebase.Epoch)
	assert.Equal(t, "10000000000000000", rebase.Rebase.String())
	assert.Equal(t, "1000", rebase.TotalStakedBefore.String())
	assert.Equal(t, "1010", rebase.TotalStakedAfter.String())

	_, err = f.ledger.Rebases(1)
	assert.True(t, errors.Is(err, reverts.ErrOutOfBounds))
}

func TestRebaseWithoutCirculating(t *testing.T) {
	f := newFixture(t)
	supply, err := f.ledger.Rebase(f.staking, big.NewInt(10), 1)
	require.NoError(t, err)
	assert.Equal(t, "5000000000000010", supply.String())
}

func TestCirculatingCountsWrappedAndWarmup(t *testing.T) {
	f := newFixture(t)
	f.ledger.Bind(fakeWrapped{big.NewInt(50)}, fakeWarmup{big.NewInt(7)})

	require.NoError(t, f.ledger.Transfer(f.staking, datagen.RandAddress(), big.NewInt(1000)))
	circulating, err := f.ledger.CirculatingSupply()
	require.NoError(t, err)
	assert.Equal(t, "1107", circulating.String())
}

func TestDebt(t *testing.T) {
	f := newFixture(t)
	alice := datagen.RandAddress()
	require.NoError(t, f.ledger.Transfer(f.staking, alice, big.NewInt(1000)))

	err := f.ledger.ChangeDebt(alice, big.NewInt(1), alice, true)
	assert.True(t, errors.Is(err, reverts.ErrUnauthorized))

	require.NoError(t, f.ledger.ChangeDebt(f.treasury, big.NewInt(900), alice, true))
	err = f.ledger.ChangeDebt(f.treasury, big.NewInt(101), alice, true)
	assert.EqualError(t, err, "sENCTR: insufficient balance")

	err = f.ledger.Transfer(alice, datagen.RandAddress(), big.NewInt(101))
	assert.EqualError(t, err, "Debt: cannot transfer amount")

	require.NoError(t, f.ledger.ChangeDebt(f.treasury, big.NewInt(900), alice, false))
	debt, err := f.ledger.DebtBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, "0", debt.String())
}

func TestGonsRoundTrip(t *testing.T) {
	f := newFixture(t)
	fz := fuzz.New().NilChance(0)
	for range 200 {
		var n uint64
		fz.Fuzz(&n)
		n %= InitialFragmentsSupply.Uint64()
		amount := new(big.Int).SetUint64(n)
		gons, err := f.ledger.GonsForBalance(amount)
		require.NoError(t, err)
		back, err := f.ledger.BalanceForGons(gons)
		require.NoError(t, err)
		assert.Equal(t, amount.String(), back.String())
	}
}
