// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"errors"
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/builtin/authority"
	"github.com/encountr/enctr/builtin/gencountr"
	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/sencountr"
	"github.com/encountr/enctr/builtin/token"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/state"
	"github.com/encountr/enctr/test/datagen"
)

type fixture struct {
	state    *state.State
	staking  *Staking
	base     *token.Token
	staked   *sencountr.Ledger
	wrapped  *gencountr.Wrapped
	governor enctr.Address
	vault    enctr.Address
	alice    enctr.Address
	bob      enctr.Address
}

func newFixture(t *testing.T) *fixture {
	st := datagen.NewState(t)
	f := &fixture{
		state:    st,
		governor: datagen.RandAddress(),
		vault:    datagen.RandAddress(),
		alice:    datagen.RandAddress(),
		bob:      datagen.RandAddress(),
	}
	initializer := datagen.RandAddress()

	auth := authority.New(enctr.BytesToAddress([]byte("authority")), st)
	require.NoError(t, auth.Initialize(f.governor, f.governor, f.governor, f.vault))

	f.base = token.New(enctr.BytesToAddress([]byte("ENCTR")), st).WithGate(auth.RequireVault)
	require.NoError(t, f.base.Initialize(token.Meta{Name: "Encountr", Symbol: "ENCTR", Decimals: 9}, enctr.Address{}))

	f.staked = sencountr.New(enctr.BytesToAddress([]byte("sENCTR")), st)
	f.wrapped = gencountr.New(enctr.BytesToAddress([]byte("gENCTR")), st, f.staked)
	f.staking = New(enctr.BytesToAddress([]byte("staking")), st, auth, f.base, f.staked, f.wrapped)
	f.staked.Bind(f.wrapped, f.staking)

	require.NoError(t, f.staked.Deploy(initializer))
	require.NoError(t, f.staked.SetIndex(initializer, big.NewInt(1e9)))
	require.NoError(t, f.staked.Initialize(initializer, f.staking.Address(), f.vault))
	require.NoError(t, f.wrapped.Deploy(initializer))
	require.NoError(t, f.wrapped.Initialize(initializer, f.staking.Address()))
	require.NoError(t, f.staking.Initialize(100, 1, 1000))

	for _, holder := range []enctr.Address{f.alice, f.bob} {
		require.NoError(t, f.base.Mint(f.vault, holder, big.NewInt(10000)))
		require.NoError(t, f.base.Approve(holder, f.staking.Address(), big.NewInt(10000)))
	}
	return f
}

func (f *fixture) baseBalance(t *testing.T, addr enctr.Address) string {
	bal, err := f.base.BalanceOf(addr)
	require.NoError(t, err)
	return bal.String()
}

func (f *fixture) stakedBalance(t *testing.T, addr enctr.Address) string {
	bal, err := f.staked.BalanceOf(addr)
	require.NoError(t, err)
	return bal.String()
}

func (f *fixture) supplyInWarmup(t *testing.T) string {
	supply, err := f.staking.SupplyInWarmup()
	require.NoError(t, err)
	return supply.String()
}

// events returns the events named name emitted by the staking contract.
func (f *fixture) events(name string) []*enctr.Event {
	var found []*enctr.Event
	for _, ev := range f.state.Events() {
		if ev.Address == f.staking.Address() && ev.Name == name {
			found = append(found, ev)
		}
	}
	return found
}

type fakeDistributor struct {
	base   *token.Token
	vault  enctr.Address
	bounty *big.Int
	calls  int
}

func (d *fakeDistributor) Distribute(enctr.Address) error {
	d.calls++
	return nil
}

func (d *fakeDistributor) RetrieveBounty(caller enctr.Address) (*big.Int, error) {
	if err := d.base.Mint(d.vault, caller, d.bounty); err != nil {
		return nil, err
	}
	return new(big.Int).Set(d.bounty), nil
}

func TestStakeThenClaimWithoutWarmup(t *testing.T) {
	f := newFixture(t)

	amount, err := f.staking.Stake(f.alice, f.alice, big.NewInt(1000), true, false, 0)
	require.NoError(t, err)
	assert.Equal(t, "1000", amount.String())
	assert.Equal(t, "1000", f.supplyInWarmup(t))
	assert.Equal(t, "9000", f.baseBalance(t, f.alice))

	claimed, err := f.staking.Claim(f.alice, f.alice, true)
	require.NoError(t, err)
	assert.Equal(t, "1000", claimed.String())
	assert.Equal(t, "1000", f.stakedBalance(t, f.alice))
	assert.Equal(t, "0", f.supplyInWarmup(t))
}

func TestStakeAndClaimImmediately(t *testing.T) {
	f := newFixture(t)

	_, err := f.staking.Stake(f.alice, f.alice, big.NewInt(1000), true, true, 0)
	require.NoError(t, err)
	assert.Equal(t, "1000", f.stakedBalance(t, f.alice))

	staked := f.events("Staked")
	require.Len(t, staked, 1)
	assert.Equal(t, []any{f.alice, f.alice, big.NewInt(1000), uint64(1)}, staked[0].Args)

	// wrapped at index 1e9
	wrapped, err := f.staking.Stake(f.bob, f.bob, big.NewInt(3), false, true, 0)
	require.NoError(t, err)
	assert.Equal(t, "3000000000", wrapped.String())
	gBal, err := f.wrapped.BalanceOf(f.bob)
	require.NoError(t, err)
	assert.Equal(t, "3000000000", gBal.String())
}

func TestClaimNotDue(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.staking.SetWarmupLength(f.governor, 2))

	_, err := f.staking.Stake(f.alice, f.alice, big.NewInt(1000), true, true, 0)
	require.NoError(t, err)

	claimed, err := f.staking.Claim(f.alice, f.alice, true)
	require.NoError(t, err)
	assert.Equal(t, "0", claimed.String())
	assert.Equal(t, "0", f.stakedBalance(t, f.alice))
	assert.Equal(t, "1000", f.supplyInWarmup(t))

	info, err := f.staking.Warmup(f.alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), info.Expiry)
}

func TestLock(t *testing.T) {
	f := newFixture(t)

	locked, err := f.staking.ToggleLock(f.alice)
	require.NoError(t, err)
	assert.True(t, locked)

	_, err = f.staking.Stake(f.bob, f.alice, big.NewInt(10), true, false, 0)
	assert.EqualError(t, err, "External deposits for account are locked")

	_, err = f.staking.Stake(f.alice, f.alice, big.NewInt(10), true, false, 0)
	require.NoError(t, err)

	_, err = f.staking.Claim(f.bob, f.alice, true)
	assert.EqualError(t, err, "External claims for account are locked")

	locked, err = f.staking.ToggleLock(f.alice)
	require.NoError(t, err)
	assert.False(t, locked)

	claimed, err := f.staking.Claim(f.bob, f.alice, true)
	require.NoError(t, err)
	assert.Equal(t, "10", claimed.String())
	assert.Equal(t, "10", f.stakedBalance(t, f.alice))

	// the lock also covers stakes credited right away
	_, err = f.staking.ToggleLock(f.alice)
	require.NoError(t, err)
	_, err = f.staking.Stake(f.bob, f.alice, big.NewInt(10), true, true, 0)
	assert.True(t, errors.Is(err, reverts.ErrUnauthorized))
	assert.Equal(t, "10", f.stakedBalance(t, f.alice))

	_, err = f.staking.Stake(f.alice, f.alice, big.NewInt(5), true, true, 0)
	require.NoError(t, err)
	assert.Equal(t, "15", f.stakedBalance(t, f.alice))
}

// grow stakes 1000 for alice with a warmup of one epoch, then lets a
// profit of 100 ENCTR be distributed over the warmup supply.
func grow(t *testing.T, f *fixture) {
	require.NoError(t, f.staking.SetWarmupLength(f.governor, 1))
	_, err := f.staking.Stake(f.alice, f.alice, big.NewInt(1000), true, false, 0)
	require.NoError(t, err)

	_, err = f.staking.Rebase(1000)
	require.NoError(t, err)
	require.NoError(t, f.base.Mint(f.vault, f.staking.Address(), big.NewInt(100)))
	_, err = f.staking.Rebase(1100)
	require.NoError(t, err)

	e, err := f.staking.Epoch()
	require.NoError(t, err)
	assert.Equal(t, "100", e.Distribute.String())

	_, err = f.staking.Rebase(1200)
	require.NoError(t, err)
	assert.Equal(t, "1100", f.supplyInWarmup(t))
}

func TestClaimIncludesRebaseGrowth(t *testing.T) {
	f := newFixture(t)
	grow(t, f)

	index, err := f.staking.Index()
	require.NoError(t, err)
	assert.Equal(t, "1100000000", index.String())

	claimed, err := f.staking.Claim(f.alice, f.alice, true)
	require.NoError(t, err)
	assert.Equal(t, "1100", claimed.String())

	require.NoError(t, f.staked.Approve(f.alice, f.staking.Address(), big.NewInt(1100)))
	out, err := f.staking.Unstake(f.alice, f.alice, big.NewInt(1100), false, true, 1200)
	require.NoError(t, err)
	assert.Equal(t, "1100", out.String())
	assert.Equal(t, "10100", f.baseBalance(t, f.alice))
}

func TestForfeitReturnsPrincipal(t *testing.T) {
	f := newFixture(t)
	grow(t, f)

	principal, err := f.staking.Forfeit(f.alice)
	require.NoError(t, err)
	assert.Equal(t, "1000", principal.String())
	assert.Equal(t, "10000", f.baseBalance(t, f.alice))
	assert.Equal(t, "0", f.supplyInWarmup(t))

	principal, err = f.staking.Forfeit(f.alice)
	require.NoError(t, err)
	assert.Equal(t, "0", principal.String())
}

func TestRebaseOncePerEpoch(t *testing.T) {
	f := newFixture(t)

	bounty, err := f.staking.Rebase(999)
	require.NoError(t, err)
	assert.Equal(t, "0", bounty.String())

	_, err = f.staking.Rebase(1000)
	require.NoError(t, err)
	_, err = f.staking.Rebase(1000)
	require.NoError(t, err)

	e, err := f.staking.Epoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), e.Number)
	assert.Equal(t, uint64(1100), e.End)

	toNext, err := f.staking.SecondsToNextEpoch(1050)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), toNext)

	count, err := f.staked.RebaseCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestRebaseWithDistributor(t *testing.T) {
	f := newFixture(t)
	fake := &fakeDistributor{base: f.base, vault: f.vault, bounty: big.NewInt(5)}
	distributorAddr := datagen.RandAddress()
	f.staking.WithResolver(func(addr enctr.Address) Distributor {
		if addr == distributorAddr {
			return fake
		}
		return nil
	})

	err := f.staking.SetDistributor(f.alice, distributorAddr)
	assert.True(t, errors.Is(err, reverts.ErrUnauthorized))
	require.NoError(t, f.staking.SetDistributor(f.governor, distributorAddr))

	amount, err := f.staking.Stake(f.alice, f.alice, big.NewInt(100), true, true, 1000)
	require.NoError(t, err)
	assert.Equal(t, "105", amount.String())
	assert.Equal(t, "105", f.stakedBalance(t, f.alice))
	assert.Equal(t, 1, fake.calls)

	_, err = f.staking.Rebase(1000)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestUnstakeNeedsBacking(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.staked.Transfer(f.staking.Address(), f.alice, big.NewInt(500)))
	require.NoError(t, f.staked.Approve(f.alice, f.staking.Address(), big.NewInt(500)))

	_, err := f.staking.Unstake(f.alice, f.alice, big.NewInt(500), false, true, 0)
	assert.EqualError(t, err, "Insufficient ENCTR balance in contract")
	assert.True(t, errors.Is(err, reverts.ErrInsufficientBalance))
}

func TestWrapUnwrapRoundTrip(t *testing.T) {
	f := newFixture(t)
	grow(t, f)
	_, err := f.staking.Claim(f.alice, f.alice, true)
	require.NoError(t, err)

	fz := fuzz.New().NilChance(0)
	for range 50 {
		var n uint16
		fz.Fuzz(&n)
		x := big.NewInt(int64(n%1000) + 1)

		require.NoError(t, f.staked.Approve(f.alice, f.staking.Address(), x))
		wrapped, err := f.staking.Wrap(f.alice, f.alice, x)
		require.NoError(t, err)
		back, err := f.staking.Unwrap(f.alice, f.alice, wrapped)
		require.NoError(t, err)

		loss := new(big.Int).Sub(x, back)
		assert.True(t, loss.Sign() >= 0 && loss.Cmp(big.NewInt(1)) <= 0, "x=%v back=%v", x, back)
	}
}

func TestWrapUnwrapNearSupply(t *testing.T) {
	const top = 4_999_999_999_999_999

	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture)
	}{
		{"initial index", func(*testing.T, *fixture) {}},
		{"after rebase", func(t *testing.T, f *fixture) {
			grow(t, f)
			_, err := f.staking.Claim(f.alice, f.alice, true)
			require.NoError(t, err)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(t, f)
			require.NoError(t, f.staked.Transfer(f.staking.Address(), f.alice, big.NewInt(top)))

			amounts := []*big.Int{big.NewInt(top), big.NewInt(top - 1), big.NewInt(1e15)}
			fz := fuzz.New().NilChance(0)
			for range 20 {
				var n uint64
				fz.Fuzz(&n)
				amounts = append(amounts, new(big.Int).SetUint64(n%top+1))
			}

			for _, x := range amounts {
				require.NoError(t, f.staked.Approve(f.alice, f.staking.Address(), x))
				wrapped, err := f.staking.Wrap(f.alice, f.alice, x)
				require.NoError(t, err)
				back, err := f.staking.Unwrap(f.alice, f.alice, wrapped)
				require.NoError(t, err)

				loss := new(big.Int).Sub(x, back)
				assert.True(t, loss.Sign() >= 0 && loss.Cmp(big.NewInt(1)) <= 0, "x=%v back=%v", x, back)
			}
		})
	}
}
