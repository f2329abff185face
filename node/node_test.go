// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/builtin"
	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/genesis"
	"github.com/encountr/enctr/pebbledb"
	"github.com/encountr/enctr/xenv"
)

type fakeClock struct{ now uint64 }

func (c *fakeClock) Now() uint64 { return c.now }

func openDevnet(t *testing.T) (*Node, *fakeClock) {
	db, err := pebbledb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gen := genesis.NewDevnet()
	clock := &fakeClock{now: gen.Config().LaunchTime}
	n, err := Open(db, gen, clock.Now)
	require.NoError(t, err)
	return n, clock
}

func transfer(to enctr.Address, amount int64) func(env *xenv.Environment) error {
	return func(env *xenv.Environment) error {
		return env.Protocol().ENCTR.Transfer(env.Caller(), to, big.NewInt(amount))
	}
}

func TestOpen(t *testing.T) {
	db, err := pebbledb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	gen := genesis.NewDevnet()
	_, err = Open(db, gen, SystemClock)
	require.NoError(t, err)

	// reopening keeps the committed state
	n, err := Open(db, gen, SystemClock)
	require.NoError(t, err)
	err = n.View(func(env *xenv.Environment) error {
		supply, err := env.Protocol().ENCTR.TotalSupply()
		assert.Equal(t, enctr.Units(50_000, 9).String(), supply.String())
		return err
	})
	require.NoError(t, err)

	cfg := genesis.DevConfig()
	cfg.Warmup = 3
	other, err := genesis.New("other", cfg)
	require.NoError(t, err)
	_, err = Open(db, other, SystemClock)
	assert.ErrorContains(t, err, "genesis mismatch")
}

func TestExec(t *testing.T) {
	n, _ := openDevnet(t)
	admin := genesis.DevAccounts()[0].Address
	bob := genesis.DevAccounts()[1].Address

	out, err := n.Exec("transfer", admin, transfer(bob, 10))
	require.NoError(t, err)
	require.NoError(t, out.Reverted)

	out, err = n.Exec("transfer", bob, transfer(admin, 11))
	require.NoError(t, err)
	assert.True(t, errors.Is(out.Reverted, reverts.ErrInsufficientBalance))

	out, err = n.Exec("transfer", bob, transfer(admin, 4))
	require.NoError(t, err)
	require.NoError(t, out.Reverted)

	events := n.Events(0, 10)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(0), events[0].Seq)
	assert.Equal(t, "Transfer", events[1].Name)
	assert.Len(t, n.Events(1, 10), 1)
	assert.Len(t, n.Events(0, 1), 1)

	err = n.View(func(env *xenv.Environment) error {
		bal, err := env.Protocol().ENCTR.BalanceOf(bob)
		assert.Equal(t, "6", bal.String())
		return err
	})
	require.NoError(t, err)
}

func TestEventsBounded(t *testing.T) {
	n, _ := openDevnet(t)
	admin := genesis.DevAccounts()[0].Address
	for range maxEvents + 10 {
		_, err := n.Exec("transfer", admin, transfer(builtin.StakingAddr, 1))
		require.NoError(t, err)
	}
	events := n.Events(0, 2*maxEvents)
	assert.Len(t, events, maxEvents)
	assert.Equal(t, uint64(10), events[0].Seq)
}

func TestTriggerRebase(t *testing.T) {
	n, clock := openDevnet(t)

	number := func() uint64 {
		var num uint64
		require.NoError(t, n.View(func(env *xenv.Environment) error {
			ep, err := env.Protocol().Staking.Epoch()
			if err == nil {
				num = ep.Number
			}
			return err
		}))
		return num
	}

	require.NoError(t, n.TriggerRebase())
	assert.Equal(t, uint64(1), number())

	clock.now += 28800
	require.NoError(t, n.TriggerRebase())
	assert.Equal(t, uint64(2), number())
	require.NoError(t, n.TriggerRebase())
	assert.Equal(t, uint64(2), number())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, n.RunKeeper(ctx, time.Millisecond))
}
