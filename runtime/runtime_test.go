// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/builtin/reverts"
	"github.com/encountr/enctr/builtin/token"
	"github.com/encountr/enctr/runtime"
	"github.com/encountr/enctr/test/datagen"
	"github.com/encountr/enctr/xenv"
)

func newRuntime(t *testing.T) (*runtime.Runtime, *xenv.CallContext) {
	rt := runtime.New(datagen.NewState(t))
	governor := datagen.RandAddress()

	out, err := rt.Exec("setup", &xenv.CallContext{Caller: governor}, func(env *xenv.Environment) error {
		p := env.Protocol()
		if err := p.Authority.Initialize(governor, governor, governor, governor); err != nil {
			return err
		}
		return p.ENCTR.Initialize(token.Meta{Name: "Encountr", Symbol: "ENCTR", Decimals: 9}, governor)
	})
	require.NoError(t, err)
	require.NoError(t, out.Reverted)
	return rt, &xenv.CallContext{Caller: governor, Clock: 1}
}

func TestExec(t *testing.T) {
	rt, ctx := newRuntime(t)
	alice := datagen.RandAddress()

	mint := func(amount int64) runtime.Call {
		return func(env *xenv.Environment) error {
			return env.Protocol().ENCTR.Mint(env.Caller(), alice, big.NewInt(amount))
		}
	}

	out, err := rt.Exec("mint", ctx, mint(100))
	require.NoError(t, err)
	assert.NoError(t, out.Reverted)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "Transfer", out.Events[0].Name)

	// the first mint is rolled back along with its event
	out, err = rt.Exec("mint twice", ctx, func(env *xenv.Environment) error {
		if err := mint(50)(env); err != nil {
			return err
		}
		return env.Protocol().ENCTR.Mint(env.Caller(), alice, big.NewInt(-1))
	})
	require.NoError(t, err)
	assert.True(t, errors.Is(out.Reverted, reverts.ErrInvalidArgument))
	assert.Empty(t, out.Events)

	bal, err := rt.Protocol().ENCTR.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, "100", bal.String())

	_, err = rt.Exec("broken", ctx, func(*xenv.Environment) error {
		return errors.New("disk on fire")
	})
	assert.EqualError(t, err, "broken: disk on fire")

	_, err = rt.Exec("panicking", ctx, func(env *xenv.Environment) error {
		if err := mint(7)(env); err != nil {
			return err
		}
		panic("out of range")
	})
	assert.EqualError(t, err, "panicking: panic: out of range")
	bal, err = rt.Protocol().ENCTR.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, "100", bal.String())

	events, err := rt.Commit()
	require.NoError(t, err)
	assert.NotEmpty(t, events)
	assert.Empty(t, rt.State().Events())
}

func TestView(t *testing.T) {
	rt, ctx := newRuntime(t)
	alice := datagen.RandAddress()

	var seen string
	err := rt.View(ctx, func(env *xenv.Environment) error {
		p := env.Protocol()
		if err := p.ENCTR.Mint(env.Caller(), alice, big.NewInt(7)); err != nil {
			return err
		}
		bal, err := p.ENCTR.BalanceOf(alice)
		seen = bal.String()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "7", seen)

	bal, err := rt.Protocol().ENCTR.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, "0", bal.String())
}
