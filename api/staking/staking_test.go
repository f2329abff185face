// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking_test

import (
	"encoding/json"
	"math/big"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/api/staking"
	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/builtin"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/node"
	"github.com/encountr/enctr/test/testnode"
	"github.com/encountr/enctr/xenv"
)

type result struct {
	Events []json.RawMessage `json:"events"`
	Result *utils.Amount     `json:"result"`
}

func approve(t *testing.T, n *node.Node, owner enctr.Address, amount *big.Int) {
	out, err := n.Exec("approve", owner, func(env *xenv.Environment) error {
		return env.Protocol().ENCTR.Approve(env.Caller(), builtin.StakingAddr, amount)
	})
	require.NoError(t, err)
	require.NoError(t, out.Reverted)
}

func TestStaking(t *testing.T) {
	n, clock := testnode.New(t)
	router := mux.NewRouter()
	staking.New(n).Mount(router, "/staking")

	admin := testnode.Admin().Address
	stake := enctr.Units(1000, 9)
	launch := n.Genesis().Config().LaunchTime

	var status staking.Status
	testnode.Decode(t, router, http.MethodGet, "/staking", nil, &status)
	assert.Equal(t, enctr.Units(1, 9).String(), utils.BigOf(status.Index).String())
	assert.Equal(t, uint64(1), status.Epoch.Number)
	assert.Equal(t, launch+28800, status.Epoch.End)
	assert.Equal(t, uint64(28800), status.SecondsToNextEpoch)
	assert.Equal(t, builtin.DistributorAddr, status.Distributor)

	req := staking.StakeRequest{
		Caller:    admin,
		Recipient: admin,
		Amount:    utils.NewAmount(stake),
		Rebasing:  true,
		Claim:     true,
	}

	t.Run("without allowance", func(t *testing.T) {
		code, body := testnode.Call(t, router, http.MethodPost, "/staking/stake", req)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, string(body), "ERC20: insufficient allowance")
	})

	approve(t, n, admin, stake)
	var res result
	testnode.Decode(t, router, http.MethodPost, "/staking/stake", req, &res)
	assert.Equal(t, stake.String(), utils.BigOf(res.Result).String())
	assert.NotEmpty(t, res.Events)

	var warmup staking.Warmup
	testnode.Decode(t, router, http.MethodGet, "/staking/warmup/"+admin.String(), nil, &warmup)
	assert.Zero(t, utils.BigOf(warmup.Deposit).Sign())
	assert.False(t, warmup.Lock)

	var locked struct {
		Result struct {
			Lock bool `json:"lock"`
		} `json:"result"`
	}
	testnode.Decode(t, router, http.MethodPost, "/staking/lock", staking.CallerRequest{Caller: admin}, &locked)
	assert.True(t, locked.Result.Lock)

	// not due yet, nothing happens
	testnode.Decode(t, router, http.MethodPost, "/staking/rebase", staking.CallerRequest{Caller: admin}, &res)
	assert.Zero(t, utils.BigOf(res.Result).Sign())
	assert.Empty(t, res.Events)

	clock.Advance(28800)
	testnode.Decode(t, router, http.MethodPost, "/staking/rebase", staking.CallerRequest{Caller: admin}, &res)
	assert.Equal(t, "100000000", utils.BigOf(res.Result).String())

	testnode.Decode(t, router, http.MethodGet, "/staking", nil, &status)
	assert.Equal(t, uint64(2), status.Epoch.Number)
	assert.Equal(t, enctr.Units(4, 9).String(), utils.BigOf(status.Epoch.Distribute).String())

	// wrap half of the stake into gENCTR and back
	half := enctr.Units(500, 9)
	transfer := staking.TransferRequest{Caller: admin, Recipient: admin, Amount: utils.NewAmount(half)}
	out, err := n.Exec("approve", admin, func(env *xenv.Environment) error {
		return env.Protocol().SENCTR.Approve(env.Caller(), builtin.StakingAddr, half)
	})
	require.NoError(t, err)
	require.NoError(t, out.Reverted)
	testnode.Decode(t, router, http.MethodPost, "/staking/wrap", transfer, &res)
	wrapped := utils.BigOf(res.Result)
	assert.Positive(t, wrapped.Sign())

	transfer.Amount = utils.NewAmount(wrapped)
	testnode.Decode(t, router, http.MethodPost, "/staking/unwrap", transfer, &res)
	assert.Equal(t, half.String(), utils.BigOf(res.Result).String())
}

func TestBadRequests(t *testing.T) {
	n, _ := testnode.New(t)
	router := mux.NewRouter()
	staking.New(n).Mount(router, "/staking")

	code, _ := testnode.Call(t, router, http.MethodGet, "/staking/warmup/0xbad", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = testnode.Call(t, router, http.MethodPost, "/staking/stake", map[string]any{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = testnode.Call(t, router, http.MethodGet, "/staking/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
