// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apinode "github.com/encountr/enctr/api/node"
	"github.com/encountr/enctr/genesis"
	"github.com/encountr/enctr/test/testnode"
	"github.com/encountr/enctr/xenv"
)

func TestNode(t *testing.T) {
	n, clock := testnode.New(t)
	router := mux.NewRouter()
	apinode.New(n).Mount(router, "/node")

	var info struct {
		Name      string `json:"name"`
		GenesisID string `json:"genesisId"`
		Clock     uint64 `json:"clock"`
	}
	testnode.Decode(t, router, http.MethodGet, "/node", nil, &info)
	assert.Equal(t, n.Genesis().Name(), info.Name)
	assert.Equal(t, n.Genesis().ID().String(), info.GenesisID)
	assert.Equal(t, clock.Now, info.Clock)

	status, body := testnode.Call(t, router, http.MethodGet, "/node/genesis", nil)
	require.Equal(t, http.StatusOK, status)
	var cfg genesis.Config
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Equal(t, genesis.DevConfig().Epoch, cfg.Epoch)
	assert.Equal(t, genesis.DevConfig().Authority, cfg.Authority)

	// the keeper endpoint rebases once the epoch is over
	clock.Advance(28800)
	status, _ = testnode.Call(t, router, http.MethodPost, "/node/keeper", nil)
	assert.Equal(t, http.StatusNoContent, status)

	var number uint64
	require.NoError(t, n.View(func(env *xenv.Environment) error {
		ep, err := env.Protocol().Staking.Epoch()
		number = ep.Number
		return err
	}))
	assert.Equal(t, uint64(2), number)
}
