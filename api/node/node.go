// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/enctr"
	"github.com/encountr/enctr/node"
)

type Node struct {
	node *node.Node
}

type Info struct {
	Name      string        `json:"name"`
	GenesisID enctr.Bytes32 `json:"genesisId"`
	Clock     uint64        `json:"clock"`
}

func New(node *node.Node) *Node {
	return &Node{node}
}

func (n *Node) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	gen := n.node.Genesis()
	return utils.WriteJSON(w, &Info{
		Name:      gen.Name(),
		GenesisID: gen.ID(),
		Clock:     n.node.Clock(),
	})
}

func (n *Node) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, n.node.Genesis().Config())
}

func (n *Node) handleTriggerRebase(w http.ResponseWriter, _ *http.Request) error {
	if err := n.node.TriggerRebase(); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /node").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetInfo))
	sub.Path("/genesis").
		Methods(http.MethodGet).
		Name("GET /node/genesis").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetConfig))
	sub.Path("/keeper").
		Methods(http.MethodPost).
		Name("POST /node/keeper").
		HandlerFunc(utils.WrapHandlerFunc(n.handleTriggerRebase))
}
