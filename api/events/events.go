// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/node"
)

const defaultLimit = 100

type Events struct {
	node  *node.Node
	limit int
}

// New creates the events api, limit caps the number of events per page.
func New(node *node.Node, limit int) *Events {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Events{node, limit}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	var from uint64
	if s := query.Get("from"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "from"))
		}
		from = v
	}
	limit := e.limit
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			return utils.BadRequest(errors.New("limit: must be a positive integer"))
		}
		if v > e.limit {
			return utils.BadRequest(errors.Errorf("limit: exceeds %d", e.limit))
		}
		limit = v
	}
	events := e.node.Events(from, limit)
	if events == nil {
		events = []*node.Event{}
	}
	return utils.WriteJSON(w, events)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
