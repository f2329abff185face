// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/encountr/enctr/api/authority"
	"github.com/encountr/enctr/api/distributor"
	"github.com/encountr/enctr/api/events"
	"github.com/encountr/enctr/api/middleware"
	apinode "github.com/encountr/enctr/api/node"
	"github.com/encountr/enctr/api/staking"
	"github.com/encountr/enctr/api/tokens"
	"github.com/encountr/enctr/api/treasury"
	"github.com/encountr/enctr/log"
	"github.com/encountr/enctr/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EventsLimit          int
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
}

// New return api router
func New(n *node.Node, opts Options) http.Handler {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	apinode.New(n).
		Mount(router, "/node")
	authority.New(n).
		Mount(router, "/authority")
	tokens.New(n).
		Mount(router, "/tokens")
	staking.New(n).
		Mount(router, "/staking")
	treasury.New(n).
		Mount(router, "/treasury")
	distributor.New(n).
		Mount(router, "/distributor")
	events.New(n, opts.EventsLimit).
		Mount(router, "/events")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(middleware.Metrics)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger != nil {
		handler = middleware.RequestLogger(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)
	}
	return handler
}
