// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/encountr/enctr/api/utils"
	"github.com/encountr/enctr/log"
)

var logger = log.WithContext("pkg", "admin")

type LogLevelRequest struct {
	Level string `json:"level"`
}

type LogLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

type LogStatus struct {
	Enabled bool `json:"enabled"`
}

var levels = map[string]slog.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
	"crit":  log.LevelCrit,
}

type Admin struct {
	logLevel *slog.LevelVar
	apiLogs  *atomic.Bool
}

// New creates the admin api over the runtime log level and the api request
// logging switch.
func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool) *Admin {
	return &Admin{logLevel, apiLogs}
}

func (a *Admin) handleGetLogLevel(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, LogLevelResponse{CurrentLevel: a.logLevel.Level().String()})
}

func (a *Admin) handlePostLogLevel(w http.ResponseWriter, req *http.Request) error {
	var body LogLevelRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	level, ok := levels[strings.ToLower(body.Level)]
	if !ok {
		return utils.BadRequest(errors.New("invalid verbosity level"))
	}
	a.logLevel.Set(level)
	logger.Info("log level updated", "level", level)

	return utils.WriteJSON(w, LogLevelResponse{CurrentLevel: a.logLevel.Level().String()})
}

func (a *Admin) handleGetAPILogs(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, LogStatus{Enabled: a.apiLogs.Load()})
}

func (a *Admin) handlePostAPILogs(w http.ResponseWriter, req *http.Request) error {
	var body LogStatus
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(err)
	}
	a.apiLogs.Store(body.Enabled)
	logger.Info("api logs updated", "enabled", body.Enabled)

	return utils.WriteJSON(w, LogStatus{Enabled: a.apiLogs.Load()})
}

func (a *Admin) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/loglevel").
		Methods(http.MethodGet).
		Name("get-log-level").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetLogLevel))
	sub.Path("/loglevel").
		Methods(http.MethodPost).
		Name("post-log-level").
		HandlerFunc(utils.WrapHandlerFunc(a.handlePostLogLevel))
	sub.Path("/apilogs").
		Methods(http.MethodGet).
		Name("get-api-logs-enabled").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAPILogs))
	sub.Path("/apilogs").
		Methods(http.MethodPost).
		Name("post-api-logs-enabled").
		HandlerFunc(utils.WrapHandlerFunc(a.handlePostAPILogs))
}

// HTTPHandler serves the admin api under /admin.
func HTTPHandler(logLevel *slog.LevelVar, apiLogs *atomic.Bool) http.Handler {
	router := mux.NewRouter()
	New(logLevel, apiLogs).Mount(router, "/admin")
	return handlers.CompressHandler(router)
}
