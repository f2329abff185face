// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rr
}

func TestLogLevel(t *testing.T) {
	var (
		level   slog.LevelVar
		apiLogs atomic.Bool
	)
	level.Set(slog.LevelInfo)
	h := HTTPHandler(&level, &apiLogs)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLevel  string
	}{
		{"debug", `{"level":"debug"}`, http.StatusOK, "DEBUG"},
		{"upper case", `{"level":"WARN"}`, http.StatusOK, "WARN"},
		{"trace", `{"level":"trace"}`, http.StatusOK, "DEBUG-4"},
		{"unknown", `{"level":"loud"}`, http.StatusBadRequest, ""},
		{"bad body", `{"verbosity":1}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(t, h, http.MethodPost, "/admin/loglevel", tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp LogLevelResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.wantLevel, resp.CurrentLevel)
		})
	}

	level.Set(slog.LevelError)
	rr := serve(t, h, http.MethodGet, "/admin/loglevel", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp LogLevelResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "ERROR", resp.CurrentLevel)
}

func TestAPILogs(t *testing.T) {
	var (
		level   slog.LevelVar
		apiLogs atomic.Bool
	)
	h := HTTPHandler(&level, &apiLogs)

	rr := serve(t, h, http.MethodPost, "/admin/apilogs", `{"enabled":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, apiLogs.Load())

	apiLogs.Store(false)
	rr = serve(t, h, http.MethodGet, "/admin/apilogs", "")
	var status LogStatus
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.False(t, status.Enabled)
}
