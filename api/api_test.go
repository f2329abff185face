// Copyright (c) 2018 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encountr/enctr/api"
	"github.com/encountr/enctr/test/testnode"
)

func TestRoutes(t *testing.T) {
	n, _ := testnode.New(t)
	var reqLogs atomic.Bool
	reqLogs.Store(true)
	handler := api.New(n, api.Options{
		AllowedOrigins:  "https://example.org",
		EnableMetrics:   true,
		EnableReqLogger: &reqLogs,
		Log5xxErrors:    true,
	})

	ts := httptest.NewServer(handler)
	defer ts.Close()

	for _, path := range []string{
		"/node",
		"/authority",
		"/tokens/ENCTR",
		"/staking",
		"/treasury",
		"/distributor",
		"/events",
	} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err, path)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path+": "+string(body))
	}

	resp, err := http.Get(ts.URL + "/debug/pprof/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	n, _ := testnode.New(t)
	handler := api.New(n, api.Options{AllowedOrigins: "https://Example.org"})

	req := httptest.NewRequest(http.MethodOptions, "/staking/stake", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "https://example.org", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodPost, "/staking/stake", strings.NewReader("{"))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
