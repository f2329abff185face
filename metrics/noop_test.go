// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	metrics = defaultNoopMetrics()
	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	Counter("stakes").Add(1)
	CounterVec("reverts", []string{"kind"}).AddWithLabel(1, map[string]string{"kind": "unauthorized"})
	Gauge("index").Set(10)
	GaugeVec("reserves", []string{"token"}).SetWithLabel(1, map[string]string{"token": "dai"})
	HistogramVec("api_duration_ms", []string{"name"}, BucketHTTPReqs).
		ObserveWithLabels(3, map[string]string{"name": "epoch"})

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
