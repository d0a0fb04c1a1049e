// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/contract"
	"github.com/vechain/stakeledger/health"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/metrics"
)

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func TestStartMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()

	url, closeFunc, err := StartMetricsServer("localhost:0")
	require.NoError(t, err)
	defer closeFunc()

	body, code := httpGet(t, url)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestStartAdminServer(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	l, err := ledger.New(db, 0)
	require.NoError(t, err)
	c := contract.New(l, nil, nil)
	defer c.Close()

	url, closeFunc, err := StartAdminServer("localhost:0", new(slog.LevelVar), new(atomic.Bool), c, health.New(0))
	require.NoError(t, err)
	defer closeFunc()

	body, code := httpGet(t, url+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), `"healthy":true`)

	_, _, err = StartAdminServer("localhost:-1", new(slog.LevelVar), new(atomic.Bool), c, health.New(0))
	assert.Error(t, err)
}
