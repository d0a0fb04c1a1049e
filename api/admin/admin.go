// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	healthAPI "github.com/vechain/stakeledger/api/admin/health"
	"github.com/vechain/stakeledger/api/admin/loglevel"
	"github.com/vechain/stakeledger/api/admin/switches"
	"github.com/vechain/stakeledger/contract"
	"github.com/vechain/stakeledger/health"
)

func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, c *contract.Contract, h *health.Health) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	loglevel.New(logLevel).Mount(sub, "/loglevel")
	switches.NewAtomic("enabled", apiLogs).Mount(sub, "/apilogs")
	switches.New("paused", c.Paused, c.SetPaused).Mount(sub, "/pause")
	healthAPI.NewAPI(h, c).Mount(sub, "/health")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
