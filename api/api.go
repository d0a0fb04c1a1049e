// Copyright (c) 2018 The VeChainThor developers

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

	"github.com/vechain/stakeledger/api/doc"
	"github.com/vechain/stakeledger/api/logs"
	"github.com/vechain/stakeledger/api/middleware"
	"github.com/vechain/stakeledger/api/payouts"
	"github.com/vechain/stakeledger/api/stakes"
	"github.com/vechain/stakeledger/api/subscriptions"
	"github.com/vechain/stakeledger/api/transfers"
	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/contract"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/thor"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	Clock                utils.Clock // defaults to utils.WallClock
	LogsLimit            uint64      // defaults to thor.MaxPageLimit
	PprofOn              bool
	SkipLogs             bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
}

// New return api router
func New(c *contract.Contract, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	clock := opts.Clock
	if clock == nil {
		clock = utils.WallClock
	}
	logsLimit := opts.LogsLimit
	if logsLimit == 0 {
		logsLimit = thor.MaxPageLimit
	}

	router := mux.NewRouter()

	// to serve api docs
	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/stakeledger.yaml", http.StatusTemporaryRedirect)
		})

	transfers.New(c, clock).
		Mount(router, "/transfers")
	stakes.New(c, clock).
		Mount(router, "/stakes")
	payouts.New(c).
		Mount(router, "/payouts")
	if !opts.SkipLogs {
		logs.New(c, logsLimit).
			Mount(router, "/logs")
	}
	subs := subscriptions.New(c, origins)
	subs.Mount(router, "/subscriptions")

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
		handlers.AllowedHeaders([]string{"content-type", "x-request-id"}),
		handlers.ExposedHeaders([]string{"x-request-id"}),
	)(handler)

	reqLogs := opts.EnableReqLogger
	if reqLogs == nil {
		reqLogs = &atomic.Bool{}
	}
	handler = middleware.RequestLoggerMiddleware(logger, reqLogs, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
