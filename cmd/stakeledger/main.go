// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// stakeledger runs the staking reward ledger behind its REST API.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/api"
	"github.com/vechain/stakeledger/cmd/stakeledger/httpserver"
	"github.com/vechain/stakeledger/co"
	"github.com/vechain/stakeledger/contract"
	"github.com/vechain/stakeledger/health"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/metrics"
)

var (
	version       string
	gitCommit     string
	gitTag        string
	copyrightYear string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "StakeLedger",
		Usage:     "Staking reward ledger",
		Copyright: fmt.Sprintf("2025-%s VeChain Foundation <https://vechain.org/>", copyrightYear),
		Flags: []cli.Flag{
			dataDirFlag,
			cacheFlag,
			stakeCacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			skipLogsFlag,
			ntpServerFlag,
			maxClockDriftFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "info",
				Usage: "print the ledger totals",
				Flags: []cli.Flag{
					dataDirFlag,
					decimalsFlag,
				},
				Action: infoAction,
			},
			{
				Name:  "stakes",
				Usage: "list the open stakes with their rewards",
				Flags: []cli.Flag{
					dataDirFlag,
					decimalsFlag,
					timeFlag,
				},
				Action: stakesAction,
			},
			{
				Name:  "verify",
				Usage: "check every stake record against the stored totals",
				Flags: []cli.Flag{
					dataDirFlag,
					decimalsFlag,
				},
				Action: verifyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { logger.Info("exited") }()

	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}

	// meters are bound on first use, so this goes before any component is built
	metricsEnabled := ctx.Bool(enableMetricsFlag.Name)
	if metricsEnabled {
		metrics.InitializePrometheusMetrics()
	}

	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}

	mainDB, err := openLedgerDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing ledger database..."); mainDB.Close() }()

	var logDB *logdb.LogDB
	skipLogs := ctx.Bool(skipLogsFlag.Name)
	if !skipLogs {
		if logDB, err = openLogDB(dataDir); err != nil {
			return err
		}
		defer func() { logger.Info("closing log database..."); logDB.Close() }()
	}

	stakeCache, err := readIntFromUInt64Flag(ctx.Uint64(stakeCacheFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse stake-cache flag")
	}
	l, err := ledger.New(mainDB, stakeCache)
	if err != nil {
		return errors.Wrap(err, "open ledger")
	}

	c := contract.New(l, logDB, nil)
	defer func() { logger.Info("closing contract..."); c.Close() }()

	h := health.New(time.Duration(ctx.Uint64(maxClockDriftFlag.Name)) * time.Millisecond)

	var goes co.Goes
	clockCtx, stopClockCheck := context.WithCancel(exitSignal)
	defer func() { stopClockCheck(); goes.Wait() }()
	if server := ctx.String(ntpServerFlag.Name); server != "" {
		goes.Go(func() { checkClockOffset(server, h) })
		goes.Every(clockCtx, clockCheckInterval, func(_ context.Context) { checkClockOffset(server, h) })
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	apiHandler, apiCloser := api.New(c, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		SkipLogs:             skipLogs,
		EnableMetrics:        metricsEnabled,
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
	})
	defer func() { logger.Info("stopping API subscriptions..."); apiCloser() }()

	apiURL, srvCloser, err := startAPIServer(ctx, apiHandler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs, c, h)
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		adminURL = url
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
	}

	metricsURL := ""
	if metricsEnabled {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		metricsURL = url
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
	}

	printStartupMessage(dataDir, apiURL, adminURL, metricsURL, skipLogs)

	<-exitSignal.Done()
	return nil
}
