// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/health"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/thor"
)

const clockCheckInterval = 10 * time.Minute

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := new(slog.LevelVar)
	logLevel.Set(log.FromLegacyLevel(lvl))

	log.SetDefault(log.NewLogger(log.NewStdHandler(os.Stdout, ctx.Bool(jsonLogsFlag.Name), logLevel)))
	return logLevel, nil
}

func readIntFromUInt64Flag(val uint64) (int, error) {
	if val > math.MaxInt {
		return 0, fmt.Errorf("invalid value %d, must be less than or equal to %d", val, math.MaxInt)
	}
	return int(val), nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func defaultDataDir() string {
	// Try to place the data folder in the user's home dir
	if home := homeDir(); home != "" {
		switch runtime.GOOS {
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "org.vechain.stakeledger")
		case "windows":
			return filepath.Join(home, "AppData", "Roaming", "org.vechain.stakeledger")
		default:
			return filepath.Join(home, ".org.vechain.stakeledger")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// checkClockOffset measures the local clock against server. Rewards accrue on
// the local clock, so the result feeds the health status.
func checkClockOffset(server string, h *health.Health) {
	resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: 5 * time.Second})
	if err != nil {
		logger.Debug("failed to access NTP", "server", server, "err", err)
		h.ClockChecked(0, err)
		return
	}
	h.ClockChecked(resp.ClockOffset, nil)
	if !h.Status().Healthy {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

// formatAmount renders v in whole tokens of the given decimals.
func formatAmount(v *uint256.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -decimals).String()
}

// annualRate is the yearly reward rate in percent.
func annualRate() decimal.Decimal {
	return decimal.NewFromInt(int64(thor.RateNumerator * 100)).
		Div(decimal.NewFromInt(int64(thor.RateDenominator)))
}

func printStartupMessage(dataDir, apiURL, adminURL, metricsURL string, skipLogs bool) {
	orDisabled := func(s string) string {
		if s == "" {
			return "disabled"
		}
		return s
	}
	history := "enabled"
	if skipLogs {
		history = "disabled"
	}

	fmt.Printf(`Starting StakeLedger %v
    Reward rate   [ %v%% per year ]
    Data dir      [ %v ]
    Event history [ %v ]
    API portal    [ %v ]
    Admin portal  [ %v ]
    Metrics       [ %v ]
`,
		fullVersion(),
		annualRate(),
		dataDir,
		history,
		apiURL,
		orDisabled(adminURL),
		orDisabled(metricsURL),
	)
}
