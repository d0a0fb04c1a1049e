// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/metrics"
)

var (
	metricCalls         = metrics.LazyLoadCounterVec("contract_calls_count", []string{"method", "result"})
	metricOpenStakes    = metrics.LazyLoadGauge("contract_open_stakes")
	metricPayouts       = metrics.LazyLoadCounterVec("contract_payouts_count", []string{"status"})
	metricDroppedEvents = metrics.LazyLoadCounterVec("contract_dropped_events_count", []string{"stage"})
)

func metricsHandleCall(method string, err error) {
	metricCalls().AddWithLabel(1, map[string]string{"method": method, "result": callResult(err)})
}

func callResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrZeroAmount):
		return "zero_amount"
	case errors.Is(err, ledger.ErrNoActiveStake):
		return "no_stake"
	case errors.Is(err, ledger.ErrStakePaused):
		return "paused"
	case errors.Is(err, ledger.ErrClockRegression):
		return "clock_regression"
	case errors.Is(err, ledger.ErrOverflow):
		return "overflow"
	default:
		return "error"
	}
}
