// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/yield"
)

// RejectError reports a call the ledger refused. No state was changed.
type RejectError struct {
	message string
}

func newReject(message string) *RejectError {
	return &RejectError{message: message}
}

func (e *RejectError) Error() string {
	return e.message
}

var (
	ErrZeroAmount          = newReject("zero amount deposit")
	ErrNoActiveStake       = newReject("no active stake")
	ErrStakePaused         = newReject("staking paused")
	ErrPayoutNotFound      = newReject("payout not found")
	ErrInvalidPayoutStatus = newReject("invalid payout status transition")

	ErrClockRegression = yield.ErrClockRegression
	ErrOverflow        = yield.ErrOverflow
)

// IsRejected returns whether err is a refusal caused by the caller's input rather
// than by storage. A rejected call leaves no trace in the ledger.
func IsRejected(err error) bool {
	if err == nil {
		return false
	}
	var re *RejectError
	if errors.As(err, &re) {
		return true
	}
	switch errors.Cause(err) {
	case ErrClockRegression, ErrOverflow:
		return true
	}
	return false
}
