// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package types holds the JSON forms of the ledger objects.
package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/thor"
)

// StakeInfo is the live view of one stake.
type StakeInfo struct {
	Amount            *math.HexOrDecimal256 `json:"amount"`
	AccumulatedReward *math.HexOrDecimal256 `json:"accumulatedReward"`
	StartTime         uint64                `json:"startTime"`
}

// Stake is a stored stake as listed.
type Stake struct {
	Account   thor.Address          `json:"account"`
	Principal *math.HexOrDecimal256 `json:"principal"`
	StartTime uint64                `json:"startTime"`
}

type Totals struct {
	Staked   *math.HexOrDecimal256 `json:"staked"`
	Rewarded *math.HexOrDecimal256 `json:"rewarded"`
	Settled  *math.HexOrDecimal256 `json:"settled"`
	Accounts uint64                `json:"accounts"`
}

// Params are the fixed reward parameters.
type Params struct {
	RateNumerator   uint64 `json:"rateNumerator"`
	RateDenominator uint64 `json:"rateDenominator"`
	SecondsPerYear  uint64 `json:"secondsPerYear"`
}

// TransferRequest notifies a token transfer into the ledger.
type TransferRequest struct {
	Sender *thor.Address         `json:"sender"`
	Amount *math.HexOrDecimal256 `json:"amount"`
	Msg    string                `json:"msg"`
}

type TransferResponse struct {
	Accepted *math.HexOrDecimal256 `json:"accepted"`
}

type Payout struct {
	ID        uint64                `json:"id"`
	Account   thor.Address          `json:"account"`
	Principal *math.HexOrDecimal256 `json:"principal"`
	Reward    *math.HexOrDecimal256 `json:"reward"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Time      uint64                `json:"time"`
	Status    string                `json:"status"`
}

// PayoutStatusRequest reports the delivery outcome of a payout.
type PayoutStatusRequest struct {
	Status string `json:"status"`
}

// StakeEvent is a recorded deposit or unstake.
type StakeEvent struct {
	Seq       uint64                `json:"seq"`
	Kind      string                `json:"kind"`
	Account   thor.Address          `json:"account"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
	Reward    *math.HexOrDecimal256 `json:"reward"`
	Principal *math.HexOrDecimal256 `json:"principal"`
	Time      uint64                `json:"time"`
	PayoutID  uint64                `json:"payoutId,omitempty"`
}

type PauseStatus struct {
	Paused bool `json:"paused"`
}

type LogStatus struct {
	Enabled bool `json:"enabled"`
}

// Amount converts v to its JSON form. nil converts to zero.
func Amount(v *uint256.Int) *math.HexOrDecimal256 {
	if v == nil {
		return (*math.HexOrDecimal256)(new(big.Int))
	}
	return (*math.HexOrDecimal256)(v.ToBig())
}

// ParseAmount converts a JSON amount back, rejecting negative and oversized values.
func ParseAmount(v *math.HexOrDecimal256) (*uint256.Int, error) {
	if v == nil {
		return nil, errors.New("missing amount")
	}
	b := (*big.Int)(v)
	if b.Sign() < 0 {
		return nil, errors.New("negative amount")
	}
	u, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errors.New("amount exceeds 256 bits")
	}
	return u, nil
}

func ConvertStakeInfo(s *ledger.Snapshot) *StakeInfo {
	if s == nil {
		return nil
	}
	return &StakeInfo{
		Amount:            Amount(s.Amount),
		AccumulatedReward: Amount(s.AccumulatedReward),
		StartTime:         s.StartTime,
	}
}

func ConvertStake(s *ledger.Stake) *Stake {
	return &Stake{
		Account:   s.Account,
		Principal: Amount(s.Record.Principal),
		StartTime: s.Record.StartTime,
	}
}

func ConvertTotals(t *ledger.Totals) *Totals {
	return &Totals{
		Staked:   Amount(t.Staked),
		Rewarded: Amount(t.Rewarded),
		Settled:  Amount(t.Settled),
		Accounts: t.Accounts,
	}
}

func ConvertPayout(p *ledger.Payout) *Payout {
	return &Payout{
		ID:        p.ID,
		Account:   p.Account,
		Principal: Amount(p.Principal),
		Reward:    Amount(p.Reward),
		Amount:    Amount(p.Amount),
		Time:      p.Time,
		Status:    p.Status.String(),
	}
}

func ConvertStakeEvent(ev *logdb.Event) *StakeEvent {
	return &StakeEvent{
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Account:   ev.Account,
		Amount:    Amount(ev.Amount),
		Reward:    Amount(ev.Reward),
		Principal: Amount(ev.Principal),
		Time:      ev.Time,
		PayoutID:  ev.PayoutID,
	}
}
