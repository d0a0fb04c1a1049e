// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/thor"
)

// StakeRecord is the persisted stake of one account.
// A stored record always has a positive principal.
type StakeRecord struct {
	Principal *uint256.Int
	StartTime uint64 // unix seconds from which unaccrued reward is measured
}

func (r *StakeRecord) encode() ([]byte, error) {
	return rlp.EncodeToBytes(r)
}

func (r *StakeRecord) decode(data []byte) error {
	return rlp.DecodeBytes(data, r)
}

// Copy returns a deep copy.
func (r *StakeRecord) Copy() *StakeRecord {
	return &StakeRecord{
		Principal: new(uint256.Int).Set(r.Principal),
		StartTime: r.StartTime,
	}
}

// Snapshot is the live view of a stake at some instant.
type Snapshot struct {
	Amount            *uint256.Int
	AccumulatedReward *uint256.Int
	StartTime         uint64
}

// Stake pairs an account with its record.
type Stake struct {
	Account thor.Address
	Record  *StakeRecord
}

// DepositReceipt describes an applied deposit.
type DepositReceipt struct {
	Account   thor.Address
	Amount    *uint256.Int // deposited
	Reward    *uint256.Int // pending reward folded into the principal
	Principal *uint256.Int // principal after the deposit
	Time      uint64
	Created   bool // whether the deposit opened a new stake
}

// Totals aggregates all open stakes and all settlements.
type Totals struct {
	Staked   *uint256.Int // sum of principals of open stakes
	Rewarded *uint256.Int // reward folded at deposits plus reward settled at withdrawals
	Settled  *uint256.Int // principal plus reward paid out
	Accounts uint64       // number of open stakes
}

func newTotals() *Totals {
	return &Totals{
		Staked:   new(uint256.Int),
		Rewarded: new(uint256.Int),
		Settled:  new(uint256.Int),
	}
}

// PayoutStatus is the delivery state of a settlement.
type PayoutStatus uint8

const (
	PayoutAny PayoutStatus = iota // filter only, never stored
	PayoutPending
	PayoutCompleted
	PayoutFailed
)

func (s PayoutStatus) String() string {
	switch s {
	case PayoutPending:
		return "pending"
	case PayoutCompleted:
		return "completed"
	case PayoutFailed:
		return "failed"
	default:
		return "any"
	}
}

// ParsePayoutStatus parses the text form of a status. The empty string means any.
func ParsePayoutStatus(s string) (PayoutStatus, bool) {
	switch s {
	case "", "any":
		return PayoutAny, true
	case "pending":
		return PayoutPending, true
	case "completed":
		return PayoutCompleted, true
	case "failed":
		return PayoutFailed, true
	}
	return PayoutAny, false
}

// Payout is the journal entry of a withdrawal. Delivering Amount to Account
// is the host's responsibility.
type Payout struct {
	ID        uint64
	Account   thor.Address
	Principal *uint256.Int
	Reward    *uint256.Int
	Amount    *uint256.Int // Principal + Reward
	Time      uint64
	Status    PayoutStatus
}
