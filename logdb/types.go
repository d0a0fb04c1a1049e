// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakeledger/thor"
)

// Kind is the kind of a stake event.
type Kind uint8

const (
	AnyKind Kind = iota // filter only
	Deposit
	Unstake
)

func (k Kind) String() string {
	switch k {
	case Deposit:
		return "deposit"
	case Unstake:
		return "unstake"
	default:
		return "any"
	}
}

// ParseKind parses the text form of a kind. The empty string means any.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "", "any":
		return AnyKind, true
	case "deposit":
		return Deposit, true
	case "unstake":
		return Unstake, true
	}
	return AnyKind, false
}

// Event is a stake event recorded in db.
type Event struct {
	Seq       uint64 // assigned by Insert
	Kind      Kind
	Account   thor.Address
	Amount    *uint256.Int // deposited, or paid out
	Reward    *uint256.Int // folded at deposit, or settled at unstake
	Principal *uint256.Int // principal after a deposit, or before an unstake
	Time      uint64
	PayoutID  uint64 // unstake only
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive time range. A To below From leaves the range open ended.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventFilter selects events. Nil fields match everything.
type EventFilter struct {
	Account *thor.Address
	Kind    Kind
	Range   *Range
	Options *Options
	Order   Order // default asc
}
