// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package yield computes the reward accrued by a principal over elapsed time
// at the fixed annual rate.
package yield

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/thor"
)

var (
	// ErrOverflow is returned when an intermediate product exceeds 256 bits.
	ErrOverflow = errors.New("arithmetic overflow")
	// ErrClockRegression is returned when the end of an accrual window precedes its start.
	ErrClockRegression = errors.New("clock regression")

	rateNumerator = uint256.NewInt(thor.RateNumerator)
	// RateDenominator * SecondsPerYear fits in 64 bits.
	divisor = uint256.NewInt(thor.RateDenominator * thor.SecondsPerYear)
)

// Reward returns floor(principal * RateNumerator * elapsed / (RateDenominator * SecondsPerYear)).
// Both multiplications happen before the division, and the result is never rounded up.
func Reward(principal *uint256.Int, elapsed uint64) (*uint256.Int, error) {
	if principal == nil || principal.IsZero() || elapsed == 0 {
		return new(uint256.Int), nil
	}

	x, overflow := new(uint256.Int).MulOverflow(principal, rateNumerator)
	if overflow {
		return nil, ErrOverflow
	}
	if _, overflow = x.MulOverflow(x, uint256.NewInt(elapsed)); overflow {
		return nil, ErrOverflow
	}
	return x.Div(x, divisor), nil
}

// Accrue returns the reward accrued by principal from the start time to now.
func Accrue(principal *uint256.Int, start, now uint64) (*uint256.Int, error) {
	if now < start {
		return nil, ErrClockRegression
	}
	return Reward(principal, now-start)
}

// Add returns a + b, failing on overflow.
func Add(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return sum, nil
}

// Sub returns a - b, failing on underflow.
func Sub(a, b *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrOverflow
	}
	return diff, nil
}
