// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Constants of reward accrual.
const (
	RateNumerator   uint64 = 250        // annual yield numerator, 2.5% with RateDenominator.
	RateDenominator uint64 = 10000      // basis point scale.
	SecondsPerYear  uint64 = 31_536_000 // 365 days, leap seconds and leap days ignored.

	DefaultPageLimit uint64 = 50   // page size applied when a listing asks for zero.
	MaxPageLimit     uint64 = 1000 // largest page a listing serves.
)
