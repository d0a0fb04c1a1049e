// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/test/datagen"
)

func settle(t *testing.T, l *Ledger, n int) []*Payout {
	payouts := make([]*Payout, 0, n)
	for _, acc := range datagen.RandAddresses(n) {
		_, err := l.Deposit(acc, datagen.RandAmount(1e9), t0)
		require.NoError(t, err)
		p, err := l.Unstake(acc, t0+datagen.RandUint64N(year))
		require.NoError(t, err)
		payouts = append(payouts, p)
	}
	return payouts
}

func TestPayoutIDsIncrease(t *testing.T) {
	l := newLedger(t)

	for i, p := range settle(t, l, 5) {
		assert.Equal(t, uint64(i+1), p.ID)
	}

	listed, err := l.Payouts(PayoutAny, 0, 0)
	require.NoError(t, err)
	require.Len(t, listed, 5)
	for i, p := range listed {
		assert.Equal(t, uint64(i+1), p.ID)
	}
}

func TestPayoutStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to PayoutStatus
		ok       bool
	}{
		{PayoutPending, PayoutCompleted, true},
		{PayoutPending, PayoutFailed, true},
		{PayoutPending, PayoutPending, false},
		{PayoutFailed, PayoutPending, true},
		{PayoutFailed, PayoutCompleted, false},
		{PayoutCompleted, PayoutPending, false},
		{PayoutCompleted, PayoutFailed, false},
		{PayoutPending, PayoutAny, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.ok, validTransition(tt.from, tt.to))
		})
	}
}

func TestSetPayoutStatus(t *testing.T) {
	l := newLedger(t)
	payouts := settle(t, l, 3)

	p, err := l.SetPayoutStatus(payouts[0].ID, PayoutCompleted)
	require.NoError(t, err)
	assert.Equal(t, PayoutCompleted, p.Status)

	_, err = l.SetPayoutStatus(payouts[0].ID, PayoutFailed)
	assert.Equal(t, ErrInvalidPayoutStatus, err)

	_, err = l.SetPayoutStatus(payouts[1].ID, PayoutFailed)
	require.NoError(t, err)
	_, err = l.SetPayoutStatus(payouts[1].ID, PayoutPending)
	require.NoError(t, err)

	_, err = l.SetPayoutStatus(99, PayoutCompleted)
	assert.Equal(t, ErrPayoutNotFound, err)

	pending, err := l.Payouts(PayoutPending, 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, payouts[1].ID, pending[0].ID)
	assert.Equal(t, payouts[2].ID, pending[1].ID)

	page, err := l.Payouts(PayoutPending, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, payouts[2].ID, page[0].ID)

	completed, err := l.Payouts(PayoutCompleted, 0, 0)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, payouts[0].Amount, completed[0].Amount)
}

func TestParsePayoutStatus(t *testing.T) {
	for _, s := range []PayoutStatus{PayoutAny, PayoutPending, PayoutCompleted, PayoutFailed} {
		parsed, ok := ParsePayoutStatus(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, parsed)
	}
	_, ok := ParsePayoutStatus("lost")
	assert.False(t, ok)
}
