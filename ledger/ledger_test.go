// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

const (
	t0   = uint64(1_700_000_000)
	year = thor.SecondsPerYear
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func newLedger(t *testing.T) *Ledger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l, err := New(db, 0)
	require.NoError(t, err)
	return l
}

func TestDepositCreatesStake(t *testing.T) {
	l := newLedger(t)
	acc := datagen.RandAddress()

	receipt, err := l.Deposit(acc, u(1_000_000), t0)
	require.NoError(t, err)
	assert.True(t, receipt.Created)
	assert.True(t, receipt.Reward.IsZero())
	assert.Equal(t, u(1_000_000), receipt.Principal)

	info, err := l.GetStakeInfo(acc, t0)
	require.NoError(t, err)
	assert.Equal(t, &Snapshot{Amount: u(1_000_000), AccumulatedReward: u(0), StartTime: t0}, info)
}

func TestDepositZeroAmount(t *testing.T) {
	l := newLedger(t)
	acc := datagen.RandAddress()

	_, err := l.Deposit(acc, u(0), t0)
	assert.Equal(t, ErrZeroAmount, err)
	_, err = l.Deposit(acc, nil, t0)
	assert.Equal(t, ErrZeroAmount, err)

	info, err := l.GetStakeInfo(acc, t0)
	require.NoError(t, err)
	assert.Nil(t, info)

	_, err = l.Deposit(acc, u(500), t0)
	require.NoError(t, err)
	_, err = l.Deposit(acc, u(0), t0+year)
	assert.Equal(t, ErrZeroAmount, err)

	info, err = l.GetStakeInfo(acc, t0)
	require.NoError(t, err)
	assert.Equal(t, u(500), info.Amount)
	assert.Equal(t, t0, info.StartTime)
}

func TestDepositCompounds(t *testing.T) {
	l := newLedger(t)
	acc := datagen.RandAddress()

	_, err := l.Deposit(acc, u(1_000_000), t0)
	require.NoError(t, err)

	receipt, err := l.Deposit(acc, u(1_000_000), t0+year)
	require.NoError(t, err)
	assert.False(t, receipt.Created)
	assert.Equal(t, u(25_000), receipt.Reward)
	assert.Equal(t, u(2_025_000), receipt.Principal)

	info, err := l.GetStakeInfo(acc, t0+year)
	require.NoError(t, err)
	assert.Equal(t, u(2_025_000), info.Amount)
	assert.True(t, info.AccumulatedReward.IsZero())
	assert.Equal(t, t0+year, info.StartTime)

	// the folded reward now earns reward as well
	info, err = l.GetStakeInfo(acc, t0+2*year)
	require.NoError(t, err)
	assert.Equal(t, u(50_625), info.AccumulatedReward)
}

func TestDepositAccumulatesAtSameTime(t *testing.T) {
	l := newLedger(t)
	acc := datagen.RandAddress()

	sum := new(uint256.Int)
	for range 20 {
		amount := datagen.RandAmount(1e12)
		sum.Add(sum, amount)
		_, err := l.Deposit(acc, amount, t0)
		require.NoError(t, err)
	}

	info, err := l.GetStakeInfo(acc, t0)
	require.NoError(t, err)
	assert.Equal(t, sum, info.Amount)
}

func TestGetStakeInfoNoStake(t *testing.T) {
	l := newLedger(t)

	info, err := l.GetStakeInfo(datagen.RandAddress(), t0)
	assert.NoError(t, err)
	assert.Nil(t, info)
}

func TestGetStakeInfoDoesNotMutate(t *testing.T) {
	l := newLedger(t)
	acc := datagen.RandAddress()

	_, err := l.Deposit(acc, u(1_000_000), t0)
	require.NoError(t, err)

	for range 3 {
		info, err := l.GetStakeInfo(acc, t0+year)
		require.NoError(t, err)
		assert.Equal(t, u(25_000), info.AccumulatedReward)
		assert.Equal(t, t0, info.StartTime)
	}

	// a reward seen by a query is what the withdrawal pays
	payout, err := l.Unstake(acc, t0+year)
	require.NoError(t, err)
	assert.Equal(t, u(25_000), payout.Reward)
}

func TestUnstakeOneYear(t *testing.T) {
	l := newLedger(t)
	acc := datagen.RandAddress()

	_, err := l.Deposit(acc, u(1_000_000), t0)
	require.NoError(t, err)

	payout, err := l.Unstake(acc, t0+year)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), payout.ID)
	assert.Equal(t, acc, payout.Account)
	assert.Equal(t, u(1_000_000), payout.Principal)
	assert.Equal(t, u(25_000), payout.Reward)
	assert.Equal(t, u(1_025_000), payout.Amount)
	assert.Equal(t, PayoutPending, payout.Status)

	info, err := l.GetStakeInfo(acc, t0+year)
	require.NoError(t, err)
	assert.Nil(t, info)

	_, err = l.Unstake(acc, t0+year)
	assert.Equal(t, ErrNoActiveStake, err)

	stored, err := l.Payout(payout.ID)
	require.NoError(t, err)
	assert.Equal(t, payout, stored)
}

func TestUnstakeNoStake(t *testing.T) {
	l := newLedger(t)

	_, err := l.Unstake(datagen.RandAddress(), t0)
	assert.Equal(t, ErrNoActiveStake, err)
	assert.True(t, IsRejected(err))

	totals, err := l.Totals()
	require.NoError(t, err)
	assert.Zero(t, totals.Accounts)
}

func TestRestakeAfterUnstake(t *testing.T) {
	l := newLedger(t)
	acc := datagen.RandAddress()

	_, err := l.Deposit(acc, u(100), t0)
	require.NoError(t, err)
	_, err = l.Unstake(acc, t0+10)
	require.NoError(t, err)

	receipt, err := l.Deposit(acc, u(300), t0+20)
	require.NoError(t, err)
	assert.True(t, receipt.Created)

	info, err := l.GetStakeInfo(acc, t0+20)
	require.NoError(t, err)
	assert.Equal(t, u(300), info.Amount)
	assert.Equal(t, t0+20, info.StartTime)
}

func TestClockRegression(t *testing.T) {
	l := newLedger(t)
	acc := datagen.RandAddress()

	_, err := l.Deposit(acc, u(1_000_000), t0)
	require.NoError(t, err)

	_, err = l.Deposit(acc, u(1), t0-1)
	assert.Equal(t, ErrClockRegression, err)
	_, err = l.GetStakeInfo(acc, t0-1)
	assert.Equal(t, ErrClockRegression, err)
	_, err = l.Unstake(acc, t0-1)
	assert.Equal(t, ErrClockRegression, err)
	assert.True(t, IsRejected(err))

	info, err := l.GetStakeInfo(acc, t0)
	require.NoError(t, err)
	assert.Equal(t, u(1_000_000), info.Amount)
	assert.Equal(t, t0, info.StartTime)

	totals, err := l.Totals()
	require.NoError(t, err)
	assert.Equal(t, u(1_000_000), totals.Staked)
	assert.Equal(t, uint64(1), totals.Accounts)
}

func TestOverflowFailsClosed(t *testing.T) {
	l := newLedger(t)
	acc := datagen.RandAddress()
	huge := new(uint256.Int).SetAllOne()

	_, err := l.Deposit(acc, huge, t0)
	require.NoError(t, err)

	_, err = l.Deposit(acc, u(1), t0)
	assert.Equal(t, ErrOverflow, err)

	_, err = l.GetStakeInfo(acc, t0+1)
	assert.Equal(t, ErrOverflow, err)

	_, err = l.Unstake(acc, t0+1)
	assert.Equal(t, ErrOverflow, err)

	info, err := l.GetStakeInfo(acc, t0)
	require.NoError(t, err)
	assert.Equal(t, huge, info.Amount)

	// the total is saturated, a second account cannot be added
	_, err = l.Deposit(datagen.RandAddress(), u(1), t0)
	assert.Equal(t, ErrOverflow, err)

	totals, err := l.Totals()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), totals.Accounts)
}

func TestTotals(t *testing.T) {
	l := newLedger(t)
	a, b := datagen.RandAddress(), datagen.RandAddress()

	_, err := l.Deposit(a, u(1_000_000), t0)
	require.NoError(t, err)
	_, err = l.Deposit(b, u(2_000_000), t0)
	require.NoError(t, err)
	_, err = l.Deposit(a, u(1_000_000), t0+year)
	require.NoError(t, err)

	totals, err := l.Totals()
	require.NoError(t, err)
	assert.Equal(t, u(4_025_000), totals.Staked)
	assert.Equal(t, u(25_000), totals.Rewarded)
	assert.True(t, totals.Settled.IsZero())
	assert.Equal(t, uint64(2), totals.Accounts)

	_, err = l.Unstake(b, t0+year)
	require.NoError(t, err)

	totals, err = l.Totals()
	require.NoError(t, err)
	assert.Equal(t, u(2_025_000), totals.Staked)
	assert.Equal(t, u(75_000), totals.Rewarded)
	assert.Equal(t, u(2_050_000), totals.Settled)
	assert.Equal(t, uint64(1), totals.Accounts)

	computed, err := l.Verify(nil)
	require.NoError(t, err)
	assert.Equal(t, totals, computed)
}

func TestPaused(t *testing.T) {
	l := newLedger(t)
	acc := datagen.RandAddress()

	_, err := l.Deposit(acc, u(100), t0)
	require.NoError(t, err)

	require.NoError(t, l.SetPaused(true))
	paused, err := l.Paused()
	require.NoError(t, err)
	assert.True(t, paused)

	_, err = l.Deposit(acc, u(100), t0+1)
	assert.Equal(t, ErrStakePaused, err)

	// withdrawals keep working
	_, err = l.Unstake(acc, t0+1)
	require.NoError(t, err)

	require.NoError(t, l.SetPaused(false))
	_, err = l.Deposit(acc, u(100), t0+2)
	assert.NoError(t, err)
}

func TestStakesPagination(t *testing.T) {
	l := newLedger(t)

	accounts := datagen.RandAddresses(120)
	for i, acc := range accounts {
		_, err := l.Deposit(acc, u(uint64(i+1)), t0)
		require.NoError(t, err)
	}

	first, err := l.Stakes(0, 0)
	require.NoError(t, err)
	assert.Len(t, first, int(thor.DefaultPageLimit))

	seen := make(map[thor.Address]bool)
	for offset := uint64(0); ; offset += 25 {
		page, err := l.Stakes(offset, 25)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, s := range page {
			assert.False(t, seen[s.Account], "listed twice")
			seen[s.Account] = true
			assert.False(t, s.Record.Principal.IsZero())
		}
	}
	assert.Len(t, seen, len(accounts))

	none, err := l.Stakes(1000, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	acc := datagen.RandAddress()

	db, err := lvldb.New(path, lvldb.Options{})
	require.NoError(t, err)
	l, err := New(db, 16)
	require.NoError(t, err)
	_, err = l.Deposit(acc, u(1_000_000), t0)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = lvldb.New(path, lvldb.Options{})
	require.NoError(t, err)
	defer db.Close()
	l, err = New(db, 16)
	require.NoError(t, err)

	payout, err := l.Unstake(acc, t0+year)
	require.NoError(t, err)
	assert.Equal(t, u(1_025_000), payout.Amount)
}

var errWriteFailed = errors.New("write failed")

// failingStore commits nothing once armed.
type failingStore struct {
	kv.Store
	fail bool
}

func (s *failingStore) Bulk() kv.Bulk {
	bulk := s.Store.Bulk()
	if !s.fail {
		return bulk
	}
	return &struct {
		kv.Putter
		kv.LenFunc
		kv.WriteFunc
	}{bulk, bulk.Len, func() error { return errWriteFailed }}
}

func TestFailedCommitLeavesNoTrace(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	store := &failingStore{Store: db}
	l, err := New(store, 0)
	require.NoError(t, err)
	acc := datagen.RandAddress()

	_, err = l.Deposit(acc, u(1_000_000), t0)
	require.NoError(t, err)

	store.fail = true
	_, err = l.Deposit(acc, u(1_000_000), t0+year)
	assert.ErrorIs(t, err, errWriteFailed)
	assert.False(t, IsRejected(err))
	_, err = l.Unstake(acc, t0+year)
	assert.ErrorIs(t, err, errWriteFailed)
	store.fail = false

	info, err := l.GetStakeInfo(acc, t0+year)
	require.NoError(t, err)
	assert.Equal(t, u(1_000_000), info.Amount)
	assert.Equal(t, t0, info.StartTime)

	totals, err := l.Totals()
	require.NoError(t, err)
	assert.Equal(t, u(1_000_000), totals.Staked)
	assert.Equal(t, uint64(1), totals.Accounts)

	payouts, err := l.Payouts(PayoutAny, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, payouts)
}
