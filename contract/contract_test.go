// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/test/datagen"
	"github.com/vechain/stakeledger/thor"
)

const t0 = uint64(1_700_000_000)

func newContract(t *testing.T, payer Payer) *Contract {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l, err := ledger.New(db, 0)
	require.NoError(t, err)

	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logDB.Close() })

	c := New(l, logDB, payer)
	t.Cleanup(c.Close)
	return c
}

func TestOnTransfer(t *testing.T) {
	c := newContract(t, nil)
	acc := datagen.RandAddress()

	accepted, err := c.OnTransfer(context.Background(), acc, uint256.NewInt(1_000_000), "", t0)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1_000_000), accepted)

	_, err = c.OnTransfer(context.Background(), acc, uint256.NewInt(0), "stake", t0)
	assert.ErrorIs(t, err, ledger.ErrZeroAmount)

	info, err := c.GetStakeInfo(acc, t0+thor.SecondsPerYear)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1_000_000), info.Amount)
	assert.Equal(t, uint256.NewInt(25_000), info.AccumulatedReward)

	info, err = c.GetStakeInfo(datagen.RandAddress(), t0)
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestUnstakeWithoutPayer(t *testing.T) {
	c := newContract(t, nil)
	acc := datagen.RandAddress()

	_, err := c.OnTransfer(context.Background(), acc, uint256.NewInt(1_000_000), "", t0)
	require.NoError(t, err)

	payout, err := c.Unstake(context.Background(), acc, t0+thor.SecondsPerYear)
	require.NoError(t, err)
	assert.Equal(t, ledger.PayoutPending, payout.Status)
	assert.Equal(t, uint256.NewInt(1_025_000), payout.Amount)

	_, err = c.Unstake(context.Background(), acc, t0+thor.SecondsPerYear)
	assert.ErrorIs(t, err, ledger.ErrNoActiveStake)

	confirmed, err := c.ConfirmPayout(payout.ID, true)
	require.NoError(t, err)
	assert.Equal(t, ledger.PayoutCompleted, confirmed.Status)

	_, err = c.ConfirmPayout(payout.ID, false)
	assert.ErrorIs(t, err, ledger.ErrInvalidPayoutStatus)
}

func TestUnstakeWithPayer(t *testing.T) {
	var paid []*ledger.Payout
	fail := false
	payer := PayerFunc(func(_ context.Context, p *ledger.Payout) error {
		if fail {
			return errors.New("transfer refused")
		}
		paid = append(paid, p)
		return nil
	})
	c := newContract(t, payer)
	accounts := datagen.RandAddresses(2)
	for _, acc := range accounts {
		_, err := c.OnTransfer(context.Background(), acc, uint256.NewInt(500), "", t0)
		require.NoError(t, err)
	}

	payout, err := c.Unstake(context.Background(), accounts[0], t0+10)
	require.NoError(t, err)
	assert.Equal(t, ledger.PayoutCompleted, payout.Status)
	require.Len(t, paid, 1)
	assert.Equal(t, accounts[0], paid[0].Account)

	fail = true
	payout, err = c.Unstake(context.Background(), accounts[1], t0+10)
	require.NoError(t, err)
	assert.Equal(t, ledger.PayoutFailed, payout.Status)

	// the stake is settled either way
	info, err := c.GetStakeInfo(accounts[1], t0+10)
	require.NoError(t, err)
	assert.Nil(t, info)

	failed, err := c.Payouts(ledger.PayoutFailed, 0, 0)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, payout.ID, failed[0].ID)

	retried, err := c.SetPayoutStatus(payout.ID, ledger.PayoutPending)
	require.NoError(t, err)
	assert.Equal(t, ledger.PayoutPending, retried.Status)
}

func TestPayerDoesNotBlockCalls(t *testing.T) {
	paying := make(chan struct{})
	release := make(chan struct{})
	payer := PayerFunc(func(_ context.Context, _ *ledger.Payout) error {
		close(paying)
		<-release
		return nil
	})
	c := newContract(t, payer)
	accounts := datagen.RandAddresses(2)
	_, err := c.OnTransfer(context.Background(), accounts[0], uint256.NewInt(500), "", t0)
	require.NoError(t, err)

	type result struct {
		payout *ledger.Payout
		err    error
	}
	unstaked := make(chan result, 1)
	go func() {
		payout, err := c.Unstake(context.Background(), accounts[0], t0+10)
		unstaked <- result{payout, err}
	}()
	<-paying

	deposited := make(chan error, 1)
	go func() {
		_, err := c.OnTransfer(context.Background(), accounts[1], uint256.NewInt(700), "", t0+10)
		if err == nil {
			_, err = c.GetStakeInfo(accounts[1], t0+10)
		}
		deposited <- err
	}()
	select {
	case err := <-deposited:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("deposit blocked by a payout in flight")
	}

	pending, err := c.Payouts(ledger.PayoutPending, 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	close(release)
	res := <-unstaked
	require.NoError(t, res.err)
	assert.Equal(t, ledger.PayoutCompleted, res.payout.Status)
}

func TestRejectedCallsLeaveNoHistory(t *testing.T) {
	c := newContract(t, nil)
	acc := datagen.RandAddress()

	_, err := c.OnTransfer(context.Background(), acc, uint256.NewInt(100), "", t0)
	require.NoError(t, err)

	_, err = c.OnTransfer(context.Background(), acc, uint256.NewInt(100), "", t0-1)
	assert.ErrorIs(t, err, ledger.ErrClockRegression)

	require.NoError(t, c.SetPaused(true))
	paused, err := c.Paused()
	require.NoError(t, err)
	assert.True(t, paused)
	_, err = c.OnTransfer(context.Background(), acc, uint256.NewInt(100), "", t0+1)
	assert.ErrorIs(t, err, ledger.ErrStakePaused)

	events, err := c.FilterEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestHistory(t *testing.T) {
	c := newContract(t, nil)
	acc := datagen.RandAddress()

	_, err := c.OnTransfer(context.Background(), acc, uint256.NewInt(1_000_000), "", t0)
	require.NoError(t, err)
	_, err = c.OnTransfer(context.Background(), acc, uint256.NewInt(1_000_000), "", t0+thor.SecondsPerYear)
	require.NoError(t, err)
	payout, err := c.Unstake(context.Background(), acc, t0+thor.SecondsPerYear)
	require.NoError(t, err)

	events, err := c.FilterEvents(context.Background(), &logdb.EventFilter{Account: &acc})
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, logdb.Deposit, events[1].Kind)
	assert.Equal(t, uint256.NewInt(25_000), events[1].Reward)
	assert.Equal(t, uint256.NewInt(2_025_000), events[1].Principal)

	assert.Equal(t, logdb.Unstake, events[2].Kind)
	assert.Equal(t, payout.ID, events[2].PayoutID)
	assert.Equal(t, uint256.NewInt(2_025_000), events[2].Amount)
	assert.True(t, events[2].Reward.IsZero())
}

func TestSubscribeStakeEvent(t *testing.T) {
	c := newContract(t, nil)
	acc := datagen.RandAddress()

	ch := make(chan *logdb.Event, 4)
	sub := c.SubscribeStakeEvent(ch)
	defer sub.Unsubscribe()

	_, err := c.OnTransfer(context.Background(), acc, uint256.NewInt(7), "", t0)
	require.NoError(t, err)
	_, err = c.Unstake(context.Background(), acc, t0+1)
	require.NoError(t, err)

	for _, kind := range []logdb.Kind{logdb.Deposit, logdb.Unstake} {
		select {
		case ev := <-ch:
			assert.Equal(t, kind, ev.Kind)
			assert.Equal(t, acc, ev.Account)
			assert.NotZero(t, ev.Seq)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for stake event")
		}
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	l, err := ledger.New(db, 0)
	require.NoError(t, err)

	c := New(l, nil, nil)
	sub := c.SubscribeStakeEvent(make(chan *logdb.Event))

	_, err = c.OnTransfer(context.Background(), datagen.RandAddress(), uint256.NewInt(7), "", t0)
	require.NoError(t, err)

	c.Close()
	select {
	case _, ok := <-sub.Err():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("subscription still open")
	}

	_, err = c.FilterEvents(context.Background(), nil)
	assert.Error(t, err)
}

func TestCallResult(t *testing.T) {
	assert.Equal(t, "ok", callResult(nil))
	assert.Equal(t, "zero_amount", callResult(ledger.ErrZeroAmount))
	assert.Equal(t, "overflow", callResult(ledger.ErrOverflow))
	assert.Equal(t, "error", callResult(errors.New("disk")))
}
