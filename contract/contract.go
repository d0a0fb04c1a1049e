// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package contract is the surface the host runtime calls. It serializes calls
// into the ledger, records their history and hands settled payouts over.
package contract

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/co"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/thor"
)

var logger = log.WithContext("pkg", "contract")

const dispatchQueueSize = 1024

// Payer delivers a settled amount to its account.
type Payer interface {
	// Pay returns nil once the transfer is done. An error leaves the payout failed.
	Pay(ctx context.Context, payout *ledger.Payout) error
}

// PayerFunc adapts a function to Payer.
type PayerFunc func(ctx context.Context, payout *ledger.Payout) error

func (f PayerFunc) Pay(ctx context.Context, payout *ledger.Payout) error { return f(ctx, payout) }

// Contract wraps a ledger with the host callbacks.
type Contract struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	logDB  *logdb.LogDB
	payer  Payer

	feed     event.Feed
	scope    event.SubscriptionScope
	dispatch chan *logdb.Event
	done     chan struct{}
	goes     co.Goes
}

// New creates a contract over l. logDB and payer are optional: without logDB no
// history is kept, without payer settled payouts stay pending until confirmed.
func New(l *ledger.Ledger, logDB *logdb.LogDB, payer Payer) *Contract {
	c := &Contract{
		ledger:   l,
		logDB:    logDB,
		payer:    payer,
		dispatch: make(chan *logdb.Event, dispatchQueueSize),
		done:     make(chan struct{}),
	}
	c.goes.Go(c.dispatchLoop)

	if totals, err := l.Totals(); err == nil {
		metricOpenStakes().Set(int64(totals.Accounts))
	}
	return c
}

// Close stops event delivery and ends all subscriptions.
func (c *Contract) Close() {
	close(c.done)
	c.scope.Close()
	c.goes.Wait()
}

// SubscribeStakeEvent delivers every applied deposit and unstake to ch.
func (c *Contract) SubscribeStakeEvent(ch chan *logdb.Event) event.Subscription {
	return c.scope.Track(c.feed.Subscribe(ch))
}

// OnTransfer handles the notification that sender transferred amount of the staked
// token to the contract. msg is not interpreted. It returns the accepted amount,
// which is all of amount when the deposit is applied.
func (c *Contract) OnTransfer(ctx context.Context, sender thor.Address, amount *uint256.Int, msg string, now uint64) (*uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	receipt, err := c.ledger.Deposit(sender, amount, now)
	if err != nil {
		metricsHandleCall("deposit", err)
		return nil, err
	}
	metricsHandleCall("deposit", nil)
	if receipt.Created {
		metricOpenStakes().Add(1)
	}

	c.publish(ctx, &logdb.Event{
		Kind:      logdb.Deposit,
		Account:   receipt.Account,
		Amount:    receipt.Amount,
		Reward:    receipt.Reward,
		Principal: receipt.Principal,
		Time:      receipt.Time,
	})
	return new(uint256.Int).Set(receipt.Amount), nil
}

// GetStakeInfo returns the live view of the stake of account, or nil without one.
func (c *Contract) GetStakeInfo(account thor.Address, now uint64) (*ledger.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ledger.GetStakeInfo(account, now)
}

// Unstake settles the stake of account and pays it out.
//
// The settlement is committed before the payer runs, and the payer runs without
// holding the contract lock. A failing payer marks the payout failed and the
// stake stays closed; the returned payout carries the final status.
func (c *Contract) Unstake(ctx context.Context, account thor.Address, now uint64) (*ledger.Payout, error) {
	payout, err := c.settle(ctx, account, now)
	if err != nil {
		return nil, err
	}

	if c.payer == nil {
		metricPayouts().AddWithLabel(1, map[string]string{"status": ledger.PayoutPending.String()})
		return payout, nil
	}

	status := ledger.PayoutCompleted
	if err := c.payer.Pay(ctx, payout); err != nil {
		logger.Warn("payout failed", "id", payout.ID, "account", payout.Account, "amount", payout.Amount, "err", err)
		status = ledger.PayoutFailed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	updated, err := c.ledger.SetPayoutStatus(payout.ID, status)
	if err != nil {
		// the settlement is committed, the journal keeps the last recorded status
		logger.Error("failed to record payout status", "id", payout.ID, "status", status, "err", err)
		return payout, nil
	}
	metricPayouts().AddWithLabel(1, map[string]string{"status": status.String()})
	return updated, nil
}

// settle commits the withdrawal and publishes it.
func (c *Contract) settle(ctx context.Context, account thor.Address, now uint64) (*ledger.Payout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payout, err := c.ledger.Unstake(account, now)
	if err != nil {
		metricsHandleCall("unstake", err)
		return nil, err
	}
	metricsHandleCall("unstake", nil)
	metricOpenStakes().Add(-1)

	c.publish(ctx, &logdb.Event{
		Kind:      logdb.Unstake,
		Account:   payout.Account,
		Amount:    payout.Amount,
		Reward:    payout.Reward,
		Principal: payout.Principal,
		Time:      payout.Time,
		PayoutID:  payout.ID,
	})
	return payout, nil
}

// ConfirmPayout records the outcome of a delivery carried out by the host.
func (c *Contract) ConfirmPayout(id uint64, ok bool) (*ledger.Payout, error) {
	status := ledger.PayoutCompleted
	if !ok {
		status = ledger.PayoutFailed
	}
	return c.SetPayoutStatus(id, status)
}

// SetPayoutStatus moves a payout along its delivery states.
func (c *Contract) SetPayoutStatus(id uint64, status ledger.PayoutStatus) (*ledger.Payout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	payout, err := c.ledger.SetPayoutStatus(id, status)
	if err != nil {
		return nil, err
	}
	metricPayouts().AddWithLabel(1, map[string]string{"status": status.String()})
	logger.Info("payout status changed", "id", id, "status", status)
	return payout, nil
}

func (c *Contract) Payout(id uint64) (*ledger.Payout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Payout(id)
}

func (c *Contract) Payouts(status ledger.PayoutStatus, offset, limit uint64) ([]*ledger.Payout, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Payouts(status, offset, limit)
}

func (c *Contract) Stakes(offset, limit uint64) ([]*ledger.Stake, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Stakes(offset, limit)
}

func (c *Contract) Totals() (*ledger.Totals, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Totals()
}

func (c *Contract) Paused() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Paused()
}

func (c *Contract) SetPaused(paused bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.SetPaused(paused)
}

// FilterEvents queries the event history.
func (c *Contract) FilterEvents(ctx context.Context, filter *logdb.EventFilter) ([]*logdb.Event, error) {
	if c.logDB == nil {
		return nil, errors.New("event history disabled")
	}
	return c.logDB.FilterEvents(ctx, filter)
}

// publish records ev and queues it for subscribers. The ledger has already
// committed, so failures here are logged and never reach the caller.
func (c *Contract) publish(ctx context.Context, ev *logdb.Event) {
	if c.logDB != nil {
		seq, err := c.logDB.Insert(ctx, ev)
		if err != nil {
			logger.Warn("failed to record stake event", "kind", ev.Kind, "account", ev.Account, "err", err)
			metricDroppedEvents().AddWithLabel(1, map[string]string{"stage": "history"})
		} else {
			ev.Seq = seq
		}
	}

	select {
	case c.dispatch <- ev:
	default:
		logger.Warn("event queue full, dropping", "kind", ev.Kind, "account", ev.Account)
		metricDroppedEvents().AddWithLabel(1, map[string]string{"stage": "feed"})
	}
}

func (c *Contract) dispatchLoop() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.dispatch:
			c.feed.Send(ev)
		}
	}
}
