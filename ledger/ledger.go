// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger keeps the stake of every account and settles principal plus
// accrued reward on withdrawal.
//
// A Ledger is not safe for concurrent use. Callers serialize access, each call
// runs to completion and commits its writes in one atomic batch or not at all.
package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/cache"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/yield"
)

var logger = log.WithContext("pkg", "ledger")

// DefaultCacheSize is the number of records kept decoded in memory.
const DefaultCacheSize = 4096

// Ledger maps accounts to stake records on top of a kv store.
type Ledger struct {
	store   kv.Store
	stakes  kv.Store
	globals kv.Store
	payouts kv.Store

	// nil values cache absence
	cache *cache.LRU[thor.Address, *StakeRecord]
}

// New creates a ledger over store. cacheSize <= 0 selects DefaultCacheSize.
func New(store kv.Store, cacheSize int) (*Ledger, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	c, err := cache.NewLRU[thor.Address, *StakeRecord](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create record cache")
	}
	return &Ledger{
		store:   store,
		stakes:  stakesBucket.NewStore(store),
		globals: globalsBucket.NewStore(store),
		payouts: payoutsBucket.NewStore(store),
		cache:   c,
	}, nil
}

// Deposit adds amount to the stake of account at time now.
//
// An existing stake is re-based first: the reward pending since its start time
// is folded into the principal and the start time moves to now.
func (l *Ledger) Deposit(account thor.Address, amount *uint256.Int, now uint64) (*DepositReceipt, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrZeroAmount
	}
	paused, err := l.Paused()
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, ErrStakePaused
	}

	rec, err := l.record(account)
	if err != nil {
		return nil, err
	}
	totals, err := l.loadTotals()
	if err != nil {
		return nil, err
	}

	pending := new(uint256.Int)
	principal := new(uint256.Int).Set(amount)
	if rec != nil {
		if pending, err = yield.Accrue(rec.Principal, rec.StartTime, now); err != nil {
			return nil, err
		}
		if principal, err = yield.Add(principal, rec.Principal); err != nil {
			return nil, err
		}
		if principal, err = yield.Add(principal, pending); err != nil {
			return nil, err
		}
	} else {
		totals.Accounts++
	}

	increase, err := yield.Add(amount, pending)
	if err != nil {
		return nil, err
	}
	if totals.Staked, err = yield.Add(totals.Staked, increase); err != nil {
		return nil, err
	}
	if totals.Rewarded, err = yield.Add(totals.Rewarded, pending); err != nil {
		return nil, err
	}

	next := &StakeRecord{Principal: principal, StartTime: now}

	b := newBatch(l.store)
	if err := b.putRecord(account, next); err != nil {
		return nil, err
	}
	if err := b.putTotals(totals); err != nil {
		return nil, err
	}
	if err := b.commit(); err != nil {
		l.cache.Remove(account)
		return nil, err
	}
	l.cache.Add(account, next)

	logger.Debug("deposited", "account", account, "amount", amount, "reward", pending, "principal", principal)

	return &DepositReceipt{
		Account:   account,
		Amount:    new(uint256.Int).Set(amount),
		Reward:    pending,
		Principal: new(uint256.Int).Set(principal),
		Time:      now,
		Created:   rec == nil,
	}, nil
}

// GetStakeInfo returns the live view of the stake of account at time now, or
// nil if account has no stake. It never modifies the ledger.
func (l *Ledger) GetStakeInfo(account thor.Address, now uint64) (*Snapshot, error) {
	rec, err := l.record(account)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	reward, err := yield.Accrue(rec.Principal, rec.StartTime, now)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Amount:            new(uint256.Int).Set(rec.Principal),
		AccumulatedReward: reward,
		StartTime:         rec.StartTime,
	}, nil
}

// Unstake settles the whole stake of account at time now.
//
// The record is removed and a pending payout of principal plus final reward is
// journaled in the same commit. The returned payout is owed to the account;
// delivering it is up to the caller.
func (l *Ledger) Unstake(account thor.Address, now uint64) (*Payout, error) {
	rec, err := l.record(account)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoActiveStake
	}

	reward, err := yield.Accrue(rec.Principal, rec.StartTime, now)
	if err != nil {
		return nil, err
	}
	amount, err := yield.Add(rec.Principal, reward)
	if err != nil {
		return nil, err
	}

	totals, err := l.loadTotals()
	if err != nil {
		return nil, err
	}
	if totals.Staked, err = yield.Sub(totals.Staked, rec.Principal); err != nil {
		return nil, errors.WithMessage(err, "staked total below principal")
	}
	if totals.Rewarded, err = yield.Add(totals.Rewarded, reward); err != nil {
		return nil, err
	}
	if totals.Settled, err = yield.Add(totals.Settled, amount); err != nil {
		return nil, err
	}
	if totals.Accounts == 0 {
		return nil, errors.New("account count underflow")
	}
	totals.Accounts--

	seq, err := l.loadPayoutSeq()
	if err != nil {
		return nil, err
	}
	payout := &Payout{
		ID:        seq + 1,
		Account:   account,
		Principal: new(uint256.Int).Set(rec.Principal),
		Reward:    reward,
		Amount:    amount,
		Time:      now,
		Status:    PayoutPending,
	}

	b := newBatch(l.store)
	if err := b.deleteRecord(account); err != nil {
		return nil, err
	}
	if err := b.putTotals(totals); err != nil {
		return nil, err
	}
	if err := b.putPayout(payout); err != nil {
		return nil, err
	}
	if err := b.putPayoutSeq(payout.ID); err != nil {
		return nil, err
	}
	if err := b.commit(); err != nil {
		l.cache.Remove(account)
		return nil, err
	}
	l.cache.Add(account, nil)

	logger.Debug("unstaked", "account", account, "principal", payout.Principal, "reward", reward, "payout", payout.ID)
	return payout, nil
}

// Stakes lists open stakes in store order, skipping offset entries.
// A zero limit selects thor.DefaultPageLimit; limits above thor.MaxPageLimit are capped.
func (l *Ledger) Stakes(offset, limit uint64) ([]*Stake, error) {
	limit = pageLimit(limit)

	iter := l.stakes.Iterate(kv.Range{})
	defer iter.Release()

	stakes := make([]*Stake, 0, limit)
	for i := uint64(0); iter.Next(); i++ {
		if i < offset {
			continue
		}
		if uint64(len(stakes)) >= limit {
			break
		}
		var rec StakeRecord
		if err := rec.decode(iter.Value()); err != nil {
			return nil, errors.Wrap(err, "decode stake record")
		}
		stakes = append(stakes, &Stake{
			Account: thor.BytesToAddress(iter.Key()),
			Record:  &rec,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate stakes")
	}
	return stakes, nil
}

// Totals returns the aggregate figures of the ledger.
func (l *Ledger) Totals() (*Totals, error) {
	return l.loadTotals()
}

// Paused returns whether new deposits are refused.
func (l *Ledger) Paused() (bool, error) {
	data, err := get(l.globals, pausedKey)
	if err != nil {
		return false, errors.Wrap(err, "load paused flag")
	}
	return len(data) == 1 && data[0] == 1, nil
}

// SetPaused stops or resumes accepting deposits. Withdrawals are never paused.
func (l *Ledger) SetPaused(paused bool) error {
	var err error
	if paused {
		err = l.globals.Put(pausedKey, []byte{1})
	} else {
		err = l.globals.Delete(pausedKey)
	}
	if err != nil {
		return errors.Wrap(err, "store paused flag")
	}
	logger.Info("staking pause changed", "paused", paused)
	return nil
}

func pageLimit(limit uint64) uint64 {
	if limit == 0 {
		return thor.DefaultPageLimit
	}
	return min(limit, thor.MaxPageLimit)
}
