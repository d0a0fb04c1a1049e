// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/kv"
)

// Payout returns the journal entry with the given id.
func (l *Ledger) Payout(id uint64) (*Payout, error) {
	p, err := l.loadPayout(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPayoutNotFound
	}
	return p, nil
}

// Payouts lists journal entries in id order. PayoutAny matches every status.
func (l *Ledger) Payouts(status PayoutStatus, offset, limit uint64) ([]*Payout, error) {
	limit = pageLimit(limit)

	iter := l.payouts.Iterate(kv.Range{})
	defer iter.Release()

	var (
		payouts = make([]*Payout, 0, limit)
		matched uint64
	)
	for iter.Next() && uint64(len(payouts)) < limit {
		var p Payout
		if err := rlp.DecodeBytes(iter.Value(), &p); err != nil {
			return nil, errors.Wrap(err, "decode payout")
		}
		if status != PayoutAny && p.Status != status {
			continue
		}
		matched++
		if matched <= offset {
			continue
		}
		payouts = append(payouts, &p)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate payouts")
	}
	return payouts, nil
}

// SetPayoutStatus records the delivery outcome of a payout.
//
// Allowed transitions are pending to completed or failed, and failed back to
// pending for a retry. Completed is final.
func (l *Ledger) SetPayoutStatus(id uint64, status PayoutStatus) (*Payout, error) {
	p, err := l.Payout(id)
	if err != nil {
		return nil, err
	}
	if !validTransition(p.Status, status) {
		return nil, ErrInvalidPayoutStatus
	}
	p.Status = status

	b := newBatch(l.store)
	if err := b.putPayout(p); err != nil {
		return nil, err
	}
	if err := b.commit(); err != nil {
		return nil, err
	}

	logger.Debug("payout status changed", "id", id, "status", status)
	return p, nil
}

func validTransition(from, to PayoutStatus) bool {
	switch from {
	case PayoutPending:
		return to == PayoutCompleted || to == PayoutFailed
	case PayoutFailed:
		return to == PayoutPending
	}
	return false
}
