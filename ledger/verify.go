// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/thor"
	"github.com/vechain/stakeledger/yield"
)

// Verify scans every stored record and checks it against the stored totals.
// progress, if not nil, is called once per record.
//
// It returns the totals recomputed from the records. The error describes the
// first inconsistency found.
func (l *Ledger) Verify(progress func(account thor.Address)) (*Totals, error) {
	stored, err := l.loadTotals()
	if err != nil {
		return nil, err
	}

	iter := l.stakes.Iterate(kv.Range{})
	defer iter.Release()

	computed := newTotals()
	for iter.Next() {
		account := thor.BytesToAddress(iter.Key())
		if progress != nil {
			progress(account)
		}

		var rec StakeRecord
		if err := rec.decode(iter.Value()); err != nil {
			return nil, errors.Wrapf(err, "decode stake record of %v", account)
		}
		if rec.Principal == nil || rec.Principal.IsZero() {
			return computed, errors.Errorf("stake record of %v has zero principal", account)
		}
		if computed.Staked, err = yield.Add(computed.Staked, rec.Principal); err != nil {
			return computed, errors.WithMessage(err, "sum of principals")
		}
		computed.Accounts++
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate stakes")
	}

	computed.Rewarded = new(uint256.Int).Set(stored.Rewarded)
	computed.Settled = new(uint256.Int).Set(stored.Settled)

	if !computed.Staked.Eq(stored.Staked) {
		return computed, errors.Errorf("staked total mismatch: stored %v, computed %v", stored.Staked, computed.Staked)
	}
	if computed.Accounts != stored.Accounts {
		return computed, errors.Errorf("account count mismatch: stored %v, computed %v", stored.Accounts, computed.Accounts)
	}
	return computed, nil
}
