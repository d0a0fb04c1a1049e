// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/test/datagen"
)

type op struct {
	Account uint8
	Amount  uint32
	Advance uint32
	Unstake bool
}

// Every unit ever deposited or rewarded is either still staked or settled.
func TestConservation(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(50, 200)
	accounts := datagen.RandAddresses(4)

	for round := range 20 {
		var ops []op
		f.Fuzz(&ops)

		l := newLedger(t)
		deposited := new(uint256.Int)
		now := t0
		for _, o := range ops {
			now += uint64(o.Advance % (30 * 24 * 3600))
			acc := accounts[int(o.Account)%len(accounts)]

			if o.Unstake {
				_, err := l.Unstake(acc, now)
				if err != nil {
					require.ErrorIs(t, err, ErrNoActiveStake, "round %d\n%s", round, spew.Sdump(ops))
				}
				continue
			}
			_, err := l.Deposit(acc, u(uint64(o.Amount)), now)
			if o.Amount == 0 {
				require.ErrorIs(t, err, ErrZeroAmount)
				continue
			}
			require.NoError(t, err, "round %d\n%s", round, spew.Sdump(ops))
			deposited.Add(deposited, u(uint64(o.Amount)))
		}

		totals, err := l.Totals()
		require.NoError(t, err)

		in := new(uint256.Int).Add(deposited, totals.Rewarded)
		out := new(uint256.Int).Add(totals.Staked, totals.Settled)
		require.Equal(t, in, out, "round %d totals %s\nops %s", round, spew.Sdump(totals), spew.Sdump(ops))

		_, err = l.Verify(nil)
		require.NoError(t, err, "round %d\n%s", round, spew.Sdump(ops))
	}
}
