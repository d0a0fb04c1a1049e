// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/thor"
)

// the largest power of ten a uint256 holds
const maxDecimals = 77

func openLedger(ctx *cli.Context) (*ledger.Ledger, func(), error) {
	dir := filepath.Join(ctx.String(dataDirFlag.Name), "ledger.db")
	if _, err := os.Stat(dir); err != nil {
		return nil, nil, errors.Wrapf(err, "ledger database [%v]", dir)
	}
	db, err := lvldb.New(dir, lvldb.Options{})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open ledger database [%v]", dir)
	}
	l, err := ledger.New(db, 0)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return l, func() { db.Close() }, nil
}

func readDecimals(ctx *cli.Context) (int32, error) {
	decimals := ctx.Uint64(decimalsFlag.Name)
	if decimals > maxDecimals {
		return 0, fmt.Errorf("invalid decimals %d, must be less than or equal to %d", decimals, maxDecimals)
	}
	return int32(decimals), nil
}

func printTotals(totals *ledger.Totals, decimals int32) {
	fmt.Printf(`    Open stakes   [ %v ]
    Staked        [ %v ]
    Rewarded      [ %v ]
    Settled       [ %v ]
    Reward rate   [ %v%% per year ]
`,
		totals.Accounts,
		formatAmount(totals.Staked, decimals),
		formatAmount(totals.Rewarded, decimals),
		formatAmount(totals.Settled, decimals),
		annualRate(),
	)
}

func infoAction(ctx *cli.Context) error {
	decimals, err := readDecimals(ctx)
	if err != nil {
		return err
	}
	l, closeDB, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	totals, err := l.Totals()
	if err != nil {
		return err
	}
	paused, err := l.Paused()
	if err != nil {
		return err
	}
	printTotals(totals, decimals)
	fmt.Printf("    Paused        [ %v ]\n", paused)
	return nil
}

func stakesAction(ctx *cli.Context) error {
	decimals, err := readDecimals(ctx)
	if err != nil {
		return err
	}
	now := ctx.Uint64(timeFlag.Name)
	if now == 0 {
		now = uint64(time.Now().Unix())
	}
	l, closeDB, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	return writeStakes(os.Stdout, l, now, decimals)
}

// writeStakes renders every open stake with its reward accrued until now.
func writeStakes(w io.Writer, l *ledger.Ledger, now uint64, decimals int32) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Account", "Principal", "Reward", "Since"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for offset := uint64(0); ; offset += thor.MaxPageLimit {
		stakes, err := l.Stakes(offset, thor.MaxPageLimit)
		if err != nil {
			return err
		}
		for _, stake := range stakes {
			snapshot, err := l.GetStakeInfo(stake.Account, now)
			if err != nil {
				return errors.WithMessagef(err, "stake of %v", stake.Account)
			}
			table.Append([]string{
				stake.Account.String(),
				formatAmount(snapshot.Amount, decimals),
				formatAmount(snapshot.AccumulatedReward, decimals),
				time.Unix(int64(snapshot.StartTime), 0).UTC().Format(time.RFC3339),
			})
		}
		if uint64(len(stakes)) < thor.MaxPageLimit {
			break
		}
	}
	table.Render()
	return nil
}

func verifyAction(ctx *cli.Context) error {
	decimals, err := readDecimals(ctx)
	if err != nil {
		return err
	}
	l, closeDB, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	stored, err := l.Totals()
	if err != nil {
		return err
	}

	fmt.Println(">> Verifying ledger <<")
	bar := pb.New64(int64(stored.Accounts)).
		Set64(0).
		SetMaxWidth(90).
		Start()
	defer func() { bar.NotPrint = true }()

	computed, err := l.Verify(func(thor.Address) { bar.Increment() })
	if err != nil {
		return errors.WithMessage(err, "ledger inconsistent")
	}
	bar.Finish()

	printTotals(computed, decimals)
	return nil
}
