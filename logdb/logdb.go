// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb keeps the history of stake events in sqlite.
package logdb

import (
	"context"
	"database/sql"

	"github.com/holiman/uint256"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/thor"
)

const memPath = ":memory:"

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	if path == memPath {
		// every connection to :memory: opens a distinct database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(memPath)
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Insert records ev and returns its sequence number. ev.Seq is ignored.
func (db *LogDB) Insert(ctx context.Context, ev *Event) (uint64, error) {
	res, err := db.db.ExecContext(ctx,
		"INSERT INTO stake_event(kind, account, amount, reward, principal, time, payout) VALUES(?, ?, ?, ?, ?, ?, ?)",
		uint8(ev.Kind),
		ev.Account.Bytes(),
		amountBytes(ev.Amount),
		amountBytes(ev.Reward),
		amountBytes(ev.Principal),
		ev.Time,
		ev.PayoutID,
	)
	if err != nil {
		return 0, errors.Wrap(err, "insert stake event")
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "insert stake event")
	}
	return uint64(seq), nil
}

// FilterEvents returns the events matching filter.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT seq, kind, account, amount, reward, principal, time, payout FROM stake_event"
	if filter == nil {
		return db.queryEvents(ctx, query+" ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	if filter.Account != nil {
		args = append(args, filter.Account.Bytes())
		stmt += " AND account = ? "
	}
	if filter.Kind != AnyKind {
		args = append(args, uint8(filter.Kind))
		stmt += " AND kind = ? "
	}
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND time >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND time <= ? "
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query stake events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       uint64
			kind      uint8
			account   []byte
			amount    []byte
			reward    []byte
			principal []byte
			time      uint64
			payout    uint64
		)
		if err := rows.Scan(&seq, &kind, &account, &amount, &reward, &principal, &time, &payout); err != nil {
			return nil, errors.Wrap(err, "scan stake event")
		}
		events = append(events, &Event{
			Seq:       seq,
			Kind:      Kind(kind),
			Account:   thor.BytesToAddress(account),
			Amount:    new(uint256.Int).SetBytes(amount),
			Reward:    new(uint256.Int).SetBytes(reward),
			Principal: new(uint256.Int).SetBytes(principal),
			Time:      time,
			PayoutID:  payout,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "query stake events")
	}
	return events, nil
}

func amountBytes(v *uint256.Int) []byte {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	return b[:]
}
