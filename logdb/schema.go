// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// amounts are 32-byte big endian
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS stake_event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind INTEGER NOT NULL,
	account BLOB(20) NOT NULL,
	amount BLOB(32) NOT NULL,
	reward BLOB(32) NOT NULL,
	principal BLOB(32) NOT NULL,
	time INTEGER NOT NULL,
	payout INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS stake_event_account ON stake_event(account);
CREATE INDEX IF NOT EXISTS stake_event_time ON stake_event(time);
`
