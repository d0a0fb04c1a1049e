// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/thor"
)

const (
	stakesBucket  = kv.Bucket("s")
	globalsBucket = kv.Bucket("g")
	payoutsBucket = kv.Bucket("p")
)

var (
	totalsKey    = []byte("totals")
	pausedKey    = []byte("paused")
	payoutSeqKey = []byte("payout-seq")
)

func payoutKey(id uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], id)
	return k[:]
}

// batch groups the writes of one ledger call into a single atomic commit.
type batch struct {
	bulk    kv.Bulk
	stakes  kv.Putter
	globals kv.Putter
	payouts kv.Putter
}

func newBatch(store kv.Store) *batch {
	bulk := store.Bulk()
	return &batch{
		bulk:    bulk,
		stakes:  stakesBucket.NewPutter(bulk),
		globals: globalsBucket.NewPutter(bulk),
		payouts: payoutsBucket.NewPutter(bulk),
	}
}

func (b *batch) putRecord(account thor.Address, rec *StakeRecord) error {
	data, err := rec.encode()
	if err != nil {
		return errors.Wrap(err, "encode stake record")
	}
	return b.stakes.Put(account.Bytes(), data)
}

func (b *batch) deleteRecord(account thor.Address) error {
	return b.stakes.Delete(account.Bytes())
}

func (b *batch) putTotals(t *Totals) error {
	data, err := rlp.EncodeToBytes(t)
	if err != nil {
		return errors.Wrap(err, "encode totals")
	}
	return b.globals.Put(totalsKey, data)
}

func (b *batch) putPayout(p *Payout) error {
	data, err := rlp.EncodeToBytes(p)
	if err != nil {
		return errors.Wrap(err, "encode payout")
	}
	return b.payouts.Put(payoutKey(p.ID), data)
}

func (b *batch) putPayoutSeq(seq uint64) error {
	return b.globals.Put(payoutSeqKey, payoutKey(seq))
}

func (b *batch) commit() error {
	return errors.Wrap(b.bulk.Write(), "commit ledger batch")
}

// get loads key from getter and reports absence as (nil, nil).
func get(getter kv.Getter, key []byte) ([]byte, error) {
	data, err := getter.Get(key)
	if err != nil {
		if getter.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (l *Ledger) loadRecord(account thor.Address) (*StakeRecord, error) {
	data, err := get(l.stakes, account.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "load stake record")
	}
	if data == nil {
		return nil, nil
	}
	var rec StakeRecord
	if err := rec.decode(data); err != nil {
		return nil, errors.Wrap(err, "decode stake record")
	}
	return &rec, nil
}

// record returns the stored record of account, or nil if it has none.
// The returned record is shared with the cache and must not be modified.
func (l *Ledger) record(account thor.Address) (*StakeRecord, error) {
	return l.cache.GetOrLoad(account, l.loadRecord)
}

func (l *Ledger) loadTotals() (*Totals, error) {
	data, err := get(l.globals, totalsKey)
	if err != nil {
		return nil, errors.Wrap(err, "load totals")
	}
	t := newTotals()
	if data == nil {
		return t, nil
	}
	if err := rlp.DecodeBytes(data, t); err != nil {
		return nil, errors.Wrap(err, "decode totals")
	}
	return t, nil
}

func (l *Ledger) loadPayout(id uint64) (*Payout, error) {
	data, err := get(l.payouts, payoutKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "load payout")
	}
	if data == nil {
		return nil, nil
	}
	var p Payout
	if err := rlp.DecodeBytes(data, &p); err != nil {
		return nil, errors.Wrap(err, "decode payout")
	}
	return &p, nil
}

func (l *Ledger) loadPayoutSeq() (uint64, error) {
	data, err := get(l.globals, payoutSeqKey)
	if err != nil {
		return 0, errors.Wrap(err, "load payout sequence")
	}
	if len(data) != 8 {
		return 0, nil
	}
	return binary.BigEndian.Uint64(data), nil
}
