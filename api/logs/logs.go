// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logs serves the history of stake events.
package logs

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/types"
	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/contract"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/thor"
)

type Logs struct {
	contract *contract.Contract
	limit    uint64
}

func New(c *contract.Contract, logsLimit uint64) *Logs {
	return &Logs{
		c,
		logsLimit,
	}
}

func (l *Logs) parseFilter(req *http.Request) (*logdb.EventFilter, error) {
	query := req.URL.Query()
	filter := &logdb.EventFilter{}

	if s := query.Get("address"); s != "" {
		account, err := thor.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "address"))
		}
		filter.Account = &account
	}

	kind, ok := logdb.ParseKind(query.Get("kind"))
	if !ok {
		return nil, utils.BadRequest(errors.New("kind: must be deposit or unstake"))
	}
	filter.Kind = kind

	from, err := utils.QueryUint64(req, "from", 0)
	if err != nil {
		return nil, err
	}
	to, err := utils.QueryUint64(req, "to", math.MaxInt64)
	if err != nil {
		return nil, err
	}
	if from > math.MaxInt64 || to > math.MaxInt64 {
		return nil, utils.BadRequest(fmt.Errorf("range exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if from > to {
		return nil, utils.BadRequest(errors.New("to must be greater than or equal to from"))
	}
	if query.Has("from") || query.Has("to") {
		filter.Range = &logdb.Range{From: from, To: to}
	}

	switch order := logdb.Order(query.Get("order")); order {
	case "", logdb.ASC:
		filter.Order = logdb.ASC
	case logdb.DESC:
		filter.Order = logdb.DESC
	default:
		return nil, utils.BadRequest(errors.New("order: must be asc or desc"))
	}

	offset, err := utils.QueryUint64(req, "offset", 0)
	if err != nil {
		return nil, err
	}
	if offset > math.MaxInt64 {
		return nil, utils.BadRequest(fmt.Errorf("offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	// one above the limit detects results that would not fit
	limit, err := utils.QueryUint64(req, "limit", l.limit+1)
	if err != nil {
		return nil, err
	}
	if query.Has("limit") && limit > l.limit {
		return nil, utils.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", l.limit))
	}
	filter.Options = &logdb.Options{Offset: offset, Limit: limit}
	return filter, nil
}

func (l *Logs) handleFilterStakeEvents(w http.ResponseWriter, req *http.Request) error {
	filter, err := l.parseFilter(req)
	if err != nil {
		return err
	}
	events, err := l.contract.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	if uint64(len(events)) > l.limit {
		return utils.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", l.limit))
	}

	list := make([]*types.StakeEvent, 0, len(events))
	for _, ev := range events {
		list = append(list, types.ConvertStakeEvent(ev))
	}
	return utils.WriteJSON(w, list)
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/stakes").
		Methods(http.MethodGet).
		Name("logs_filter_stake_events").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterStakeEvents))
}
