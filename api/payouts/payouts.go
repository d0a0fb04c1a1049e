// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package payouts exposes the payout journal to the workers delivering settlements.
package payouts

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/types"
	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/contract"
	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/thor"
)

type Payouts struct {
	contract *contract.Contract
}

func New(c *contract.Contract) *Payouts {
	return &Payouts{c}
}

func parseID(req *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (p *Payouts) handleListPayouts(w http.ResponseWriter, req *http.Request) error {
	status, ok := ledger.ParsePayoutStatus(req.URL.Query().Get("status"))
	if !ok {
		return utils.BadRequest(errors.New("status: unknown payout status"))
	}
	offset, limit, err := utils.Page(req, thor.MaxPageLimit)
	if err != nil {
		return err
	}
	payouts, err := p.contract.Payouts(status, offset, limit)
	if err != nil {
		return err
	}
	list := make([]*types.Payout, 0, len(payouts))
	for _, payout := range payouts {
		list = append(list, types.ConvertPayout(payout))
	}
	return utils.WriteJSON(w, list)
}

func (p *Payouts) handleGetPayout(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	payout, err := p.contract.Payout(id)
	if err != nil {
		if errors.Is(err, ledger.ErrPayoutNotFound) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, types.ConvertPayout(payout))
}

func (p *Payouts) handleSetStatus(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body types.PayoutStatusRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	status, ok := ledger.ParsePayoutStatus(body.Status)
	if !ok || status == ledger.PayoutAny {
		return utils.BadRequest(errors.New("status: must be pending, completed or failed"))
	}

	payout, err := p.contract.SetPayoutStatus(id, status)
	if err != nil {
		if errors.Is(err, ledger.ErrPayoutNotFound) {
			return utils.NotFound(err)
		}
		return utils.Ledger(err)
	}
	return utils.WriteJSON(w, types.ConvertPayout(payout))
}

func (p *Payouts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("payouts_list_payouts").
		HandlerFunc(utils.WrapHandlerFunc(p.handleListPayouts))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("payouts_get_payout").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPayout))
	sub.Path("/{id}").
		Methods(http.MethodPost).
		Name("payouts_set_status").
		HandlerFunc(utils.WrapHandlerFunc(p.handleSetStatus))
}
