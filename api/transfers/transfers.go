// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package transfers receives the notifications of tokens transferred in for staking.
package transfers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/types"
	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/contract"
)

type Transfers struct {
	contract *contract.Contract
	clock    utils.Clock
}

func New(c *contract.Contract, clock utils.Clock) *Transfers {
	return &Transfers{
		c,
		clock,
	}
}

func (t *Transfers) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body types.TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Sender == nil {
		return utils.BadRequest(errors.New("sender: missing"))
	}
	amount, err := types.ParseAmount(body.Amount)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "amount"))
	}

	accepted, err := t.contract.OnTransfer(req.Context(), *body.Sender, amount, body.Msg, t.clock())
	if err != nil {
		return utils.Ledger(err)
	}
	return utils.WriteJSON(w, &types.TransferResponse{
		Accepted: types.Amount(accepted),
	})
}

func (t *Transfers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("transfers_on_transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleTransfer))
}
