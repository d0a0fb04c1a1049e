// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/types"
	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/contract"
	"github.com/vechain/stakeledger/thor"
)

type Stakes struct {
	contract *contract.Contract
	clock    utils.Clock
}

func New(c *contract.Contract, clock utils.Clock) *Stakes {
	return &Stakes{
		c,
		clock,
	}
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	account, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	snapshot, err := s.contract.GetStakeInfo(account, s.clock())
	if err != nil {
		return utils.Ledger(err)
	}
	// no stake encodes as null
	return utils.WriteJSON(w, types.ConvertStakeInfo(snapshot))
}

func (s *Stakes) handleListStakes(w http.ResponseWriter, req *http.Request) error {
	offset, limit, err := utils.Page(req, thor.MaxPageLimit)
	if err != nil {
		return err
	}
	stakes, err := s.contract.Stakes(offset, limit)
	if err != nil {
		return err
	}
	list := make([]*types.Stake, 0, len(stakes))
	for _, stake := range stakes {
		list = append(list, types.ConvertStake(stake))
	}
	return utils.WriteJSON(w, list)
}

func (s *Stakes) handleGetTotals(w http.ResponseWriter, _ *http.Request) error {
	totals, err := s.contract.Totals()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertTotals(totals))
}

func (s *Stakes) handleGetParams(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &types.Params{
		RateNumerator:   thor.RateNumerator,
		RateDenominator: thor.RateDenominator,
		SecondsPerYear:  thor.SecondsPerYear,
	})
}

func (s *Stakes) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	account, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	payout, err := s.contract.Unstake(req.Context(), account, s.clock())
	if err != nil {
		return utils.Ledger(err)
	}
	return utils.WriteJSON(w, types.ConvertPayout(payout))
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("stakes_list_stakes").
		HandlerFunc(utils.WrapHandlerFunc(s.handleListStakes))
	sub.Path("/totals").
		Methods(http.MethodGet).
		Name("stakes_get_totals").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTotals))
	sub.Path("/params").
		Methods(http.MethodGet).
		Name("stakes_get_params").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetParams))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("stakes_get_stake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStake))
	sub.Path("/{address}/unstake").
		Methods(http.MethodPost).
		Name("stakes_unstake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleUnstake))
}
