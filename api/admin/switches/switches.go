// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package switches exposes boolean settings on the admin api.
package switches

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/log"
)

var logger = log.WithContext("pkg", "switches")

// Switch reads and writes one setting as {"<key>": bool}.
type Switch struct {
	key string
	get func() (bool, error)
	set func(bool) error
	mu  sync.Mutex
}

func New(key string, get func() (bool, error), set func(bool) error) *Switch {
	return &Switch{
		key: key,
		get: get,
		set: set,
	}
}

// NewAtomic creates a switch backed by v.
func NewAtomic(key string, v *atomic.Bool) *Switch {
	return New(key,
		func() (bool, error) { return v.Load(), nil },
		func(b bool) error { v.Store(b); return nil },
	)
}

func (s *Switch) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("get-" + s.key).
		HandlerFunc(utils.WrapHandlerFunc(s.handleGet))

	sub.Path("").
		Methods(http.MethodPost).
		Name("post-" + s.key).
		HandlerFunc(utils.WrapHandlerFunc(s.handleSet))
}

func (s *Switch) write(w http.ResponseWriter) error {
	v, err := s.get()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, map[string]bool{s.key: v})
}

func (s *Switch) handleGet(w http.ResponseWriter, _ *http.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(w)
}

func (s *Switch) handleSet(w http.ResponseWriter, r *http.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var req map[string]bool
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	v, ok := req[s.key]
	if !ok || len(req) != 1 {
		return utils.BadRequest(errors.Errorf("body: expected only %q", s.key))
	}
	if err := s.set(v); err != nil {
		return err
	}
	logger.Info("switch updated", s.key, v)

	return s.write(w)
}
