// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams stake events over websocket.
package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/api/types"
	"github.com/vechain/stakeledger/api/utils"
	"github.com/vechain/stakeledger/contract"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/thor"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 7) / 10

	eventBufferSize = 64
)

type Subscriptions struct {
	contract *contract.Contract
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(c *contract.Contract, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		contract: c,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// stakeFilter narrows a subscription to one account, one kind, or both.
type stakeFilter struct {
	account *thor.Address
	kind    logdb.Kind
}

func (f *stakeFilter) match(ev *logdb.Event) bool {
	if f.account != nil && *f.account != ev.Account {
		return false
	}
	return f.kind == logdb.AnyKind || f.kind == ev.Kind
}

func parseStakeFilter(req *http.Request) (*stakeFilter, error) {
	query := req.URL.Query()
	filter := &stakeFilter{}
	if s := query.Get("address"); s != "" {
		account, err := thor.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "address"))
		}
		filter.account = &account
	}
	kind, ok := logdb.ParseKind(query.Get("kind"))
	if !ok {
		return nil, utils.BadRequest(errors.New("kind: must be deposit or unstake"))
	}
	filter.kind = kind
	return filter, nil
}

func (s *Subscriptions) handleSubscribeStakes(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseStakeFilter(req)
	if err != nil {
		return err
	}

	// subscribed before the upgrade completes, so no event after the handshake is missed
	ch := make(chan *logdb.Event, eventBufferSize)
	sub := s.contract.SubscribeStakeEvent(ch)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	if err := s.pipe(conn, filter, ch, sub); err != nil {
		logger.Debug("subscription ended", "remote", req.RemoteAddr, "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, filter *stakeFilter, ch <-chan *logdb.Event, sub event.Subscription) error {
	closed := make(chan struct{})
	// the reader only detects closed connections and handles pongs
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-ch:
			if !filter.match(ev) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(types.ConvertStakeEvent(ev)); err != nil {
				return err
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case err := <-sub.Err():
			// feed closed by the contract
			closeConn(conn)
			return err
		case <-s.done:
			closeConn(conn)
			return nil
		case <-closed:
			return nil
		}
	}
}

func closeConn(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		logger.Debug("write close message", "err", err)
	}
}

// Close ends all open subscriptions and waits for their handlers.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/stakes").
		Methods(http.MethodGet).
		Name("WS /subscriptions/stakes").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeStakes))
}
