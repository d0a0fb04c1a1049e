// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health tracks the conditions the ledger depends on outside its store.
package health

import (
	"sync"
	"time"
)

// DefaultMaxClockDrift is the largest local clock offset still considered healthy.
const DefaultMaxClockDrift = 10 * time.Second

type ClockCheck struct {
	Offset    time.Duration `json:"offset"`
	CheckedAt *time.Time    `json:"checkedAt"`
	Error     string        `json:"error,omitempty"`
}

type Status struct {
	Healthy bool        `json:"healthy"`
	Clock   *ClockCheck `json:"clock"`
	Storage string      `json:"storage,omitempty"`
}

// Health records the latest clock check. The clock drives reward accrual, so a
// drifting clock makes the service unhealthy.
type Health struct {
	lock      sync.RWMutex
	maxDrift  time.Duration
	offset    time.Duration
	checkedAt time.Time
	checkErr  error
}

func New(maxDrift time.Duration) *Health {
	if maxDrift <= 0 {
		maxDrift = DefaultMaxClockDrift
	}
	return &Health{maxDrift: maxDrift}
}

// ClockChecked stores the outcome of comparing the local clock to a time server.
func (h *Health) ClockChecked(offset time.Duration, err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.checkedAt = time.Now()
	h.offset = offset
	h.checkErr = err
}

// Status reports health. A clock never checked or not reachable counts as
// healthy; only a measured drift beyond the bound does not.
func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	check := &ClockCheck{Offset: h.offset}
	if !h.checkedAt.IsZero() {
		at := h.checkedAt
		check.CheckedAt = &at
	}
	healthy := true
	if h.checkErr != nil {
		check.Error = h.checkErr.Error()
	} else if h.offset > h.maxDrift || -h.offset > h.maxDrift {
		healthy = false
	}
	return &Status{
		Healthy: healthy,
		Clock:   check,
	}
}
