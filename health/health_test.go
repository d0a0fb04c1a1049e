// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealth_Unchecked(t *testing.T) {
	h := New(0)
	assert.Equal(t, DefaultMaxClockDrift, h.maxDrift)

	status := h.Status()
	assert.True(t, status.Healthy)
	assert.Nil(t, status.Clock.CheckedAt)
}

func TestHealth_ClockChecked(t *testing.T) {
	h := New(time.Second)

	h.ClockChecked(500*time.Millisecond, nil)
	status := h.Status()
	assert.True(t, status.Healthy)
	assert.NotNil(t, status.Clock.CheckedAt)
	assert.Equal(t, 500*time.Millisecond, status.Clock.Offset)

	h.ClockChecked(-2*time.Second, nil)
	assert.False(t, h.Status().Healthy)

	h.ClockChecked(0, errors.New("no route to host"))
	status = h.Status()
	assert.True(t, status.Healthy)
	assert.Equal(t, "no route to host", status.Clock.Error)
}
