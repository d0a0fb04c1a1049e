// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoes(t *testing.T) {
	var (
		g     Goes
		count atomic.Int32
	)
	for range 10 {
		g.Go(func() { count.Add(1) })
	}
	g.Wait()
	assert.Equal(t, int32(10), count.Load())

	select {
	case <-g.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed")
	}
}

func TestGoesEvery(t *testing.T) {
	var (
		g     Goes
		count atomic.Int32
	)
	ctx, cancel := context.WithCancel(context.Background())
	g.Every(ctx, time.Millisecond, func(context.Context) {
		if count.Add(1) == 3 {
			cancel()
		}
	})

	select {
	case <-g.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.GreaterOrEqual(t, count.Load(), int32(3))
}
