// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package yield

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeledger/thor"
)

func TestReward(t *testing.T) {
	tests := []struct {
		name      string
		principal uint64
		elapsed   uint64
		want      uint64
	}{
		{"zero elapsed", 1_000_000, 0, 0},
		{"zero principal", 0, thor.SecondsPerYear, 0},
		{"one year", 1_000_000, thor.SecondsPerYear, 25_000},
		{"half year", 1_000_000, thor.SecondsPerYear / 2, 12_500},
		{"two years", 1_000_000, 2 * thor.SecondsPerYear, 50_000},
		{"floored to zero", 1, thor.SecondsPerYear, 0},
		{"smallest unit", 40, thor.SecondsPerYear, 1},
		{"floor not round", 79, thor.SecondsPerYear, 1},
		{"one second", 1_000_000, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reward(uint256.NewInt(tt.principal), tt.elapsed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Uint64())
		})
	}
}

func TestRewardNilPrincipal(t *testing.T) {
	got, err := Reward(nil, 100)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestRewardOverflow(t *testing.T) {
	maxInt := new(uint256.Int).SetAllOne()

	_, err := Reward(maxInt, 1)
	assert.Equal(t, ErrOverflow, err)

	// fits after the rate multiplication, overflows on elapsed
	p := new(uint256.Int).Rsh(maxInt, 10)
	_, err = Reward(p, 1<<20)
	assert.Equal(t, ErrOverflow, err)

	// still representable
	p = new(uint256.Int).Rsh(maxInt, 80)
	_, err = Reward(p, thor.SecondsPerYear)
	assert.NoError(t, err)
}

func TestRewardProperties(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for range 1000 {
		var (
			p, t1, t2 uint64
		)
		f.Fuzz(&p)
		f.Fuzz(&t1)
		f.Fuzz(&t2)
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		principal := uint256.NewInt(p)

		r0, err := Reward(principal, 0)
		require.NoError(t, err)
		assert.True(t, r0.IsZero())

		// monotonic in elapsed
		r1, err := Reward(principal, t1)
		require.NoError(t, err)
		r2, err := Reward(principal, t2)
		require.NoError(t, err)
		assert.False(t, r1.Gt(r2), "p=%v t1=%v t2=%v", p, t1, t2)

		// scaling the principal never loses more than one unit to flooring
		doubled, err := Reward(new(uint256.Int).Lsh(principal, 1), t2)
		require.NoError(t, err)
		twice := new(uint256.Int).Lsh(r2, 1)
		require.False(t, doubled.Lt(twice), "p=%v t=%v", p, t2)
		assert.True(t, new(uint256.Int).Sub(doubled, twice).Cmp(uint256.NewInt(1)) <= 0, "p=%v t=%v", p, t2)
	}
}

func TestRewardMonotonicInPrincipal(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for range 1000 {
		var p1, p2, elapsed uint64
		f.Fuzz(&p1)
		f.Fuzz(&p2)
		f.Fuzz(&elapsed)
		if p1 > p2 {
			p1, p2 = p2, p1
		}
		r1, err := Reward(uint256.NewInt(p1), elapsed)
		require.NoError(t, err)
		r2, err := Reward(uint256.NewInt(p2), elapsed)
		require.NoError(t, err)
		assert.False(t, r1.Gt(r2))
	}
}

func TestAccrue(t *testing.T) {
	_, err := Accrue(uint256.NewInt(1), 10, 9)
	assert.Equal(t, ErrClockRegression, err)

	r, err := Accrue(uint256.NewInt(1_000_000), 100, 100+thor.SecondsPerYear)
	require.NoError(t, err)
	assert.Equal(t, uint64(25_000), r.Uint64())
}

func TestAddSub(t *testing.T) {
	maxInt := new(uint256.Int).SetAllOne()

	_, err := Add(maxInt, uint256.NewInt(1))
	assert.Equal(t, ErrOverflow, err)
	_, err = Sub(uint256.NewInt(1), uint256.NewInt(2))
	assert.Equal(t, ErrOverflow, err)

	sum, err := Add(uint256.NewInt(1), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), sum.Uint64())

	diff, err := Sub(uint256.NewInt(3), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), diff.Uint64())
}
