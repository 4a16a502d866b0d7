package ecf_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sot/chandra-ecf/ecf"
)

func TestAxisBracket(t *testing.T) {
	ax := ecf.Axis{Name: "THETA", Values: []float64{1, 4, 8, 16, 32}}
	tests := []struct {
		x          float64
		wantIndex  [2]int
		wantWeight [2]float64
	}{
		{1, [2]int{0, 1}, [2]float64{1, 0}},       // exact min
		{4, [2]int{1, 2}, [2]float64{1, 0}},       // exact interior point is the lower bracket
		{5, [2]int{1, 2}, [2]float64{0.75, 0.25}}, // between 4 and 8
		{2.5, [2]int{0, 1}, [2]float64{0.5, 0.5}}, // midpoint
		{24, [2]int{3, 4}, [2]float64{0.5, 0.5}},  // last segment
	}
	for _, tc := range tests {
		br, err := ax.Bracket(tc.x)
		require.NoError(t, err, "x=%v", tc.x)
		assert.Equal(t, tc.wantIndex, br.Index, "x=%v", tc.x)
		assert.InDelta(t, tc.wantWeight[0], br.Weight[0], 1e-12, "x=%v", tc.x)
		assert.InDelta(t, tc.wantWeight[1], br.Weight[1], 1e-12, "x=%v", tc.x)
		assert.InDelta(t, 1.0, br.Weight[0]+br.Weight[1], 1e-12)
	}
}

func TestAxisBracket_ReconstructsValue(t *testing.T) {
	ax := ecf.Axis{Name: "ENERGY", Values: []float64{0.277, 0.5, 1.49, 4.51, 6.4, 8.6}}
	for _, x := range []float64{0.277, 0.3, 1.0, 1.49, 2.0, 6.39, 8.5} {
		br, err := ax.Bracket(x)
		require.NoError(t, err)
		got := br.Weight[0]*ax.Values[br.Index[0]] + br.Weight[1]*ax.Values[br.Index[1]]
		assert.InDelta(t, x, got, 1e-12, "x=%v", x)
		assert.GreaterOrEqual(t, br.Weight[0], 0.0)
		assert.LessOrEqual(t, br.Weight[1], 1.0)
	}
}

func TestAxisBracket_OutOfRange(t *testing.T) {
	ax := ecf.Axis{Name: "THETA", Values: []float64{1, 4, 8, 16, 32}}
	for _, x := range []float64{0.999, -5, 32, 32.5, math.NaN(), math.Inf(1)} {
		_, err := ax.Bracket(x)
		var oor *ecf.OutOfRangeError
		require.True(t, errors.As(err, &oor), "x=%v: expected OutOfRangeError, got %v", x, err)
		assert.Equal(t, "THETA", oor.Axis)
		assert.Equal(t, 1.0, oor.Min)
		assert.Equal(t, 32.0, oor.Max)
	}
}

func TestAxisBracket_LastPointIsOutOfRange(t *testing.T) {
	// GIVEN an axis whose last coordinate has no upper neighbour
	ax := ecf.Axis{Name: "ECF", Values: []float64{0.1, 0.5, 0.9}}

	// WHEN bracketing exactly at the last coordinate
	_, err := ax.Bracket(0.9)

	// THEN it is rejected rather than bracketed with a missing upper index
	require.Error(t, err)
	assert.Equal(t, "ECF=0.9 not in range of axis [0.1, 0.9)", err.Error())
}
