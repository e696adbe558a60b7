package forest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTune(t *testing.T) {
	xs, ys := makeData(90, 8)
	grid := Grid{
		Trees:   []int{10, 30},
		MTry:    []int{1, 2},
		MinLeaf: []int{3},
	}

	result, err := Tune(xs, ys, grid, 3, 42)
	require.NoError(t, err)
	require.Len(t, result.Candidates, 4)

	// The winner must actually carry the lowest CV RMSE.
	for _, c := range result.Candidates {
		assert.LessOrEqual(t, result.Best.CVRMSE, c.CVRMSE)
	}

	// A tuned forest on this data should explain most of the variance.
	assert.Greater(t, result.Best.CVR2, 0.7)
	assert.Greater(t, result.Best.CVMAE, 0.0)
}

func TestTuneDeterministic(t *testing.T) {
	xs, ys := makeData(60, 9)
	grid := Grid{Trees: []int{10}, MTry: []int{1, 2}, MinLeaf: []int{3}}

	a, err := Tune(xs, ys, grid, 3, 7)
	require.NoError(t, err)
	b, err := Tune(xs, ys, grid, 3, 7)
	require.NoError(t, err)

	assert.Equal(t, a.Candidates, b.Candidates)
	assert.Equal(t, a.Best, b.Best)
}

func TestTuneErrors(t *testing.T) {
	xs, ys := makeData(20, 10)
	grid := Grid{Trees: []int{10}, MTry: []int{1}, MinLeaf: []int{2}}

	_, err := Tune(xs, ys, grid, 1, 1)
	assert.Error(t, err, "fewer than 2 folds")

	_, err = Tune(xs, ys, grid, 21, 1)
	assert.Error(t, err, "more folds than rows")

	_, err = Tune(xs, ys, Grid{}, 3, 1)
	assert.Error(t, err, "empty grid")

	_, err = Tune(nil, nil, grid, 3, 1)
	assert.Error(t, err, "no data")
}

func TestSimplerTieBreak(t *testing.T) {
	base := Candidate{Params: Params{Trees: 300, MTry: 2, MinLeaf: 5}, CVRMSE: 1.0}

	tests := []struct {
		name string
		a    Candidate
		want bool
	}{
		{"lower rmse wins", Candidate{Params: Params{Trees: 500, MTry: 4, MinLeaf: 1}, CVRMSE: 0.9}, true},
		{"higher rmse loses", Candidate{Params: Params{Trees: 10, MTry: 1, MinLeaf: 10}, CVRMSE: 1.1}, false},
		{"tie: fewer trees wins", Candidate{Params: Params{Trees: 100, MTry: 2, MinLeaf: 5}, CVRMSE: 1.0}, true},
		{"tie: smaller mtry wins", Candidate{Params: Params{Trees: 300, MTry: 1, MinLeaf: 5}, CVRMSE: 1.0}, true},
		{"tie: larger leaf wins", Candidate{Params: Params{Trees: 300, MTry: 2, MinLeaf: 10}, CVRMSE: 1.0}, true},
		{"identical is not simpler", base, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, simpler(tt.a, base))
		})
	}
}
