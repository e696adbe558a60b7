package cluster

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs1D(vals ...float64) []Observation {
	out := make([]Observation, len(vals))
	for i, v := range vals {
		out[i] = Observation{Label: string(rune('a' + i)), Features: []float64{v}}
	}
	return out
}

func TestClusterSingleLinkageScenario(t *testing.T) {
	tree, err := Cluster(obs1D(1, 2, 10, 11), Single)
	require.NoError(t, err)
	require.Len(t, tree.Events, 3)

	// {1,2} and {10,11} both sit at distance 1; the pair containing
	// observation 0 merges first.
	assert.Equal(t, MergeEvent{Left: 0, Right: 1, Height: 1, ID: 4}, tree.Events[0])
	assert.Equal(t, MergeEvent{Left: 2, Right: 3, Height: 1, ID: 5}, tree.Events[1])

	final := tree.Events[2]
	assert.Equal(t, 4, final.Left)
	assert.Equal(t, 5, final.Right)
	assert.InDelta(t, 8.0, final.Height, 1e-12) // |10-2|
}

func TestClusterCompleteLinkageScenario(t *testing.T) {
	tree, err := Cluster(obs1D(1, 2, 10, 11), Complete)
	require.NoError(t, err)
	require.Len(t, tree.Events, 3)

	assert.InDelta(t, 1.0, tree.Events[0].Height, 1e-12)
	assert.InDelta(t, 1.0, tree.Events[1].Height, 1e-12)
	assert.InDelta(t, 10.0, tree.Events[2].Height, 1e-12) // |11-1|
}

func TestClusterEventCountAndFinalMembers(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, n := range []int{2, 3, 5, 12, 30} {
		obs := make([]Observation, n)
		for i := range obs {
			obs[i] = Observation{
				Label:    "site",
				Features: []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()},
			}
		}
		for _, linkage := range []Linkage{Complete, Single} {
			tree, err := Cluster(obs, linkage)
			require.NoError(t, err)
			require.Len(t, tree.Events, n-1, "n=%d linkage=%v", n, linkage)

			members := tree.Members(tree.Events[n-2].ID)
			require.Len(t, members, n)
			for i, m := range members {
				assert.Equal(t, i, m, "every observation exactly once, ascending")
			}
		}
	}
}

func TestClusterDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	obs := make([]Observation, 15)
	for i := range obs {
		obs[i] = Observation{Features: []float64{rng.Float64(), rng.Float64()}}
	}

	for _, linkage := range []Linkage{Complete, Single} {
		first, err := Cluster(obs, linkage)
		require.NoError(t, err)
		second, err := Cluster(obs, linkage)
		require.NoError(t, err)
		// Bit-for-bit identical events, including tie-break order.
		assert.Equal(t, first.Events, second.Events)
	}
}

func TestClusterMonotoneHeights(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	obs := make([]Observation, 25)
	for i := range obs {
		obs[i] = Observation{Features: []float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}}
	}

	for _, linkage := range []Linkage{Complete, Single} {
		tree, err := Cluster(obs, linkage)
		require.NoError(t, err)
		heights := tree.Heights()
		for i := 1; i < len(heights); i++ {
			assert.GreaterOrEqual(t, heights[i], heights[i-1],
				"inversion at step %d under %v linkage", i, linkage)
		}
	}
}

func TestDistanceMatrixSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	obs := make([]Observation, 9)
	for i := range obs {
		obs[i] = Observation{Features: []float64{rng.Float64(), rng.Float64(), rng.Float64()}}
	}
	dm := NewDistanceMatrix(obs)

	require.Equal(t, 9, dm.Dim())
	for i := 0; i < dm.Dim(); i++ {
		assert.Zero(t, dm.At(i, i))
		for j := 0; j < dm.Dim(); j++ {
			assert.Equal(t, dm.At(i, j), dm.At(j, i))
			assert.GreaterOrEqual(t, dm.At(i, j), 0.0)
		}
	}
}

func TestClusterInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		obs  []Observation
	}{
		{"no observations", nil},
		{"single observation", obs1D(1)},
		{"mismatched dimensions", []Observation{
			{Features: []float64{1, 2}},
			{Features: []float64{1}},
		}},
		{"NaN feature", []Observation{
			{Features: []float64{1}},
			{Features: []float64{math.NaN()}},
		}},
		{"infinite feature", []Observation{
			{Features: []float64{1}},
			{Features: []float64{math.Inf(1)}},
		}},
		{"empty feature vectors", []Observation{
			{Features: nil},
			{Features: nil},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Cluster(tt.obs, Complete)
			assert.Nil(t, tree)
			var invalid *InvalidInputError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestCut(t *testing.T) {
	tree, err := Cluster(obs1D(1, 2, 10, 11), Single)
	require.NoError(t, err)

	assign, err := tree.Cut(2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1}, assign)

	assign, err = tree.Cut(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0}, assign)

	assign, err = tree.Cut(4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, assign)

	_, err = tree.Cut(0)
	var invalid *InvalidInputError
	assert.ErrorAs(t, err, &invalid)
	_, err = tree.Cut(5)
	assert.ErrorAs(t, err, &invalid)
}

func TestParseLinkage(t *testing.T) {
	l, err := ParseLinkage("complete")
	require.NoError(t, err)
	assert.Equal(t, Complete, l)

	l, err = ParseLinkage("single")
	require.NoError(t, err)
	assert.Equal(t, Single, l)

	_, err = ParseLinkage("ward")
	assert.Error(t, err)
}
