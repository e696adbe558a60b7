package cluster

import (
	"gonum.org/v1/gonum/floats"
)

// DistanceMatrix holds the pairwise Euclidean distances between n
// observations in condensed form: only the strict upper triangle is
// stored. It is symmetric with a zero diagonal by construction.
type DistanceMatrix struct {
	n    int
	data []float64
}

// NewDistanceMatrix computes all pairwise Euclidean distances. The
// observations must already be validated (same dimensionality, finite
// values); Cluster does this before calling.
func NewDistanceMatrix(obs []Observation) *DistanceMatrix {
	n := len(obs)
	dm := &DistanceMatrix{
		n:    n,
		data: make([]float64, n*(n-1)/2),
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dm.data[dm.index(i, j)] = floats.Distance(obs[i].Features, obs[j].Features, 2)
		}
	}
	return dm
}

func (m *DistanceMatrix) index(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return i*m.n - i*(i+1)/2 + j - i - 1
}

// Dim returns the number of observations the matrix covers.
func (m *DistanceMatrix) Dim() int { return m.n }

// At returns the distance between observations i and j.
func (m *DistanceMatrix) At(i, j int) float64 {
	if i == j {
		return 0
	}
	return m.data[m.index(i, j)]
}
