// Package cluster implements agglomerative hierarchical clustering with
// complete and single linkage over Euclidean distances. The routine is a
// pure function: same observations and linkage always produce the same
// merge tree, including the order of equal-distance merges.
package cluster

import (
	"fmt"
	"math"
)

// active tracks one live cluster during agglomeration.
type active struct {
	id     int // node id (leaf index or n+merge step)
	minIdx int // lowest original observation index in the cluster
}

// Cluster builds the merge tree for the given observations.
//
// Preconditions: at least two observations, all feature vectors the same
// length, all values finite. Violations return *InvalidInputError.
//
// Ties at the minimum inter-cluster distance are broken toward the pair
// containing the lowest original observation index (then the lower index
// of the other cluster), so results are reproducible across runs.
func Cluster(obs []Observation, linkage Linkage) (*MergeTree, error) {
	if err := validate(obs); err != nil {
		return nil, err
	}
	if linkage != Complete && linkage != Single {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("unsupported linkage %v", linkage)}
	}

	n := len(obs)
	dm := NewDistanceMatrix(obs)

	// Working inter-cluster distance matrix, indexed by active slot.
	// Slots stay ordered by minIdx, which makes the first strict
	// minimum found during the scan the tie-break winner.
	dist := make([][]float64, n)
	actives := make([]active, n)
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		actives[i] = active{id: i, minIdx: i}
		labels[i] = obs[i].Label
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			dist[i][j] = dm.At(i, j)
		}
	}

	events := make([]MergeEvent, 0, n-1)
	for step := 0; len(actives) > 1; step++ {
		// Find the closest pair of active clusters.
		ai, bi := 0, 1
		best := dist[0][1]
		for i := 0; i < len(actives); i++ {
			for j := i + 1; j < len(actives); j++ {
				if dist[i][j] < best {
					best = dist[i][j]
					ai, bi = i, j
				}
			}
		}

		a, b := actives[ai], actives[bi]
		newID := n + step
		events = append(events, MergeEvent{
			Left:   a.id,
			Right:  b.id,
			Height: best,
			ID:     newID,
		})

		// Lance-Williams update: the merged cluster's distance to every
		// other cluster is the max (complete) or min (single) of the two
		// replaced distances. The merged cluster takes slot ai, keeping
		// a's minIdx, and slot bi is spliced out.
		for k := range actives {
			if k == ai || k == bi {
				continue
			}
			d := dist[ai][k]
			if linkage == Complete {
				d = math.Max(d, dist[bi][k])
			} else {
				d = math.Min(d, dist[bi][k])
			}
			dist[ai][k] = d
			dist[k][ai] = d
		}
		actives[ai] = active{id: newID, minIdx: a.minIdx}

		actives = append(actives[:bi], actives[bi+1:]...)
		dist = append(dist[:bi], dist[bi+1:]...)
		for k := range dist {
			dist[k] = append(dist[k][:bi], dist[k][bi+1:]...)
		}
	}

	return &MergeTree{Events: events, Labels: labels}, nil
}

func validate(obs []Observation) error {
	if len(obs) < 2 {
		return &InvalidInputError{Reason: fmt.Sprintf("need at least 2 observations, got %d", len(obs))}
	}
	dim := len(obs[0].Features)
	for i, o := range obs {
		if len(o.Features) != dim {
			return &InvalidInputError{Reason: fmt.Sprintf("observation %d (%s) has %d features, want %d", i, o.Label, len(o.Features), dim)}
		}
		for f, v := range o.Features {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &InvalidInputError{Reason: fmt.Sprintf("observation %d (%s) feature %d is not finite", i, o.Label, f)}
			}
		}
	}
	if dim == 0 {
		return &InvalidInputError{Reason: "observations have no features"}
	}
	return nil
}
