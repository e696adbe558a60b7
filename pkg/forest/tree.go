package forest

import (
	"math/rand"
	"sort"
)

// node is one regression-tree node. Leaves have Left == nil and carry
// the mean target of their training rows in Value. Fields are exported
// so a trained tree survives msgpack round-trips.
type node struct {
	Feature   int
	Threshold float64
	Value     float64
	Left      *node
	Right     *node
}

func (nd *node) predict(x []float64) float64 {
	for nd.Left != nil {
		if x[nd.Feature] <= nd.Threshold {
			nd = nd.Left
		} else {
			nd = nd.Right
		}
	}
	return nd.Value
}

// buildTree grows a CART regression tree over the rows in idx using
// variance-reduction splits. At every node an MTry-sized random subset
// of features is considered, which is what decorrelates the ensemble.
func buildTree(xs [][]float64, ys []float64, idx []int, p Params, rng *rand.Rand, depth int) *node {
	mean := meanAt(ys, idx)
	if len(idx) < 2*p.MinLeaf || (p.MaxDepth > 0 && depth >= p.MaxDepth) {
		return &node{Value: mean}
	}

	feature, threshold, ok := bestSplit(xs, ys, idx, p, rng)
	if !ok {
		return &node{Value: mean}
	}

	var left, right []int
	for _, i := range idx {
		if xs[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &node{
		Feature:   feature,
		Threshold: threshold,
		Value:     mean,
		Left:      buildTree(xs, ys, left, p, rng, depth+1),
		Right:     buildTree(xs, ys, right, p, rng, depth+1),
	}
}

// bestSplit scans an MTry-sized feature sample for the split that
// minimizes the summed squared error of the two children. Returns
// ok=false when no split leaves MinLeaf rows on each side.
func bestSplit(xs [][]float64, ys []float64, idx []int, p Params, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(xs[0])
	perm := rng.Perm(numFeatures)
	mtry := p.MTry
	if mtry > numFeatures {
		mtry = numFeatures
	}

	bestSSE := sseAt(ys, idx)
	bestFeature, bestThreshold := -1, 0.0
	found := false

	order := make([]int, len(idx))
	for _, f := range perm[:mtry] {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			if xs[order[a]][f] != xs[order[b]][f] {
				return xs[order[a]][f] < xs[order[b]][f]
			}
			return order[a] < order[b] // stable under equal values
		})

		// Incremental SSE scan: move rows one by one from right to left.
		n := len(order)
		var sumL, sqL float64
		sumR, sqR := 0.0, 0.0
		for _, i := range order {
			sumR += ys[i]
			sqR += ys[i] * ys[i]
		}

		for k := 0; k < n-1; k++ {
			y := ys[order[k]]
			sumL += y
			sqL += y * y
			sumR -= y
			sqR -= y * y

			nl, nr := k+1, n-k-1
			if nl < p.MinLeaf || nr < p.MinLeaf {
				continue
			}
			// No split between equal feature values.
			if xs[order[k]][f] == xs[order[k+1]][f] {
				continue
			}

			sse := (sqL - sumL*sumL/float64(nl)) + (sqR - sumR*sumR/float64(nr))
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = (xs[order[k]][f] + xs[order[k+1]][f]) / 2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func meanAt(ys []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += ys[i]
	}
	return sum / float64(len(idx))
}

func sseAt(ys []float64, idx []int) float64 {
	mean := meanAt(ys, idx)
	var sse float64
	for _, i := range idx {
		d := ys[i] - mean
		sse += d * d
	}
	return sse
}
