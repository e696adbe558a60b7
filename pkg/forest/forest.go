// Package forest implements a regression random forest (bootstrap-bagged
// CART trees with per-node feature sampling) together with k-fold
// cross-validated hyperparameter tuning. Everything is deterministic
// under a fixed seed: bootstrap draws, feature sampling, and fold
// shuffling all derive from it.
package forest

import (
	"fmt"
	"math"
	"math/rand"
)

// Params are the forest hyperparameters.
type Params struct {
	Trees    int   // number of trees in the ensemble
	MTry     int   // features sampled per split
	MinLeaf  int   // minimum rows per leaf
	MaxDepth int   // 0 means unlimited
	Seed     int64 // drives all randomness
}

// DefaultParams returns the usual regression defaults: p/3 features per
// split, leaves of at least 5 rows.
func DefaultParams(numFeatures int) Params {
	mtry := numFeatures / 3
	if mtry < 1 {
		mtry = 1
	}
	return Params{Trees: 300, MTry: mtry, MinLeaf: 5, Seed: 1}
}

// Forest is a trained ensemble. Roots and the shape fields are exported
// so Save/LoadForest can serialize a model; out-of-bag state is not
// persisted.
type Forest struct {
	Roots       []*node
	NumFeatures int
	Params      Params

	oobPred  []float64
	oobCount []int
	trainY   []float64
}

// Train fits a random forest to the rows of xs and targets ys.
func Train(xs [][]float64, ys []float64, p Params) (*Forest, error) {
	if err := validateData(xs, ys); err != nil {
		return nil, err
	}
	numFeatures := len(xs[0])
	if p.Trees < 1 {
		return nil, fmt.Errorf("forest: need at least 1 tree, got %d", p.Trees)
	}
	if p.MTry < 1 || p.MTry > numFeatures {
		return nil, fmt.Errorf("forest: mtry %d out of range [1,%d]", p.MTry, numFeatures)
	}
	if p.MinLeaf < 1 {
		return nil, fmt.Errorf("forest: min leaf %d must be positive", p.MinLeaf)
	}

	n := len(xs)
	f := &Forest{
		Roots:       make([]*node, p.Trees),
		NumFeatures: numFeatures,
		Params:      p,
		oobPred:     make([]float64, n),
		oobCount:    make([]int, n),
		trainY:      append([]float64(nil), ys...),
	}

	rng := rand.New(rand.NewSource(p.Seed))
	inBag := make([]bool, n)
	for t := 0; t < p.Trees; t++ {
		treeRNG := rand.New(rand.NewSource(rng.Int63()))

		for i := range inBag {
			inBag[i] = false
		}
		sample := make([]int, n)
		for i := range sample {
			j := treeRNG.Intn(n)
			sample[i] = j
			inBag[j] = true
		}

		f.Roots[t] = buildTree(xs, ys, sample, p, treeRNG, 0)

		for i := 0; i < n; i++ {
			if !inBag[i] {
				f.oobPred[i] += f.Roots[t].predict(xs[i])
				f.oobCount[i]++
			}
		}
	}

	return f, nil
}

// Predict returns the ensemble mean for one feature vector.
func (f *Forest) Predict(x []float64) float64 {
	var sum float64
	for _, root := range f.Roots {
		sum += root.predict(x)
	}
	return sum / float64(len(f.Roots))
}

// PredictAll predicts every row of xs.
func (f *Forest) PredictAll(xs [][]float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = f.Predict(x)
	}
	return out
}

// OOBError returns the out-of-bag RMSE from training. It is NaN for a
// loaded model (OOB state is not persisted) or when every row was
// in-bag for every tree.
func (f *Forest) OOBError() float64 {
	if f.oobCount == nil {
		return math.NaN()
	}
	var sse float64
	n := 0
	for i, c := range f.oobCount {
		if c == 0 {
			continue
		}
		d := f.oobPred[i]/float64(c) - f.trainY[i]
		sse += d * d
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return math.Sqrt(sse / float64(n))
}

// Importance computes permutation importance over the given data: the
// increase in RMSE when one feature column is shuffled. Larger means
// the model leans on that feature more.
func (f *Forest) Importance(xs [][]float64, ys []float64) ([]float64, error) {
	if err := validateData(xs, ys); err != nil {
		return nil, err
	}
	if len(xs[0]) != f.NumFeatures {
		return nil, fmt.Errorf("forest: data has %d features, model wants %d", len(xs[0]), f.NumFeatures)
	}

	base := RMSE(ys, f.PredictAll(xs))
	n := len(xs)
	imp := make([]float64, f.NumFeatures)
	shuffled := make([][]float64, n)
	col := make([]float64, n)

	for j := 0; j < f.NumFeatures; j++ {
		rng := rand.New(rand.NewSource(f.Params.Seed + int64(j) + 1))
		for i := range col {
			col[i] = xs[i][j]
		}
		rng.Shuffle(n, func(a, b int) { col[a], col[b] = col[b], col[a] })

		for i := range shuffled {
			row := append([]float64(nil), xs[i]...)
			row[j] = col[i]
			shuffled[i] = row
		}
		imp[j] = RMSE(ys, f.PredictAll(shuffled)) - base
	}
	return imp, nil
}

func validateData(xs [][]float64, ys []float64) error {
	if len(xs) == 0 {
		return fmt.Errorf("forest: no rows")
	}
	if len(xs) != len(ys) {
		return fmt.Errorf("forest: %d rows but %d targets", len(xs), len(ys))
	}
	width := len(xs[0])
	if width == 0 {
		return fmt.Errorf("forest: rows have no features")
	}
	for i, row := range xs {
		if len(row) != width {
			return fmt.Errorf("forest: row %d has %d features, want %d", i, len(row), width)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("forest: row %d feature %d is not finite", i, j)
			}
		}
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			return fmt.Errorf("forest: target %d is not finite", i)
		}
	}
	return nil
}
