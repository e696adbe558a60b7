package forest

import (
	"fmt"
	"math/rand"
)

// Grid spans the hyperparameter combinations Tune evaluates.
type Grid struct {
	Trees   []int
	MTry    []int
	MinLeaf []int
}

// DefaultGrid is the grid the fire-area report searches when none is
// configured.
func DefaultGrid(numFeatures int) Grid {
	mtry := []int{}
	for _, m := range []int{1, numFeatures / 3, numFeatures / 2, numFeatures} {
		if m < 1 || m > numFeatures {
			continue
		}
		if len(mtry) > 0 && mtry[len(mtry)-1] == m {
			continue
		}
		mtry = append(mtry, m)
	}
	return Grid{
		Trees:   []int{100, 300, 500},
		MTry:    mtry,
		MinLeaf: []int{1, 5, 10},
	}
}

// Candidate is one evaluated grid point with its cross-validated
// metrics (means over folds).
type Candidate struct {
	Params Params
	CVRMSE float64
	CVMAE  float64
	CVR2   float64
}

// TuneResult holds every candidate in evaluation order plus the winner.
type TuneResult struct {
	Candidates []Candidate
	Best       Candidate
}

// Tune runs k-fold cross-validated grid search. The winner has the
// lowest mean CV RMSE; exact ties go to the simpler model (fewer trees,
// then smaller mtry, then larger leaves). Fold assignment and every
// per-fold forest derive from seed, so repeated runs agree exactly.
func Tune(xs [][]float64, ys []float64, grid Grid, folds int, seed int64) (*TuneResult, error) {
	if err := validateData(xs, ys); err != nil {
		return nil, err
	}
	n := len(xs)
	if folds < 2 || folds > n {
		return nil, fmt.Errorf("forest: folds %d out of range [2,%d]", folds, n)
	}
	if len(grid.Trees) == 0 || len(grid.MTry) == 0 || len(grid.MinLeaf) == 0 {
		return nil, fmt.Errorf("forest: empty tuning grid")
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	result := &TuneResult{}
	for _, trees := range grid.Trees {
		for _, mtry := range grid.MTry {
			for _, minLeaf := range grid.MinLeaf {
				p := Params{Trees: trees, MTry: mtry, MinLeaf: minLeaf, Seed: seed}
				cand, err := evaluate(xs, ys, perm, folds, p)
				if err != nil {
					return nil, err
				}
				result.Candidates = append(result.Candidates, cand)
			}
		}
	}

	best := result.Candidates[0]
	for _, c := range result.Candidates[1:] {
		if simpler(c, best) {
			best = c
		}
	}
	result.Best = best
	return result, nil
}

// simpler reports whether a should replace b as the running winner.
func simpler(a, b Candidate) bool {
	if a.CVRMSE != b.CVRMSE {
		return a.CVRMSE < b.CVRMSE
	}
	if a.Params.Trees != b.Params.Trees {
		return a.Params.Trees < b.Params.Trees
	}
	if a.Params.MTry != b.Params.MTry {
		return a.Params.MTry < b.Params.MTry
	}
	return a.Params.MinLeaf > b.Params.MinLeaf
}

func evaluate(xs [][]float64, ys []float64, perm []int, folds int, p Params) (Candidate, error) {
	n := len(perm)
	var rmse, mae, r2 float64

	for fold := 0; fold < folds; fold++ {
		lo := fold * n / folds
		hi := (fold + 1) * n / folds

		var trainX, testX [][]float64
		var trainY, testY []float64
		for pos, i := range perm {
			if pos >= lo && pos < hi {
				testX = append(testX, xs[i])
				testY = append(testY, ys[i])
			} else {
				trainX = append(trainX, xs[i])
				trainY = append(trainY, ys[i])
			}
		}

		fp := p
		fp.Seed = p.Seed + int64(fold) + 1
		model, err := Train(trainX, trainY, fp)
		if err != nil {
			return Candidate{}, fmt.Errorf("forest: fold %d: %w", fold, err)
		}

		pred := model.PredictAll(testX)
		rmse += RMSE(testY, pred)
		mae += MAE(testY, pred)
		r2 += RSquared(testY, pred)
	}

	k := float64(folds)
	return Candidate{
		Params: p,
		CVRMSE: rmse / k,
		CVMAE:  mae / k,
		CVR2:   r2 / k,
	}, nil
}
