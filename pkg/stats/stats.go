// Package stats computes the per-column summary statistics and
// correlation matrices the reports print before modeling.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/rgreene/envreports/pkg/dataset"
)

// ColumnSummary describes one numeric column. N counts the non-missing
// values; Missing counts the NaNs that were excluded.
type ColumnSummary struct {
	Name    string
	N       int
	Missing int
	Mean    float64
	StdDev  float64
	Min     float64
	Q1      float64
	Median  float64
	Q3      float64
	Max     float64
}

// Summary computes a ColumnSummary for one series, ignoring NaNs.
func Summary(name string, xs []float64) ColumnSummary {
	clean := make([]float64, 0, len(xs))
	missing := 0
	for _, v := range xs {
		if math.IsNaN(v) {
			missing++
			continue
		}
		clean = append(clean, v)
	}

	s := ColumnSummary{Name: name, N: len(clean), Missing: missing}
	if len(clean) == 0 {
		s.Mean, s.StdDev = math.NaN(), math.NaN()
		s.Min, s.Q1, s.Median, s.Q3, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}

	sort.Float64s(clean)
	s.Mean, s.StdDev = stat.MeanStdDev(clean, nil)
	if len(clean) == 1 {
		s.StdDev = 0
	}
	s.Min = clean[0]
	s.Max = clean[len(clean)-1]
	s.Q1 = stat.Quantile(0.25, stat.Empirical, clean, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, clean, nil)
	s.Q3 = stat.Quantile(0.75, stat.Empirical, clean, nil)
	return s
}

// Summarize computes a summary for every numeric column of the table.
func Summarize(t *dataset.Table) []ColumnSummary {
	cols := t.Columns()
	out := make([]ColumnSummary, 0, len(cols))
	for _, name := range cols {
		xs, err := t.Column(name)
		if err != nil {
			continue // cannot happen: name came from Columns()
		}
		out = append(out, Summary(name, xs))
	}
	return out
}

// CorrelationMatrix computes the Pearson correlation matrix over the
// table's numeric columns. Rows must be complete (no NaN).
func CorrelationMatrix(t *dataset.Table) (*mat.SymDense, []string, error) {
	cols := t.Columns()
	if len(cols) < 2 {
		return nil, nil, fmt.Errorf("stats: correlation needs at least 2 columns, have %d", len(cols))
	}
	m := t.Matrix()
	r, _ := m.Dims()
	if r < 2 {
		return nil, nil, fmt.Errorf("stats: correlation needs at least 2 rows, have %d", r)
	}
	for _, name := range cols {
		xs, _ := t.Column(name)
		for _, v := range xs {
			if math.IsNaN(v) {
				return nil, nil, fmt.Errorf("stats: column %q has missing values; drop them before correlating", name)
			}
		}
	}

	dst := mat.NewSymDense(len(cols), nil)
	stat.CorrelationMatrix(dst, m, nil)
	return dst, cols, nil
}
