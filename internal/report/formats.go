package report

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/rgreene/envreports/pkg/cluster"
	"github.com/rgreene/envreports/pkg/forest"
	"github.com/rgreene/envreports/pkg/stats"
)

// FormatSummaries renders per-column summary statistics.
func FormatSummaries(sums []stats.ColumnSummary) string {
	t := NewTable("Column", "N", "Missing", "Mean", "StdDev", "Min", "Q1", "Median", "Q3", "Max")
	for _, s := range sums {
		t.AddRow(s.Name,
			fmt.Sprintf("%d", s.N),
			fmt.Sprintf("%d", s.Missing),
			fmt.Sprintf("%.3f", s.Mean),
			fmt.Sprintf("%.3f", s.StdDev),
			fmt.Sprintf("%.3f", s.Min),
			fmt.Sprintf("%.3f", s.Q1),
			fmt.Sprintf("%.3f", s.Median),
			fmt.Sprintf("%.3f", s.Q3),
			fmt.Sprintf("%.3f", s.Max))
	}
	return t.Render()
}

// FormatCorrelation renders a Pearson correlation matrix.
func FormatCorrelation(corr *mat.SymDense, names []string) string {
	t := NewTable(append([]string{""}, names...)...)
	for i, name := range names {
		row := []string{name}
		for j := range names {
			row = append(row, fmt.Sprintf("%6.3f", corr.At(i, j)))
		}
		t.AddRow(row...)
	}
	return t.Render()
}

// FormatMerges renders the merge schedule: one line per agglomeration
// step with the member labels of the newly formed cluster.
func FormatMerges(tree *cluster.MergeTree) string {
	t := NewTable("Step", "Height", "Members")
	labels := leafLabels(tree)
	n := tree.NumLeaves()
	for i, e := range tree.Events {
		members := tree.Members(n + i)
		names := make([]string, len(members))
		for k, m := range members {
			names[k] = labels[m]
		}
		t.AddRow(fmt.Sprintf("%d", i+1), fmt.Sprintf("%.4f", e.Height), joinMax(names, 6))
	}
	return t.Render()
}

// FormatCut renders a flat k-cluster assignment grouped by cluster.
func FormatCut(tree *cluster.MergeTree, assign []int) string {
	labels := leafLabels(tree)
	groups := map[int][]string{}
	for i, c := range assign {
		groups[c] = append(groups[c], labels[i])
	}
	ids := make([]int, 0, len(groups))
	for c := range groups {
		ids = append(ids, c)
	}
	sort.Ints(ids)

	t := NewTable("Cluster", "Size", "Sites")
	for _, c := range ids {
		t.AddRow(fmt.Sprintf("%d", c+1), fmt.Sprintf("%d", len(groups[c])), joinMax(groups[c], 8))
	}
	return t.Render()
}

// FormatGrid renders tuning candidates sorted by CV RMSE with the
// winner marked.
func FormatGrid(result *forest.TuneResult) string {
	cands := append([]forest.Candidate(nil), result.Candidates...)
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].CVRMSE < cands[j].CVRMSE })

	t := NewTable("Trees", "MTry", "MinLeaf", "CV RMSE", "CV MAE", "CV R2", "")
	for _, c := range cands {
		marker := ""
		if c.Params == result.Best.Params {
			marker = "<- best"
		}
		t.AddRow(
			fmt.Sprintf("%d", c.Params.Trees),
			fmt.Sprintf("%d", c.Params.MTry),
			fmt.Sprintf("%d", c.Params.MinLeaf),
			fmt.Sprintf("%.4f", c.CVRMSE),
			fmt.Sprintf("%.4f", c.CVMAE),
			fmt.Sprintf("%.4f", c.CVR2),
			marker)
	}
	return t.Render()
}

// FormatImportance renders permutation importances, largest first.
func FormatImportance(names []string, imp []float64) string {
	type pair struct {
		name string
		v    float64
	}
	pairs := make([]pair, len(names))
	for i := range names {
		pairs[i] = pair{names[i], imp[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].v > pairs[j].v })

	t := NewTable("Feature", "RMSE increase")
	for _, p := range pairs {
		t.AddRow(p.name, fmt.Sprintf("%.4f", p.v))
	}
	return t.Render()
}

// joinMax joins up to max names, eliding the rest with a count.
func joinMax(names []string, max int) string {
	if len(names) <= max {
		out := ""
		for i, n := range names {
			if i > 0 {
				out += ", "
			}
			out += n
		}
		return out
	}
	return fmt.Sprintf("%s, ... (%d total)", joinMax(names[:max], max), len(names))
}
