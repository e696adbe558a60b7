package database

import (
	"path/filepath"
	"testing"

	"github.com/rgreene/envreports/pkg/cluster"
	"github.com/rgreene/envreports/pkg/forest"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient(filepath.Join(t.TempDir(), "results.db"))
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSaveClusterRun(t *testing.T) {
	c := newTestClient(t)

	tree, err := cluster.Cluster([]cluster.Observation{
		{Label: "a", Features: []float64{1}},
		{Label: "b", Features: []float64{2}},
		{Label: "c", Features: []float64{10}},
	}, cluster.Complete)
	if err != nil {
		t.Fatal(err)
	}

	runID, err := c.SaveClusterRun("chem.csv", "linkage=complete", tree)
	if err != nil {
		t.Fatalf("SaveClusterRun: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run ID")
	}

	var run AnalysisRun
	if err := c.DB.First(&run, "id = ?", runID).Error; err != nil {
		t.Fatalf("loading run: %v", err)
	}
	if run.Kind != "clustering" || run.Input != "chem.csv" {
		t.Errorf("run = %+v", run)
	}

	var merges []MergeRecord
	if err := c.DB.Where("run_id = ?", runID).Order("step").Find(&merges).Error; err != nil {
		t.Fatalf("loading merges: %v", err)
	}
	if len(merges) != 2 {
		t.Fatalf("got %d merge records, want 2", len(merges))
	}
	if merges[0].Step != 1 || merges[0].Height != 1 {
		t.Errorf("first merge = %+v", merges[0])
	}
}

func TestSaveForestRun(t *testing.T) {
	c := newTestClient(t)

	result := &forest.TuneResult{
		Candidates: []forest.Candidate{
			{Params: forest.Params{Trees: 100, MTry: 2, MinLeaf: 5}, CVRMSE: 1.2, CVMAE: 0.9, CVR2: 0.6},
			{Params: forest.Params{Trees: 300, MTry: 2, MinLeaf: 5}, CVRMSE: 1.1, CVMAE: 0.8, CVR2: 0.7},
		},
	}
	result.Best = result.Candidates[1]

	runID, err := c.SaveForestRun("fires.csv", "folds=5", result)
	if err != nil {
		t.Fatalf("SaveForestRun: %v", err)
	}

	var records []GridRecord
	if err := c.DB.Where("run_id = ?", runID).Order("trees").Find(&records).Error; err != nil {
		t.Fatalf("loading grid records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d grid records, want 2", len(records))
	}
	if records[0].Best || !records[1].Best {
		t.Errorf("best flags wrong: %+v", records)
	}
}
