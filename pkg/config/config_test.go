package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
clustering:
  input: data/site_chem.csv
  label_column: site
  features: [Ca, Mg, Na, K]
  rename:
    Ca_mgL: Ca
  linkage: complete
  missing_sentinel: -999
  cut: 3
forest:
  input: data/forestfires.csv
  target: area
  log_target: true
  folds: 5
  seed: 42
  grid:
    trees: [100, 300]
    mtry: [2, 4]
    min_leaf: [1, 5]
storage:
  results_db: results.db
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	p := NewYAMLProvider(writeTemp(t, sampleYAML))
	defer p.Close()

	cfg, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	c := cfg.Clustering
	if c == nil {
		t.Fatal("clustering section missing")
	}
	if c.Input != "data/site_chem.csv" || c.LabelColumn != "site" {
		t.Errorf("clustering basics wrong: %+v", c)
	}
	if len(c.Features) != 4 || c.Features[0] != "Ca" {
		t.Errorf("features = %v", c.Features)
	}
	if c.Rename["Ca_mgL"] != "Ca" {
		t.Errorf("rename = %v", c.Rename)
	}
	if c.MissingSentinel != -999 || c.Linkage != "complete" || c.Cut != 3 {
		t.Errorf("clustering params wrong: %+v", c)
	}

	f := cfg.Forest
	if f == nil {
		t.Fatal("forest section missing")
	}
	if f.Target != "area" || !f.LogTarget || f.Folds != 5 || f.Seed != 42 {
		t.Errorf("forest basics wrong: %+v", f)
	}
	if len(f.Grid.Trees) != 2 || f.Grid.Trees[1] != 300 {
		t.Errorf("grid trees = %v", f.Grid.Trees)
	}

	if cfg.Storage == nil || cfg.Storage.ResultsDB != "results.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
}

func TestYAMLProviderSections(t *testing.T) {
	p := NewYAMLProvider(writeTemp(t, sampleYAML))

	if _, err := p.GetClustering(); err != nil {
		t.Errorf("GetClustering: %v", err)
	}
	if _, err := p.GetForest(); err != nil {
		t.Errorf("GetForest: %v", err)
	}
	st, err := p.GetStorage()
	if err != nil || st.ResultsDB != "results.db" {
		t.Errorf("GetStorage: %v %+v", err, st)
	}

	if !p.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}

func TestYAMLProviderMissingSections(t *testing.T) {
	p := NewYAMLProvider(writeTemp(t, "forest:\n  input: x.csv\n  target: area\n"))

	if _, err := p.GetClustering(); err == nil {
		t.Error("expected error for missing clustering section")
	}
	st, err := p.GetStorage()
	if err != nil {
		t.Fatalf("GetStorage: %v", err)
	}
	if st.ResultsDB != "" {
		t.Errorf("default storage = %+v", st)
	}
}

func TestYAMLProviderBadFile(t *testing.T) {
	p := NewYAMLProvider(filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := p.LoadConfig(); err == nil {
		t.Error("expected error for missing file")
	}

	p = NewYAMLProvider(writeTemp(t, "clustering: [not, a, mapping"))
	if _, err := p.LoadConfig(); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestSplitHelpers(t *testing.T) {
	if got := splitList("a, b ,c"); len(got) != 3 || got[1] != "b" {
		t.Errorf("splitList = %v", got)
	}
	if got := splitList(""); got != nil {
		t.Errorf("splitList empty = %v", got)
	}

	ints, err := splitInts("1, 2,3")
	if err != nil || len(ints) != 3 || ints[2] != 3 {
		t.Errorf("splitInts = %v (%v)", ints, err)
	}
	if _, err := splitInts("1,x"); err == nil {
		t.Error("splitInts should reject non-numeric entries")
	}

	pairs := splitPairs("Ca_mgL=Ca, Mg_mgL=Mg")
	if pairs["Mg_mgL"] != "Mg" {
		t.Errorf("splitPairs = %v", pairs)
	}
}
