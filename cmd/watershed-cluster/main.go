// watershed-cluster is the hierarchical clustering report: it loads a
// watershed water-chemistry CSV, cleans and standardizes it, prints
// summary statistics, clusters the sites, and renders the dendrogram.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/rgreene/envreports/internal/database"
	"github.com/rgreene/envreports/internal/log"
	"github.com/rgreene/envreports/internal/report"
	"github.com/rgreene/envreports/pkg/cluster"
	"github.com/rgreene/envreports/pkg/config"
	"github.com/rgreene/envreports/pkg/dataset"
	"github.com/rgreene/envreports/pkg/stats"
)

const version = "1.2-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	var (
		cfgFile     = flag.String("config", "", "Path to configuration (YAML file or SQLite .db); direct flags override it")
		input       = flag.String("input", "", "Path to the water-chemistry CSV")
		labelColumn = flag.String("label-column", "site", "Name of the site-identifier column")
		features    = flag.String("features", "", "Comma-separated feature columns (default: all numeric columns)")
		linkageName = flag.String("linkage", "complete", "Linkage rule: complete or single")
		cut         = flag.Int("cut", 0, "Render a flat membership table with this many clusters (0 = skip)")
		sentinel    = flag.Float64("sentinel", -999, "Numeric value that marks a missing measurement")
		csvOut      = flag.String("csv", "", "Optional path for the standardized matrix as CSV")
		resultsDB   = flag.String("results-db", "", "Optional SQLite result store to record this run in")
		logFile     = flag.String("log-file", "", "Optional rotating log file")
		debug       = flag.Bool("debug", false, "Turn on debugging output")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("watershed-cluster %s\n", version)
		os.Exit(0)
	}

	if err := log.InitWithFile(*debug, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cc := &config.ClusteringConfig{
		LabelColumn:     *labelColumn,
		Linkage:         *linkageName,
		MissingSentinel: *sentinel,
		Cut:             *cut,
	}
	storage := &config.StorageConfig{ResultsDB: *resultsDB}
	if *cfgFile != "" {
		fileCC, fileStorage, err := loadConfig(*cfgFile)
		if err != nil {
			log.Fatalf("loading configuration: %v", err)
		}
		mergeClusteringConfig(cc, fileCC, flagsSet())
		if storage.ResultsDB == "" {
			storage.ResultsDB = fileStorage.ResultsDB
		}
	}
	if *input != "" {
		cc.Input = *input
	}
	if *features != "" {
		cc.Features = splitList(*features)
	}
	if cc.Input == "" {
		log.Fatalf("no input CSV: pass -input or a -config with a clustering section")
	}

	linkage, err := cluster.ParseLinkage(cc.Linkage)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("Watershed Water-Chemistry Clustering\n")
	fmt.Printf("====================================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Input:    %s\n", cc.Input)
	fmt.Printf("  Linkage:  %s\n", linkage)
	fmt.Printf("  Sentinel: %g\n\n", cc.MissingSentinel)

	tbl, err := dataset.LoadCSV(cc.Input, dataset.Options{
		LabelColumn:     cc.LabelColumn,
		Rename:          cc.Rename,
		MissingSentinel: dataset.Sentinel(cc.MissingSentinel),
		Columns:         cc.Features,
	})
	if err != nil {
		log.Fatalf("loading %s: %v", cc.Input, err)
	}
	log.Infof("loaded %d rows, %d feature columns", tbl.Len(), len(tbl.Columns()))

	fmt.Printf("Summary Statistics\n")
	fmt.Printf("------------------\n")
	fmt.Print(report.FormatSummaries(stats.Summarize(tbl)))
	fmt.Println()

	dropped := tbl.DropNA()
	if dropped > 0 {
		fmt.Printf("Dropped %d row(s) with missing measurements; %d remain.\n\n", dropped, tbl.Len())
	}

	corr, names, err := stats.CorrelationMatrix(tbl)
	if err != nil {
		log.Fatalf("correlation: %v", err)
	}
	fmt.Printf("Pearson Correlations\n")
	fmt.Printf("--------------------\n")
	fmt.Print(report.FormatCorrelation(corr, names))
	fmt.Println()

	if err := tbl.Standardize(); err != nil {
		log.Fatalf("standardizing: %v", err)
	}

	tree, err := cluster.Cluster(observations(tbl), linkage)
	if err != nil {
		log.Fatalf("clustering: %v", err)
	}

	fmt.Printf("Merge Schedule (%s linkage, Euclidean distance)\n", linkage)
	fmt.Printf("-----------------------------------------------\n")
	fmt.Print(report.FormatMerges(tree))
	fmt.Println()

	fmt.Printf("Dendrogram\n")
	fmt.Printf("----------\n")
	fmt.Print(report.RenderDendrogram(tree, 78))
	fmt.Println()

	if cc.Cut > 0 {
		assign, err := tree.Cut(cc.Cut)
		if err != nil {
			log.Fatalf("cutting dendrogram: %v", err)
		}
		fmt.Printf("Flat Clusters (k=%d)\n", cc.Cut)
		fmt.Printf("-------------------\n")
		fmt.Print(report.FormatCut(tree, assign))
		fmt.Println()
	}

	if *csvOut != "" {
		if err := exportCSV(*csvOut, tbl); err != nil {
			log.Errorf("writing %s: %v", *csvOut, err)
		} else {
			fmt.Printf("Standardized matrix written to %s\n", *csvOut)
		}
	}

	if storage.ResultsDB != "" {
		params := fmt.Sprintf("linkage=%s sentinel=%g features=%s",
			linkage, cc.MissingSentinel, strings.Join(tbl.Columns(), ","))
		runID, err := saveRun(storage.ResultsDB, cc.Input, params, tree)
		if err != nil {
			log.Errorf("recording run: %v", err)
		} else {
			fmt.Printf("Run recorded as %s in %s\n", runID, storage.ResultsDB)
		}
	}
}

func loadConfig(path string) (*config.ClusteringConfig, *config.StorageConfig, error) {
	var provider config.Provider
	if strings.HasSuffix(path, ".db") || strings.HasSuffix(path, ".sqlite") {
		p, err := config.NewSQLiteProvider(path)
		if err != nil {
			return nil, nil, err
		}
		provider = p
	} else {
		provider = config.NewYAMLProvider(path)
	}
	defer provider.Close()

	cc, err := provider.GetClustering()
	if err != nil {
		return nil, nil, err
	}
	storage, err := provider.GetStorage()
	if err != nil {
		return nil, nil, err
	}
	return cc, storage, nil
}

// flagsSet reports which flags the user passed explicitly, so config
// file values only fill the gaps.
func flagsSet() map[string]bool {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func mergeClusteringConfig(dst, src *config.ClusteringConfig, set map[string]bool) {
	if dst.Input == "" {
		dst.Input = src.Input
	}
	if !set["label-column"] {
		dst.LabelColumn = src.LabelColumn
	}
	if len(dst.Features) == 0 {
		dst.Features = src.Features
	}
	dst.Rename = src.Rename
	if !set["linkage"] && src.Linkage != "" {
		dst.Linkage = src.Linkage
	}
	if !set["sentinel"] && src.MissingSentinel != 0 {
		dst.MissingSentinel = src.MissingSentinel
	}
	if !set["cut"] && src.Cut > 0 {
		dst.Cut = src.Cut
	}
}

func observations(tbl *dataset.Table) []cluster.Observation {
	labels := tbl.Labels()
	obs := make([]cluster.Observation, tbl.Len())
	for i := range obs {
		label := fmt.Sprintf("row %d", i+1)
		if labels != nil {
			label = labels[i]
		}
		obs[i] = cluster.Observation{Label: label, Features: tbl.Row(i)}
	}
	return obs
}

func exportCSV(path string, tbl *dataset.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	labels := tbl.Labels()
	header := tbl.Columns()
	if labels != nil {
		header = append([]string{"site"}, header...)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < tbl.Len(); i++ {
		row := tbl.Row(i)
		record := make([]string, 0, len(row)+1)
		if labels != nil {
			record = append(record, labels[i])
		}
		for _, v := range row {
			record = append(record, fmt.Sprintf("%.6f", v))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func saveRun(dbPath, input, params string, tree *cluster.MergeTree) (string, error) {
	client := database.NewClient(dbPath)
	if err := client.Connect(); err != nil {
		return "", err
	}
	defer client.Close()
	return client.SaveClusterRun(input, params, tree)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
