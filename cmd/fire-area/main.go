// fire-area is the burned-area regression report: it loads the forest
// fire CSV, prints summary statistics, tunes a random forest over a
// cross-validated hyperparameter grid, and reports the winning model's
// fit and variable importance.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/rgreene/envreports/internal/database"
	"github.com/rgreene/envreports/internal/log"
	"github.com/rgreene/envreports/internal/report"
	"github.com/rgreene/envreports/pkg/config"
	"github.com/rgreene/envreports/pkg/dataset"
	"github.com/rgreene/envreports/pkg/forest"
	"github.com/rgreene/envreports/pkg/stats"
)

const version = "1.2-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	var (
		cfgFile     = flag.String("config", "", "Path to configuration (YAML file or SQLite .db); direct flags override it")
		input       = flag.String("input", "", "Path to the forest-fire CSV")
		target      = flag.String("target", "area", "Name of the target column (burned area)")
		features    = flag.String("features", "", "Comma-separated feature columns (default: all numeric columns except the target)")
		rawTarget   = flag.Bool("raw-target", false, "Model the raw target instead of log1p(target)")
		folds       = flag.Int("folds", 5, "Number of cross-validation folds")
		seed        = flag.Int64("seed", 42, "Random seed for fold shuffling and tree growth")
		treesFlag   = flag.String("trees", "", "Comma-separated tree counts for the grid (default 100,300,500)")
		mtryFlag    = flag.String("mtry", "", "Comma-separated mtry values for the grid")
		minLeafFlag = flag.String("min-leaf", "", "Comma-separated minimum leaf sizes for the grid (default 1,5,10)")
		modelOut    = flag.String("model-out", "", "Optional path to save the winning model (msgpack)")
		resultsDB   = flag.String("results-db", "", "Optional SQLite result store to record this run in")
		logFile     = flag.String("log-file", "", "Optional rotating log file")
		debug       = flag.Bool("debug", false, "Turn on debugging output")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("fire-area %s\n", version)
		os.Exit(0)
	}

	if err := log.InitWithFile(*debug, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	fc := &config.ForestConfig{
		Target:    *target,
		LogTarget: !*rawTarget,
		Folds:     *folds,
		Seed:      *seed,
	}
	storage := &config.StorageConfig{ResultsDB: *resultsDB}
	if *cfgFile != "" {
		fileFC, fileStorage, err := loadConfig(*cfgFile)
		if err != nil {
			log.Fatalf("loading configuration: %v", err)
		}
		mergeForestConfig(fc, fileFC, flagsSet())
		if storage.ResultsDB == "" {
			storage.ResultsDB = fileStorage.ResultsDB
		}
	}
	if *input != "" {
		fc.Input = *input
	}
	if *features != "" {
		fc.Features = splitList(*features)
	}
	if fc.Input == "" {
		log.Fatalf("no input CSV: pass -input or a -config with a forest section")
	}

	var err error
	if fc.Grid.Trees, err = gridAxis(*treesFlag, fc.Grid.Trees); err != nil {
		log.Fatalf("parsing -trees: %v", err)
	}
	if fc.Grid.MTry, err = gridAxis(*mtryFlag, fc.Grid.MTry); err != nil {
		log.Fatalf("parsing -mtry: %v", err)
	}
	if fc.Grid.MinLeaf, err = gridAxis(*minLeafFlag, fc.Grid.MinLeaf); err != nil {
		log.Fatalf("parsing -min-leaf: %v", err)
	}

	fmt.Printf("Burned Forest Area Regression\n")
	fmt.Printf("=============================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Input:  %s\n", fc.Input)
	fmt.Printf("  Target: %s", fc.Target)
	if fc.LogTarget {
		fmt.Printf(" (modeled as log1p)")
	}
	fmt.Printf("\n  Folds:  %d\n  Seed:   %d\n\n", fc.Folds, fc.Seed)

	cols := fc.Features
	if len(cols) > 0 {
		cols = append(append([]string(nil), cols...), fc.Target)
	}
	tbl, err := dataset.LoadCSV(fc.Input, dataset.Options{Columns: cols})
	if err != nil {
		log.Fatalf("loading %s: %v", fc.Input, err)
	}
	log.Infof("loaded %d rows, %d columns", tbl.Len(), len(tbl.Columns()))

	fmt.Printf("Summary Statistics\n")
	fmt.Printf("------------------\n")
	fmt.Print(report.FormatSummaries(stats.Summarize(tbl)))
	fmt.Println()

	if dropped := tbl.DropNA(); dropped > 0 {
		fmt.Printf("Dropped %d row(s) with missing values; %d remain.\n\n", dropped, tbl.Len())
	}

	featureNames, xs, ys, err := designMatrix(tbl, fc.Target, fc.LogTarget)
	if err != nil {
		log.Fatalf("%v", err)
	}

	grid := forest.Grid{Trees: fc.Grid.Trees, MTry: fc.Grid.MTry, MinLeaf: fc.Grid.MinLeaf}
	if len(grid.Trees) == 0 && len(grid.MTry) == 0 && len(grid.MinLeaf) == 0 {
		grid = forest.DefaultGrid(len(featureNames))
	} else {
		def := forest.DefaultGrid(len(featureNames))
		if len(grid.Trees) == 0 {
			grid.Trees = def.Trees
		}
		if len(grid.MTry) == 0 {
			grid.MTry = def.MTry
		}
		if len(grid.MinLeaf) == 0 {
			grid.MinLeaf = def.MinLeaf
		}
	}

	log.Infof("tuning over %d grid points with %d-fold CV",
		len(grid.Trees)*len(grid.MTry)*len(grid.MinLeaf), fc.Folds)
	result, err := forest.Tune(xs, ys, grid, fc.Folds, fc.Seed)
	if err != nil {
		log.Fatalf("tuning: %v", err)
	}

	fmt.Printf("Grid Search (%d-fold cross-validation)\n", fc.Folds)
	fmt.Printf("--------------------------------------\n")
	fmt.Print(report.FormatGrid(result))
	fmt.Println()

	best := result.Best.Params
	model, err := forest.Train(xs, ys, best)
	if err != nil {
		log.Fatalf("refitting winner: %v", err)
	}

	pred := model.PredictAll(xs)
	fmt.Printf("Winning Model (trees=%d mtry=%d min_leaf=%d)\n", best.Trees, best.MTry, best.MinLeaf)
	fmt.Printf("--------------------------------------------\n")
	fmt.Printf("  CV RMSE:       %.4f\n", result.Best.CVRMSE)
	fmt.Printf("  CV MAE:        %.4f\n", result.Best.CVMAE)
	fmt.Printf("  CV R2:         %.4f\n", result.Best.CVR2)
	fmt.Printf("  OOB RMSE:      %.4f\n", model.OOBError())
	fmt.Printf("  Training RMSE: %.4f\n", forest.RMSE(ys, pred))
	fmt.Printf("  Training R2:   %.4f\n\n", forest.RSquared(ys, pred))

	imp, err := model.Importance(xs, ys)
	if err != nil {
		log.Fatalf("importance: %v", err)
	}
	fmt.Printf("Permutation Importance\n")
	fmt.Printf("----------------------\n")
	fmt.Print(report.FormatImportance(featureNames, imp))
	fmt.Println()

	if *modelOut != "" {
		if err := model.Save(*modelOut); err != nil {
			log.Errorf("saving model: %v", err)
		} else {
			fmt.Printf("Model written to %s\n", *modelOut)
		}
	}

	if storage.ResultsDB != "" {
		params := fmt.Sprintf("target=%s log=%v folds=%d seed=%d features=%s",
			fc.Target, fc.LogTarget, fc.Folds, fc.Seed, strings.Join(featureNames, ","))
		runID, err := saveRun(storage.ResultsDB, fc.Input, params, result)
		if err != nil {
			log.Errorf("recording run: %v", err)
		} else {
			fmt.Printf("Run recorded as %s in %s\n", runID, storage.ResultsDB)
		}
	}
}

// designMatrix splits the table into feature rows and the (optionally
// log1p-transformed) target.
func designMatrix(tbl *dataset.Table, target string, logTarget bool) ([]string, [][]float64, []float64, error) {
	ys, err := tbl.Column(target)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("target column: %w", err)
	}
	if logTarget {
		for i, v := range ys {
			if v < 0 {
				return nil, nil, nil, fmt.Errorf("target row %d is negative (%g); log1p undefined, use -raw-target", i, v)
			}
			ys[i] = math.Log1p(v)
		}
	}

	var featureNames []string
	for _, c := range tbl.Columns() {
		if c != target {
			featureNames = append(featureNames, c)
		}
	}
	if len(featureNames) == 0 {
		return nil, nil, nil, fmt.Errorf("no feature columns besides target %q", target)
	}

	ft, err := tbl.Select(featureNames...)
	if err != nil {
		return nil, nil, nil, err
	}
	xs := make([][]float64, ft.Len())
	for i := range xs {
		xs[i] = ft.Row(i)
	}
	return featureNames, xs, ys, nil
}

func loadConfig(path string) (*config.ForestConfig, *config.StorageConfig, error) {
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

	fc, err := provider.GetForest()
	if err != nil {
		return nil, nil, err
	}
	storage, err := provider.GetStorage()
	if err != nil {
		return nil, nil, err
	}
	return fc, storage, nil
}

func flagsSet() map[string]bool {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func mergeForestConfig(dst, src *config.ForestConfig, set map[string]bool) {
	if dst.Input == "" {
		dst.Input = src.Input
	}
	if !set["target"] && src.Target != "" {
		dst.Target = src.Target
	}
	if len(dst.Features) == 0 {
		dst.Features = src.Features
	}
	if !set["raw-target"] {
		dst.LogTarget = src.LogTarget
	}
	if !set["folds"] && src.Folds > 0 {
		dst.Folds = src.Folds
	}
	if !set["seed"] && src.Seed != 0 {
		dst.Seed = src.Seed
	}
	dst.Grid = src.Grid
}

// gridAxis prefers the explicit flag value, then the config value.
func gridAxis(flagVal string, cfgVal []int) ([]int, error) {
	if flagVal == "" {
		return cfgVal, nil
	}
	var out []int
	for _, p := range splitList(flagVal) {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func saveRun(dbPath, input, params string, result *forest.TuneResult) (string, error) {
	client := database.NewClient(dbPath)
	if err := client.Connect(); err != nil {
		return "", err
	}
	defer client.Close()
	return client.SaveForestRun(input, params, result)
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
