package config

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements Provider for SQLite configuration
// databases. Each section is a single-row table; list-valued fields
// are stored comma-separated.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens a SQLite configuration database.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", dbPath, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("config: pinging %s: %w", dbPath, err)
	}
	return &SQLiteProvider{db: db, dbPath: dbPath}, nil
}

// LoadConfig loads every section present in the database.
func (s *SQLiteProvider) LoadConfig() (*Config, error) {
	cfg := &Config{}

	clustering, err := s.GetClustering()
	if err == nil {
		cfg.Clustering = clustering
	} else if err != sql.ErrNoRows && !isMissingTable(err) {
		return nil, err
	}

	forest, err := s.GetForest()
	if err == nil {
		cfg.Forest = forest
	} else if err != sql.ErrNoRows && !isMissingTable(err) {
		return nil, err
	}

	storage, err := s.GetStorage()
	if err != nil {
		return nil, err
	}
	cfg.Storage = storage

	return cfg, nil
}

// GetClustering reads the clustering table.
func (s *SQLiteProvider) GetClustering() (*ClusteringConfig, error) {
	row := s.db.QueryRow(`SELECT input, label_column, features, rename, linkage, missing_sentinel, cut FROM clustering LIMIT 1`)

	var c ClusteringConfig
	var features, rename string
	if err := row.Scan(&c.Input, &c.LabelColumn, &features, &rename, &c.Linkage, &c.MissingSentinel, &c.Cut); err != nil {
		return nil, err
	}
	c.Features = splitList(features)
	c.Rename = splitPairs(rename)
	return &c, nil
}

// GetForest reads the forest table.
func (s *SQLiteProvider) GetForest() (*ForestConfig, error) {
	row := s.db.QueryRow(`SELECT input, target, features, log_target, folds, seed, grid_trees, grid_mtry, grid_min_leaf FROM forest LIMIT 1`)

	var f ForestConfig
	var features, trees, mtry, minLeaf string
	if err := row.Scan(&f.Input, &f.Target, &features, &f.LogTarget, &f.Folds, &f.Seed, &trees, &mtry, &minLeaf); err != nil {
		return nil, err
	}
	f.Features = splitList(features)

	var err error
	if f.Grid.Trees, err = splitInts(trees); err != nil {
		return nil, fmt.Errorf("config: forest grid_trees: %w", err)
	}
	if f.Grid.MTry, err = splitInts(mtry); err != nil {
		return nil, fmt.Errorf("config: forest grid_mtry: %w", err)
	}
	if f.Grid.MinLeaf, err = splitInts(minLeaf); err != nil {
		return nil, fmt.Errorf("config: forest grid_min_leaf: %w", err)
	}
	return &f, nil
}

// GetStorage reads the storage table. A missing table or row means no
// result store is configured.
func (s *SQLiteProvider) GetStorage() (*StorageConfig, error) {
	row := s.db.QueryRow(`SELECT results_db FROM storage LIMIT 1`)

	var st StorageConfig
	if err := row.Scan(&st.ResultsDB); err != nil {
		if err == sql.ErrNoRows || isMissingTable(err) {
			return &StorageConfig{}, nil
		}
		return nil, err
	}
	return &st, nil
}

// IsReadOnly reports false: SQLite configs can be edited in place.
func (s *SQLiteProvider) IsReadOnly() bool { return false }

// Close closes the database handle.
func (s *SQLiteProvider) Close() error { return s.db.Close() }

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func splitInts(s string) ([]int, error) {
	var out []int
	for _, p := range splitList(s) {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// splitPairs parses "old=new,old2=new2" rename lists.
func splitPairs(s string) map[string]string {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil
	}
	out := make(map[string]string, len(parts))
	for _, p := range parts {
		if k, v, ok := strings.Cut(p, "="); ok {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return out
}
