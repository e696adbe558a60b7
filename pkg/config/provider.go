// Package config loads analysis configuration from YAML files or
// SQLite databases behind a common Provider interface.
package config

// Provider defines the interface for configuration data sources.
type Provider interface {
	// Load complete configuration
	LoadConfig() (*Config, error)

	// Get specific configuration sections
	GetClustering() (*ClusteringConfig, error)
	GetForest() (*ForestConfig, error)
	GetStorage() (*StorageConfig, error)

	IsReadOnly() bool
	Close() error
}

// Config is the complete analysis configuration.
type Config struct {
	Clustering *ClusteringConfig `yaml:"clustering,omitempty"`
	Forest     *ForestConfig     `yaml:"forest,omitempty"`
	Storage    *StorageConfig    `yaml:"storage,omitempty"`
}

// ClusteringConfig drives the watershed-cluster report.
type ClusteringConfig struct {
	Input           string            `yaml:"input"`
	LabelColumn     string            `yaml:"label_column"`
	Features        []string          `yaml:"features,omitempty"`
	Rename          map[string]string `yaml:"rename,omitempty"`
	Linkage         string            `yaml:"linkage,omitempty"`
	MissingSentinel float64           `yaml:"missing_sentinel,omitempty"`
	Cut             int               `yaml:"cut,omitempty"`
}

// ForestConfig drives the fire-area report.
type ForestConfig struct {
	Input     string     `yaml:"input"`
	Target    string     `yaml:"target"`
	Features  []string   `yaml:"features,omitempty"`
	LogTarget bool       `yaml:"log_target"`
	Folds     int        `yaml:"folds,omitempty"`
	Seed      int64      `yaml:"seed,omitempty"`
	Grid      GridConfig `yaml:"grid,omitempty"`
}

// GridConfig spans the hyperparameter grid the tuner searches.
type GridConfig struct {
	Trees   []int `yaml:"trees,omitempty"`
	MTry    []int `yaml:"mtry,omitempty"`
	MinLeaf []int `yaml:"min_leaf,omitempty"`
}

// StorageConfig locates the optional result store.
type StorageConfig struct {
	ResultsDB string `yaml:"results_db,omitempty"`
}
