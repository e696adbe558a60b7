package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements Provider for YAML configuration files.
type YAMLProvider struct {
	filename string
	config   *Config
}

// NewYAMLProvider creates a new YAML configuration provider.
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{filename: filename}
}

// LoadConfig loads the complete configuration from the YAML file.
func (y *YAMLProvider) LoadConfig() (*Config, error) {
	raw, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", y.filename, err)
	}

	y.config = cfg
	return cfg, nil
}

func (y *YAMLProvider) ensureLoaded() error {
	if y.config != nil {
		return nil
	}
	_, err := y.LoadConfig()
	return err
}

// GetClustering returns the clustering section, or an error when the
// file has none.
func (y *YAMLProvider) GetClustering() (*ClusteringConfig, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	if y.config.Clustering == nil {
		return nil, fmt.Errorf("config: %s has no clustering section", y.filename)
	}
	return y.config.Clustering, nil
}

// GetForest returns the forest section, or an error when the file has
// none.
func (y *YAMLProvider) GetForest() (*ForestConfig, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	if y.config.Forest == nil {
		return nil, fmt.Errorf("config: %s has no forest section", y.filename)
	}
	return y.config.Forest, nil
}

// GetStorage returns the storage section; a missing section is not an
// error, result persistence is optional.
func (y *YAMLProvider) GetStorage() (*StorageConfig, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	if y.config.Storage == nil {
		return &StorageConfig{}, nil
	}
	return y.config.Storage, nil
}

// IsReadOnly reports that YAML files are read-only sources.
func (y *YAMLProvider) IsReadOnly() bool { return true }

// Close is a no-op for YAML files.
func (y *YAMLProvider) Close() error { return nil }
