// Package database persists analysis runs to an embedded SQLite
// result store so successive report invocations can be compared.
package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rgreene/envreports/internal/log"
	"github.com/rgreene/envreports/pkg/cluster"
	"github.com/rgreene/envreports/pkg/forest"
)

// Client holds the connection to the result store.
type Client struct {
	path string
	DB   *gorm.DB
}

// NewClient creates a client for the SQLite database at path.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// Connect opens the database and migrates the result schema.
func (c *Client) Connect() error {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: false,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(c.path), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return fmt.Errorf("database: opening %s: %w", c.path, err)
	}
	c.DB = db

	if err := c.DB.AutoMigrate(&AnalysisRun{}, &MergeRecord{}, &GridRecord{}); err != nil {
		return fmt.Errorf("database: migrating schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveClusterRun stores the merge schedule of one clustering run and
// returns the run ID.
func (c *Client) SaveClusterRun(input, params string, tree *cluster.MergeTree) (string, error) {
	run := AnalysisRun{
		ID:     uuid.NewString(),
		Kind:   "clustering",
		Input:  input,
		Params: params,
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		for i, e := range tree.Events {
			rec := MergeRecord{
				RunID:   run.ID,
				Step:    i + 1,
				LeftID:  e.Left,
				RightID: e.Right,
				NodeID:  e.ID,
				Height:  e.Height,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("database: saving clustering run: %w", err)
	}
	return run.ID, nil
}

// SaveForestRun stores the tuning grid of one forest run and returns
// the run ID.
func (c *Client) SaveForestRun(input, params string, result *forest.TuneResult) (string, error) {
	run := AnalysisRun{
		ID:     uuid.NewString(),
		Kind:   "forest",
		Input:  input,
		Params: params,
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		for _, cand := range result.Candidates {
			rec := GridRecord{
				RunID:   run.ID,
				Trees:   cand.Params.Trees,
				MTry:    cand.Params.MTry,
				MinLeaf: cand.Params.MinLeaf,
				CVRMSE:  cand.CVRMSE,
				CVMAE:   cand.CVMAE,
				CVR2:    cand.CVR2,
				Best:    cand.Params == result.Best.Params,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("database: saving forest run: %w", err)
	}
	return run.ID, nil
}
