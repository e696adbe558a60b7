package database

import "time"

// AnalysisRun records one report invocation.
type AnalysisRun struct {
	ID        string `gorm:"primaryKey"`
	Kind      string `gorm:"index"` // "clustering" or "forest"
	Input     string
	Params    string // human-readable parameter summary
	CreatedAt time.Time
}

// MergeRecord is one agglomeration step of a clustering run.
type MergeRecord struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	RunID   string `gorm:"index"`
	Step    int
	LeftID  int
	RightID int
	NodeID  int
	Height  float64
}

// GridRecord is one evaluated hyperparameter candidate of a forest run.
type GridRecord struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	RunID   string `gorm:"index"`
	Trees   int
	MTry    int
	MinLeaf int
	CVRMSE  float64
	CVMAE   float64
	CVR2    float64
	Best    bool
}
