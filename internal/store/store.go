// Package store persists match analyses for later review. Three drivers are
// available: an in-memory ring for single-process use, SQLite for local
// deployments, and Postgres for shared ones.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/TheeNate/JobPilot/internal/config"
	"github.com/TheeNate/JobPilot/internal/model"
)

// Record is one persisted matching request: the job as received and the
// analysis produced for it.
type Record struct {
	Job      model.JobRequirement `json:"job"`
	Analysis model.MatchAnalysis  `json:"analysis"`
}

// Store defines the match-history persistence interface.
type Store interface {
	SaveAnalysis(ctx context.Context, job model.JobRequirement, analysis *model.MatchAnalysis) error
	RecentAnalyses(ctx context.Context, limit int) ([]Record, error)

	// DeleteOlderThan prunes analyses created before the cutoff and reports
	// how many were removed. Drives the retention_days setting.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open selects and opens the store driver named in cfg.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(cfg.HistorySize), nil
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
