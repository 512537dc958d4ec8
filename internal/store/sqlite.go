package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/TheeNate/JobPilot/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS match_analyses (
	id            TEXT PRIMARY KEY,
	job           TEXT NOT NULL,
	analysis      TEXT NOT NULL,
	fallback_used INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_match_analyses_created_at ON match_analyses(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, job model.JobRequirement, analysis *model.MatchAnalysis) error {
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal job")
	}
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal analysis")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO match_analyses (id, job, analysis, fallback_used, created_at) VALUES (?, ?, ?, ?, ?)`,
		analysis.ID, string(jobJSON), string(analysisJSON), analysis.FallbackUsed, analysis.AnalysisTimestamp.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert analysis %s", analysis.ID)
}

func (s *SQLiteStore) RecentAnalyses(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT job, analysis FROM match_analyses ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

// DeleteOlderThan prunes analyses created before the cutoff and reports how
// many were removed.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM match_analyses WHERE created_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete old analyses")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (Record, error) {
	var rec Record
	var jobJSON, analysisJSON string

	if err := row.Scan(&jobJSON, &analysisJSON); err != nil {
		return Record{}, eris.Wrap(err, "store: scan record")
	}
	if err := json.Unmarshal([]byte(jobJSON), &rec.Job); err != nil {
		return Record{}, eris.Wrap(err, "store: unmarshal job")
	}
	if err := json.Unmarshal([]byte(analysisJSON), &rec.Analysis); err != nil {
		return Record{}, eris.Wrap(err, "store: unmarshal analysis")
	}
	return rec, nil
}
