package store

import (
	"context"
	"sync"
	"time"

	"github.com/TheeNate/JobPilot/internal/model"
)

// MemoryStore keeps the most recent analyses in a bounded in-process ring.
// It is the default driver: process restart loses history, which is
// acceptable for single-operator deployments.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	max     int
}

// NewMemory creates a MemoryStore holding up to max records.
func NewMemory(max int) *MemoryStore {
	if max <= 0 {
		max = 100
	}
	return &MemoryStore{max: max}
}

func (s *MemoryStore) SaveAnalysis(_ context.Context, job model.JobRequirement, analysis *model.MatchAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, Record{Job: job, Analysis: *analysis})
	if len(s.records) > s.max {
		s.records = s.records[len(s.records)-s.max:]
	}
	return nil
}

// RecentAnalyses returns up to limit records, newest first.
func (s *MemoryStore) RecentAnalyses(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}

	out := make([]Record, 0, limit)
	for i := len(s.records) - 1; i >= len(s.records)-limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// DeleteOlderThan drops records whose analysis timestamp predates the cutoff.
func (s *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	removed := 0
	for _, r := range s.records {
		if r.Analysis.AnalysisTimestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return removed, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
