package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheeNate/JobPilot/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func analysisAt(id string, ts time.Time) *model.MatchAnalysis {
	return &model.MatchAnalysis{
		ID:                id,
		AnalysisTimestamp: ts,
		TeamComposition: model.TeamComposition{
			Size: 1,
			Members: []model.TeamMember{
				{Technician: model.Technician{ID: "t1", Name: "Jane"}, Role: model.RoleSpecialist, ConfidenceScore: 70},
			},
		},
		JobAnalysis: model.JobAnalysis{Complexity: model.ComplexityModerate},
	}
}

func TestSQLiteStore_SaveAndList(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	job := model.JobRequirement{JobType: "UT", Subject: "Shell survey"}
	require.NoError(t, s.SaveAnalysis(ctx, job, analysisAt("a1", base)))
	require.NoError(t, s.SaveAnalysis(ctx, job, analysisAt("a2", base.Add(time.Hour))))

	records, err := s.RecentAnalyses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "a2", records[0].Analysis.ID, "newest first")
	assert.Equal(t, "UT", records[0].Job.JobType)
	assert.Equal(t, model.RoleSpecialist, records[0].Analysis.TeamComposition.Members[0].Role)
}

func TestSQLiteStore_Limit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.SaveAnalysis(ctx, model.JobRequirement{},
			analysisAt(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))))
	}

	records, err := s.RecentAnalyses(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSQLiteStore_DuplicateIDRejected(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	ts := time.Now().UTC()

	require.NoError(t, s.SaveAnalysis(ctx, model.JobRequirement{}, analysisAt("dup", ts)))
	assert.Error(t, s.SaveAnalysis(ctx, model.JobRequirement{}, analysisAt("dup", ts)))
}

func TestSQLiteStore_DeleteOlderThan(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveAnalysis(ctx, model.JobRequirement{}, analysisAt("old", base)))
	require.NoError(t, s.SaveAnalysis(ctx, model.JobRequirement{}, analysisAt("new", base.Add(48*time.Hour))))

	n, err := s.DeleteOlderThan(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := s.RecentAnalyses(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "new", records[0].Analysis.ID)
}

func TestSQLiteStore_EmptyList(t *testing.T) {
	s := newTestSQLite(t)
	records, err := s.RecentAnalyses(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
