package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheeNate/JobPilot/internal/config"
	"github.com/TheeNate/JobPilot/internal/directory"
	"github.com/TheeNate/JobPilot/internal/model"
)

// failingRanker always errors, standing in for a broken AI path.
type failingRanker struct{}

func (failingRanker) Rank(context.Context, model.JobRequirement, []model.CandidateMatch) (*RankedTeam, error) {
	return nil, errors.New("reasoning service down")
}

// panickyRanker stands in for an unexpected bug inside a ranking path.
type panickyRanker struct{}

func (panickyRanker) Rank(context.Context, model.JobRequirement, []model.CandidateMatch) (*RankedTeam, error) {
	panic("index out of range")
}

type stubDirectory struct {
	techs   []model.Technician
	periods []model.AvailabilityPeriod
}

func (s *stubDirectory) ListActiveTechnicians(context.Context) []model.Technician { return s.techs }

func (s *stubDirectory) ListAvailability(context.Context, time.Time, *time.Time) []model.AvailabilityPeriod {
	return s.periods
}

var _ directory.Client = (*stubDirectory)(nil)

func matchingConfig() config.MatchingConfig {
	return config.MatchingConfig{SpecialistThreshold: 70, MaxAlternativeTeams: 2}
}

func deterministicEngine() *Engine {
	det := NewDeterministicRanker(matchingConfig())
	return NewEngine(det, nil, NewAnalyzer(nil, config.AnthropicConfig{}, DefaultKeywordTable()))
}

func TestGenerateMatchAnalysis_DeterministicOnly(t *testing.T) {
	engine := deterministicEngine()

	candidates := []model.CandidateMatch{
		{Technician: model.Technician{ID: "t1", Name: "A", Certifications: []string{"UT Level II"}}},
		{Technician: model.Technician{ID: "t2", Name: "B", Certifications: []string{"UT"}}},
		{Technician: model.Technician{ID: "t3", Name: "C"}},
	}
	job := model.JobRequirement{JobType: "UT Inspection", Subject: "Shell survey", TechsNeeded: 2}

	analysis := engine.GenerateMatchAnalysis(context.Background(), job, candidates)

	require.NotNil(t, analysis)
	assert.NotEmpty(t, analysis.ID)
	assert.True(t, analysis.FallbackUsed, "no AI configured means the fallback path produced everything")
	assert.False(t, analysis.AnalysisTimestamp.IsZero())

	require.Equal(t, 2, analysis.TeamComposition.Size)
	assert.Equal(t, "t1", analysis.TeamComposition.Members[0].Technician.ID)
	assert.Equal(t, model.RoleLead, analysis.TeamComposition.Members[0].Role)

	require.NotNil(t, analysis.TopRecommendation)
	assert.Equal(t, "t1", analysis.TopRecommendation.Technician.ID)

	assert.NotEmpty(t, analysis.AlternativeTeams)
	assert.NotEmpty(t, analysis.Alternatives, "flattened alternative members")
	assert.Equal(t, model.ComplexitySimple, analysis.JobAnalysis.Complexity)
}

func TestGenerateMatchAnalysis_NoCandidates(t *testing.T) {
	engine := deterministicEngine()

	analysis := engine.GenerateMatchAnalysis(context.Background(), model.JobRequirement{JobType: "UT"}, nil)

	require.NotNil(t, analysis)
	assert.Equal(t, 0, analysis.TeamComposition.Size)
	require.NotNil(t, analysis.TopRecommendation)
	assert.Equal(t, UnknownTechnicianID, analysis.TopRecommendation.Technician.ID)
	assert.Contains(t, analysis.TopRecommendation.Reasoning[0], "manual review")
}

func TestGenerateMatchAnalysis_AIFailureFallsBack(t *testing.T) {
	det := NewDeterministicRanker(matchingConfig())
	engine := NewEngine(det, failingRanker{}, NewAnalyzer(nil, config.AnthropicConfig{}, DefaultKeywordTable()))

	candidates := []model.CandidateMatch{
		{Technician: model.Technician{ID: "t1", Name: "A", Certifications: []string{"UT Level II"}}},
	}

	analysis := engine.GenerateMatchAnalysis(context.Background(), model.JobRequirement{JobType: "UT"}, candidates)

	require.NotNil(t, analysis)
	assert.True(t, analysis.FallbackUsed)
	assert.Equal(t, 1, analysis.TeamComposition.Size)
	assert.Equal(t, "t1", analysis.TeamComposition.Members[0].Technician.ID)
}

func TestGenerateMatchAnalysis_AISuccess(t *testing.T) {
	client := &stubAnthropicClient{replies: []string{`{
		"recommendedTeam": {"size": 1, "members": [{"name": "Jane Doe", "role": "Lead", "confidenceScore": 90}]}
	}`}}
	ai := NewAIRanker(client, config.AnthropicConfig{Model: "test"}, matchingConfig())
	det := NewDeterministicRanker(matchingConfig())
	engine := NewEngine(det, ai, NewAnalyzer(client, config.AnthropicConfig{Model: "test"}, DefaultKeywordTable()))

	analysis := engine.GenerateMatchAnalysis(context.Background(), model.JobRequirement{JobType: "UT"}, candidateFixture())

	require.NotNil(t, analysis)
	assert.Equal(t, "rec1", analysis.TeamComposition.Members[0].Technician.ID)
}

func TestGenerateMatchAnalysis_PanicYieldsDegradedArtifact(t *testing.T) {
	engine := NewEngine(panickyRanker{}, nil, NewAnalyzer(nil, config.AnthropicConfig{}, DefaultKeywordTable()))

	analysis := engine.GenerateMatchAnalysis(context.Background(), model.JobRequirement{JobType: "UT"}, nil)

	require.NotNil(t, analysis)
	assert.True(t, analysis.FallbackUsed)
	assert.Equal(t, model.ComplexityModerate, analysis.JobAnalysis.Complexity)
	require.NotEmpty(t, analysis.JobAnalysis.Recommendations)
	assert.Contains(t, analysis.JobAnalysis.Recommendations[0], "manual review")
}

func TestCandidatesForJob(t *testing.T) {
	engine := deterministicEngine()
	jobDate := day(2026, 3, 15)

	dir := &stubDirectory{
		techs: []model.Technician{
			{ID: "t1", Name: "A", Status: model.TechnicianActive},
			{ID: "t2", Name: "B", Status: model.TechnicianActive},
		},
		periods: []model.AvailabilityPeriod{
			period("t2", model.PeriodBooked, day(2026, 3, 14), day(2026, 3, 16)),
		},
	}

	got := engine.CandidatesForJob(context.Background(), dir, model.JobRequirement{ScheduledDate: &jobDate})
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].Technician.ID)
}

func TestCandidatesForJob_NoDate(t *testing.T) {
	engine := deterministicEngine()

	dir := &stubDirectory{
		techs: []model.Technician{{ID: "t1"}, {ID: "t2"}},
		periods: []model.AvailabilityPeriod{
			period("t1", model.PeriodBooked, day(2026, 1, 1), day(2026, 12, 31)),
		},
	}

	got := engine.CandidatesForJob(context.Background(), dir, model.JobRequirement{})
	assert.Len(t, got, 2)
}
