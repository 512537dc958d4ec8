package matching

import (
	"context"

	"github.com/TheeNate/JobPilot/internal/config"
	"github.com/TheeNate/JobPilot/internal/model"
)

// RankedTeam is the outcome of one ranking pass: the primary composition
// plus alternative samplings.
type RankedTeam struct {
	Team         model.TeamComposition
	Alternatives []model.AlternativeTeam
}

// Ranker turns a job and its ranked candidates into a team. The AI-backed
// and deterministic implementations share this capability so the engine
// consumes one abstraction regardless of which produced the result.
type Ranker interface {
	Rank(ctx context.Context, job model.JobRequirement, candidates []model.CandidateMatch) (*RankedTeam, error)
}

// DeterministicRanker composes teams purely from the certification scores.
// It never fails, which makes it the terminal fallback for every other path.
type DeterministicRanker struct {
	cfg config.MatchingConfig
}

// NewDeterministicRanker creates the rule-based ranker.
func NewDeterministicRanker(cfg config.MatchingConfig) *DeterministicRanker {
	return &DeterministicRanker{cfg: cfg}
}

func (r *DeterministicRanker) Rank(_ context.Context, job model.JobRequirement, candidates []model.CandidateMatch) (*RankedTeam, error) {
	ranked := RankCandidates(candidates, job.JobType)
	return &RankedTeam{
		Team:         ComposeTeam(ranked, job.TechsNeeded, r.cfg.SpecialistThreshold),
		Alternatives: AlternativeTeams(ranked, job.TechsNeeded, r.cfg.MaxAlternativeTeams, r.cfg.SpecialistThreshold),
	}, nil
}
