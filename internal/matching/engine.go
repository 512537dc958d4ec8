package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TheeNate/JobPilot/internal/directory"
	"github.com/TheeNate/JobPilot/internal/model"
)

// Engine orchestrates one matching request: job analysis and team ranking
// run concurrently, and every failure along the AI path degrades to the
// deterministic path instead of surfacing.
type Engine struct {
	det      Ranker
	ai       Ranker
	analyzer *Analyzer
}

// NewEngine creates the matching engine. A nil ai ranker pins every request
// to the deterministic path.
func NewEngine(det Ranker, ai Ranker, analyzer *Analyzer) *Engine {
	return &Engine{det: det, ai: ai, analyzer: analyzer}
}

// CandidatesForJob loads the active roster and availability windows from the
// directory and filters to technicians available on the job date. Directory
// outages surface as an empty candidate list, already logged downstream.
func (e *Engine) CandidatesForJob(ctx context.Context, dir directory.Client, job model.JobRequirement) []model.CandidateMatch {
	var (
		techs   []model.Technician
		periods []model.AvailabilityPeriod
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		techs = dir.ListActiveTechnicians(gctx)
		return nil
	})
	g.Go(func() error {
		// Without a scheduled date every candidate passes the availability
		// filter, so there is nothing to fetch.
		if job.ScheduledDate != nil {
			periods = dir.ListAvailability(gctx, *job.ScheduledDate, nil)
		}
		return nil
	})
	_ = g.Wait()

	return AvailableCandidates(techs, periods, job.ScheduledDate)
}

// GenerateMatchAnalysis produces the match artifact for one job. It never
// returns an error: the AI ranker and analyzer each fall back independently,
// and a panic anywhere inside yields a degraded artifact flagged for manual
// review.
func (e *Engine) GenerateMatchAnalysis(ctx context.Context, job model.JobRequirement, candidates []model.CandidateMatch) (analysis *model.MatchAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("engine: recovered from panic, emitting degraded analysis", zap.Any("panic", r))
			analysis = degradedAnalysis()
		}
	}()

	var (
		jobAnalysis model.JobAnalysis
		usedAI      bool
		ranked      *RankedTeam
		rankFell    bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		jobAnalysis, usedAI = e.analyzer.Analyze(gctx, job)
		return nil
	})
	g.Go(func() error {
		ranked, rankFell = e.rank(gctx, job, candidates)
		return nil
	})
	_ = g.Wait()

	result := &model.MatchAnalysis{
		ID:                uuid.NewString(),
		TeamComposition:   ranked.Team,
		AlternativeTeams:  ranked.Alternatives,
		JobAnalysis:       jobAnalysis,
		AnalysisTimestamp: time.Now().UTC(),
		FallbackUsed:      rankFell || !usedAI,
	}

	if len(ranked.Team.Members) > 0 {
		top := ranked.Team.Members[0]
		result.TopRecommendation = &top
	} else {
		result.TopRecommendation = noMatchRecommendation()
	}

	for _, alt := range ranked.Alternatives {
		result.Alternatives = append(result.Alternatives, alt.Members...)
	}

	zap.L().Info("engine: match analysis generated",
		zap.String("analysis_id", result.ID),
		zap.Int("team_size", result.TeamComposition.Size),
		zap.Int("candidates", len(candidates)),
		zap.Bool("fallback_used", result.FallbackUsed),
	)
	return result
}

// rank tries the AI ranker and falls back to the deterministic one. The
// deterministic ranker never fails, so the second leg cannot error.
func (e *Engine) rank(ctx context.Context, job model.JobRequirement, candidates []model.CandidateMatch) (*RankedTeam, bool) {
	if e.ai != nil {
		team, err := e.ai.Rank(ctx, job, candidates)
		if err == nil {
			return team, false
		}
		zap.L().Warn("engine: ai ranking failed, using deterministic ranking", zap.Error(err))
	}
	team, _ := e.det.Rank(ctx, job, candidates)
	return team, e.ai != nil
}

// noMatchRecommendation is the sentinel for an empty candidate pool.
func noMatchRecommendation() *model.TeamMember {
	return &model.TeamMember{
		Technician: model.Technician{
			ID:     UnknownTechnicianID,
			Name:   "No match found",
			Status: model.TechnicianUnknown,
		},
		Role:               model.RoleSupport,
		Reasoning:          []string{"No available technicians matched this job; manual review required"},
		AvailabilityStatus: "Unknown",
	}
}

// degradedAnalysis is the last-resort artifact when analysis itself fails.
func degradedAnalysis() *model.MatchAnalysis {
	return &model.MatchAnalysis{
		ID:                uuid.NewString(),
		TeamComposition:   model.TeamComposition{},
		TopRecommendation: noMatchRecommendation(),
		JobAnalysis: model.JobAnalysis{
			Complexity:      model.ComplexityModerate,
			Recommendations: []string{"Automated analysis unavailable; manual review required"},
		},
		AnalysisTimestamp: time.Now().UTC(),
		FallbackUsed:      true,
	}
}
