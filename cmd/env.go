package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/TheeNate/JobPilot/internal/directory"
	"github.com/TheeNate/JobPilot/internal/matching"
	"github.com/TheeNate/JobPilot/internal/store"
	"github.com/TheeNate/JobPilot/pkg/anthropic"
)

// env holds the wired application services shared by the commands.
type env struct {
	Directory directory.Client
	Engine    *matching.Engine
	Store     store.Store
}

// initEngine wires the directory client, rankers, analyzer, and store from
// the loaded configuration. Without an Anthropic key the AI ranker is left
// nil and every request takes the deterministic path.
func initEngine(ctx context.Context) (*env, error) {
	dir := directory.NewClient(cfg.Directory)

	table, err := matching.LoadKeywordTable(cfg.Matching.KeywordFile)
	if err != nil {
		return nil, err
	}

	var (
		aiClient anthropic.Client
		ai       matching.Ranker
	)
	if cfg.Anthropic.Key != "" {
		aiClient = anthropic.NewClient(cfg.Anthropic.Key,
			anthropic.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.Anthropic.RateRPS), cfg.Anthropic.RateBurst)),
		)
		ai = matching.NewAIRanker(aiClient, cfg.Anthropic, cfg.Matching)
	} else {
		zap.L().Info("no anthropic key configured, using deterministic matching only")
	}

	det := matching.NewDeterministicRanker(cfg.Matching)
	analyzer := matching.NewAnalyzer(aiClient, cfg.Anthropic, table)

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "cmd: open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "cmd: migrate store")
	}
	if days := cfg.Store.RetentionDays; days > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		n, err := st.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			zap.L().Warn("history pruning failed", zap.Error(err))
		} else if n > 0 {
			zap.L().Info("pruned match history",
				zap.Int("removed", n),
				zap.Int("retention_days", days),
			)
		}
	}

	return &env{
		Directory: dir,
		Engine:    matching.NewEngine(det, ai, analyzer),
		Store:     st,
	}, nil
}

func (e *env) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}
