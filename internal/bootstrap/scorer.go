package bootstrap

import (
	"log/slog"

	"github.com/loan-guidance/loan-guidance-backend/config"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/artifact"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/scorer"
	"github.com/redis/go-redis/v9"
)

// BuildScorer picks the scorer for SCORER_MODE and wraps it with the Redis
// cache when cache is non-nil.
func BuildScorer(cfg *config.Config, store *artifact.Store, cache *redis.Client, logger *slog.Logger) scorer.Scorer {
	var sc scorer.Scorer
	switch cfg.Scorer.Mode {
	case config.ScorerModeRemote:
		sc = scorer.NewRemoteScorer(cfg.Scorer.URL, cfg.Scorer.Timeout)
	default:
		sc = scorer.NewLocalScorer(store)
	}

	if cache != nil {
		sc = scorer.NewCachedScorer(sc, cache, cfg.Redis.CacheTTL, logger)
	}
	return sc
}
