package scorer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
	"github.com/loan-guidance/loan-guidance-backend/internal/observability"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "guidance:assessment:" // guidance:assessment:{model_version}:{fingerprint}

type versioned interface {
	ModelVersion() string
}

// CachedScorer memoizes successful assessments in Redis.
type CachedScorer struct {
	next   Scorer
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedScorer wraps next. Entries expire after ttl.
func NewCachedScorer(next Scorer, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedScorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedScorer{next: next, client: client, ttl: ttl, logger: logger}
}

func (s *CachedScorer) Name() string { return "cached-" + s.next.Name() }

func (s *CachedScorer) Status(ctx context.Context) Status { return s.next.Status(ctx) }

// Assess serves app from Redis when an entry exists for the current model
// version. Fresh results are stored under the version that produced them, so
// nothing is cached while the wrapped scorer has not reported one yet.
func (s *CachedScorer) Assess(ctx context.Context, app domain.LoanApplication) (*domain.Assessment, error) {
	fp, err := app.Fingerprint()
	if err != nil {
		s.logger.Warn("assessment cache key failed", "error", err)
		return s.next.Assess(ctx, app)
	}

	if version := s.ModelVersion(); version != "" {
		if cached, ok := s.lookup(ctx, cacheKey(version, fp)); ok {
			return cached, nil
		}
	} else {
		observability.CacheLookups.WithLabelValues("miss").Inc()
	}

	assessment, err := s.next.Assess(ctx, app)
	if err != nil {
		return nil, err
	}

	if assessment.ModelVersion != "" {
		s.store(ctx, cacheKey(assessment.ModelVersion, fp), assessment)
	}
	return assessment, nil
}

func cacheKey(version, fingerprint string) string {
	return cacheKeyPrefix + version + ":" + fingerprint
}

func (s *CachedScorer) lookup(ctx context.Context, key string) (*domain.Assessment, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		observability.CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("assessment cache read failed", "error", err)
		return nil, false
	}

	var assessment domain.Assessment
	if err := json.Unmarshal(data, &assessment); err != nil {
		observability.CacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("assessment cache entry corrupt", "key", key, "error", err)
		return nil, false
	}

	observability.CacheLookups.WithLabelValues("hit").Inc()
	return &assessment, true
}

func (s *CachedScorer) store(ctx context.Context, key string, a *domain.Assessment) {
	data, err := json.Marshal(a)
	if err != nil {
		s.logger.Warn("assessment cache encode failed", "error", err)
		return
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn("assessment cache write failed", "error", err)
	}
}

// ModelVersion passes through the wrapped scorer's version.
func (s *CachedScorer) ModelVersion() string {
	if v, ok := s.next.(versioned); ok {
		return v.ModelVersion()
	}
	return ""
}
