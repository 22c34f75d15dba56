package scorer

import (
	"context"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/artifact"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/engine"
)

// LocalScorer evaluates the store's active artifact in process.
type LocalScorer struct {
	store *artifact.Store
}

func NewLocalScorer(store *artifact.Store) *LocalScorer {
	return &LocalScorer{store: store}
}

func (s *LocalScorer) Name() string { return "local" }

func (s *LocalScorer) Assess(ctx context.Context, app domain.LoanApplication) (*domain.Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(s.Name(), err)
	}

	loaded := s.store.Current()
	if loaded == nil {
		return nil, unavailable(s.Name(), domain.ErrModelNotLoaded)
	}

	e, err := engine.New(loaded.Artifact)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}

	assessment, err := e.Assess(app)
	if err != nil {
		return nil, badResponse(s.Name(), err)
	}
	return assessment, nil
}

func (s *LocalScorer) Status(_ context.Context) Status {
	loaded := s.store.Current()
	if loaded == nil {
		return Status{}
	}
	return Status{Loaded: true, Version: loaded.Artifact.Version, Source: loaded.Source}
}

// ModelVersion is the version of the active artifact, or "" when none.
func (s *LocalScorer) ModelVersion() string {
	if loaded := s.store.Current(); loaded != nil {
		return loaded.Artifact.Version
	}
	return ""
}
