// Package scorer provides the risk-scoring collaborators behind /predict.
// Every implementation reports failures as *domain.DependencyError.
package scorer

import (
	"context"
	"fmt"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
)

// Scorer turns a validated application into an assessment.
type Scorer interface {
	Name() string
	Assess(ctx context.Context, app domain.LoanApplication) (*domain.Assessment, error)
	Status(ctx context.Context) Status
}

// Status describes the model behind a scorer for health reporting.
type Status struct {
	Loaded  bool   `json:"model_loaded"`
	Version string `json:"model_version,omitempty"`
	Source  string `json:"model_source,omitempty"`
}

func unavailable(dep string, cause error) error {
	return &domain.DependencyError{
		Dependency: dep,
		Err:        fmt.Errorf("%w: %w", domain.ErrScorerUnavailable, cause),
	}
}

func badResponse(dep string, cause error) error {
	return &domain.DependencyError{
		Dependency: dep,
		Err:        fmt.Errorf("%w: %w", domain.ErrScorerBadResponse, cause),
	}
}
