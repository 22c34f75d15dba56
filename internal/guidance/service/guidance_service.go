package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/scorer"
	"github.com/loan-guidance/loan-guidance-backend/internal/observability"
	"github.com/loan-guidance/loan-guidance-backend/internal/storage/postgres"
)

const recordTimeout = 2 * time.Second

// AssessmentRecorder stores completed assessments. Implemented by
// postgres.AssessmentLog.
type AssessmentRecorder interface {
	Record(ctx context.Context, rec *postgres.AssessmentRecord) error
}

// Result is a completed assessment together with the application it was
// computed for.
type Result struct {
	Application domain.LoanApplication
	Assessment  *domain.Assessment
}

// GuidanceService validates loan applications and delegates scoring.
type GuidanceService struct {
	scorer   scorer.Scorer
	recorder AssessmentRecorder
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*GuidanceService)

// WithRecorder enables the assessment log.
func WithRecorder(r AssessmentRecorder) Option {
	return func(s *GuidanceService) { s.recorder = r }
}

// WithClock overrides the clock used to anchor payment schedules.
func WithClock(now func() time.Time) Option {
	return func(s *GuidanceService) { s.now = now }
}

// NewGuidanceService creates a new GuidanceService. Each scorer call is
// bounded by timeout.
func NewGuidanceService(sc scorer.Scorer, timeout time.Duration, logger *slog.Logger, opts ...Option) *GuidanceService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &GuidanceService{
		scorer:  sc,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess returns a *domain.ValidationError for a bad request and a
// *domain.DependencyError when the scorer fails. Nothing else escapes.
func (s *GuidanceService) Assess(ctx context.Context, req *domain.LoanApplicationRequest) (*Result, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}
	app := req.ToApplication(s.now())

	sctx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	assessment, err := s.scorer.Assess(sctx, app)
	if err == nil && assessment == nil {
		err = errors.New("empty assessment")
	}
	if err != nil {
		depErr := s.asDependencyError(err)
		kind := "bad_response"
		if depErr.Unavailable() {
			kind = "unavailable"
		}
		observability.ScorerErrors.WithLabelValues(s.scorer.Name(), kind).Inc()
		s.logger.Warn("risk scoring failed",
			"scorer", s.scorer.Name(),
			"kind", kind,
			"error", depErr,
		)
		return nil, depErr
	}

	risk := assessment.Guidance.RiskAssessment
	observability.Assessments.WithLabelValues(risk.RiskLevel).Inc()
	s.logger.Info("loan assessed",
		"borrower_type", app.BorrowerType,
		"risk_level", risk.RiskLevel,
		"risk_score", risk.RiskScore,
		"model_version", assessment.ModelVersion,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	s.record(ctx, app, assessment)

	return &Result{Application: app, Assessment: assessment}, nil
}

// Status reports the state of the model behind the scorer.
func (s *GuidanceService) Status(ctx context.Context) scorer.Status {
	return s.scorer.Status(ctx)
}

func (s *GuidanceService) asDependencyError(err error) *domain.DependencyError {
	var depErr *domain.DependencyError
	if errors.As(err, &depErr) {
		return depErr
	}
	return &domain.DependencyError{
		Dependency: s.scorer.Name(),
		Err:        fmt.Errorf("%w: %w", domain.ErrScorerBadResponse, err),
	}
}

// record writes to the assessment log. Failures are logged only.
func (s *GuidanceService) record(ctx context.Context, app domain.LoanApplication, a *domain.Assessment) {
	if s.recorder == nil {
		return
	}

	hash, err := app.Fingerprint()
	if err != nil {
		s.logger.Warn("assessment log skipped", "error", err)
		return
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	rec := &postgres.AssessmentRecord{
		RequestHash:  hash,
		BorrowerType: app.BorrowerType,
		LoanAmount:   app.LoanAmount,
		RiskLevel:    a.Guidance.RiskAssessment.RiskLevel,
		RiskScore:    a.Guidance.RiskAssessment.RiskScore,
		ModelVersion: a.ModelVersion,
	}
	if err := s.recorder.Record(rctx, rec); err != nil {
		s.logger.Warn("assessment log write failed", "error", err)
	}
}
