// Package engine evaluates a model artifact against a loan application and
// assembles the guidance returned to borrowers.
package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/artifact"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
)

// Engine is stateless; one instance per artifact version.
type Engine struct {
	artifact *artifact.Artifact
}

func New(a *artifact.Artifact) (*Engine, error) {
	if a == nil {
		return nil, errors.New("engine: nil artifact")
	}
	return &Engine{artifact: a}, nil
}

func (e *Engine) Version() string {
	return e.artifact.Version
}

// Score returns the probability-like risk score in [0,1].
func (e *Engine) Score(f Features) float64 {
	z := e.artifact.RiskModel.Intercept
	for _, fw := range e.artifact.RiskModel.Features {
		z += fw.Weight * (f[fw.Name] - fw.Mean) / fw.Std
	}
	return 1 / (1 + math.Exp(-z))
}

// Categorize maps a risk score onto a risk level.
func (e *Engine) Categorize(score float64) string {
	switch {
	case score < e.artifact.Thresholds.Low:
		return domain.RiskLow
	case score < e.artifact.Thresholds.High:
		return domain.RiskModerate
	default:
		return domain.RiskHigh
	}
}

// Assess produces the full guidance for app. The result depends only on
// app and the artifact.
func (e *Engine) Assess(app domain.LoanApplication) (*domain.Assessment, error) {
	features, err := ExtractFeatures(app, e.artifact)
	if err != nil {
		return nil, fmt.Errorf("extract features: %w", err)
	}

	start, err := time.Parse(domain.DateLayout, app.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}

	score := e.Score(features)
	if !finite(score) {
		return nil, fmt.Errorf("risk score is not finite: %v", score)
	}
	level := e.Categorize(score)

	plan := BuildPaymentPlan(app, start)
	if err := checkPlan(plan); err != nil {
		return nil, err
	}

	return &domain.Assessment{
		ModelVersion: e.artifact.Version,
		Guidance: domain.Guidance{
			RiskAssessment: domain.RiskAssessment{
				RiskLevel:            level,
				RiskScore:            round(score, 4),
				KeyFactors:           RiskFactors(app),
				MitigationStrategies: MitigationStrategies(level),
			},
			PaymentPlan:     plan,
			Recommendations: Recommend(app, score),
			MonitoringPlan:  e.monitoringPlan(score),
		},
	}, nil
}

// checkPlan rejects plans carrying Inf or NaN, which cannot be encoded as JSON.
func checkPlan(p domain.PaymentPlan) error {
	values := []float64{
		p.MonthlyPayment,
		p.FlexibilityOptions.BiWeeklyOption.Impact.PaymentAmount,
		p.FlexibilityOptions.BiWeeklyOption.Impact.YearlySavings,
		p.FlexibilityOptions.ExtraPaymentOption.MinAmount,
		p.EarlyPaymentBenefits.PotentialSavings,
		p.EarlyPaymentBenefits.ReducedInterest,
	}
	for _, v := range values {
		if !finite(v) {
			return fmt.Errorf("payment plan is not finite: %v", v)
		}
	}
	for _, row := range p.PaymentSchedule {
		for _, v := range []float64{row.PaymentAmount, row.Principal, row.Interest, row.RemainingBalance} {
			if !finite(v) {
				return fmt.Errorf("payment %d is not finite: %v", row.PaymentNumber, v)
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func (e *Engine) monitoringPlan(score float64) domain.MonitoringPlan {
	plan := domain.MonitoringPlan{
		AlertThresholds: domain.AlertThresholds{
			MissedPayments:  1,
			CreditScoreDrop: 50,
			IncomeChange:    0.2,
		},
	}

	switch e.Categorize(score) {
	case domain.RiskLow:
		plan.MonitoringFrequency = "Quarterly"
		plan.RequiredChecks = []string{"Payment History", "Credit Score"}
	case domain.RiskModerate:
		plan.MonitoringFrequency = "Monthly"
		plan.RequiredChecks = []string{"Payment History", "Credit Score", "Income Verification"}
	default:
		plan.MonitoringFrequency = "Weekly"
		plan.RequiredChecks = []string{"Payment History", "Credit Score", "Income Verification", "Expense Tracking"}
	}
	return plan
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
