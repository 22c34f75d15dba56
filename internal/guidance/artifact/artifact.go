package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Feature names a risk model may weight.
const (
	FeatureMonthlyIncome           = "monthly_income"
	FeatureLoanAmount              = "loan_amount"
	FeatureInterestRate            = "interest_rate"
	FeatureLoanTermMonths          = "loan_term_months"
	FeatureCreditScore             = "credit_score"
	FeatureAge                     = "age"
	FeatureSectorRisk              = "sector_risk"
	FeatureDebtToIncome            = "debt_to_income"
	FeatureIncomeToLoanRatio       = "income_to_loan_ratio"
	FeatureMonthlyPaymentRatio     = "monthly_payment_ratio"
	FeatureCreditIncomeInteraction = "credit_income_interaction"
	FeatureAgeCreditInteraction    = "age_credit_interaction"
	FeaturePaymentRegularity       = "payment_regularity"
	FeatureLatePayments            = "late_payments"
	FeatureAvgPaymentDelay         = "avg_payment_delay"
	FeaturePaymentVolatility       = "payment_volatility"
	FeaturePaymentTrend            = "payment_trend"
)

var knownFeatures = map[string]struct{}{
	FeatureMonthlyIncome: {}, FeatureLoanAmount: {}, FeatureInterestRate: {},
	FeatureLoanTermMonths: {}, FeatureCreditScore: {}, FeatureAge: {},
	FeatureSectorRisk: {}, FeatureDebtToIncome: {}, FeatureIncomeToLoanRatio: {},
	FeatureMonthlyPaymentRatio: {}, FeatureCreditIncomeInteraction: {},
	FeatureAgeCreditInteraction: {}, FeaturePaymentRegularity: {},
	FeatureLatePayments: {}, FeatureAvgPaymentDelay: {},
	FeaturePaymentVolatility: {}, FeaturePaymentTrend: {},
}

var ErrInvalidArtifact = errors.New("invalid model artifact")

// Artifact is a versioned, serialized guidance model.
type Artifact struct {
	Version           string            `json:"version"`
	RiskModel         RiskModel         `json:"risk_model"`
	Thresholds        Thresholds        `json:"thresholds"`
	Sectors           map[string]Sector `json:"sectors"`
	DefaultSectorRisk float64           `json:"default_sector_risk"`
}

// RiskModel is a logistic model over standardized features.
type RiskModel struct {
	Intercept float64         `json:"intercept"`
	Features  []FeatureWeight `json:"features"`
}

type FeatureWeight struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Weight float64 `json:"weight"`
}

// Thresholds split the risk score into Low (< Low), Moderate (< High)
// and High.
type Thresholds struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Sector holds the base risk of a sector and the adjustments its
// attributes apply.
type Sector struct {
	Base        float64                       `json:"base"`
	Categorical map[string]map[string]float64 `json:"categorical,omitempty"`
	Numeric     map[string]NumericModifier    `json:"numeric,omitempty"`
}

// NumericModifier adds Above when the attribute exceeds Threshold and
// Otherwise when it does not.
type NumericModifier struct {
	Threshold float64 `json:"threshold"`
	Above     float64 `json:"above"`
	Otherwise float64 `json:"otherwise"`
}

// Parse decodes and validates an artifact document.
func Parse(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *Artifact) Validate() error {
	if a.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidArtifact)
	}
	if len(a.RiskModel.Features) == 0 {
		return fmt.Errorf("%w: risk_model.features is empty", ErrInvalidArtifact)
	}

	seen := make(map[string]bool, len(a.RiskModel.Features))
	for i, f := range a.RiskModel.Features {
		if _, ok := knownFeatures[f.Name]; !ok {
			return fmt.Errorf("%w: risk_model.features[%d]: unknown feature %q", ErrInvalidArtifact, i, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: risk_model.features[%d]: duplicate feature %q", ErrInvalidArtifact, i, f.Name)
		}
		seen[f.Name] = true
		if !(f.Std > 0) || math.IsInf(f.Std, 0) {
			return fmt.Errorf("%w: risk_model.features[%d]: std must be positive", ErrInvalidArtifact, i)
		}
	}

	t := a.Thresholds
	if !(t.Low > 0 && t.Low < t.High && t.High < 1) {
		return fmt.Errorf("%w: thresholds must satisfy 0 < low < high < 1", ErrInvalidArtifact)
	}

	if a.DefaultSectorRisk < 0 || a.DefaultSectorRisk > 1 {
		return fmt.Errorf("%w: default_sector_risk must be within [0,1]", ErrInvalidArtifact)
	}
	for name, s := range a.Sectors {
		if s.Base < 0 || s.Base > 1 {
			return fmt.Errorf("%w: sectors.%s.base must be within [0,1]", ErrInvalidArtifact, name)
		}
	}

	return nil
}
