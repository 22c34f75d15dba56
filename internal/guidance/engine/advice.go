package engine

import "github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"

var mitigationStrategies = map[string][]string{
	domain.RiskLow: {
		"Continue regular payments",
		"Consider early payment options",
		"Build emergency fund",
	},
	domain.RiskModerate: {
		"Set up automatic payments",
		"Create strict budget",
		"Build larger emergency fund",
	},
	domain.RiskHigh: {
		"Consider loan restructuring",
		"Seek financial counseling",
		"Explore additional income sources",
	},
}

var borrowerStrategies = map[string][]string{
	domain.BorrowerFarmer: {
		"Time payments with harvest cycles",
		"Consider crop insurance for risk mitigation",
		"Explore government agricultural subsidies",
	},
	domain.BorrowerStudent: {
		"Look for part-time work opportunities",
		"Apply for educational scholarships",
		"Consider income-based repayment options",
	},
	domain.BorrowerBusiness: {
		"Align payments with business cash flow cycles",
		"Maintain separate business and personal accounts",
		"Explore invoice financing options",
	},
}

// MitigationStrategies returns a copy of the strategies for a risk level.
func MitigationStrategies(level string) []string {
	return append([]string{}, mitigationStrategies[level]...)
}

// RiskFactors lists the application traits that drive risk up.
func RiskFactors(app domain.LoanApplication) []domain.RiskFactor {
	factors := []domain.RiskFactor{}

	if app.CreditScore < 650 {
		factors = append(factors, domain.RiskFactor{Factor: "Low Credit Score", Impact: "High"})
	}
	if safeDivide(app.LoanAmount, app.MonthlyIncome*float64(app.LoanTermMonths)) > 0.4 {
		factors = append(factors, domain.RiskFactor{Factor: "High Debt-to-Income Ratio", Impact: "High"})
	}
	if app.Age < 25 {
		factors = append(factors, domain.RiskFactor{Factor: "Limited Credit History", Impact: "Medium"})
	}

	return factors
}

// Recommend builds payment, risk and planning advice for the borrower.
func Recommend(app domain.LoanApplication, score float64) domain.Recommendations {
	rec := domain.Recommendations{
		PaymentStrategy:   []string{},
		RiskMitigation:    []string{},
		FinancialPlanning: []string{},
	}

	if safeDivide(app.LoanAmount, app.MonthlyIncome) > 24 {
		rec.PaymentStrategy = append(rec.PaymentStrategy,
			"Consider bi-weekly payments to reduce interest",
			"Allocate year-end bonus to loan payment",
		)
	}
	rec.PaymentStrategy = append(rec.PaymentStrategy, borrowerStrategies[app.BorrowerType]...)

	switch {
	case score > 0.6:
		rec.RiskMitigation = append(rec.RiskMitigation,
			"Build emergency fund of 6 months",
			"Consider payment protection insurance",
			"Set up automatic payments to avoid delays",
		)
	case score > 0.3:
		rec.RiskMitigation = append(rec.RiskMitigation,
			"Build emergency fund of 3 months",
			"Review monthly budget",
			"Consider income diversification",
		)
	}

	if app.CreditScore < 700 {
		rec.FinancialPlanning = append(rec.FinancialPlanning,
			"Focus on improving credit score",
			"Review and dispute any credit report errors",
			"Minimize new credit applications",
		)
	}

	return rec
}
