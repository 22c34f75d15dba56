package domain

// Risk levels produced by the guidance model.
const (
	RiskLow      = "Low Risk"
	RiskModerate = "Moderate Risk"
	RiskHigh     = "High Risk"
)

// Assessment is the scorer's answer for one application.
type Assessment struct {
	ModelVersion string   `json:"model_version"`
	Guidance     Guidance `json:"guidance"`
}

type Guidance struct {
	RiskAssessment  RiskAssessment  `json:"risk_assessment"`
	PaymentPlan     PaymentPlan     `json:"payment_plan"`
	Recommendations Recommendations `json:"recommendations"`
	MonitoringPlan  MonitoringPlan  `json:"monitoring_plan"`
}

type RiskAssessment struct {
	RiskLevel            string       `json:"risk_level"`
	RiskScore            float64      `json:"risk_score"`
	KeyFactors           []RiskFactor `json:"key_factors"`
	MitigationStrategies []string     `json:"mitigation_strategies"`
}

type RiskFactor struct {
	Factor string `json:"factor"`
	Impact string `json:"impact"`
}

type PaymentPlan struct {
	MonthlyPayment       float64              `json:"monthly_payment"`
	PaymentSchedule      []ScheduledPayment   `json:"payment_schedule"`
	FlexibilityOptions   FlexibilityOptions   `json:"flexibility_options"`
	EarlyPaymentBenefits EarlyPaymentBenefits `json:"early_payment_benefits"`
}

type ScheduledPayment struct {
	PaymentNumber    int      `json:"payment_number"`
	DueDate          string   `json:"due_date"`
	PaymentAmount    float64  `json:"payment_amount"`
	Principal        float64  `json:"principal"`
	Interest         float64  `json:"interest"`
	RemainingBalance float64  `json:"remaining_balance"`
	ReminderDates    []string `json:"reminder_dates"`
}

type FlexibilityOptions struct {
	BiWeeklyOption     BiWeeklyOption     `json:"bi_weekly_option"`
	ExtraPaymentOption ExtraPaymentOption `json:"extra_payment_option"`
}

type BiWeeklyOption struct {
	Available bool           `json:"available"`
	Impact    BiWeeklyImpact `json:"impact"`
}

type BiWeeklyImpact struct {
	PaymentAmount float64 `json:"payment_amount"`
	YearlySavings float64 `json:"yearly_savings"`
}

type ExtraPaymentOption struct {
	Available bool    `json:"available"`
	MinAmount float64 `json:"min_amount"`
}

type EarlyPaymentBenefits struct {
	PotentialSavings float64 `json:"potential_savings"`
	TimeSaved        int     `json:"time_saved"`
	ReducedInterest  float64 `json:"reduced_interest"`
}

type Recommendations struct {
	PaymentStrategy   []string `json:"payment_strategy"`
	RiskMitigation    []string `json:"risk_mitigation"`
	FinancialPlanning []string `json:"financial_planning"`
}

type MonitoringPlan struct {
	MonitoringFrequency string          `json:"monitoring_frequency"`
	RequiredChecks      []string        `json:"required_checks"`
	AlertThresholds     AlertThresholds `json:"alert_thresholds"`
}

type AlertThresholds struct {
	MissedPayments  int     `json:"missed_payments"`
	CreditScoreDrop int     `json:"credit_score_drop"`
	IncomeChange    float64 `json:"income_change"`
}
