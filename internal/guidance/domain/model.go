package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Borrower types accepted by the guidance model.
const (
	BorrowerStudent  = "student"
	BorrowerBusiness = "business"
	BorrowerFarmer   = "farmer"
)

// Sector keys accepted in sector_data.
const (
	SectorStudent  = "student"
	SectorBusiness = "business"
	SectorFarming  = "farming"
)

// DateLayout is the wire format of every date in requests and responses.
const DateLayout = "2006-01-02"

var (
	BorrowerTypes = []string{BorrowerStudent, BorrowerBusiness, BorrowerFarmer}
	SectorKeys    = []string{SectorStudent, SectorBusiness, SectorFarming}
)

// LoanApplicationRequest is the wire shape of a loan assessment request.
// Required numeric fields are pointers so that a missing field is told
// apart from an explicit zero.
type LoanApplicationRequest struct {
	MonthlyIncome  *float64                          `json:"monthly_income" validate:"required,gt=0,lte=100000000"`
	LoanAmount     *float64                          `json:"loan_amount" validate:"required,gt=0,lte=1000000000"`
	InterestRate   *float64                          `json:"interest_rate" validate:"required,gte=0,lte=100"`
	LoanTermMonths *int                              `json:"loan_term_months" validate:"required,gt=0,lte=360"`
	CreditScore    *int                              `json:"credit_score" validate:"required,gte=300,lte=850"`
	Age            *int                              `json:"age" validate:"required,gte=18"`
	BorrowerType   string                            `json:"borrower_type" validate:"required,borrower_type"`
	SectorData     map[string]map[string]interface{} `json:"sector_data" validate:"required,sector_data"`
	PaymentHistory []PaymentRecord                   `json:"payment_history" validate:"omitempty,dive"`
	StartDate      string                            `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// PaymentRecord is one historical repayment.
type PaymentRecord struct {
	DueDate     string   `json:"due_date" validate:"required,datetime=2006-01-02"`
	PaymentDate string   `json:"payment_date" validate:"required,datetime=2006-01-02"`
	AmountPaid  *float64 `json:"amount_paid,omitempty" validate:"omitempty,gte=0,lte=1000000000"`
}

// LoanApplication is a validated request with every field resolved.
type LoanApplication struct {
	MonthlyIncome  float64                           `json:"monthly_income"`
	LoanAmount     float64                           `json:"loan_amount"`
	InterestRate   float64                           `json:"interest_rate"`
	LoanTermMonths int                               `json:"loan_term_months"`
	CreditScore    int                               `json:"credit_score"`
	Age            int                               `json:"age"`
	BorrowerType   string                            `json:"borrower_type"`
	SectorData     map[string]map[string]interface{} `json:"sector_data"`
	PaymentHistory []PaymentRecord                   `json:"payment_history"`
	StartDate      string                            `json:"start_date"`
}

// ToApplication resolves a request that already passed Validate. A missing
// start date is anchored to today's UTC date.
func (r *LoanApplicationRequest) ToApplication(now time.Time) LoanApplication {
	history := r.PaymentHistory
	if history == nil {
		history = []PaymentRecord{}
	}

	start := r.StartDate
	if start == "" {
		start = now.UTC().Format(DateLayout)
	}

	return LoanApplication{
		MonthlyIncome:  deref(r.MonthlyIncome),
		LoanAmount:     deref(r.LoanAmount),
		InterestRate:   deref(r.InterestRate),
		LoanTermMonths: deref(r.LoanTermMonths),
		CreditScore:    deref(r.CreditScore),
		Age:            deref(r.Age),
		BorrowerType:   strings.ToLower(strings.TrimSpace(r.BorrowerType)),
		SectorData:     r.SectorData,
		PaymentHistory: history,
		StartDate:      start,
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Summary echoes the headline figures of an application back to the caller.
type Summary struct {
	LoanAmount    float64 `json:"loan_amount"`
	TermMonths    int     `json:"term_months"`
	MonthlyIncome float64 `json:"monthly_income"`
}

func (a LoanApplication) Summary() Summary {
	return Summary{
		LoanAmount:    a.LoanAmount,
		TermMonths:    a.LoanTermMonths,
		MonthlyIncome: a.MonthlyIncome,
	}
}

// Fingerprint is a stable hash of the resolved application. encoding/json
// sorts map keys, so equal applications always hash alike.
func (a LoanApplication) Fingerprint() (string, error) {
	canonical, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
