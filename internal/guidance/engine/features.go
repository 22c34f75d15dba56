package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/artifact"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
)

// Features maps artifact feature names to their values for one application.
type Features map[string]float64

// ExtractFeatures derives every model feature from an application.
func ExtractFeatures(app domain.LoanApplication, a *artifact.Artifact) (Features, error) {
	income := app.MonthlyIncome
	loan := app.LoanAmount
	term := float64(app.LoanTermMonths)
	credit := float64(app.CreditScore)
	age := float64(app.Age)

	payments, err := PaymentFeatures(app.PaymentHistory)
	if err != nil {
		return nil, err
	}

	f := Features{
		artifact.FeatureMonthlyIncome:           income,
		artifact.FeatureLoanAmount:              loan,
		artifact.FeatureInterestRate:            app.InterestRate,
		artifact.FeatureLoanTermMonths:          term,
		artifact.FeatureCreditScore:             credit,
		artifact.FeatureAge:                     age,
		artifact.FeatureSectorRisk:              SectorRisk(app.SectorData, a),
		artifact.FeatureDebtToIncome:            safeDivide(loan, income*term),
		artifact.FeatureIncomeToLoanRatio:       safeDivide(income*term, loan),
		artifact.FeatureMonthlyPaymentRatio:     safeDivide(safeDivide(loan, term), income),
		artifact.FeatureCreditIncomeInteraction: credit * income / 100000,
		artifact.FeatureAgeCreditInteraction:    age * credit / 100,
	}
	for name, v := range payments {
		f[name] = v
	}
	return f, nil
}

// PaymentFeatures summarises a repayment history. An empty history counts
// as perfectly regular.
func PaymentFeatures(history []domain.PaymentRecord) (Features, error) {
	f := Features{
		artifact.FeaturePaymentRegularity: 1,
		artifact.FeatureLatePayments:      0,
		artifact.FeatureAvgPaymentDelay:   0,
		artifact.FeaturePaymentVolatility: 0,
		artifact.FeaturePaymentTrend:      0,
	}
	if len(history) == 0 {
		return f, nil
	}

	delays := make([]float64, 0, len(history))
	var amounts []float64
	for i, p := range history {
		due, err := time.Parse(domain.DateLayout, p.DueDate)
		if err != nil {
			return nil, fmt.Errorf("payment_history[%d].due_date: %w", i, err)
		}
		paid, err := time.Parse(domain.DateLayout, p.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("payment_history[%d].payment_date: %w", i, err)
		}

		delay := math.Round(paid.Sub(due).Hours() / 24)
		delays = append(delays, math.Max(0, delay))

		if p.AmountPaid != nil {
			amounts = append(amounts, *p.AmountPaid)
		}
	}

	var total, late float64
	for _, d := range delays {
		total += d
		if d > 0 {
			late++
		}
	}
	n := float64(len(delays))

	f[artifact.FeaturePaymentRegularity] = 1 - total/(n*30)
	f[artifact.FeatureLatePayments] = late
	f[artifact.FeatureAvgPaymentDelay] = total / n
	f[artifact.FeaturePaymentVolatility] = stddev(amounts)

	if len(delays) > 1 {
		var diffs float64
		for i := 1; i < len(delays); i++ {
			diffs += delays[i] - delays[i-1]
		}
		f[artifact.FeaturePaymentTrend] = -diffs / float64(len(delays)-1)
	}

	return f, nil
}

// SectorRisk scores the first known sector in sectorData, in a stable
// key order, clamped to [0,1].
func SectorRisk(sectorData map[string]map[string]interface{}, a *artifact.Artifact) float64 {
	for _, name := range sortedKeys(sectorData) {
		sector, ok := a.Sectors[name]
		if !ok {
			continue
		}

		info := sectorData[name]
		risk := sector.Base
		for _, attr := range sortedKeys(sector.Categorical) {
			if v, ok := info[attr]; ok {
				risk += sector.Categorical[attr][stringValue(v)]
			}
		}
		for _, attr := range sortedKeys(sector.Numeric) {
			mod := sector.Numeric[attr]
			v, ok := numericValue(info[attr])
			if !ok {
				continue
			}
			if v > mod.Threshold {
				risk += mod.Above
			} else {
				risk += mod.Otherwise
			}
		}
		return clamp(risk, 0, 1)
	}

	return a.DefaultSectorRisk
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func numericValue(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	r := a / b
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0
	}
	return r
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var ss float64
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
