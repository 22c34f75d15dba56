package engine

import (
	"math"
	"time"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
)

const (
	daysBetweenPayments = 30
	earlyPayoffMonths   = 6
)

var reminderOffsets = []int{7, 3, 0}

// MonthlyPayment is the fixed installment that amortizes the loan over its
// term at the nominal annual rate.
func MonthlyPayment(principal, annualRatePct float64, termMonths int) float64 {
	n := float64(termMonths)
	if n <= 0 {
		return 0
	}
	r := annualRatePct / 1200
	if r == 0 {
		return principal / n
	}
	return principal * r / (1 - math.Pow(1+r, -n))
}

// BuildPaymentPlan lays out the repayment schedule starting at start.
func BuildPaymentPlan(app domain.LoanApplication, start time.Time) domain.PaymentPlan {
	payment := MonthlyPayment(app.LoanAmount, app.InterestRate, app.LoanTermMonths)
	straight := safeDivide(app.LoanAmount, float64(app.LoanTermMonths))

	return domain.PaymentPlan{
		MonthlyPayment:  round(payment, 2),
		PaymentSchedule: Schedule(app.LoanAmount, app.InterestRate, app.LoanTermMonths, payment, start),
		FlexibilityOptions: domain.FlexibilityOptions{
			BiWeeklyOption: domain.BiWeeklyOption{
				Available: true,
				Impact: domain.BiWeeklyImpact{
					PaymentAmount: round(straight/2, 2),
					YearlySavings: round(straight*0.5, 2),
				},
			},
			ExtraPaymentOption: domain.ExtraPaymentOption{
				Available: true,
				MinAmount: round(app.MonthlyIncome*0.1, 2),
			},
		},
		EarlyPaymentBenefits: EarlyPaymentBenefits(app.LoanAmount, app.InterestRate, app.LoanTermMonths),
	}
}

// Schedule lists every installment with its interest/principal split and
// reminder dates one week, three days and zero days before it is due.
func Schedule(principal, annualRatePct float64, termMonths int, payment float64, start time.Time) []domain.ScheduledPayment {
	schedule := make([]domain.ScheduledPayment, 0, termMonths)
	balance := principal

	for month := 0; month < termMonths; month++ {
		due := start.AddDate(0, 0, daysBetweenPayments*month)
		interest := balance * annualRatePct / 1200
		principalPart := payment - interest
		balance -= principalPart

		reminders := make([]string, 0, len(reminderOffsets))
		for _, d := range reminderOffsets {
			reminders = append(reminders, due.AddDate(0, 0, -d).Format(domain.DateLayout))
		}

		schedule = append(schedule, domain.ScheduledPayment{
			PaymentNumber:    month + 1,
			DueDate:          due.Format(domain.DateLayout),
			PaymentAmount:    round(payment, 2),
			Principal:        round(principalPart, 2),
			Interest:         round(interest, 2),
			RemainingBalance: round(math.Max(0, balance), 2),
			ReminderDates:    reminders,
		})
	}

	return schedule
}

// EarlyPaymentBenefits estimates the simple interest saved by paying off
// six months early, capped at the term.
func EarlyPaymentBenefits(principal, annualRatePct float64, termMonths int) domain.EarlyPaymentBenefits {
	saved := earlyPayoffMonths
	if termMonths < saved {
		saved = termMonths
	}

	savings := principal * annualRatePct / 100 * float64(saved) / 12
	return domain.EarlyPaymentBenefits{
		PotentialSavings: round(savings, 2),
		TimeSaved:        saved,
		ReducedInterest:  round(savings, 2),
	}
}
