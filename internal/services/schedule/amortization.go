package schedule

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
	"colecta_engine/internal/utils"
)

// Terms is the repayable breakdown of a loan. The insurance fee is not part
// of TotalAmount; it is deducted at disbursement and tracked on the loan.
type Terms struct {
	InterestTotal    decimal.Decimal
	TotalAmount      decimal.Decimal
	InstallmentValue decimal.Decimal
}

// ComputeTerms applies the flat rate once over the whole term (no
// compounding, no annualization) and splits the total into whole-unit
// installments.
func ComputeTerms(principal, flatRate decimal.Decimal, termCount int) (Terms, error) {
	if termCount < 1 {
		return Terms{}, models.Invalid("term_count", "must be at least 1")
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return Terms{}, models.Invalid("principal", "must be positive")
	}
	if flatRate.IsNegative() {
		return Terms{}, models.Invalid("flat_rate", "must not be negative")
	}

	interest := principal.Mul(flatRate).Round(0)
	total := principal.Add(interest)
	value := total.Div(decimal.NewFromInt(int64(termCount))).Round(0)

	return Terms{
		InterestTotal:    interest,
		TotalAmount:      total,
		InstallmentValue: value,
	}, nil
}

// FirstDueDate derives the due date of installment #1 from the disbursement
// date.
//
// daily: the next calendar day. weekly/biweekly with an anchor weekday: that
// weekday in the week after disbursement, always strictly more than 6 days
// out; without an anchor, one full period out. monthly: same day-of-month one
// month later, clamped to the last day of shorter months.
func FirstDueDate(disbursed time.Time, p models.Periodicity, anchor *time.Weekday) (time.Time, error) {
	d := utils.DateOnly(disbursed)

	switch p {
	case models.Daily:
		return d.AddDate(0, 0, 1), nil
	case models.Weekly, models.Biweekly:
		if anchor == nil {
			return d.AddDate(0, 0, p.PeriodDays()), nil
		}
		due := d.AddDate(0, 0, 7)
		for due.Weekday() != *anchor {
			due = due.AddDate(0, 0, 1)
		}
		return due, nil
	case models.Monthly:
		return utils.AddMonthClamped(d, 1), nil
	}
	return time.Time{}, models.Invalid("periodicity", "unknown value "+string(p))
}

// Build produces the full installment batch for a loan. Due dates advance by
// periodicity from the first due date. The scheduled values of installments
// 1..n-1 are the rounded per-period value; the final installment absorbs the
// rounding remainder so the schedule sums exactly to Terms.TotalAmount. The
// principal/interest split follows the same rule.
func Build(loanID string, principal decimal.Decimal, t Terms, termCount int, firstDue time.Time, p models.Periodicity) []models.Installment {
	n := int64(termCount)
	principalShare := principal.Div(decimal.NewFromInt(n)).Round(0)

	rows := make([]models.Installment, 0, termCount)
	due := firstDue

	for seq := 1; seq <= termCount; seq++ {
		value := t.InstallmentValue
		principalPart := principalShare

		if seq == termCount {
			paidBefore := t.InstallmentValue.Mul(decimal.NewFromInt(n - 1))
			value = t.TotalAmount.Sub(paidBefore)
			principalPart = principal.Sub(principalShare.Mul(decimal.NewFromInt(n - 1)))
		}

		rows = append(rows, models.Installment{
			ID:             uuid.NewString(),
			LoanID:         loanID,
			SequenceNumber: seq,
			DueDate:        due,
			ScheduledValue: value,
			PrincipalPart:  principalPart,
			InterestPart:   value.Sub(principalPart),
			AmountPaid:     decimal.Zero,
			Status:         models.InstallmentPending,
		})

		due = p.Next(due)
	}

	return rows
}
