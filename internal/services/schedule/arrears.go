package schedule

import (
	"time"

	"colecta_engine/internal/models"
	"colecta_engine/internal/utils"
)

// OverdueCount says how many installments should have been paid by today but
// have not been. Pure and re-derivable at any time from stored loan fields;
// nothing caches it.
//
// The expected count is floor(elapsedDays/periodDays)+1: the first
// installment is expected from its due date on, the next one period later,
// using the fixed PeriodDays approximation rather than calendar arithmetic.
func OverdueCount(firstDue time.Time, p models.Periodicity, installmentsPaid, termCount int, today time.Time) int {
	if installmentsPaid >= termCount {
		return 0
	}

	elapsed := utils.DaysBetween(firstDue, today)
	if elapsed < 0 {
		return 0
	}

	periodDays := p.PeriodDays()
	if periodDays <= 0 {
		return 0
	}

	expected := elapsed/periodDays + 1
	if expected > termCount {
		expected = termCount
	}

	overdue := expected - installmentsPaid
	if overdue < 0 {
		overdue = 0
	}
	if max := termCount - installmentsPaid; overdue > max {
		overdue = max
	}
	return overdue
}
