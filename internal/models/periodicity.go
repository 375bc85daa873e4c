package models

import (
	"fmt"
	"time"

	"colecta_engine/internal/utils"
)

// Periodicity is the cadence installments fall due at.
type Periodicity string

const (
	Daily    Periodicity = "daily"
	Weekly   Periodicity = "weekly"
	Biweekly Periodicity = "biweekly"
	Monthly  Periodicity = "monthly"
)

func ParsePeriodicity(s string) (Periodicity, error) {
	switch Periodicity(s) {
	case Daily, Weekly, Biweekly, Monthly:
		return Periodicity(s), nil
	}
	return "", fmt.Errorf("invalid periodicity: %q", s)
}

// PeriodDays is the fixed day-count approximation used by the arrears
// formula. Not calendar-exact: biweekly is 15 (quincena), monthly is 30.
func (p Periodicity) PeriodDays() int {
	switch p {
	case Daily:
		return 1
	case Weekly:
		return 7
	case Biweekly:
		return 15
	case Monthly:
		return 30
	}
	return 0
}

// Next advances a due date by one period. Monthly moves by calendar month,
// clamping on month-length overflow; the rest move by PeriodDays.
func (p Periodicity) Next(d time.Time) time.Time {
	switch p {
	case Monthly:
		return utils.AddMonthClamped(d, 1)
	case Daily, Weekly, Biweekly:
		return d.AddDate(0, 0, p.PeriodDays())
	}
	return d
}
