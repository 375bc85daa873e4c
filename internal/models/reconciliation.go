package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyFloat is the cash handed to a collector at the start of a route-day.
// It moves in_progress → finished → reconciled; only the reconciler sets
// reconciled.
type DailyFloat struct {
	ID             string
	RouteID        string
	CollectorID    string
	Date           time.Time
	FloatAmount    decimal.Decimal
	ActualReturned *decimal.Decimal
	Status         FloatStatus
}

// Reconciliation is the terminal day-close record for one
// (date, route, collector) group. Exactly one row per group, never edited
// after creation.
type Reconciliation struct {
	ID                 string
	Date               time.Time
	RouteID            string
	CollectorID        string
	Collected          decimal.Decimal
	NewLoansDisbursed  decimal.Decimal
	InsuranceCollected decimal.Decimal
	ExpensesApproved   decimal.Decimal
	ExpensesPending    decimal.Decimal
	FloatAmount        decimal.Decimal
	Theoretical        decimal.Decimal
	ActualReturned     decimal.Decimal
	Difference         decimal.Decimal
	Classification     ReconClassification
	CreatedAt          time.Time
}
