package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord is an immutable append-only entry tying cash to one
// installment. Reversals delete records; nothing ever updates one in place.
type PaymentRecord struct {
	ID            string
	InstallmentID string
	LoanID        string
	Amount        decimal.Decimal
	Date          time.Time
	CollectorID   string
	Kind          PaymentKind
	Method        string
	Notes         string
	CreatedAt     time.Time
}

// Expense is a route-day cash outflow recorded by a collector. Only approved
// expenses count against the collector's returnable cash.
type Expense struct {
	ID             string
	RouteID        string
	CollectorID    string
	Date           time.Time
	Amount         decimal.Decimal
	Concept        string
	ApprovalStatus ExpenseApproval
}
