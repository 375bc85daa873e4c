package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan is one disbursed microloan on a route. OutstandingBalance and
// InstallmentsPaidCount are mutated only by the payment allocator; Status is
// derived, never set directly.
type Loan struct {
	ID                    string
	ClientID              string
	RouteID               string
	CollectorID           string
	Principal             decimal.Decimal
	FlatRate              decimal.Decimal // fraction, e.g. 0.20
	TermCount             int
	Periodicity           Periodicity
	InsuranceFee          decimal.Decimal
	DisbursementDate      time.Time
	FirstDueDate          time.Time
	TotalAmount           decimal.Decimal // principal + flat interest
	OutstandingBalance    decimal.Decimal
	InstallmentsPaidCount int
	Status                LoanStatus
	CreatedAt             time.Time
}

// Installment is one scheduled repayment unit, created in a batch at loan
// creation and never deleted individually.
type Installment struct {
	ID             string
	LoanID         string
	SequenceNumber int
	DueDate        time.Time
	ScheduledValue decimal.Decimal
	PrincipalPart  decimal.Decimal
	InterestPart   decimal.Decimal
	AmountPaid     decimal.Decimal
	PaymentDate    *time.Time // last applied payment
	Status         InstallmentStatus
}

// Outstanding is what the installment can still absorb.
func (i *Installment) Outstanding() decimal.Decimal {
	return i.ScheduledValue.Sub(i.AmountPaid)
}
