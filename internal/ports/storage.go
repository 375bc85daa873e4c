package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
)

// Storage is the engine's view of the backing store. The non-transactional
// stores serve reads; every multi-row mutation goes through WithinTx so an
// allocation or reconciliation is applied all-or-nothing.
type Storage interface {
	UnitOfWork
	WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// UnitOfWork groups the stores bound to one transaction scope (or to the
// pool, outside a transaction).
type UnitOfWork interface {
	Loans() LoanStore
	Installments() InstallmentStore
	Payments() PaymentStore
	Expenses() ExpenseStore
	Floats() FloatStore
	Reconciliations() ReconciliationStore
}

type LoanStore interface {
	Get(ctx context.Context, id string) (*models.Loan, error)
	// GetForUpdate locks the loan row for the duration of the transaction.
	GetForUpdate(ctx context.Context, id string) (*models.Loan, error)
	Create(ctx context.Context, loan *models.Loan) error
	// UpdateAfterAllocation persists the recomputed derived fields.
	UpdateAfterAllocation(ctx context.Context, id string, outstanding decimal.Decimal, paidCount int, status models.LoanStatus) error
	// SumDisbursedOn totals principal and insurance of loans a collector
	// disbursed on a route-day.
	SumDisbursedOn(ctx context.Context, date time.Time, routeID, collectorID string) (principal, insurance decimal.Decimal, err error)
}

type InstallmentStore interface {
	Get(ctx context.Context, id string) (*models.Installment, error)
	// ListByLoan returns all installments ordered ascending by sequence.
	ListByLoan(ctx context.Context, loanID string) ([]models.Installment, error)
	CreateBatch(ctx context.Context, rows []models.Installment) error
	Update(ctx context.Context, row *models.Installment) error
}

type PaymentStore interface {
	Get(ctx context.Context, id string) (*models.PaymentRecord, error)
	CreateBatch(ctx context.Context, rows []models.PaymentRecord) error
	ListByInstallment(ctx context.Context, installmentID string) ([]models.PaymentRecord, error)
	Delete(ctx context.Context, id string) error
	DeleteByInstallment(ctx context.Context, installmentID string) error
	// ListCollectedOn returns a collector's payments on a route-day.
	ListCollectedOn(ctx context.Context, date time.Time, routeID, collectorID string) ([]models.PaymentRecord, error)
	SumCollectedOn(ctx context.Context, date time.Time, routeID, collectorID string) (decimal.Decimal, error)
}

type ExpenseStore interface {
	SumOn(ctx context.Context, date time.Time, routeID string, status models.ExpenseApproval) (decimal.Decimal, error)
}

type FloatStore interface {
	GetForDay(ctx context.Context, date time.Time, routeID, collectorID string) (*models.DailyFloat, error)
	MarkReconciled(ctx context.Context, id string, actualReturned decimal.Decimal) error
}

type ReconciliationStore interface {
	// InsertUnique atomically inserts the record unless the group already has
	// one; inserted is false on conflict. Never check-then-insert.
	InsertUnique(ctx context.Context, rec *models.Reconciliation) (inserted bool, err error)
	GetByGroup(ctx context.Context, date time.Time, routeID, collectorID string) (*models.Reconciliation, error)
}

// AuditTrail receives one event per engine mutation. Implementations are
// best-effort: failures are logged by the caller, never surfaced.
type AuditTrail interface {
	Record(ctx context.Context, action string, fields map[string]any) error
}
