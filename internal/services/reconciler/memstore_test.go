package reconciler

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
	"colecta_engine/internal/ports"
	"colecta_engine/internal/utils"
)

// fakeStore serves canned day aggregates and keeps the reconciliation rows
// it was handed. collectedFailures makes SumCollectedOn fail transiently
// that many times before succeeding.
type fakeStore struct {
	flt       *models.DailyFloat
	collected decimal.Decimal
	principal decimal.Decimal
	insurance decimal.Decimal
	approved  decimal.Decimal
	pending   decimal.Decimal
	payments  []models.PaymentRecord

	collectedFailures int
	recs              map[string]models.Reconciliation
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: map[string]models.Reconciliation{}}
}

func groupKey(date time.Time, routeID, collectorID string) string {
	return utils.DateOnly(date).Format("2006-01-02") + "|" + routeID + "|" + collectorID
}

func (s *fakeStore) Loans() ports.LoanStore { return &fakeLoans{s} }
func (s *fakeStore) Installments() ports.InstallmentStore { return nil }
func (s *fakeStore) Payments() ports.PaymentStore { return &fakePayments{s} }
func (s *fakeStore) Expenses() ports.ExpenseStore { return &fakeExpenses{s} }
func (s *fakeStore) Floats() ports.FloatStore { return &fakeFloats{s} }
func (s *fakeStore) Reconciliations() ports.ReconciliationStore { return &fakeRecs{s} }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(uow ports.UnitOfWork) error) error {
	return fn(s)
}

type fakeLoans struct{ s *fakeStore }

func (r *fakeLoans) Get(ctx context.Context, id string) (*models.Loan, error) {
	return nil, models.ErrNotFound
}

func (r *fakeLoans) GetForUpdate(ctx context.Context, id string) (*models.Loan, error) {
	return nil, models.ErrNotFound
}

func (r *fakeLoans) Create(ctx context.Context, loan *models.Loan) error { return nil }

func (r *fakeLoans) UpdateAfterAllocation(ctx context.Context, id string, outstanding decimal.Decimal, paidCount int, status models.LoanStatus) error {
	return nil
}

func (r *fakeLoans) SumDisbursedOn(ctx context.Context, date time.Time, routeID, collectorID string) (decimal.Decimal, decimal.Decimal, error) {
	return r.s.principal, r.s.insurance, nil
}

type fakePayments struct{ s *fakeStore }

func (r *fakePayments) Get(ctx context.Context, id string) (*models.PaymentRecord, error) {
	return nil, models.ErrNotFound
}

func (r *fakePayments) CreateBatch(ctx context.Context, rows []models.PaymentRecord) error { return nil }

func (r *fakePayments) ListByInstallment(ctx context.Context, installmentID string) ([]models.PaymentRecord, error) {
	return nil, nil
}

func (r *fakePayments) Delete(ctx context.Context, id string) error { return nil }
func (r *fakePayments) DeleteByInstallment(ctx context.Context, id string) error { return nil }

func (r *fakePayments) ListCollectedOn(ctx context.Context, date time.Time, routeID, collectorID string) ([]models.PaymentRecord, error) {
	return r.s.payments, nil
}

func (r *fakePayments) SumCollectedOn(ctx context.Context, date time.Time, routeID, collectorID string) (decimal.Decimal, error) {
	if r.s.collectedFailures > 0 {
		r.s.collectedFailures--
		return decimal.Zero, models.Storage("sum collected", true, context.DeadlineExceeded)
	}
	return r.s.collected, nil
}

type fakeExpenses struct{ s *fakeStore }

func (r *fakeExpenses) SumOn(ctx context.Context, date time.Time, routeID string, status models.ExpenseApproval) (decimal.Decimal, error) {
	switch status {
	case models.ExpenseApproved:
		return r.s.approved, nil
	case models.ExpensePending:
		return r.s.pending, nil
	}
	return decimal.Zero, nil
}

type fakeFloats struct{ s *fakeStore }

func (r *fakeFloats) GetForDay(ctx context.Context, date time.Time, routeID, collectorID string) (*models.DailyFloat, error) {
	if r.s.flt == nil {
		return nil, models.ErrNotFound
	}
	flt := *r.s.flt
	return &flt, nil
}

func (r *fakeFloats) MarkReconciled(ctx context.Context, id string, actualReturned decimal.Decimal) error {
	if r.s.flt == nil || r.s.flt.ID != id {
		return models.ErrNotFound
	}
	r.s.flt.Status = models.FloatReconciled
	r.s.flt.ActualReturned = &actualReturned
	return nil
}

type fakeRecs struct{ s *fakeStore }

func (r *fakeRecs) InsertUnique(ctx context.Context, rec *models.Reconciliation) (bool, error) {
	key := groupKey(rec.Date, rec.RouteID, rec.CollectorID)
	if _, exists := r.s.recs[key]; exists {
		return false, nil
	}
	r.s.recs[key] = *rec
	return true, nil
}

func (r *fakeRecs) GetByGroup(ctx context.Context, date time.Time, routeID, collectorID string) (*models.Reconciliation, error) {
	rec, ok := r.s.recs[groupKey(date, routeID, collectorID)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &rec, nil
}
