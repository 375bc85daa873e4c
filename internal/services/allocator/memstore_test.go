package allocator

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
	"colecta_engine/internal/ports"
)

// memStore is an in-memory ports.Storage for exercising the allocator
// without a database. WithinTx runs the callback directly; the tests here
// only assert on the happy-path end state.
type memStore struct {
	loans        map[string]models.Loan
	installments map[string]models.Installment
	payments     map[string]models.PaymentRecord
	paymentOrder []string
}

func newMemStore() *memStore {
	return &memStore{
		loans:        map[string]models.Loan{},
		installments: map[string]models.Installment{},
		payments:     map[string]models.PaymentRecord{},
	}
}

func (s *memStore) Loans() ports.LoanStore { return &memLoans{s} }
func (s *memStore) Installments() ports.InstallmentStore { return &memInstallments{s} }
func (s *memStore) Payments() ports.PaymentStore { return &memPayments{s} }
func (s *memStore) Expenses() ports.ExpenseStore { return nil }
func (s *memStore) Floats() ports.FloatStore { return nil }
func (s *memStore) Reconciliations() ports.ReconciliationStore { return nil }

func (s *memStore) WithinTx(ctx context.Context, fn func(uow ports.UnitOfWork) error) error {
	return fn(s)
}

type memLoans struct{ s *memStore }

func (r *memLoans) Get(ctx context.Context, id string) (*models.Loan, error) {
	loan, ok := r.s.loans[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &loan, nil
}

func (r *memLoans) GetForUpdate(ctx context.Context, id string) (*models.Loan, error) {
	return r.Get(ctx, id)
}

func (r *memLoans) Create(ctx context.Context, loan *models.Loan) error {
	r.s.loans[loan.ID] = *loan
	return nil
}

func (r *memLoans) UpdateAfterAllocation(ctx context.Context, id string, outstanding decimal.Decimal, paidCount int, status models.LoanStatus) error {
	loan, ok := r.s.loans[id]
	if !ok {
		return models.ErrNotFound
	}
	loan.OutstandingBalance = outstanding
	loan.InstallmentsPaidCount = paidCount
	loan.Status = status
	r.s.loans[id] = loan
	return nil
}

func (r *memLoans) SumDisbursedOn(ctx context.Context, date time.Time, routeID, collectorID string) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.Zero, decimal.Zero, nil
}

type memInstallments struct{ s *memStore }

func (r *memInstallments) Get(ctx context.Context, id string) (*models.Installment, error) {
	inst, ok := r.s.installments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &inst, nil
}

func (r *memInstallments) ListByLoan(ctx context.Context, loanID string) ([]models.Installment, error) {
	var rows []models.Installment
	for _, inst := range r.s.installments {
		if inst.LoanID == loanID {
			rows = append(rows, inst)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SequenceNumber < rows[j].SequenceNumber })
	return rows, nil
}

func (r *memInstallments) CreateBatch(ctx context.Context, rows []models.Installment) error {
	for _, inst := range rows {
		r.s.installments[inst.ID] = inst
	}
	return nil
}

func (r *memInstallments) Update(ctx context.Context, row *models.Installment) error {
	if _, ok := r.s.installments[row.ID]; !ok {
		return models.ErrNotFound
	}
	r.s.installments[row.ID] = *row
	return nil
}

type memPayments struct{ s *memStore }

func (r *memPayments) Get(ctx context.Context, id string) (*models.PaymentRecord, error) {
	rec, ok := r.s.payments[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &rec, nil
}

func (r *memPayments) CreateBatch(ctx context.Context, rows []models.PaymentRecord) error {
	for _, rec := range rows {
		r.s.payments[rec.ID] = rec
		r.s.paymentOrder = append(r.s.paymentOrder, rec.ID)
	}
	return nil
}

func (r *memPayments) ListByInstallment(ctx context.Context, installmentID string) ([]models.PaymentRecord, error) {
	var rows []models.PaymentRecord
	for _, id := range r.s.paymentOrder {
		rec, ok := r.s.payments[id]
		if ok && rec.InstallmentID == installmentID {
			rows = append(rows, rec)
		}
	}
	return rows, nil
}

func (r *memPayments) Delete(ctx context.Context, id string) error {
	if _, ok := r.s.payments[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.s.payments, id)
	return nil
}

func (r *memPayments) DeleteByInstallment(ctx context.Context, installmentID string) error {
	for id, rec := range r.s.payments {
		if rec.InstallmentID == installmentID {
			delete(r.s.payments, id)
		}
	}
	return nil
}

func (r *memPayments) ListCollectedOn(ctx context.Context, date time.Time, routeID, collectorID string) ([]models.PaymentRecord, error) {
	return nil, nil
}

func (r *memPayments) SumCollectedOn(ctx context.Context, date time.Time, routeID, collectorID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

// memAudit records the actions it was handed, in order.
type memAudit struct{ actions []string }

func (a *memAudit) Record(ctx context.Context, action string, fields map[string]any) error {
	a.actions = append(a.actions, action)
	return nil
}
