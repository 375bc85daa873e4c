package allocator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
	"colecta_engine/internal/services/schedule"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

// seedLoan plants a 300,000 loan at 20% flat over 3 daily installments of
// 120,000 each, first due 2024-03-16.
func seedLoan(t *testing.T, store *memStore) *models.Loan {
	t.Helper()

	principal := d("300000")
	terms, err := schedule.ComputeTerms(principal, d("0.20"), 3)
	if err != nil {
		t.Fatalf("terms: %v", err)
	}
	loan := &models.Loan{
		ID:                 uuid.NewString(),
		ClientID:           "client-1",
		RouteID:            "route-1",
		CollectorID:        "collector-1",
		Principal:          principal,
		FlatRate:           d("0.20"),
		TermCount:          3,
		Periodicity:        models.Daily,
		DisbursementDate:   day(2024, 3, 15),
		FirstDueDate:       day(2024, 3, 16),
		TotalAmount:        terms.TotalAmount,
		OutstandingBalance: terms.TotalAmount,
		Status:             models.LoanActive,
	}
	rows := schedule.Build(loan.ID, principal, terms, 3, loan.FirstDueDate, models.Daily)

	ctx := context.Background()
	if err := store.Loans().Create(ctx, loan); err != nil {
		t.Fatalf("seed loan: %v", err)
	}
	if err := store.Installments().CreateBatch(ctx, rows); err != nil {
		t.Fatalf("seed installments: %v", err)
	}
	return loan
}

func newTestService(store *memStore) (*Service, *memAudit) {
	audit := &memAudit{}
	svc := New(store, audit)
	svc.Now = func() time.Time { return day(2024, 3, 16) }
	return svc, audit
}

func TestAllocate_fifoAcrossInstallments(t *testing.T) {
	store := newMemStore()
	loan := seedLoan(t, store)
	svc, audit := newTestService(store)

	res, err := svc.Allocate(context.Background(), AllocateRequest{
		LoanID:      loan.ID,
		Amount:      d("150000"),
		Date:        day(2024, 3, 16),
		CollectorID: "collector-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.TotalApplied.Equal(d("150000")) {
		t.Fatalf("total applied: got %s expected 150000", res.TotalApplied)
	}
	if len(res.Applications) != 2 {
		t.Fatalf("touched installments: got %d expected 2", len(res.Applications))
	}

	first := res.Applications[0]
	if first.SequenceNumber != 1 || !first.Applied.Equal(d("120000")) || first.Status != models.InstallmentPaid {
		t.Fatalf("installment #1: got seq=%d applied=%s status=%s", first.SequenceNumber, first.Applied, first.Status)
	}
	if first.Kind != models.PaymentKindFull {
		t.Fatalf("installment #1 kind: got %s expected full", first.Kind)
	}

	second := res.Applications[1]
	if second.SequenceNumber != 2 || !second.Applied.Equal(d("30000")) || second.Status != models.InstallmentPartiallyPaid {
		t.Fatalf("installment #2: got seq=%d applied=%s status=%s", second.SequenceNumber, second.Applied, second.Status)
	}
	if second.Kind != models.PaymentKindPartial {
		t.Fatalf("installment #2 kind: got %s expected partial", second.Kind)
	}

	if !res.OutstandingBalance.Equal(d("210000")) {
		t.Fatalf("outstanding: got %s expected 210000", res.OutstandingBalance)
	}
	if res.LoanStatus != models.LoanActive {
		t.Fatalf("loan status: got %s expected active", res.LoanStatus)
	}

	rows, _ := store.Installments().ListByLoan(context.Background(), loan.ID)
	if !rows[2].AmountPaid.IsZero() || rows[2].Status != models.InstallmentPending {
		t.Fatalf("installment #3 should be untouched, got paid=%s status=%s", rows[2].AmountPaid, rows[2].Status)
	}

	if len(store.payments) != 2 {
		t.Fatalf("payment records: got %d expected 2", len(store.payments))
	}
	if len(audit.actions) != 1 || audit.actions[0] != "payment_allocated" {
		t.Fatalf("audit trail: got %v", audit.actions)
	}
}

func TestAllocate_conservation(t *testing.T) {
	store := newMemStore()
	loan := seedLoan(t, store)
	svc, _ := newTestService(store)

	amount := d("250000")
	res, err := svc.Allocate(context.Background(), AllocateRequest{
		LoanID: loan.ID, Amount: amount, Date: day(2024, 3, 16), CollectorID: "collector-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := decimal.Zero
	for _, app := range res.Applications {
		sum = sum.Add(app.Applied)
	}
	if !sum.Equal(amount) {
		t.Fatalf("applied sum: got %s expected %s, nothing may be dropped", sum, amount)
	}
	if !res.OutstandingBalance.Equal(loan.TotalAmount.Sub(amount)) {
		t.Fatalf("outstanding: got %s expected %s", res.OutstandingBalance, loan.TotalAmount.Sub(amount))
	}
}

func TestAllocate_exactPayoff(t *testing.T) {
	store := newMemStore()
	loan := seedLoan(t, store)
	svc, _ := newTestService(store)

	res, err := svc.Allocate(context.Background(), AllocateRequest{
		LoanID: loan.ID, Amount: d("360000"), Date: day(2024, 3, 16), CollectorID: "collector-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OutstandingBalance.IsZero() {
		t.Fatalf("outstanding after payoff: got %s expected 0", res.OutstandingBalance)
	}
	if res.LoanStatus != models.LoanPaid {
		t.Fatalf("loan status: got %s expected paid", res.LoanStatus)
	}

	stored, _ := store.Loans().Get(context.Background(), loan.ID)
	if stored.InstallmentsPaidCount != 3 {
		t.Fatalf("paid count: got %d expected 3", stored.InstallmentsPaidCount)
	}
}

func TestAllocate_rejectsOverpayment(t *testing.T) {
	store := newMemStore()
	loan := seedLoan(t, store)
	svc, _ := newTestService(store)

	_, err := svc.Allocate(context.Background(), AllocateRequest{
		LoanID: loan.ID, Amount: d("360001"), Date: day(2024, 3, 16), CollectorID: "collector-1",
	})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	rows, _ := store.Installments().ListByLoan(context.Background(), loan.ID)
	for _, r := range rows {
		if !r.AmountPaid.IsZero() {
			t.Fatalf("rejected allocation must not touch installments, #%d has paid=%s", r.SequenceNumber, r.AmountPaid)
		}
	}
}

func TestAllocate_rejectsWhenNothingOutstanding(t *testing.T) {
	store := newMemStore()
	loan := seedLoan(t, store)
	svc, _ := newTestService(store)

	ctx := context.Background()
	if _, err := svc.Allocate(ctx, AllocateRequest{
		LoanID: loan.ID, Amount: d("360000"), Date: day(2024, 3, 16), CollectorID: "collector-1",
	}); err != nil {
		t.Fatalf("payoff: %v", err)
	}

	_, err := svc.Allocate(ctx, AllocateRequest{
		LoanID: loan.ID, Amount: d("1"), Date: day(2024, 3, 17), CollectorID: "collector-1",
	})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error on settled loan, got %v", err)
	}
}

func TestAllocate_rejectsNonPositiveAmount(t *testing.T) {
	store := newMemStore()
	loan := seedLoan(t, store)
	svc, _ := newTestService(store)

	for _, amount := range []decimal.Decimal{decimal.Zero, d("-5000")} {
		_, err := svc.Allocate(context.Background(), AllocateRequest{
			LoanID: loan.ID, Amount: amount, Date: day(2024, 3, 16), CollectorID: "collector-1",
		})
		if !models.IsValidation(err) {
			t.Fatalf("amount %s: expected validation error, got %v", amount, err)
		}
	}
}

func TestAllocate_rejectsCancelledLoan(t *testing.T) {
	store := newMemStore()
	loan := seedLoan(t, store)
	stored := store.loans[loan.ID]
	stored.Status = models.LoanCancelled
	store.loans[loan.ID] = stored

	svc, _ := newTestService(store)
	_, err := svc.Allocate(context.Background(), AllocateRequest{
		LoanID: loan.ID, Amount: d("1000"), Date: day(2024, 3, 16), CollectorID: "collector-1",
	})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error on cancelled loan, got %v", err)
	}
}

func TestAllocate_unknownLoan(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestService(store)

	_, err := svc.Allocate(context.Background(), AllocateRequest{
		LoanID: "missing", Amount: d("1000"), Date: day(2024, 3, 16), CollectorID: "collector-1",
	})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAllocate_advanceKindBeforeDueDate(t *testing.T) {
	store := newMemStore()
	loan := seedLoan(t, store)
	svc, _ := newTestService(store)
	svc.Now = func() time.Time { return day(2024, 3, 15) }

	res, err := svc.Allocate(context.Background(), AllocateRequest{
		LoanID: loan.ID, Amount: d("120000"), Date: day(2024, 3, 15), CollectorID: "collector-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Applications[0].Kind != models.PaymentKindAdvance {
		t.Fatalf("kind: got %s expected advance", res.Applications[0].Kind)
	}
}

func TestAllocate_partialOnLateInstallmentStaysOverdue(t *testing.T) {
	store := newMemStore()
	loan := seedLoan(t, store)
	svc, _ := newTestService(store)
	svc.Now = func() time.Time { return day(2024, 3, 20) }

	res, err := svc.Allocate(context.Background(), AllocateRequest{
		LoanID: loan.ID, Amount: d("50000"), Date: day(2024, 3, 20), CollectorID: "collector-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Applications[0].Status != models.InstallmentOverdue {
		t.Fatalf("installment status: got %s expected overdue", res.Applications[0].Status)
	}
	if res.LoanStatus != models.LoanOverdue {
		t.Fatalf("loan status: got %s expected overdue", res.LoanStatus)
	}
}

func TestAllocate_secondCallAppends(t *testing.T) {
	store := newMemStore()
	loan := seedLoan(t, store)
	svc, _ := newTestService(store)

	ctx := context.Background()
	if _, err := svc.Allocate(ctx, AllocateRequest{
		LoanID: loan.ID, Amount: d("100000"), Date: day(2024, 3, 16), CollectorID: "collector-1",
	}); err != nil {
		t.Fatalf("first allocation: %v", err)
	}

	res, err := svc.Allocate(ctx, AllocateRequest{
		LoanID: loan.ID, Amount: d("20000"), Date: day(2024, 3, 16), CollectorID: "collector-1",
	})
	if err != nil {
		t.Fatalf("second allocation: %v", err)
	}

	app := res.Applications[0]
	if !app.PaidBefore.Equal(d("100000")) || !app.PaidAfter.Equal(d("120000")) {
		t.Fatalf("append-only paid: got before=%s after=%s", app.PaidBefore, app.PaidAfter)
	}
	if app.Status != models.InstallmentPaid {
		t.Fatalf("status after topping up: got %s expected paid", app.Status)
	}
	if len(store.payments) != 2 {
		t.Fatalf("payment records: got %d expected 2 (one per call)", len(store.payments))
	}
}
