package allocator

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
	"colecta_engine/internal/ports"
	"colecta_engine/internal/services/schedule"
	"colecta_engine/internal/utils"
)

// Service distributes incoming cash across a loan's outstanding installments
// oldest-first. Every call is applied under one transaction: either all
// touched installments, payment records and the loan's derived fields are
// written, or none are.
type Service struct {
	Store ports.Storage
	Audit ports.AuditTrail
	Now   func() time.Time
}

func New(store ports.Storage, audit ports.AuditTrail) *Service {
	return &Service{Store: store, Audit: audit, Now: time.Now}
}

type AllocateRequest struct {
	LoanID      string
	Amount      decimal.Decimal
	Date        time.Time
	Method      string
	Notes       string
	CollectorID string
}

// Application describes what one installment absorbed.
type Application struct {
	InstallmentID  string
	SequenceNumber int
	Applied        decimal.Decimal
	PaidBefore     decimal.Decimal
	PaidAfter      decimal.Decimal
	Status         models.InstallmentStatus
	Kind           models.PaymentKind
}

type AllocationResult struct {
	LoanID             string
	TotalApplied       decimal.Decimal
	Applications       []Application
	OutstandingBalance decimal.Decimal
	LoanStatus         models.LoanStatus
}

// Allocate walks the loan's installments ascending by sequence and applies
// the amount FIFO. An amount exceeding the loan's total outstanding is
// rejected up front; nothing is ever dropped silently. AmountPaid never
// decreases here: each call is append-only.
func (s *Service) Allocate(ctx context.Context, req AllocateRequest) (AllocationResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return AllocationResult{}, models.Invalid("amount", "must be positive")
	}

	day := utils.DateOnly(req.Date)
	log.Printf("[ALLOC][START] loan=%s amount=%s date=%s collector=%s",
		req.LoanID, req.Amount, day.Format("2006-01-02"), req.CollectorID)

	var result AllocationResult
	err := s.Store.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		loan, err := uow.Loans().GetForUpdate(ctx, req.LoanID)
		if err != nil {
			return err
		}
		if loan.Status == models.LoanCancelled {
			return models.Invalid("loan", "loan is cancelled")
		}

		installments, err := uow.Installments().ListByLoan(ctx, req.LoanID)
		if err != nil {
			return err
		}
		if len(installments) == 0 {
			return models.ErrNotFound
		}

		outstanding := decimal.Zero
		for i := range installments {
			if installments[i].Status.Payable() {
				outstanding = outstanding.Add(installments[i].Outstanding())
			}
		}
		if outstanding.IsZero() {
			return models.Invalid("amount", "no pending installments remain for this loan")
		}
		if req.Amount.GreaterThan(outstanding) {
			return models.Invalid("amount", "amount exceeds total outstanding")
		}

		remaining := req.Amount
		records := make([]models.PaymentRecord, 0, 4)

		for i := range installments {
			if remaining.IsZero() {
				break
			}
			inst := &installments[i]
			if !inst.Status.Payable() {
				continue
			}
			due := inst.Outstanding()
			if due.LessThanOrEqual(decimal.Zero) {
				continue
			}

			applied := decimal.Min(remaining, due)
			before := inst.AmountPaid
			inst.AmountPaid = inst.AmountPaid.Add(applied)
			inst.Status = transition(inst, day)
			inst.PaymentDate = &day

			kind := recordKind(inst.Status, day, inst.DueDate)
			records = append(records, models.PaymentRecord{
				ID:            uuid.NewString(),
				InstallmentID: inst.ID,
				LoanID:        loan.ID,
				Amount:        applied,
				Date:          day,
				CollectorID:   req.CollectorID,
				Kind:          kind,
				Method:        req.Method,
				Notes:         req.Notes,
			})

			if err := uow.Installments().Update(ctx, inst); err != nil {
				return err
			}

			result.Applications = append(result.Applications, Application{
				InstallmentID:  inst.ID,
				SequenceNumber: inst.SequenceNumber,
				Applied:        applied,
				PaidBefore:     before,
				PaidAfter:      inst.AmountPaid,
				Status:         inst.Status,
				Kind:           kind,
			})
			result.TotalApplied = result.TotalApplied.Add(applied)
			remaining = remaining.Sub(applied)
		}

		newOutstanding, paidCount, status := deriveLoan(loan, installments, day)
		if err := uow.Loans().UpdateAfterAllocation(ctx, loan.ID, newOutstanding, paidCount, status); err != nil {
			return err
		}
		if err := uow.Payments().CreateBatch(ctx, records); err != nil {
			return err
		}

		result.LoanID = loan.ID
		result.OutstandingBalance = newOutstanding
		result.LoanStatus = status
		return nil
	})
	if err != nil {
		log.Printf("[ALLOC][ERR] loan=%s: %v", req.LoanID, err)
		return AllocationResult{}, err
	}

	log.Printf("[ALLOC][DONE] loan=%s applied=%s touched=%d outstanding=%s status=%s",
		result.LoanID, result.TotalApplied, len(result.Applications), result.OutstandingBalance, result.LoanStatus)
	s.audit(ctx, "payment_allocated", map[string]any{
		"loan_id":     req.LoanID,
		"amount":      req.Amount.String(),
		"applied":     result.TotalApplied.String(),
		"collector":   req.CollectorID,
		"date":        day.Format("2006-01-02"),
		"touched":     len(result.Applications),
		"outstanding": result.OutstandingBalance.String(),
	})
	return result, nil
}

// transition derives the installment status after cash lands on it. Overdue
// wins over partially_paid when the due date has already passed.
func transition(inst *models.Installment, today time.Time) models.InstallmentStatus {
	if inst.AmountPaid.GreaterThanOrEqual(inst.ScheduledValue) {
		return models.InstallmentPaid
	}
	if inst.DueDate.Before(today) {
		return models.InstallmentOverdue
	}
	if inst.AmountPaid.GreaterThan(decimal.Zero) {
		return models.InstallmentPartiallyPaid
	}
	return inst.Status
}

func recordKind(st models.InstallmentStatus, paidOn, dueDate time.Time) models.PaymentKind {
	switch st {
	case models.InstallmentPaid:
		if paidOn.Before(utils.DateOnly(dueDate)) {
			return models.PaymentKindAdvance
		}
		return models.PaymentKindFull
	case models.InstallmentPending, models.InstallmentPartiallyPaid, models.InstallmentOverdue:
		return models.PaymentKindPartial
	}
	return models.PaymentKindPartial
}

// deriveLoan recomputes the loan's mutable fields from its installments:
// outstanding = totalAmount − Σ amountPaid, paid count, and the derived
// status (paid / overdue / active).
func deriveLoan(loan *models.Loan, installments []models.Installment, today time.Time) (decimal.Decimal, int, models.LoanStatus) {
	sumPaid := decimal.Zero
	paidCount := 0
	for i := range installments {
		sumPaid = sumPaid.Add(installments[i].AmountPaid)
		if installments[i].Status == models.InstallmentPaid {
			paidCount++
		}
	}

	outstanding := loan.TotalAmount.Sub(sumPaid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}

	status := loan.Status
	switch {
	case loan.Status == models.LoanCancelled:
		// terminal, left untouched
	case outstanding.IsZero():
		status = models.LoanPaid
	case schedule.OverdueCount(loan.FirstDueDate, loan.Periodicity, paidCount, loan.TermCount, today) > 0:
		status = models.LoanOverdue
	default:
		status = models.LoanActive
	}

	return outstanding, paidCount, status
}

func (s *Service) audit(ctx context.Context, action string, fields map[string]any) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, action, fields); err != nil {
		log.Printf("[ALLOC][AUDIT][WARN] %s: %v", action, err)
	}
}
