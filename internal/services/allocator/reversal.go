package allocator

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
	"colecta_engine/internal/ports"
	"colecta_engine/internal/utils"
)

// Two reversal shapes exist on purpose. ReverseInstallment is the coarse
// rule: it erases every payment record the installment ever received and
// resets it to pending — if the installment was paid in two visits, both are
// undone. ReversePaymentRecord undoes exactly one record and re-derives the
// installment from the survivors. Which one the product wants is a business
// decision; the engine offers both under names that say what they do.

// ReverseInstallment wipes all payment records for the installment, resets
// it to pending, and recomputes the loan. Calling it twice ends in the same
// state as calling it once.
func (s *Service) ReverseInstallment(ctx context.Context, installmentID string) error {
	log.Printf("[REVERSE][INST][START] installment=%s", installmentID)

	err := s.Store.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		inst, err := uow.Installments().Get(ctx, installmentID)
		if err != nil {
			return err
		}
		loan, err := uow.Loans().GetForUpdate(ctx, inst.LoanID)
		if err != nil {
			return err
		}

		if err := uow.Payments().DeleteByInstallment(ctx, inst.ID); err != nil {
			return err
		}

		inst.AmountPaid = decimal.Zero
		inst.Status = models.InstallmentPending
		inst.PaymentDate = nil
		if err := uow.Installments().Update(ctx, inst); err != nil {
			return err
		}

		return s.recomputeLoan(ctx, uow, loan, inst)
	})
	if err != nil {
		log.Printf("[REVERSE][INST][ERR] installment=%s: %v", installmentID, err)
		return err
	}

	log.Printf("[REVERSE][INST][DONE] installment=%s", installmentID)
	s.audit(ctx, "installment_reversed", map[string]any{"installment_id": installmentID})
	return nil
}

// ReversePaymentRecord deletes one payment record and re-derives the
// installment's paid amount, status and payment date from the records that
// remain.
func (s *Service) ReversePaymentRecord(ctx context.Context, paymentID string) error {
	log.Printf("[REVERSE][REC][START] payment=%s", paymentID)

	err := s.Store.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		rec, err := uow.Payments().Get(ctx, paymentID)
		if err != nil {
			return err
		}
		inst, err := uow.Installments().Get(ctx, rec.InstallmentID)
		if err != nil {
			return err
		}
		loan, err := uow.Loans().GetForUpdate(ctx, inst.LoanID)
		if err != nil {
			return err
		}

		if err := uow.Payments().Delete(ctx, rec.ID); err != nil {
			return err
		}

		survivors, err := uow.Payments().ListByInstallment(ctx, inst.ID)
		if err != nil {
			return err
		}

		paid := decimal.Zero
		inst.PaymentDate = nil
		for i := range survivors {
			paid = paid.Add(survivors[i].Amount)
			d := utils.DateOnly(survivors[i].Date)
			if inst.PaymentDate == nil || d.After(*inst.PaymentDate) {
				inst.PaymentDate = &d
			}
		}

		inst.AmountPaid = paid
		inst.Status = deriveInstallmentStatus(inst, utils.DateOnly(s.Now()))
		if err := uow.Installments().Update(ctx, inst); err != nil {
			return err
		}

		return s.recomputeLoan(ctx, uow, loan, inst)
	})
	if err != nil {
		log.Printf("[REVERSE][REC][ERR] payment=%s: %v", paymentID, err)
		return err
	}

	log.Printf("[REVERSE][REC][DONE] payment=%s", paymentID)
	s.audit(ctx, "payment_record_reversed", map[string]any{"payment_id": paymentID})
	return nil
}

// deriveInstallmentStatus rebuilds the status from scratch after a reversal.
func deriveInstallmentStatus(inst *models.Installment, today time.Time) models.InstallmentStatus {
	switch {
	case inst.AmountPaid.GreaterThanOrEqual(inst.ScheduledValue):
		return models.InstallmentPaid
	case inst.AmountPaid.GreaterThan(decimal.Zero):
		if inst.DueDate.Before(today) {
			return models.InstallmentOverdue
		}
		return models.InstallmentPartiallyPaid
	default:
		return models.InstallmentPending
	}
}

// recomputeLoan reloads the full schedule and rewrites the loan's derived
// fields, exactly as the allocator does after applying cash.
func (s *Service) recomputeLoan(ctx context.Context, uow ports.UnitOfWork, loan *models.Loan, changed *models.Installment) error {
	installments, err := uow.Installments().ListByLoan(ctx, loan.ID)
	if err != nil {
		return err
	}
	for i := range installments {
		if installments[i].ID == changed.ID {
			installments[i] = *changed
		}
	}

	outstanding, paidCount, status := deriveLoan(loan, installments, utils.DateOnly(s.Now()))
	return uow.Loans().UpdateAfterAllocation(ctx, loan.ID, outstanding, paidCount, status)
}
