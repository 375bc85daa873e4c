package loans

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

// Service owns loan disbursement: terms, schedule, and the transactional
// write of the loan together with its installment batch.
type Service struct {
	Store ports.Storage
	Audit ports.AuditTrail
	Now   func() time.Time
}

func New(store ports.Storage, audit ports.AuditTrail) *Service {
	return &Service{Store: store, Audit: audit, Now: time.Now}
}

type CreateRequest struct {
	ClientID         string
	RouteID          string
	CollectorID      string
	Principal        decimal.Decimal
	FlatRate         decimal.Decimal
	TermCount        int
	Periodicity      models.Periodicity
	InsuranceFee     decimal.Decimal
	DisbursementDate time.Time
	AnchorWeekday    *time.Weekday
}

// Create computes the repayment terms, derives the first due date, builds the
// full installment schedule and persists loan + installments in one
// transaction. The loan starts active with the whole TotalAmount outstanding.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Loan, error) {
	if req.ClientID == "" {
		return nil, models.Invalid("client_id", "required")
	}
	if req.RouteID == "" {
		return nil, models.Invalid("route_id", "required")
	}
	if req.CollectorID == "" {
		return nil, models.Invalid("collector_id", "required")
	}
	if req.InsuranceFee.IsNegative() {
		return nil, models.Invalid("insurance_fee", "must not be negative")
	}

	terms, err := schedule.ComputeTerms(req.Principal, req.FlatRate, req.TermCount)
	if err != nil {
		return nil, err
	}
	firstDue, err := schedule.FirstDueDate(req.DisbursementDate, req.Periodicity, req.AnchorWeekday)
	if err != nil {
		return nil, err
	}

	loan := &models.Loan{
		ID:                 uuid.NewString(),
		ClientID:           req.ClientID,
		RouteID:            req.RouteID,
		CollectorID:        req.CollectorID,
		Principal:          req.Principal,
		FlatRate:           req.FlatRate,
		TermCount:          req.TermCount,
		Periodicity:        req.Periodicity,
		InsuranceFee:       req.InsuranceFee,
		DisbursementDate:   utils.DateOnly(req.DisbursementDate),
		FirstDueDate:       firstDue,
		TotalAmount:        terms.TotalAmount,
		OutstandingBalance: terms.TotalAmount,
		Status:             models.LoanActive,
	}
	installments := schedule.Build(loan.ID, req.Principal, terms, req.TermCount, firstDue, req.Periodicity)

	err = s.Store.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		if err := uow.Loans().Create(ctx, loan); err != nil {
			return err
		}
		return uow.Installments().CreateBatch(ctx, installments)
	})
	if err != nil {
		log.Printf("[LOAN][ERR] create client=%s route=%s: %v", req.ClientID, req.RouteID, err)
		return nil, err
	}

	log.Printf("[LOAN][DONE] id=%s principal=%s total=%s installments=%d first_due=%s",
		loan.ID, loan.Principal, loan.TotalAmount, len(installments), firstDue.Format("2006-01-02"))
	if s.Audit != nil {
		if err := s.Audit.Record(ctx, "loan_disbursed", map[string]any{
			"loan_id":   loan.ID,
			"route_id":  loan.RouteID,
			"collector": loan.CollectorID,
			"principal": loan.Principal.String(),
			"total":     loan.TotalAmount.String(),
			"term":      loan.TermCount,
		}); err != nil {
			log.Printf("[LOAN][AUDIT][WARN] loan_disbursed: %v", err)
		}
	}
	return loan, nil
}

// Detail is what a loan detail view needs: the loan, its schedule, and the
// arrears count as of now.
type Detail struct {
	Loan         models.Loan
	Schedule     []models.Installment
	OverdueCount int
}

func (s *Service) Detail(ctx context.Context, loanID string) (Detail, error) {
	loan, err := s.Store.Loans().Get(ctx, loanID)
	if err != nil {
		return Detail{}, err
	}
	installments, err := s.Store.Installments().ListByLoan(ctx, loanID)
	if err != nil {
		return Detail{}, err
	}

	overdue := schedule.OverdueCount(
		loan.FirstDueDate, loan.Periodicity,
		loan.InstallmentsPaidCount, loan.TermCount,
		utils.DateOnly(s.Now()),
	)

	return Detail{Loan: *loan, Schedule: installments, OverdueCount: overdue}, nil
}
