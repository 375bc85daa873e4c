package reconciler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
	"colecta_engine/internal/ports"
	"colecta_engine/internal/utils"
)

// AuditThreshold flags any difference above 50,000 currency units, surplus
// or shortfall alike, for manual audit.
var AuditThreshold = decimal.NewFromInt(50_000)

// Service closes a collector's route-day: aggregates the day's cash
// movements, compares the theoretical returnable amount against what was
// actually handed back, and stores the terminal reconciliation record.
type Service struct {
	Store ports.Storage
	Audit ports.AuditTrail
	Now   func() time.Time
}

func New(store ports.Storage, audit ports.AuditTrail) *Service {
	return &Service{Store: store, Audit: audit, Now: time.Now}
}

// Totals are one group's aggregated cash movements. Pending expenses are
// reported for the operator but never enter the theoretical amount.
type Totals struct {
	Collected          decimal.Decimal
	NewLoansDisbursed  decimal.Decimal
	InsuranceCollected decimal.Decimal
	ExpensesApproved   decimal.Decimal
	ExpensesPending    decimal.Decimal
}

// Aggregate fans the four read-only queries out concurrently and joins them.
// Each read retries on transient storage errors; all four are idempotent.
func (s *Service) Aggregate(ctx context.Context, date time.Time, routeID, collectorID string) (Totals, error) {
	day := utils.DateOnly(date)

	var (
		wg     sync.WaitGroup
		totals Totals
		errs   [3]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = withRetry(ctx, "sum collected", func() error {
			v, err := s.Store.Payments().SumCollectedOn(ctx, day, routeID, collectorID)
			totals.Collected = v
			return err
		})
	}()
	go func() {
		defer wg.Done()
		errs[1] = withRetry(ctx, "sum disbursed", func() error {
			principal, insurance, err := s.Store.Loans().SumDisbursedOn(ctx, day, routeID, collectorID)
			totals.NewLoansDisbursed = principal
			totals.InsuranceCollected = insurance
			return err
		})
	}()
	go func() {
		defer wg.Done()
		errs[2] = withRetry(ctx, "sum expenses", func() error {
			approved, err := s.Store.Expenses().SumOn(ctx, day, routeID, models.ExpenseApproved)
			if err != nil {
				return err
			}
			pending, err := s.Store.Expenses().SumOn(ctx, day, routeID, models.ExpensePending)
			if err != nil {
				return err
			}
			totals.ExpensesApproved = approved
			totals.ExpensesPending = pending
			return nil
		})
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Totals{}, err
		}
	}
	return totals, nil
}

// Reconcile closes the (date, route, collector) group. The group's daily
// float must exist; a group that is already reconciled gets its stored record
// back together with ErrAlreadyReconciled, and the row is never recreated or
// touched. Uniqueness rests on the store's conditional insert, not on a
// prior existence check, so two concurrent invocations cannot both insert.
func (s *Service) Reconcile(ctx context.Context, date time.Time, routeID, collectorID string, actualReturned decimal.Decimal) (models.Reconciliation, error) {
	if actualReturned.IsNegative() {
		return models.Reconciliation{}, models.Invalid("actual_returned", "must not be negative")
	}

	day := utils.DateOnly(date)
	log.Printf("[RECON][START] date=%s route=%s collector=%s returned=%s",
		day.Format("2006-01-02"), routeID, collectorID, actualReturned)

	flt, err := s.Store.Floats().GetForDay(ctx, day, routeID, collectorID)
	if err != nil {
		return models.Reconciliation{}, err
	}
	if flt.Status == models.FloatReconciled {
		existing, err := s.Store.Reconciliations().GetByGroup(ctx, day, routeID, collectorID)
		if err != nil {
			return models.Reconciliation{}, err
		}
		return *existing, models.ErrAlreadyReconciled
	}

	totals, err := s.Aggregate(ctx, day, routeID, collectorID)
	if err != nil {
		return models.Reconciliation{}, err
	}

	theoretical := flt.FloatAmount.
		Add(totals.Collected).
		Add(totals.InsuranceCollected).
		Sub(totals.NewLoansDisbursed).
		Sub(totals.ExpensesApproved)
	difference := actualReturned.Sub(theoretical)

	rec := models.Reconciliation{
		ID:                 uuid.NewString(),
		Date:               day,
		RouteID:            routeID,
		CollectorID:        collectorID,
		Collected:          totals.Collected,
		NewLoansDisbursed:  totals.NewLoansDisbursed,
		InsuranceCollected: totals.InsuranceCollected,
		ExpensesApproved:   totals.ExpensesApproved,
		ExpensesPending:    totals.ExpensesPending,
		FloatAmount:        flt.FloatAmount,
		Theoretical:        theoretical,
		ActualReturned:     actualReturned,
		Difference:         difference,
		Classification:     Classify(difference),
	}

	var stored models.Reconciliation
	var already bool
	err = s.Store.WithinTx(ctx, func(uow ports.UnitOfWork) error {
		inserted, err := uow.Reconciliations().InsertUnique(ctx, &rec)
		if err != nil {
			return err
		}
		if !inserted {
			existing, err := uow.Reconciliations().GetByGroup(ctx, day, routeID, collectorID)
			if err != nil {
				return err
			}
			stored, already = *existing, true
			return nil
		}
		if err := uow.Floats().MarkReconciled(ctx, flt.ID, actualReturned); err != nil {
			return err
		}
		stored = rec
		return nil
	})
	if err != nil {
		log.Printf("[RECON][ERR] route=%s collector=%s: %v", routeID, collectorID, err)
		return models.Reconciliation{}, err
	}
	if already {
		log.Printf("[RECON][SKIP] route=%s collector=%s already reconciled", routeID, collectorID)
		return stored, models.ErrAlreadyReconciled
	}

	log.Printf("[RECON][DONE] route=%s collector=%s theoretical=%s difference=%s class=%s",
		routeID, collectorID, theoretical, difference, stored.Classification)
	s.audit(ctx, "day_reconciled", map[string]any{
		"date":           day.Format("2006-01-02"),
		"route_id":       routeID,
		"collector_id":   collectorID,
		"theoretical":    theoretical.String(),
		"returned":       actualReturned.String(),
		"difference":     difference.String(),
		"classification": string(stored.Classification),
	})
	return stored, nil
}

// Classify maps the signed difference to its terminal classification. The
// audit threshold overrides the sign: a large surplus is as suspicious as a
// large shortfall.
func Classify(difference decimal.Decimal) models.ReconClassification {
	if difference.Abs().GreaterThan(AuditThreshold) {
		return models.ReconAudit
	}
	switch {
	case difference.IsZero():
		return models.ReconBalanced
	case difference.IsPositive():
		return models.ReconSurplus
	default:
		return models.ReconShortfall
	}
}

func (s *Service) audit(ctx context.Context, action string, fields map[string]any) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, action, fields); err != nil {
		log.Printf("[RECON][AUDIT][WARN] %s: %v", action, err)
	}
}
