package database

import (
	"context"
	"time"

	"colecta_engine/internal/models"
)

type ReconciliationRepo struct {
	q dbtx
}

// The unique key on (recon_date, route_id, collector_id) is what makes
// reconciliation creation race-safe: concurrent attempts both reach the
// insert and exactly one wins.
const insertReconciliationQuery = `
	INSERT INTO reconciliations (
		id, recon_date, route_id, collector_id,
		collected, new_loans_disbursed, insurance_collected,
		expenses_approved, expenses_pending,
		float_amount, theoretical, actual_returned, difference,
		classification, created_at
	)
	VALUES (
		$1::uuid,  $2::date,  $3::uuid,  $4::uuid,
		$5::numeric,  $6::numeric,  $7::numeric,
		$8::numeric,  $9::numeric,
		$10::numeric,  $11::numeric,  $12::numeric,  $13::numeric,
		$14::text,  NOW()
	)
	ON CONFLICT (recon_date, route_id, collector_id) DO NOTHING;
`

const selectReconciliationQuery = `
	SELECT id, recon_date, route_id, collector_id,
	       collected::text, new_loans_disbursed::text, insurance_collected::text,
	       expenses_approved::text, expenses_pending::text,
	       float_amount::text, theoretical::text, actual_returned::text, difference::text,
	       classification, created_at
	FROM reconciliations
	WHERE recon_date = $1::date
	  AND route_id = $2::uuid
	  AND collector_id = $3::uuid;
`

func (r *ReconciliationRepo) InsertUnique(ctx context.Context, rec *models.Reconciliation) (bool, error) {
	tag, err := r.q.Exec(ctx, insertReconciliationQuery,
		rec.ID, rec.Date, rec.RouteID, rec.CollectorID,
		rec.Collected.String(), rec.NewLoansDisbursed.String(), rec.InsuranceCollected.String(),
		rec.ExpensesApproved.String(), rec.ExpensesPending.String(),
		rec.FloatAmount.String(), rec.Theoretical.String(), rec.ActualReturned.String(), rec.Difference.String(),
		string(rec.Classification),
	)
	if err != nil {
		return false, wrapWrite("insert reconciliation", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ReconciliationRepo) GetByGroup(ctx context.Context, date time.Time, routeID, collectorID string) (*models.Reconciliation, error) {
	var (
		rec     models.Reconciliation
		amounts [9]string
		class   string
	)
	err := r.q.QueryRow(ctx, selectReconciliationQuery, date, routeID, collectorID).Scan(
		&rec.ID, &rec.Date, &rec.RouteID, &rec.CollectorID,
		&amounts[0], &amounts[1], &amounts[2],
		&amounts[3], &amounts[4],
		&amounts[5], &amounts[6], &amounts[7], &amounts[8],
		&class, &rec.CreatedAt,
	)
	if err != nil {
		return nil, wrapRead("select reconciliation", err)
	}

	if rec.Collected, err = parseAmount("collected", amounts[0]); err != nil {
		return nil, err
	}
	if rec.NewLoansDisbursed, err = parseAmount("new_loans_disbursed", amounts[1]); err != nil {
		return nil, err
	}
	if rec.InsuranceCollected, err = parseAmount("insurance_collected", amounts[2]); err != nil {
		return nil, err
	}
	if rec.ExpensesApproved, err = parseAmount("expenses_approved", amounts[3]); err != nil {
		return nil, err
	}
	if rec.ExpensesPending, err = parseAmount("expenses_pending", amounts[4]); err != nil {
		return nil, err
	}
	if rec.FloatAmount, err = parseAmount("float_amount", amounts[5]); err != nil {
		return nil, err
	}
	if rec.Theoretical, err = parseAmount("theoretical", amounts[6]); err != nil {
		return nil, err
	}
	if rec.ActualReturned, err = parseAmount("actual_returned", amounts[7]); err != nil {
		return nil, err
	}
	if rec.Difference, err = parseAmount("difference", amounts[8]); err != nil {
		return nil, err
	}
	if rec.Classification, err = models.ParseReconClassification(class); err != nil {
		return nil, err
	}
	return &rec, nil
}
