package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
)

type PaymentRepo struct {
	q dbtx
}

const paymentColumns = `
	id, installment_id, loan_id, amount::text, payment_date,
	collector_id, kind, method, notes, created_at
`

const selectPaymentQuery = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1::uuid`

const insertPaymentQuery = `
	INSERT INTO payments (
		id, installment_id, loan_id, amount, payment_date,
		collector_id, kind, method, notes, created_at
	)
	VALUES (
		$1::uuid,  $2::uuid,  $3::uuid,  $4::numeric,  $5::date,
		$6::uuid,  $7::text,  $8::text,  $9::text,  NOW()
	);
`

const listPaymentsByInstallmentQuery = `
	SELECT ` + paymentColumns + `
	FROM payments
	WHERE installment_id = $1::uuid
	ORDER BY created_at ASC;
`

const listCollectedQuery = `
	SELECT p.id, p.installment_id, p.loan_id, p.amount::text, p.payment_date,
	       p.collector_id, p.kind, p.method, p.notes, p.created_at
	FROM payments p
	JOIN loans l ON l.id = p.loan_id
	WHERE p.payment_date = $1::date
	  AND l.route_id = $2::uuid
	  AND p.collector_id = $3::uuid
	ORDER BY p.created_at ASC;
`

const sumCollectedQuery = `
	SELECT COALESCE(SUM(p.amount), 0)::text
	FROM payments p
	JOIN loans l ON l.id = p.loan_id
	WHERE p.payment_date = $1::date
	  AND l.route_id = $2::uuid
	  AND p.collector_id = $3::uuid;
`

func (r *PaymentRepo) Get(ctx context.Context, id string) (*models.PaymentRecord, error) {
	rec, err := scanPayment(r.q.QueryRow(ctx, selectPaymentQuery, id))
	if err != nil {
		return nil, wrapRead("select payment", err)
	}
	return rec, nil
}

func (r *PaymentRepo) CreateBatch(ctx context.Context, batch []models.PaymentRecord) error {
	if len(batch) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for i := range batch {
		row := &batch[i]
		b.Queue(insertPaymentQuery,
			row.ID, row.InstallmentID, row.LoanID, row.Amount.String(), row.Date,
			row.CollectorID, string(row.Kind), row.Method, row.Notes,
		)
	}

	br := r.q.SendBatch(ctx, b)
	defer br.Close()

	var errs []error
	for range batch {
		if _, err := br.Exec(); err != nil {
			errs = append(errs, err)
		}
	}
	return wrapWrite("insert payments", errors.Join(errs...))
}

func (r *PaymentRepo) ListByInstallment(ctx context.Context, installmentID string) ([]models.PaymentRecord, error) {
	return r.list(ctx, listPaymentsByInstallmentQuery, installmentID)
}

func (r *PaymentRepo) ListCollectedOn(ctx context.Context, date time.Time, routeID, collectorID string) ([]models.PaymentRecord, error) {
	return r.list(ctx, listCollectedQuery, date, routeID, collectorID)
}

func (r *PaymentRepo) list(ctx context.Context, query string, args ...any) ([]models.PaymentRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapRead("list payments", err)
	}
	defer rows.Close()

	var out []models.PaymentRecord
	for rows.Next() {
		rec, err := scanPayment(rows)
		if err != nil {
			return nil, wrapRead("scan payment", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapRead("list payments", err)
	}
	return out, nil
}

func (r *PaymentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM payments WHERE id = $1::uuid`, id)
	return wrapWrite("delete payment", err)
}

func (r *PaymentRepo) DeleteByInstallment(ctx context.Context, installmentID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM payments WHERE installment_id = $1::uuid`, installmentID)
	return wrapWrite("delete payments", err)
}

func (r *PaymentRepo) SumCollectedOn(ctx context.Context, date time.Time, routeID, collectorID string) (decimal.Decimal, error) {
	var sum string
	if err := r.q.QueryRow(ctx, sumCollectedQuery, date, routeID, collectorID).Scan(&sum); err != nil {
		return decimal.Zero, wrapRead("sum collected", err)
	}
	return parseAmount("amount", sum)
}

func scanPayment(row pgx.Row) (*models.PaymentRecord, error) {
	var (
		rec          models.PaymentRecord
		amount, kind string
	)
	err := row.Scan(
		&rec.ID, &rec.InstallmentID, &rec.LoanID, &amount, &rec.Date,
		&rec.CollectorID, &kind, &rec.Method, &rec.Notes, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rec.Amount, err = parseAmount("amount", amount); err != nil {
		return nil, err
	}
	if rec.Kind, err = models.ParsePaymentKind(kind); err != nil {
		return nil, err
	}
	return &rec, nil
}
