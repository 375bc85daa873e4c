package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"colecta_engine/internal/models"
)

type InstallmentRepo struct {
	q dbtx
}

const installmentColumns = `
	id, loan_id, sequence_number, due_date,
	scheduled_value::text, principal_part::text, interest_part::text,
	amount_paid::text, payment_date, status
`

const selectInstallmentQuery = `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1::uuid`

const listInstallmentsQuery = `
	SELECT ` + installmentColumns + `
	FROM installments
	WHERE loan_id = $1::uuid
	ORDER BY sequence_number ASC;
`

const insertInstallmentQuery = `
	INSERT INTO installments (
		id, loan_id, sequence_number, due_date,
		scheduled_value, principal_part, interest_part,
		amount_paid, payment_date, status
	)
	VALUES (
		$1::uuid,  $2::uuid,  $3::int,  $4::date,
		$5::numeric,  $6::numeric,  $7::numeric,
		$8::numeric,  $9::date,  $10::text
	);
`

const updateInstallmentQuery = `
	UPDATE installments
	SET amount_paid = $2::numeric,
	    payment_date = $3::date,
	    status = $4::text
	WHERE id = $1::uuid;
`

func (r *InstallmentRepo) Get(ctx context.Context, id string) (*models.Installment, error) {
	row := r.q.QueryRow(ctx, selectInstallmentQuery, id)
	inst, err := scanInstallment(row)
	if err != nil {
		return nil, wrapRead("select installment", err)
	}
	return inst, nil
}

func (r *InstallmentRepo) ListByLoan(ctx context.Context, loanID string) ([]models.Installment, error) {
	rows, err := r.q.Query(ctx, listInstallmentsQuery, loanID)
	if err != nil {
		return nil, wrapRead("list installments", err)
	}
	defer rows.Close()

	var out []models.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, wrapRead("scan installment", err)
		}
		out = append(out, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapRead("list installments", err)
	}
	return out, nil
}

// CreateBatch inserts the full schedule in one round trip.
func (r *InstallmentRepo) CreateBatch(ctx context.Context, batch []models.Installment) error {
	if len(batch) == 0 {
		return nil
	}

	b := &pgx.Batch{}
	for i := range batch {
		row := &batch[i]
		b.Queue(insertInstallmentQuery,
			row.ID, row.LoanID, row.SequenceNumber, row.DueDate,
			row.ScheduledValue.String(), row.PrincipalPart.String(), row.InterestPart.String(),
			row.AmountPaid.String(), row.PaymentDate, string(row.Status),
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
	return wrapWrite("insert installments", errors.Join(errs...))
}

func (r *InstallmentRepo) Update(ctx context.Context, row *models.Installment) error {
	var paymentDate *time.Time
	if row.PaymentDate != nil {
		d := *row.PaymentDate
		paymentDate = &d
	}
	tag, err := r.q.Exec(ctx, updateInstallmentQuery,
		row.ID, row.AmountPaid.String(), paymentDate, string(row.Status),
	)
	if err != nil {
		return wrapWrite("update installment", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanInstallment(row pgx.Row) (*models.Installment, error) {
	var (
		inst                       models.Installment
		value, principal, interest string
		paid, status               string
	)

	err := row.Scan(
		&inst.ID, &inst.LoanID, &inst.SequenceNumber, &inst.DueDate,
		&value, &principal, &interest,
		&paid, &inst.PaymentDate, &status,
	)
	if err != nil {
		return nil, err
	}

	if inst.ScheduledValue, err = parseAmount("scheduled_value", value); err != nil {
		return nil, err
	}
	if inst.PrincipalPart, err = parseAmount("principal_part", principal); err != nil {
		return nil, err
	}
	if inst.InterestPart, err = parseAmount("interest_part", interest); err != nil {
		return nil, err
	}
	if inst.AmountPaid, err = parseAmount("amount_paid", paid); err != nil {
		return nil, err
	}
	if inst.Status, err = models.ParseInstallmentStatus(status); err != nil {
		return nil, err
	}
	return &inst, nil
}
