package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
)

type LoanRepo struct {
	q dbtx
}

const loanColumns = `
	id, client_id, route_id, collector_id,
	principal::text, flat_rate::text, term_count, periodicity, insurance_fee::text,
	disbursement_date, first_due_date,
	total_amount::text, outstanding_balance::text, installments_paid_count,
	status, created_at
`

const selectLoanQuery = `SELECT ` + loanColumns + ` FROM loans WHERE id = $1::uuid`

const insertLoanQuery = `
	INSERT INTO loans (
		id, client_id, route_id, collector_id,
		principal, flat_rate, term_count, periodicity, insurance_fee,
		disbursement_date, first_due_date,
		total_amount, outstanding_balance, installments_paid_count,
		status, created_at
	)
	VALUES (
		$1::uuid,  $2::uuid,  $3::uuid,  $4::uuid,
		$5::numeric,  $6::numeric,  $7::int,  $8::text,  $9::numeric,
		$10::date,  $11::date,
		$12::numeric,  $13::numeric,  $14::int,
		$15::text,  NOW()
	);
`

const updateLoanAfterAllocationQuery = `
	UPDATE loans
	SET outstanding_balance = $2::numeric,
	    installments_paid_count = $3::int,
	    status = $4::text
	WHERE id = $1::uuid;
`

const sumDisbursedQuery = `
	SELECT COALESCE(SUM(principal), 0)::text, COALESCE(SUM(insurance_fee), 0)::text
	FROM loans
	WHERE disbursement_date = $1::date
	  AND route_id = $2::uuid
	  AND collector_id = $3::uuid;
`

func (r *LoanRepo) Get(ctx context.Context, id string) (*models.Loan, error) {
	return r.scanOne(ctx, selectLoanQuery, id)
}

func (r *LoanRepo) GetForUpdate(ctx context.Context, id string) (*models.Loan, error) {
	return r.scanOne(ctx, selectLoanQuery+` FOR UPDATE`, id)
}

func (r *LoanRepo) scanOne(ctx context.Context, query, id string) (*models.Loan, error) {
	var (
		l                          models.Loan
		principal, rate, insurance string
		total, outstanding         string
		periodicity, status        string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.ClientID, &l.RouteID, &l.CollectorID,
		&principal, &rate, &l.TermCount, &periodicity, &insurance,
		&l.DisbursementDate, &l.FirstDueDate,
		&total, &outstanding, &l.InstallmentsPaidCount,
		&status, &l.CreatedAt,
	)
	if err != nil {
		return nil, wrapRead("select loan", err)
	}

	if l.Principal, err = parseAmount("principal", principal); err != nil {
		return nil, err
	}
	if l.FlatRate, err = parseAmount("flat_rate", rate); err != nil {
		return nil, err
	}
	if l.InsuranceFee, err = parseAmount("insurance_fee", insurance); err != nil {
		return nil, err
	}
	if l.TotalAmount, err = parseAmount("total_amount", total); err != nil {
		return nil, err
	}
	if l.OutstandingBalance, err = parseAmount("outstanding_balance", outstanding); err != nil {
		return nil, err
	}
	if l.Periodicity, err = models.ParsePeriodicity(periodicity); err != nil {
		return nil, err
	}
	if l.Status, err = models.ParseLoanStatus(status); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LoanRepo) Create(ctx context.Context, loan *models.Loan) error {
	_, err := r.q.Exec(ctx, insertLoanQuery,
		loan.ID, loan.ClientID, loan.RouteID, loan.CollectorID,
		loan.Principal.String(), loan.FlatRate.String(), loan.TermCount,
		string(loan.Periodicity), loan.InsuranceFee.String(),
		loan.DisbursementDate, loan.FirstDueDate,
		loan.TotalAmount.String(), loan.OutstandingBalance.String(), loan.InstallmentsPaidCount,
		string(loan.Status),
	)
	return wrapWrite("insert loan", err)
}

func (r *LoanRepo) UpdateAfterAllocation(ctx context.Context, id string, outstanding decimal.Decimal, paidCount int, status models.LoanStatus) error {
	tag, err := r.q.Exec(ctx, updateLoanAfterAllocationQuery, id, outstanding.String(), paidCount, string(status))
	if err != nil {
		return wrapWrite("update loan", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *LoanRepo) SumDisbursedOn(ctx context.Context, date time.Time, routeID, collectorID string) (decimal.Decimal, decimal.Decimal, error) {
	var principal, insurance string
	err := r.q.QueryRow(ctx, sumDisbursedQuery, date, routeID, collectorID).Scan(&principal, &insurance)
	if err != nil {
		return decimal.Zero, decimal.Zero, wrapRead("sum disbursed", err)
	}
	p, err := parseAmount("principal", principal)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	i, err := parseAmount("insurance_fee", insurance)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return p, i, nil
}
