package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
)

type ExpenseRepo struct {
	q dbtx
}

const sumExpensesQuery = `
	SELECT COALESCE(SUM(amount), 0)::text
	FROM expenses
	WHERE expense_date = $1::date
	  AND route_id = $2::uuid
	  AND approval_status = $3::text;
`

func (r *ExpenseRepo) SumOn(ctx context.Context, date time.Time, routeID string, status models.ExpenseApproval) (decimal.Decimal, error) {
	var sum string
	if err := r.q.QueryRow(ctx, sumExpensesQuery, date, routeID, string(status)).Scan(&sum); err != nil {
		return decimal.Zero, wrapRead("sum expenses", err)
	}
	return parseAmount("amount", sum)
}
