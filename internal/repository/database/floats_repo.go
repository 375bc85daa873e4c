package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"colecta_engine/internal/models"
)

type FloatRepo struct {
	q dbtx
}

const selectFloatQuery = `
	SELECT id, route_id, collector_id, float_date,
	       float_amount::text, actual_returned::text, status
	FROM daily_floats
	WHERE float_date = $1::date
	  AND route_id = $2::uuid
	  AND collector_id = $3::uuid;
`

const markFloatReconciledQuery = `
	UPDATE daily_floats
	SET status = $2::text,
	    actual_returned = $3::numeric
	WHERE id = $1::uuid;
`

func (r *FloatRepo) GetForDay(ctx context.Context, date time.Time, routeID, collectorID string) (*models.DailyFloat, error) {
	var (
		f              models.DailyFloat
		amount, status string
		returned       *string
	)
	err := r.q.QueryRow(ctx, selectFloatQuery, date, routeID, collectorID).Scan(
		&f.ID, &f.RouteID, &f.CollectorID, &f.Date,
		&amount, &returned, &status,
	)
	if err != nil {
		return nil, wrapRead("select daily float", err)
	}

	if f.FloatAmount, err = parseAmount("float_amount", amount); err != nil {
		return nil, err
	}
	if returned != nil {
		d, err := parseAmount("actual_returned", *returned)
		if err != nil {
			return nil, err
		}
		f.ActualReturned = &d
	}
	if f.Status, err = models.ParseFloatStatus(status); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FloatRepo) MarkReconciled(ctx context.Context, id string, actualReturned decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, markFloatReconciledQuery, id, string(models.FloatReconciled), actualReturned.String())
	if err != nil {
		return wrapWrite("update daily float", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
