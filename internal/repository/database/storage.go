package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"colecta_engine/internal/config/connections/postgres"
	"colecta_engine/internal/models"
	"colecta_engine/internal/ports"
)

// dbtx is what every repo needs from either the pool or an open transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Storage implements ports.Storage over a pgx pool. Outside WithinTx the
// stores run against the pool directly; inside, against the transaction.
type Storage struct {
	unit
	pg *postgres.Postgres
}

func NewStorage(pg *postgres.Postgres) *Storage {
	return &Storage{pg: pg, unit: unit{q: pg.Pool}}
}

type unit struct {
	q dbtx
}

func (u unit) Loans() ports.LoanStore { return &LoanRepo{q: u.q} }
func (u unit) Installments() ports.InstallmentStore { return &InstallmentRepo{q: u.q} }
func (u unit) Payments() ports.PaymentStore { return &PaymentRepo{q: u.q} }
func (u unit) Expenses() ports.ExpenseStore { return &ExpenseRepo{q: u.q} }
func (u unit) Floats() ports.FloatStore { return &FloatRepo{q: u.q} }
func (u unit) Reconciliations() ports.ReconciliationStore { return &ReconciliationRepo{q: u.q} }

func (s *Storage) WithinTx(ctx context.Context, fn func(uow ports.UnitOfWork) error) error {
	tx, err := s.pg.Pool.Begin(ctx)
	if err != nil {
		return models.Storage("begin tx", true, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(unit{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Storage("commit tx", false, err)
	}
	return nil
}

// wrapRead maps pgx errors to the engine taxonomy: no rows is NotFound,
// everything else a StorageError marked transient when pgx says the failure
// happened before the statement could have taken effect.
func wrapRead(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return models.Storage(op, pgconn.SafeToRetry(err), err)
}

func wrapWrite(op string, err error) error {
	if err == nil {
		return nil
	}
	return models.Storage(op, false, err)
}
