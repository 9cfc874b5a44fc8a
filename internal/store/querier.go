package store

import (
	"context"

	"github.com/cortexmemory/cortex/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxExecutor is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgx.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier adapts a pgxExecutor to domain.Querier so the store package's
// methods don't need two copies, one for pool one for tx.
type querier struct{ exec pgxExecutor }

func (q querier) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := q.exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (q querier) Query(ctx context.Context, sql string, args ...any) (domain.Rows, error) {
	rows, err := q.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rowsAdapter{rows}, nil
}

func (q querier) QueryRow(ctx context.Context, sql string, args ...any) domain.Row {
	return q.exec.QueryRow(ctx, sql, args...)
}

type rowsAdapter struct{ pgx.Rows }

func (r rowsAdapter) Scan(dest ...any) error { return r.Rows.Scan(dest...) }

// Wrap returns a domain.Querier backed by pool, for standalone calls.
func Wrap(pool *pgxpool.Pool) domain.Querier { return querier{exec: pool} }

// WrapTx returns a domain.Querier backed by tx, for calls inside a
// caller-managed transaction.
func WrapTx(tx pgx.Tx) domain.Querier { return querier{exec: tx} }

// PgxTxRunner implements domain.TxRunner over a pgxpool.Pool.
type PgxTxRunner struct {
	Pool *pgxpool.Pool
}

func (r *PgxTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context, q domain.Querier) error) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return domain.WrapError(domain.ErrStorageFailed, "begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(ctx, WrapTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.ErrStorageFailed, "commit transaction", err)
	}
	return nil
}
