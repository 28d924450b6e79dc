package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ctxKey string

const txKey = ctxKey("pgxTx")

// querier is the subset of pgx shared by a pool and an open transaction,
// letting repositories run inside or outside an atomic scope transparently.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// conn returns the transaction bound to the context when one is open,
// otherwise the pool.
func (r *BaseRepository) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey).(pgx.Tx); ok {
		return tx
	}
	return r.Pool
}

// PgxTxManager implements the atomic scope over pgx transactions. Nested
// WithinTx calls join the already-open scope instead of starting a new one.
type PgxTxManager struct {
	Pool *pgxpool.Pool
}

// NewPgxTxManager creates a transaction manager over the pool.
func NewPgxTxManager(pool *pgxpool.Pool) *PgxTxManager {
	return &PgxTxManager{Pool: pool}
}

var _ portsrepo.TxManager = (*PgxTxManager)(nil)

// WithinTx runs fn inside one database transaction; all repository calls
// made through the returned context share it. Serialization failures and
// deadlocks surface as apperrors.ErrTransientConflict after rollback.
func (m *PgxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(pgx.Tx); ok {
		// Already inside a scope; join it.
		return fn(ctx)
	}

	tx, err := m.Pool.Begin(ctx)
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	// Ignored once the transaction is committed.
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return mapConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapConflict(apperrors.NewAppError(500, "failed to commit transaction", err))
	}
	return nil
}

// Postgres SQLSTATEs that are safe to retry with a fresh scope.
const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// mapConflict translates retryable storage conflicts into the transient
// conflict sentinel; everything else passes through untouched.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == sqlstateSerializationFailure || pgErr.Code == sqlstateDeadlockDetected {
			return fmt.Errorf("%w: %s", apperrors.ErrTransientConflict, pgErr.Message)
		}
	}
	return err
}
