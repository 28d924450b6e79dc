package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxAccountRepository reads the account graph and applies balance deltas.
type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// ListSummaries returns every summary account.
func (r *PgxAccountRepository) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	query := `
		SELECT summary_id, code, name, account_type, parent_summary_id, starting_balance, ending_balance,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM summaries
		ORDER BY summary_id;
	`
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(
			&s.SummaryID,
			&s.Code,
			&s.Name,
			&s.AccountType,
			&s.ParentSummaryID,
			&s.StartingBalance,
			&s.EndingBalance,
			&s.CreatedAt,
			&s.CreatedBy,
			&s.LastUpdatedAt,
			&s.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListFieldLineDefinitions returns every field-line definition.
func (r *PgxAccountRepository) ListFieldLineDefinitions(ctx context.Context) ([]domain.FieldLineDefinition, error) {
	query := `
		SELECT definition_id, name, created_at, created_by, last_updated_at, last_updated_by
		FROM field_line_definitions
		ORDER BY definition_id;
	`
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query field-line definitions: %w", err)
	}
	defer rows.Close()

	var defs []domain.FieldLineDefinition
	for rows.Next() {
		var d domain.FieldLineDefinition
		if err := rows.Scan(&d.DefinitionID, &d.Name, &d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan field-line definition row: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// ListFieldLineInstances returns every field-line instance.
func (r *PgxAccountRepository) ListFieldLineInstances(ctx context.Context) ([]domain.FieldLineInstance, error) {
	query := `
		SELECT instance_id, definition_id, summary_id, balance, created_at, created_by, last_updated_at, last_updated_by
		FROM field_line_instances
		ORDER BY instance_id;
	`
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query field-line instances: %w", err)
	}
	defer rows.Close()

	var instances []domain.FieldLineInstance
	for rows.Next() {
		var in domain.FieldLineInstance
		if err := rows.Scan(&in.InstanceID, &in.DefinitionID, &in.SummaryID, &in.Balance, &in.CreatedAt, &in.CreatedBy, &in.LastUpdatedAt, &in.LastUpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan field-line instance row: %w", err)
		}
		instances = append(instances, in)
	}
	return instances, rows.Err()
}

// LockAccounts acquires row locks on the given summaries and instances in a
// stable order. Must run inside an atomic scope.
func (r *PgxAccountRepository) LockAccounts(ctx context.Context, summaryIDs []int64, instanceIDs []int64) error {
	conn := r.conn(ctx)
	if len(summaryIDs) > 0 {
		rows, err := conn.Query(ctx, `SELECT summary_id FROM summaries WHERE summary_id = ANY($1) ORDER BY summary_id FOR UPDATE;`, summaryIDs)
		if err != nil {
			return fmt.Errorf("failed to lock summaries: %w", err)
		}
		locked, err := countRows(rows)
		if err != nil {
			return err
		}
		if locked != len(summaryIDs) {
			return fmt.Errorf("%w: one or more summaries missing during lock", apperrors.ErrNotFound)
		}
	}
	if len(instanceIDs) > 0 {
		rows, err := conn.Query(ctx, `SELECT instance_id FROM field_line_instances WHERE instance_id = ANY($1) ORDER BY instance_id FOR UPDATE;`, instanceIDs)
		if err != nil {
			return fmt.Errorf("failed to lock field-line instances: %w", err)
		}
		locked, err := countRows(rows)
		if err != nil {
			return err
		}
		if locked != len(instanceIDs) {
			return fmt.Errorf("%w: one or more field-line instances missing during lock", apperrors.ErrNotFound)
		}
	}
	return nil
}

func countRows(rows pgx.Rows) (int, error) {
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

// ApplyBalanceDeltas increments summary ending balances and instance
// balances by the given signed deltas in one batch.
func (r *PgxAccountRepository) ApplyBalanceDeltas(ctx context.Context, summaryDeltas map[int64]decimal.Decimal, instanceDeltas map[int64]decimal.Decimal, userID string, now time.Time) error {
	summaryQuery := `
		UPDATE summaries
		SET ending_balance = COALESCE(ending_balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE summary_id = $1;
	`
	instanceQuery := `
		UPDATE field_line_instances
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE instance_id = $1;
	`

	batch := &pgx.Batch{}
	queued := 0
	for id, delta := range summaryDeltas {
		if !delta.IsZero() {
			batch.Queue(summaryQuery, id, delta, now, userID)
			queued++
		}
	}
	for id, delta := range instanceDeltas {
		if !delta.IsZero() {
			batch.Queue(instanceQuery, id, delta, now, userID)
			queued++
		}
	}
	if queued == 0 {
		return nil
	}

	br := r.conn(ctx).SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < queued; i++ {
		ct, err := br.Exec()
		if err != nil && batchErr == nil {
			batchErr = fmt.Errorf("failed to apply balance delta: %w", err)
		} else if err == nil && ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: account missing during balance update", apperrors.ErrNotFound)
		}
	}
	if closeErr := br.Close(); closeErr != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance batch: %w", closeErr)
	}
	return batchErr
}
