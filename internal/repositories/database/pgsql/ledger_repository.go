package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxLedgerRepository persists transactions and their settlement flags.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const transactionColumns = `
	transaction_id, transaction_type, description, ts, lines,
	ready_for_retained_earning, retained_locked, retained_period_key, commission_report_id,
	return_window_expiry, expense_details,
	created_at, created_by, last_updated_at, last_updated_by
`

// SaveTransaction inserts one immutable transaction document.
func (r *PgxLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	linesJSON, err := json.Marshal(txn.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode lines for transaction %s: %w", txn.TransactionID, err)
	}
	var expenseJSON []byte
	if txn.Expense != nil {
		expenseJSON, err = json.Marshal(txn.Expense)
		if err != nil {
			return fmt.Errorf("failed to encode expense details for transaction %s: %w", txn.TransactionID, err)
		}
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = r.conn(ctx).Exec(ctx, query,
		txn.TransactionID,
		txn.TransactionType,
		txn.Description,
		txn.Timestamp,
		linesJSON,
		txn.ReadyForRetainedEarning,
		txn.RetainedLocked,
		txn.RetainedPeriodKey,
		txn.CommissionReportID,
		txn.ReturnWindowExpiry,
		expenseJSON,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction "+txn.TransactionID, err)
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	var linesJSON, expenseJSON []byte
	err := row.Scan(
		&txn.TransactionID,
		&txn.TransactionType,
		&txn.Description,
		&txn.Timestamp,
		&linesJSON,
		&txn.ReadyForRetainedEarning,
		&txn.RetainedLocked,
		&txn.RetainedPeriodKey,
		&txn.CommissionReportID,
		&txn.ReturnWindowExpiry,
		&expenseJSON,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(linesJSON, &txn.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode lines for transaction %s: %w", txn.TransactionID, err)
	}
	if len(expenseJSON) > 0 {
		txn.Expense = &domain.ExpenseDetails{}
		if err := json.Unmarshal(expenseJSON, txn.Expense); err != nil {
			return nil, fmt.Errorf("failed to decode expense details for transaction %s: %w", txn.TransactionID, err)
		}
	}
	return &txn, nil
}

// FindTransactionByID fetches one transaction.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.conn(ctx).QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

func (r *PgxLedgerRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

// FindEligibleForSettlement selects ready, unlocked transactions in range,
// locking the rows so a concurrent close of an overlapping period serializes.
func (r *PgxLedgerRepository) FindEligibleForSettlement(ctx context.Context, fromDate, toDate time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ready_for_retained_earning = TRUE
		  AND retained_locked = FALSE
		  AND ts >= $1 AND ts <= $2
		ORDER BY ts
		FOR UPDATE;
	`
	return r.queryTransactions(ctx, query, fromDate, toDate)
}

// LockForSettlement stamps the lock, period key and report id on the given
// transactions.
func (r *PgxLedgerRepository) LockForSettlement(ctx context.Context, transactionIDs []string, periodKey string, reportID string, userID string, now time.Time) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	query := `
		UPDATE transactions
		SET retained_locked = TRUE, retained_period_key = $2, commission_report_id = $3,
		    last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = ANY($1) AND retained_locked = FALSE;
	`
	ct, err := r.conn(ctx).Exec(ctx, query, transactionIDs, periodKey, reportID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock transactions for settlement", err)
	}
	if int(ct.RowsAffected()) != len(transactionIDs) {
		return fmt.Errorf("%w: transaction already locked during settlement", apperrors.ErrTransientConflict)
	}
	return nil
}

// FindExpenseTransactions selects expense-carrying transactions in range.
func (r *PgxLedgerRepository) FindExpenseTransactions(ctx context.Context, fromDate, toDate time.Time, unclearedOnly bool) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE expense_details IS NOT NULL
		  AND ts >= $1 AND ts <= $2
	`
	if unclearedOnly {
		query += ` AND (expense_details->>'isCleared')::boolean = FALSE`
	}
	query += ` ORDER BY ts;`
	return r.queryTransactions(ctx, query, fromDate, toDate)
}

// AttachExpenseDetails stamps fresh expense details on a posted transaction.
func (r *PgxLedgerRepository) AttachExpenseDetails(ctx context.Context, transactionID string, userID string, now time.Time) error {
	details, err := json.Marshal(domain.ExpenseDetails{})
	if err != nil {
		return fmt.Errorf("failed to encode expense details: %w", err)
	}
	query := `
		UPDATE transactions
		SET expense_details = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1;
	`
	ct, err := r.conn(ctx).Exec(ctx, query, transactionID, details, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to attach expense details to "+transactionID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return nil
}

// MarkExpenseCleared flips expenseDetails.isCleared on the given transactions.
func (r *PgxLedgerRepository) MarkExpenseCleared(ctx context.Context, transactionIDs []string, userID string, now time.Time) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	query := `
		UPDATE transactions
		SET expense_details = jsonb_set(expense_details, '{isCleared}', 'true'),
		    last_updated_at = $2, last_updated_by = $3
		WHERE transaction_id = ANY($1) AND expense_details IS NOT NULL;
	`
	if _, err := r.conn(ctx).Exec(ctx, query, transactionIDs, now, userID); err != nil {
		return apperrors.NewAppError(500, "failed to mark expenses cleared", err)
	}
	return nil
}

// MarkExpensePaid stamps paidBy/paidAt on the given expense transactions.
func (r *PgxLedgerRepository) MarkExpensePaid(ctx context.Context, transactionIDs []string, paidBy string, userID string, now time.Time) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	paidByJSON, err := json.Marshal(paidBy)
	if err != nil {
		return fmt.Errorf("failed to encode paidBy: %w", err)
	}
	paidAtJSON, err := json.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to encode paidAt: %w", err)
	}
	query := `
		UPDATE transactions
		SET expense_details = jsonb_set(jsonb_set(expense_details, '{paidBy}', $2::jsonb), '{paidAt}', $3::jsonb),
		    last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = ANY($1) AND expense_details IS NOT NULL;
	`
	if _, err := r.conn(ctx).Exec(ctx, query, transactionIDs, paidByJSON, paidAtJSON, now, userID); err != nil {
		return apperrors.NewAppError(500, "failed to mark expenses paid", err)
	}
	return nil
}

// FindReturnWindowExpired selects ids of transactions whose return window
// has passed but whose readiness flag is still unset.
func (r *PgxLedgerRepository) FindReturnWindowExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	query := `
		SELECT transaction_id
		FROM transactions
		WHERE return_window_expiry IS NOT NULL
		  AND return_window_expiry <= $1
		  AND ready_for_retained_earning = FALSE
		ORDER BY return_window_expiry
		LIMIT $2;
	`
	rows, err := r.conn(ctx).Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired return windows: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan transaction id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkReadyForRetainedEarning flips the readiness flag on the given batch.
func (r *PgxLedgerRepository) MarkReadyForRetainedEarning(ctx context.Context, transactionIDs []string, now time.Time) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	query := `
		UPDATE transactions
		SET ready_for_retained_earning = TRUE, last_updated_at = $2
		WHERE transaction_id = ANY($1) AND ready_for_retained_earning = FALSE;
	`
	if _, err := r.conn(ctx).Exec(ctx, query, transactionIDs, now); err != nil {
		return apperrors.NewAppError(500, "failed to mark transactions ready", err)
	}
	return nil
}
