package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxReportRepository persists expense and commission reports.
type PgxReportRepository struct {
	BaseRepository
}

func newPgxReportRepository(pool *pgxpool.Pool) portsrepo.ReportRepositoryFacade {
	return &PgxReportRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReportRepositoryFacade = (*PgxReportRepository)(nil)

const sqlstateUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlstateUniqueViolation
}

// SaveExpenseReport inserts one expense report; a period-key collision maps
// to ErrDuplicate.
func (r *PgxReportRepository) SaveExpenseReport(ctx context.Context, report domain.ExpenseReport) error {
	query := `
		INSERT INTO expense_reports (
			report_id, period_key, from_date, to_date, total_amount, transaction_ids, status,
			paid_at, commission_report_id, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		report.ReportID,
		report.PeriodKey,
		report.FromDate,
		report.ToDate,
		report.TotalAmount,
		report.TransactionIDs,
		report.Status,
		report.PaidAt,
		report.CommissionReportID,
		report.CreatedAt,
		report.CreatedBy,
		report.LastUpdatedAt,
		report.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: expense report period %s", apperrors.ErrDuplicate, report.PeriodKey)
		}
		return apperrors.NewAppError(500, "failed to insert expense report "+report.ReportID, err)
	}
	return nil
}

const expenseReportColumns = `
	report_id, period_key, from_date, to_date, total_amount, transaction_ids, status,
	paid_at, commission_report_id, created_at, created_by, last_updated_at, last_updated_by
`

func scanExpenseReport(row pgx.Row) (*domain.ExpenseReport, error) {
	var rep domain.ExpenseReport
	err := row.Scan(
		&rep.ReportID,
		&rep.PeriodKey,
		&rep.FromDate,
		&rep.ToDate,
		&rep.TotalAmount,
		&rep.TransactionIDs,
		&rep.Status,
		&rep.PaidAt,
		&rep.CommissionReportID,
		&rep.CreatedAt,
		&rep.CreatedBy,
		&rep.LastUpdatedAt,
		&rep.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// FindExpenseReportsByIDs fetches the named reports.
func (r *PgxReportRepository) FindExpenseReportsByIDs(ctx context.Context, reportIDs []string) ([]domain.ExpenseReport, error) {
	if len(reportIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + expenseReportColumns + ` FROM expense_reports WHERE report_id = ANY($1) ORDER BY period_key;`
	rows, err := r.conn(ctx).Query(ctx, query, reportIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.ExpenseReport
	for rows.Next() {
		rep, err := scanExpenseReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense report row: %w", err)
		}
		reports = append(reports, *rep)
	}
	return reports, rows.Err()
}

// FindExpenseReportByPeriodKey fetches the report for a period, nil when absent.
func (r *PgxReportRepository) FindExpenseReportByPeriodKey(ctx context.Context, periodKey string) (*domain.ExpenseReport, error) {
	query := `SELECT ` + expenseReportColumns + ` FROM expense_reports WHERE period_key = $1;`
	rep, err := scanExpenseReport(r.conn(ctx).QueryRow(ctx, query, periodKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find expense report for period %s: %w", periodKey, err)
	}
	return rep, nil
}

// MarkExpenseReportsPaid flips reports to PAID, stamping paidAt and the
// settling commission report. The transition is one-way.
func (r *PgxReportRepository) MarkExpenseReportsPaid(ctx context.Context, reportIDs []string, commissionReportID *string, userID string, now time.Time) error {
	if len(reportIDs) == 0 {
		return nil
	}
	query := `
		UPDATE expense_reports
		SET status = $2, paid_at = $3, commission_report_id = COALESCE($4, commission_report_id),
		    last_updated_at = $5, last_updated_by = $6
		WHERE report_id = ANY($1) AND status = $7;
	`
	ct, err := r.conn(ctx).Exec(ctx, query, reportIDs, domain.ExpensePaid, now, commissionReportID, now, userID, domain.ExpenseCalculated)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark expense reports paid", err)
	}
	if int(ct.RowsAffected()) != len(reportIDs) {
		return fmt.Errorf("%w: expense report not in CALCULATED status", apperrors.ErrValidation)
	}
	return nil
}

// SaveCommissionReport inserts one commission report; a period-key collision
// maps to ErrDuplicate.
func (r *PgxReportRepository) SaveCommissionReport(ctx context.Context, report domain.CommissionReport) error {
	query := `
		INSERT INTO commission_reports (
			report_id, period_key, from_date, to_date, commission_amount, expense_amount, net_result,
			result_type, status, settled_at, transaction_ids, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.conn(ctx).Exec(ctx, query,
		report.ReportID,
		report.PeriodKey,
		report.FromDate,
		report.ToDate,
		report.CommissionAmount,
		report.ExpenseAmount,
		report.NetResult,
		report.ResultType,
		report.Status,
		report.SettledAt,
		report.TransactionIDs,
		report.CreatedAt,
		report.CreatedBy,
		report.LastUpdatedAt,
		report.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: commission report period %s", apperrors.ErrDuplicate, report.PeriodKey)
		}
		return apperrors.NewAppError(500, "failed to insert commission report "+report.ReportID, err)
	}
	return nil
}

// FindCommissionReportByPeriodKey fetches the report for a period, nil when absent.
func (r *PgxReportRepository) FindCommissionReportByPeriodKey(ctx context.Context, periodKey string) (*domain.CommissionReport, error) {
	query := `
		SELECT report_id, period_key, from_date, to_date, commission_amount, expense_amount, net_result,
		       result_type, status, settled_at, transaction_ids, created_at, created_by, last_updated_at, last_updated_by
		FROM commission_reports
		WHERE period_key = $1;
	`
	var rep domain.CommissionReport
	err := r.conn(ctx).QueryRow(ctx, query, periodKey).Scan(
		&rep.ReportID,
		&rep.PeriodKey,
		&rep.FromDate,
		&rep.ToDate,
		&rep.CommissionAmount,
		&rep.ExpenseAmount,
		&rep.NetResult,
		&rep.ResultType,
		&rep.Status,
		&rep.SettledAt,
		&rep.TransactionIDs,
		&rep.CreatedAt,
		&rep.CreatedBy,
		&rep.LastUpdatedAt,
		&rep.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find commission report for period %s: %w", periodKey, err)
	}
	return &rep, nil
}
