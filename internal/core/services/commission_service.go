package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/dto"
	"github.com/crestpeak/hrfin_backend/internal/middleware"
)

// Transaction types of the settlement postings driven by a period close.
const (
	TxTypeRevenueToIncome = "commissionRevenueToIncome"
	TxTypeIncomeToCapital = "incomeToCapital"
	TxTypeLossAbsorption  = "capitalToLossAbsorption"
)

// FieldCommissionRevenue tags the credit lines summed into a period's
// commission amount.
const FieldCommissionRevenue = "commissionRevenue"

// commissionService closes commission periods: open period -> evaluated -> settled.
type commissionService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	reportRepo portsrepo.ReportRepositoryFacade
	posting    portssvc.PostingSvcFacade
	txManager  portsrepo.TxManager
	statements portssvc.StatementDelivery // Optional
}

// NewCommissionService creates a new commission settlement service.
// statements may be nil; statement delivery is best-effort.
func NewCommissionService(ledgerRepo portsrepo.LedgerRepositoryFacade, reportRepo portsrepo.ReportRepositoryFacade, posting portssvc.PostingSvcFacade, txManager portsrepo.TxManager, statements portssvc.StatementDelivery) portssvc.CommissionSvcFacade {
	return &commissionService{
		ledgerRepo: ledgerRepo,
		reportRepo: reportRepo,
		posting:    posting,
		txManager:  txManager,
		statements: statements,
	}
}

var _ portssvc.CommissionSvcFacade = (*commissionService)(nil)

// PeriodKey derives the settlement period key from a date range.
func PeriodKey(fromDate, toDate time.Time) string {
	return fromDate.Format("2006-01-02") + "_" + toDate.Format("2006-01-02")
}

// ClosePeriod runs the whole close inside one atomic scope: selection,
// evaluation, the capital gate, report creation, transaction locking,
// expense report payment and the settlement postings. Any failure aborts
// every mutation.
func (s *commissionService) ClosePeriod(ctx context.Context, req dto.CloseCommissionPeriodRequest) (*dto.CloseCommissionPeriodResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	periodKey := PeriodKey(req.FromDate, req.ToDate)

	var report domain.CommissionReport
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if existing, err := s.reportRepo.FindCommissionReportByPeriodKey(ctx, periodKey); err != nil {
			return fmt.Errorf("failed to check settlement period: %w", err)
		} else if existing != nil {
			return fmt.Errorf("%w: commission report for period %s", apperrors.ErrDuplicate, periodKey)
		}

		// Selection excludes retainedLocked transactions, so a racing close
		// of an overlapping range fails here instead of double settling.
		eligible, err := s.ledgerRepo.FindEligibleForSettlement(ctx, req.FromDate, req.ToDate)
		if err != nil {
			return fmt.Errorf("failed to select eligible transactions: %w", err)
		}
		if len(eligible) == 0 {
			return fmt.Errorf("%w: %s", apperrors.ErrNoEligibleTransactions, periodKey)
		}

		commissionAmount := sumCommissionRevenue(eligible)

		expenseAmount, expenseReportIDs, expenseTxnIDs, err := s.collectExpenseReports(ctx, req.ExpenseReportIDs)
		if err != nil {
			return err
		}

		netResult := commissionAmount.Sub(expenseAmount)
		resultType := domain.ResultTypeFor(netResult)

		// Human-in-the-loop gate: eroding capital needs explicit sign-off.
		if netResult.Sign() < 0 && !req.ConfirmCapitalUsage {
			return fmt.Errorf("%w: net result %s", apperrors.ErrCapitalConfirmationRequired, netResult.String())
		}

		now := time.Now().UTC()
		transactionIDs := make([]string, len(eligible))
		for i, txn := range eligible {
			transactionIDs[i] = txn.TransactionID
		}

		report = domain.CommissionReport{
			ReportID:         uuid.NewString(),
			PeriodKey:        periodKey,
			FromDate:         req.FromDate,
			ToDate:           req.ToDate,
			CommissionAmount: commissionAmount,
			ExpenseAmount:    expenseAmount,
			NetResult:        netResult,
			ResultType:       resultType,
			Status:           domain.CommissionSettled,
			SettledAt:        &now,
			TransactionIDs:   transactionIDs,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     systemActor,
				LastUpdatedAt: now,
				LastUpdatedBy: systemActor,
			},
		}
		if err := s.reportRepo.SaveCommissionReport(ctx, report); err != nil {
			return fmt.Errorf("failed to save commission report: %w", err)
		}

		if err := s.ledgerRepo.LockForSettlement(ctx, transactionIDs, periodKey, report.ReportID, systemActor, now); err != nil {
			return fmt.Errorf("failed to lock settled transactions: %w", err)
		}

		if len(expenseReportIDs) > 0 {
			if err := s.reportRepo.MarkExpenseReportsPaid(ctx, expenseReportIDs, &report.ReportID, systemActor, now); err != nil {
				return fmt.Errorf("failed to mark expense reports paid: %w", err)
			}
			if err := s.ledgerRepo.MarkExpenseCleared(ctx, expenseTxnIDs, systemActor, now); err != nil {
				return fmt.Errorf("failed to clear expense transactions: %w", err)
			}
		}

		return s.postSettlementEntries(ctx, commissionAmount, netResult, resultType, periodKey)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Commission period settled",
		slog.String("commission_report_id", report.ReportID),
		slog.String("period_key", periodKey),
		slog.String("result_type", string(report.ResultType)),
		slog.Int("locked_transactions", len(report.TransactionIDs)),
	)

	// Statement delivery happens outside the atomic scope and never blocks
	// settlement.
	if s.statements != nil {
		if err := s.statements.Deliver(ctx, report); err != nil {
			logger.Warn("Statement delivery failed", slog.String("commission_report_id", report.ReportID), slog.String("error", err.Error()))
		}
	}

	return &dto.CloseCommissionPeriodResponse{
		CommissionReportID: report.ReportID,
		PeriodKey:          periodKey,
		CommissionAmount:   report.CommissionAmount,
		ExpenseAmount:      report.ExpenseAmount,
		NetResult:          report.NetResult,
		ResultType:         report.ResultType,
		LockedTransactions: len(report.TransactionIDs),
	}, nil
}

// collectExpenseReports validates the named reports and returns their total,
// ids and underlying transaction ids. Only CALCULATED reports participate.
func (s *commissionService) collectExpenseReports(ctx context.Context, reportIDs []string) (decimal.Decimal, []string, []string, error) {
	total := decimal.Zero
	if len(reportIDs) == 0 {
		return total, nil, nil, nil
	}

	reports, err := s.reportRepo.FindExpenseReportsByIDs(ctx, reportIDs)
	if err != nil {
		return total, nil, nil, fmt.Errorf("failed to fetch expense reports: %w", err)
	}
	if len(reports) != len(reportIDs) {
		return total, nil, nil, fmt.Errorf("%w: one or more expense reports missing", apperrors.ErrNotFound)
	}

	ids := make([]string, 0, len(reports))
	var txnIDs []string
	for _, r := range reports {
		if r.Status != domain.ExpenseCalculated {
			return total, nil, nil, fmt.Errorf("%w: expense report %s is %s, expected CALCULATED", apperrors.ErrValidation, r.ReportID, r.Status)
		}
		total = total.Add(r.TotalAmount)
		ids = append(ids, r.ReportID)
		txnIDs = append(txnIDs, r.TransactionIDs...)
	}
	return total, ids, txnIDs, nil
}

// postSettlementEntries drives the rule engine for the close: revenue moves
// to income always, then income to capital on profit, or capital to the
// loss-absorption account on loss.
func (s *commissionService) postSettlementEntries(ctx context.Context, commissionAmount, netResult decimal.Decimal, resultType domain.ResultType, periodKey string) error {
	if commissionAmount.Sign() > 0 {
		if _, err := s.posting.ExpandAndPost(ctx, dto.ExpandAndPostRequest{
			TransactionType: TxTypeRevenueToIncome,
			BaseAmount:      commissionAmount,
			Description:     "Commission revenue settlement " + periodKey,
		}); err != nil {
			return fmt.Errorf("revenue-to-income posting failed: %w", err)
		}
	}

	switch resultType {
	case domain.Profit:
		if _, err := s.posting.ExpandAndPost(ctx, dto.ExpandAndPostRequest{
			TransactionType: TxTypeIncomeToCapital,
			BaseAmount:      netResult,
			Description:     "Profit transfer " + periodKey,
		}); err != nil {
			return fmt.Errorf("income-to-capital posting failed: %w", err)
		}
	case domain.Loss:
		if _, err := s.posting.ExpandAndPost(ctx, dto.ExpandAndPostRequest{
			TransactionType: TxTypeLossAbsorption,
			BaseAmount:      netResult.Abs(),
			Description:     "Loss absorption " + periodKey,
		}); err != nil {
			return fmt.Errorf("loss-absorption posting failed: %w", err)
		}
	}
	return nil
}

// sumCommissionRevenue totals the commission-revenue credit lines across the
// selected transactions.
func sumCommissionRevenue(transactions []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range transactions {
		for _, l := range txn.Lines {
			if l.Side == domain.Credit && l.Field == FieldCommissionRevenue {
				total = total.Add(l.Amount)
			}
		}
	}
	return total
}
