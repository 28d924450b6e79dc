package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/dto"
	"github.com/crestpeak/hrfin_backend/internal/middleware"
	"github.com/crestpeak/hrfin_backend/internal/registry"
	"github.com/crestpeak/hrfin_backend/pkg/retry"
)

// TxTypeExpense is the transaction type expanded by the expense posting path.
const TxTypeExpense = "expense"

// Fields stamped on the synthesized owner-funding pair.
const (
	FieldOwnerFundingCapital = "ownerFundingCapital"
	FieldOwnerFundingCash    = "ownerFundingCash"
)

// defaultRetryBudget bounds the whole-attempt retry loop around an expense
// posting.
const defaultRetryBudget = 5

// expenseService posts expenses with conflict retry and drives the expense
// report cycle.
type expenseService struct {
	ruleRepo    portsrepo.RuleRepositoryFacade
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	reportRepo  portsrepo.ReportRepositoryFacade
	ruleEngine  portssvc.RuleEngineSvcFacade
	posting     portssvc.PostingSvcFacade
	txManager   portsrepo.TxManager
	accounts    *registry.AccountRegistry
	employees   portssvc.EmployeeDirectory
	retryBudget int
}

// NewExpenseService creates a new expense service. retryBudget <= 0 uses the
// default bound of 5 attempts.
func NewExpenseService(
	ruleRepo portsrepo.RuleRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	reportRepo portsrepo.ReportRepositoryFacade,
	ruleEngine portssvc.RuleEngineSvcFacade,
	posting portssvc.PostingSvcFacade,
	txManager portsrepo.TxManager,
	accounts *registry.AccountRegistry,
	employees portssvc.EmployeeDirectory,
	retryBudget int,
) portssvc.ExpenseSvcFacade {
	if retryBudget <= 0 {
		retryBudget = defaultRetryBudget
	}
	return &expenseService{
		ruleRepo:    ruleRepo,
		ledgerRepo:  ledgerRepo,
		reportRepo:  reportRepo,
		ruleEngine:  ruleEngine,
		posting:     posting,
		txManager:   txManager,
		accounts:    accounts,
		employees:   employees,
		retryBudget: retryBudget,
	}
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// PostExpense runs the whole attempt (reference validation + expansion +
// funding guard + posting) under a bounded retry loop. Only transient
// storage conflicts are retried; every retry starts a fresh atomic scope.
func (s *expenseService) PostExpense(ctx context.Context, req dto.PostExpenseRequest) (*dto.PostExpenseResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: expense amount must be positive", apperrors.ErrValidation)
	}

	var resp *dto.PostExpenseResponse
	err := retry.Do(ctx, s.retryBudget, func(ctx context.Context) error {
		// The whole attempt shares one atomic scope; the inner posting joins
		// it rather than opening its own.
		return s.txManager.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.validateRuleReferences(ctx); err != nil {
				return err
			}

			lines, skips, err := s.ruleEngine.Expand(ctx, TxTypeExpense, req.Amount)
			if err != nil {
				return err
			}

			funded, err := s.applyOwnerFunding(lines)
			if err != nil {
				return err
			}

			txn, err := s.posting.Post(ctx, TxTypeExpense, funded, req.Description)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			if err := s.ledgerRepo.AttachExpenseDetails(ctx, txn.TransactionID, systemActor, now); err != nil {
				return fmt.Errorf("failed to attach expense details: %w", err)
			}

			resp = &dto.PostExpenseResponse{
				TransactionID: txn.TransactionID,
				Lines:         dto.ToLineResponses(funded),
				Skips:         dto.ToSkipResponses(skips),
			}
			return nil
		})
	})
	if err != nil {
		logger.Error("Expense posting failed", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Expense posted", slog.String("transaction_id", resp.TransactionID))
	return resp, nil
}

// validateRuleReferences checks that every summary/field-line id referenced
// by the expense rules exists in the account graph.
func (s *expenseService) validateRuleReferences(ctx context.Context) error {
	rules, err := s.ruleRepo.FindRulesByTransactionType(ctx, TxTypeExpense)
	if err != nil {
		return fmt.Errorf("failed to fetch expense rules: %w", err)
	}
	if len(rules) == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrNoRulesFound, TxTypeExpense)
	}
	for _, rule := range rules {
		for _, split := range rule.Splits {
			if _, _, ok := s.accounts.ResolveTarget(split.SummaryID, split.InstanceID); !ok {
				return fmt.Errorf("%w: rule %s field %s", apperrors.ErrInvalidAccountReference, rule.RuleID, split.Field)
			}
			for _, mirror := range split.Mirrors {
				if _, _, ok := s.accounts.ResolveTarget(mirror.SummaryID, mirror.InstanceID); !ok {
					return fmt.Errorf("%w: rule %s mirror %s", apperrors.ErrInvalidAccountReference, rule.RuleID, mirror.Field)
				}
			}
		}
	}
	return nil
}

// applyOwnerFunding enforces the expense imbalance guard: when the debit
// side exceeds the credits, an owner-funding pair (Capital credit, Cash
// debit) covers the residual. A credit surplus cannot be funded and is
// fatal. The funding cash debit does not count toward the expense debits;
// report totals exclude it via expenseDebitTotal.
func (s *expenseService) applyOwnerFunding(lines []domain.Line) ([]domain.Line, error) {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, l := range lines {
		switch l.Side {
		case domain.Debit:
			debits = debits.Add(l.Amount)
		case domain.Credit:
			credits = credits.Add(l.Amount)
		}
	}
	if debits.Equal(credits) {
		return lines, nil
	}

	residual := debits.Sub(credits)
	if residual.Sign() < 0 {
		return nil, fmt.Errorf("%w: credits %s exceed debits %s", apperrors.ErrUnbalancedTransaction, credits.String(), debits.String())
	}

	cash, capital, err := s.accounts.FundingAccounts()
	if err != nil {
		return nil, err
	}
	funded := append(lines,
		domain.Line{
			LineID:    uuid.NewString(),
			Field:     FieldOwnerFundingCapital,
			SummaryID: capital.SummaryID,
			Side:      domain.Credit,
			Amount:    residual,
		},
		domain.Line{
			LineID:    uuid.NewString(),
			Field:     FieldOwnerFundingCash,
			SummaryID: cash.SummaryID,
			Side:      domain.Debit,
			Amount:    residual,
		},
	)
	return funded, nil
}

// expenseDebitTotal sums a transaction's debit lines, excluding the
// synthesized owner-funding cash debit so injected funding never inflates
// expense totals.
func expenseDebitTotal(txn domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, l := range txn.Lines {
		if l.Side == domain.Debit && l.Field != FieldOwnerFundingCash {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// GenerateReport builds an expense report for a cycle id or an explicit set
// of months, summing the uncleared expense transactions of the range.
func (s *expenseService) GenerateReport(ctx context.Context, req dto.GenerateExpenseReportRequest) (*dto.GenerateExpenseReportResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	periodKey, fromDate, toDate, err := expensePeriod(req)
	if err != nil {
		return nil, err
	}

	var resp *dto.GenerateExpenseReportResponse
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if existing, err := s.reportRepo.FindExpenseReportByPeriodKey(ctx, periodKey); err != nil {
			return fmt.Errorf("failed to check period key: %w", err)
		} else if existing != nil {
			return fmt.Errorf("%w: expense report for period %s", apperrors.ErrDuplicate, periodKey)
		}

		transactions, err := s.ledgerRepo.FindExpenseTransactions(ctx, fromDate, toDate, true)
		if err != nil {
			return fmt.Errorf("failed to select expense transactions: %w", err)
		}

		total := decimal.Zero
		transactionIDs := make([]string, len(transactions))
		for i, txn := range transactions {
			transactionIDs[i] = txn.TransactionID
			total = total.Add(expenseDebitTotal(txn))
		}

		now := time.Now().UTC()
		report := domain.ExpenseReport{
			ReportID:       uuid.NewString(),
			PeriodKey:      periodKey,
			FromDate:       fromDate,
			ToDate:         toDate,
			TotalAmount:    total,
			TransactionIDs: transactionIDs,
			Status:         domain.ExpenseCalculated,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     systemActor,
				LastUpdatedAt: now,
				LastUpdatedBy: systemActor,
			},
		}
		if err := s.reportRepo.SaveExpenseReport(ctx, report); err != nil {
			return fmt.Errorf("failed to save expense report: %w", err)
		}

		resp = &dto.GenerateExpenseReportResponse{
			ReportID:         report.ReportID,
			PeriodKey:        periodKey,
			TotalAmount:      total,
			TransactionCount: len(transactions),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Expense report generated",
		slog.String("report_id", resp.ReportID),
		slog.String("period_key", periodKey),
		slog.Int("transactions", resp.TransactionCount),
	)
	return resp, nil
}

// PayPeriod stamps the expense transactions of a period as paid and flips
// the period's report to PAID.
func (s *expenseService) PayPeriod(ctx context.Context, req dto.PayExpensePeriodRequest) (*dto.PayExpensePeriodResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	paidBy, err := s.employees.LookupApprover(ctx, req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paying employee: %w", err)
	}

	var resp *dto.PayExpensePeriodResponse
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		report, err := s.reportRepo.FindExpenseReportByPeriodKey(ctx, req.PeriodKey)
		if err != nil {
			return fmt.Errorf("failed to fetch expense report: %w", err)
		}
		if report == nil {
			return fmt.Errorf("%w: expense report for period %s", apperrors.ErrNotFound, req.PeriodKey)
		}
		if report.Status == domain.ExpensePaid {
			return fmt.Errorf("%w: expense report %s already paid", apperrors.ErrValidation, report.ReportID)
		}

		transactions, err := s.ledgerRepo.FindExpenseTransactions(ctx, req.FromDate, req.ToDate, false)
		if err != nil {
			return fmt.Errorf("failed to select expense transactions: %w", err)
		}
		if len(transactions) == 0 {
			return fmt.Errorf("%w: no expense transactions between %s and %s", apperrors.ErrNoEligibleTransactions, req.FromDate.Format("2006-01-02"), req.ToDate.Format("2006-01-02"))
		}

		now := time.Now().UTC()
		total := decimal.Zero
		transactionIDs := make([]string, len(transactions))
		for i, txn := range transactions {
			transactionIDs[i] = txn.TransactionID
			total = total.Add(expenseDebitTotal(txn))
		}

		if err := s.ledgerRepo.MarkExpensePaid(ctx, transactionIDs, paidBy, systemActor, now); err != nil {
			return fmt.Errorf("failed to mark expense transactions paid: %w", err)
		}
		if err := s.reportRepo.MarkExpenseReportsPaid(ctx, []string{report.ReportID}, nil, systemActor, now); err != nil {
			return fmt.Errorf("failed to mark expense report paid: %w", err)
		}

		resp = &dto.PayExpensePeriodResponse{
			PaidTransactions: len(transactions),
			TotalPaid:        total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Expense period paid",
		slog.String("period_key", req.PeriodKey),
		slog.String("paid_by", paidBy),
		slog.Int("paid_transactions", resp.PaidTransactions),
	)
	return resp, nil
}

// expensePeriod derives (periodKey, fromDate, toDate) from a cycle id or an
// explicit month list.
func expensePeriod(req dto.GenerateExpenseReportRequest) (string, time.Time, time.Time, error) {
	if req.CycleID != "" && len(req.Months) > 0 {
		return "", time.Time{}, time.Time{}, fmt.Errorf("%w: supply either cycleID or months, not both", apperrors.ErrValidation)
	}

	switch {
	case req.CycleID != "":
		// A cycle id is a month key ("2024-01"); the cycle spans that month.
		start, err := time.Parse("2006-01", req.CycleID)
		if err != nil {
			return "", time.Time{}, time.Time{}, fmt.Errorf("%w: invalid cycleID %q", apperrors.ErrValidation, req.CycleID)
		}
		return req.CycleID, start, start.AddDate(0, 1, 0).Add(-time.Nanosecond), nil

	case len(req.Months) > 0:
		months := append([]string(nil), req.Months...)
		sort.Strings(months)
		start, err := time.Parse("2006-01", months[0])
		if err != nil {
			return "", time.Time{}, time.Time{}, fmt.Errorf("%w: invalid month %q", apperrors.ErrValidation, months[0])
		}
		last, err := time.Parse("2006-01", months[len(months)-1])
		if err != nil {
			return "", time.Time{}, time.Time{}, fmt.Errorf("%w: invalid month %q", apperrors.ErrValidation, months[len(months)-1])
		}
		periodKey := months[0]
		if len(months) > 1 {
			periodKey = months[0] + "_" + months[len(months)-1]
		}
		return periodKey, start, last.AddDate(0, 1, 0).Add(-time.Nanosecond), nil

	default:
		return "", time.Time{}, time.Time{}, fmt.Errorf("%w: cycleID or months required", apperrors.ErrValidation)
	}
}
