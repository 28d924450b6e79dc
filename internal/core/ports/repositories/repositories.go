// Package repositories declares the persistence facades the core services
// depend on. Implementations live under internal/repositories/database.
package repositories

import (
	"context"
	"time"

	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TxManager runs a function inside one atomic storage scope. Every write the
// function performs through repository facades joins the same scope; either
// all of them commit together or none do. A storage-level write conflict
// surfaces as apperrors.ErrTransientConflict after the scope is aborted.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RuleRepositoryFacade reads the declarative split rules.
type RuleRepositoryFacade interface {
	// FindRulesByTransactionType returns all rules tagged with the given
	// transaction type, in stored order. An empty result is not an error.
	FindRulesByTransactionType(ctx context.Context, transactionType string) ([]domain.Rule, error)
}

// AccountRepositoryFacade reads the account graph and applies balance deltas.
type AccountRepositoryFacade interface {
	ListSummaries(ctx context.Context) ([]domain.Summary, error)
	ListFieldLineDefinitions(ctx context.Context) ([]domain.FieldLineDefinition, error)
	ListFieldLineInstances(ctx context.Context) ([]domain.FieldLineInstance, error)

	// LockAccounts acquires row locks on the given summaries and instances.
	// Must be called inside an atomic scope, before ApplyBalanceDeltas.
	LockAccounts(ctx context.Context, summaryIDs []int64, instanceIDs []int64) error

	// ApplyBalanceDeltas increments summary ending balances and instance
	// balances by the given signed deltas.
	ApplyBalanceDeltas(ctx context.Context, summaryDeltas map[int64]decimal.Decimal, instanceDeltas map[int64]decimal.Decimal, userID string, now time.Time) error
}

// LedgerRepositoryFacade persists transactions and drives their settlement
// bookkeeping flags.
type LedgerRepositoryFacade interface {
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindEligibleForSettlement selects transactions with
	// readyForRetainedEarning=true and retainedLocked=false inside the range.
	FindEligibleForSettlement(ctx context.Context, fromDate, toDate time.Time) ([]domain.Transaction, error)

	// LockForSettlement stamps retainedLocked, the period key and the report
	// id on the given transactions, permanently excluding them from future
	// period selections.
	LockForSettlement(ctx context.Context, transactionIDs []string, periodKey string, reportID string, userID string, now time.Time) error

	// FindExpenseTransactions selects expense-carrying transactions in the
	// range; unclearedOnly restricts to expenseDetails.isCleared=false.
	FindExpenseTransactions(ctx context.Context, fromDate, toDate time.Time, unclearedOnly bool) ([]domain.Transaction, error)

	// AttachExpenseDetails stamps fresh (uncleared, unpaid) expense details
	// on a just-posted transaction.
	AttachExpenseDetails(ctx context.Context, transactionID string, userID string, now time.Time) error

	MarkExpenseCleared(ctx context.Context, transactionIDs []string, userID string, now time.Time) error
	MarkExpensePaid(ctx context.Context, transactionIDs []string, paidBy string, userID string, now time.Time) error

	// FindReturnWindowExpired selects ids of transactions whose return window
	// has passed but whose readiness flag is still unset, capped at limit.
	FindReturnWindowExpired(ctx context.Context, now time.Time, limit int) ([]string, error)
	MarkReadyForRetainedEarning(ctx context.Context, transactionIDs []string, now time.Time) error
}

// ReportRepositoryFacade persists expense and commission reports.
type ReportRepositoryFacade interface {
	SaveExpenseReport(ctx context.Context, report domain.ExpenseReport) error
	FindExpenseReportsByIDs(ctx context.Context, reportIDs []string) ([]domain.ExpenseReport, error)
	FindExpenseReportByPeriodKey(ctx context.Context, periodKey string) (*domain.ExpenseReport, error)

	// MarkExpenseReportsPaid flips the given reports to PAID, stamping paidAt
	// and the settling commission report when present.
	MarkExpenseReportsPaid(ctx context.Context, reportIDs []string, commissionReportID *string, userID string, now time.Time) error

	SaveCommissionReport(ctx context.Context, report domain.CommissionReport) error
	FindCommissionReportByPeriodKey(ctx context.Context, periodKey string) (*domain.CommissionReport, error)
}

// Container bundles every repository facade plus the transaction manager for
// injection into services.
type Container struct {
	Tx       TxManager
	Rules    RuleRepositoryFacade
	Accounts AccountRepositoryFacade
	Ledger   LedgerRepositoryFacade
	Reports  ReportRepositoryFacade
}
