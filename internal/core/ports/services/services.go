// Package services declares the facades the transport layer depends on.
package services

import (
	"context"

	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	"github.com/crestpeak/hrfin_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// RuleEngineSvcFacade expands a transaction type against the rule store.
type RuleEngineSvcFacade interface {
	// Expand produces the ledger lines for (transactionType, baseAmount)
	// along with any splits it skipped. No rules for the type is
	// apperrors.ErrNoRulesFound.
	Expand(ctx context.Context, transactionType string, baseAmount decimal.Decimal) ([]domain.Line, []domain.SplitSkip, error)
}

// PostingSvcFacade persists posting events and propagates balances.
type PostingSvcFacade interface {
	// Post persists one transaction from pre-computed lines inside a single
	// atomic scope, applying signed balance deltas to every referenced
	// account.
	Post(ctx context.Context, transactionType string, lines []domain.Line, description string) (*domain.Transaction, error)

	// ExpandAndPost composes rule expansion and posting.
	ExpandAndPost(ctx context.Context, req dto.ExpandAndPostRequest) (*dto.ExpandAndPostResponse, error)

	// GetTransaction fetches one posted transaction by id.
	// Missing ids are apperrors.ErrNotFound.
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

// CommissionSvcFacade drives the commission period close state machine.
type CommissionSvcFacade interface {
	ClosePeriod(ctx context.Context, req dto.CloseCommissionPeriodRequest) (*dto.CloseCommissionPeriodResponse, error)
}

// ExpenseSvcFacade drives expense posting and the expense settlement cycle.
type ExpenseSvcFacade interface {
	PostExpense(ctx context.Context, req dto.PostExpenseRequest) (*dto.PostExpenseResponse, error)
	GenerateReport(ctx context.Context, req dto.GenerateExpenseReportRequest) (*dto.GenerateExpenseReportResponse, error)
	PayPeriod(ctx context.Context, req dto.PayExpensePeriodRequest) (*dto.PayExpensePeriodResponse, error)
}

// BreakupSvcFacade derives order breakups.
type BreakupSvcFacade interface {
	Derive(ctx context.Context, req dto.DeriveOrderBreakupRequest) (*dto.DeriveOrderBreakupResponse, error)
}

// EmployeeDirectory resolves employee ids to approver names for paidBy
// stamping. Implemented by an external HR collaborator.
type EmployeeDirectory interface {
	LookupApprover(ctx context.Context, employeeID string) (string, error)
}

// StatementDelivery pushes settlement statements to the external business
// API. Delivery failures must never block settlement.
type StatementDelivery interface {
	Deliver(ctx context.Context, report domain.CommissionReport) error
}

// ServiceContainer bundles the service facades for handler registration.
type ServiceContainer struct {
	Posting    PostingSvcFacade
	Commission CommissionSvcFacade
	Expense    ExpenseSvcFacade
	Breakup    BreakupSvcFacade
}
