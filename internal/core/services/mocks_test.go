package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portsrepo "github.com/crestpeak/hrfin_backend/internal/core/ports/repositories"
	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/dto"
	"github.com/crestpeak/hrfin_backend/internal/registry"
)

// --- Mock RuleRepository ---

type MockRuleRepository struct {
	mock.Mock
}

var _ portsrepo.RuleRepositoryFacade = (*MockRuleRepository)(nil)

func (m *MockRuleRepository) FindRulesByTransactionType(ctx context.Context, transactionType string) ([]domain.Rule, error) {
	args := m.Called(ctx, transactionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rule), args.Error(1)
}

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Summary), args.Error(1)
}

func (m *MockAccountRepository) ListFieldLineDefinitions(ctx context.Context) ([]domain.FieldLineDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FieldLineDefinition), args.Error(1)
}

func (m *MockAccountRepository) ListFieldLineInstances(ctx context.Context) ([]domain.FieldLineInstance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FieldLineInstance), args.Error(1)
}

func (m *MockAccountRepository) LockAccounts(ctx context.Context, summaryIDs []int64, instanceIDs []int64) error {
	args := m.Called(ctx, summaryIDs, instanceIDs)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyBalanceDeltas(ctx context.Context, summaryDeltas map[int64]decimal.Decimal, instanceDeltas map[int64]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, summaryDeltas, instanceDeltas, userID, now)
	return args.Error(0)
}

// --- Mock LedgerRepository ---

type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) FindEligibleForSettlement(ctx context.Context, fromDate, toDate time.Time) ([]domain.Transaction, error) {
	args := m.Called(ctx, fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) LockForSettlement(ctx context.Context, transactionIDs []string, periodKey string, reportID string, userID string, now time.Time) error {
	args := m.Called(ctx, transactionIDs, periodKey, reportID, userID, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindExpenseTransactions(ctx context.Context, fromDate, toDate time.Time, unclearedOnly bool) ([]domain.Transaction, error) {
	args := m.Called(ctx, fromDate, toDate, unclearedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) AttachExpenseDetails(ctx context.Context, transactionID string, userID string, now time.Time) error {
	args := m.Called(ctx, transactionID, userID, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) MarkExpenseCleared(ctx context.Context, transactionIDs []string, userID string, now time.Time) error {
	args := m.Called(ctx, transactionIDs, userID, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) MarkExpensePaid(ctx context.Context, transactionIDs []string, paidBy string, userID string, now time.Time) error {
	args := m.Called(ctx, transactionIDs, paidBy, userID, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindReturnWindowExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLedgerRepository) MarkReadyForRetainedEarning(ctx context.Context, transactionIDs []string, now time.Time) error {
	args := m.Called(ctx, transactionIDs, now)
	return args.Error(0)
}

// --- Mock ReportRepository ---

type MockReportRepository struct {
	mock.Mock
}

var _ portsrepo.ReportRepositoryFacade = (*MockReportRepository)(nil)

func (m *MockReportRepository) SaveExpenseReport(ctx context.Context, report domain.ExpenseReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) FindExpenseReportsByIDs(ctx context.Context, reportIDs []string) ([]domain.ExpenseReport, error) {
	args := m.Called(ctx, reportIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExpenseReport), args.Error(1)
}

func (m *MockReportRepository) FindExpenseReportByPeriodKey(ctx context.Context, periodKey string) (*domain.ExpenseReport, error) {
	args := m.Called(ctx, periodKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseReport), args.Error(1)
}

func (m *MockReportRepository) MarkExpenseReportsPaid(ctx context.Context, reportIDs []string, commissionReportID *string, userID string, now time.Time) error {
	args := m.Called(ctx, reportIDs, commissionReportID, userID, now)
	return args.Error(0)
}

func (m *MockReportRepository) SaveCommissionReport(ctx context.Context, report domain.CommissionReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) FindCommissionReportByPeriodKey(ctx context.Context, periodKey string) (*domain.CommissionReport, error) {
	args := m.Called(ctx, periodKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionReport), args.Error(1)
}

// --- Mock RuleEngine ---

type MockRuleEngine struct {
	mock.Mock
}

var _ portssvc.RuleEngineSvcFacade = (*MockRuleEngine)(nil)

func (m *MockRuleEngine) Expand(ctx context.Context, transactionType string, baseAmount decimal.Decimal) ([]domain.Line, []domain.SplitSkip, error) {
	args := m.Called(ctx, transactionType, baseAmount)
	var lines []domain.Line
	if args.Get(0) != nil {
		lines = args.Get(0).([]domain.Line)
	}
	var skips []domain.SplitSkip
	if args.Get(1) != nil {
		skips = args.Get(1).([]domain.SplitSkip)
	}
	return lines, skips, args.Error(2)
}

// --- Mock PostingService ---

type MockPostingService struct {
	mock.Mock
}

var _ portssvc.PostingSvcFacade = (*MockPostingService)(nil)

func (m *MockPostingService) Post(ctx context.Context, transactionType string, lines []domain.Line, description string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionType, lines, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockPostingService) ExpandAndPost(ctx context.Context, req dto.ExpandAndPostRequest) (*dto.ExpandAndPostResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ExpandAndPostResponse), args.Error(1)
}

func (m *MockPostingService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// --- Mock EmployeeDirectory ---

type MockEmployeeDirectory struct {
	mock.Mock
}

var _ portssvc.EmployeeDirectory = (*MockEmployeeDirectory)(nil)

func (m *MockEmployeeDirectory) LookupApprover(ctx context.Context, employeeID string) (string, error) {
	args := m.Called(ctx, employeeID)
	return args.String(0), args.Error(1)
}

// --- Mock StatementDelivery ---

type MockStatementDelivery struct {
	mock.Mock
}

var _ portssvc.StatementDelivery = (*MockStatementDelivery)(nil)

func (m *MockStatementDelivery) Deliver(ctx context.Context, report domain.CommissionReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

// stubTxManager runs the function directly, standing in for a real atomic
// scope in unit tests.
type stubTxManager struct{}

var _ portsrepo.TxManager = (*stubTxManager)(nil)

func (stubTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// newTestRegistry builds an account registry over fixed graph data.
func newTestRegistry(summaries []domain.Summary, definitions []domain.FieldLineDefinition, instances []domain.FieldLineInstance) *registry.AccountRegistry {
	repo := new(MockAccountRepository)
	repo.On("ListSummaries", mock.Anything).Return(summaries, nil)
	repo.On("ListFieldLineDefinitions", mock.Anything).Return(definitions, nil)
	repo.On("ListFieldLineInstances", mock.Anything).Return(instances, nil)
	reg, err := registry.Load(context.Background(), repo)
	if err != nil {
		panic(err)
	}
	return reg
}

func int64Ptr(v int64) *int64 {
	return &v
}

func expandAndPostReq(transactionType string, baseAmount int64) dto.ExpandAndPostRequest {
	return dto.ExpandAndPostRequest{
		TransactionType: transactionType,
		BaseAmount:      decimal.NewFromInt(baseAmount),
		Description:     transactionType + " posting",
	}
}
