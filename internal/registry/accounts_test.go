package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	"github.com/crestpeak/hrfin_backend/internal/registry"
)

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) ListSummaries(ctx context.Context) ([]domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Summary), args.Error(1)
}

func (m *mockAccountRepo) ListFieldLineDefinitions(ctx context.Context) ([]domain.FieldLineDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FieldLineDefinition), args.Error(1)
}

func (m *mockAccountRepo) ListFieldLineInstances(ctx context.Context) ([]domain.FieldLineInstance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FieldLineInstance), args.Error(1)
}

func (m *mockAccountRepo) LockAccounts(ctx context.Context, summaryIDs []int64, instanceIDs []int64) error {
	args := m.Called(ctx, summaryIDs, instanceIDs)
	return args.Error(0)
}

func (m *mockAccountRepo) ApplyBalanceDeltas(ctx context.Context, summaryDeltas map[int64]decimal.Decimal, instanceDeltas map[int64]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, summaryDeltas, instanceDeltas, userID, now)
	return args.Error(0)
}

func loadedRegistry(t *testing.T) *registry.AccountRegistry {
	repo := new(mockAccountRepo)
	repo.On("ListSummaries", mock.Anything).Return([]domain.Summary{
		{SummaryID: 1, Code: "CASH", Name: "Cash", AccountType: domain.Asset},
		{SummaryID: 2, Code: "CAPITAL", Name: "Capital", AccountType: domain.Equity},
		{SummaryID: 3, Code: "SALARY", Name: "Salary", AccountType: domain.Expense},
	}, nil)
	repo.On("ListFieldLineDefinitions", mock.Anything).Return([]domain.FieldLineDefinition{
		{DefinitionID: 10, Name: "employeeSalary"},
	}, nil)
	repo.On("ListFieldLineInstances", mock.Anything).Return([]domain.FieldLineInstance{
		{InstanceID: 100, DefinitionID: 10, SummaryID: 3},
	}, nil)

	reg, err := registry.Load(context.Background(), repo)
	require.NoError(t, err)
	return reg
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestResolveTarget_SummaryReference(t *testing.T) {
	reg := loadedRegistry(t)

	summaryID, instanceID, ok := reg.ResolveTarget(int64Ptr(1), nil)
	require.True(t, ok)
	assert.Equal(t, int64(1), summaryID)
	assert.Nil(t, instanceID)
}

func TestResolveTarget_InstanceDerivesOwningSummary(t *testing.T) {
	reg := loadedRegistry(t)

	summaryID, instanceID, ok := reg.ResolveTarget(nil, int64Ptr(100))
	require.True(t, ok)
	assert.Equal(t, int64(3), summaryID)
	require.NotNil(t, instanceID)
	assert.Equal(t, int64(100), *instanceID)
}

func TestResolveTarget_InstanceWinsOverSummary(t *testing.T) {
	reg := loadedRegistry(t)

	// A split carrying both references resolves through the instance.
	summaryID, instanceID, ok := reg.ResolveTarget(int64Ptr(1), int64Ptr(100))
	require.True(t, ok)
	assert.Equal(t, int64(3), summaryID)
	require.NotNil(t, instanceID)
}

func TestResolveTarget_Unresolved(t *testing.T) {
	reg := loadedRegistry(t)

	_, _, ok := reg.ResolveTarget(int64Ptr(999), nil)
	assert.False(t, ok)

	_, _, ok = reg.ResolveTarget(nil, int64Ptr(999))
	assert.False(t, ok)

	_, _, ok = reg.ResolveTarget(nil, nil)
	assert.False(t, ok)
}

func TestFundingAccounts(t *testing.T) {
	reg := loadedRegistry(t)

	cash, capital, err := reg.FundingAccounts()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cash.SummaryID)
	assert.Equal(t, int64(2), capital.SummaryID)
}

func TestFundingAccounts_MissingCode(t *testing.T) {
	repo := new(mockAccountRepo)
	repo.On("ListSummaries", mock.Anything).Return([]domain.Summary{
		{SummaryID: 1, Code: "CASH", Name: "Cash"},
	}, nil)
	repo.On("ListFieldLineDefinitions", mock.Anything).Return([]domain.FieldLineDefinition{}, nil)
	repo.On("ListFieldLineInstances", mock.Anything).Return([]domain.FieldLineInstance{}, nil)

	reg, err := registry.Load(context.Background(), repo)
	require.NoError(t, err)

	_, _, err = reg.FundingAccounts()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAccountReference)
}

func TestSummaryByCode(t *testing.T) {
	reg := loadedRegistry(t)

	s, ok := reg.SummaryByCode("CAPITAL")
	require.True(t, ok)
	assert.Equal(t, int64(2), s.SummaryID)

	_, ok = reg.SummaryByCode("NOPE")
	assert.False(t, ok)
}
