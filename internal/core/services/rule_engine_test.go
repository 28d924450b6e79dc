package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/core/services"
)

type RuleEngineTestSuite struct {
	suite.Suite
	mockRuleRepo *MockRuleRepository
	engine       portssvc.RuleEngineSvcFacade
}

func (suite *RuleEngineTestSuite) SetupTest() {
	suite.mockRuleRepo = new(MockRuleRepository)

	reg := newTestRegistry(
		[]domain.Summary{
			{SummaryID: 1, Code: "CASH", Name: "Cash", AccountType: domain.Asset},
			{SummaryID: 2, Code: "COMM_INCOME", Name: "Commission Income", AccountType: domain.Income},
			{SummaryID: 3, Code: "TRACKING", Name: "Tracking", AccountType: domain.Equity},
		},
		[]domain.FieldLineDefinition{
			{DefinitionID: 10, Name: "salary"},
		},
		[]domain.FieldLineInstance{
			{InstanceID: 100, DefinitionID: 10, SummaryID: 2},
		},
	)
	suite.engine = services.NewRuleEngineService(suite.mockRuleRepo, reg)
}

func (suite *RuleEngineTestSuite) TestExpand_NoRules() {
	ctx := context.Background()
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "unknownType").Return([]domain.Rule{}, nil).Once()

	_, _, err := suite.engine.Expand(ctx, "unknownType", decimal.NewFromInt(100))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNoRulesFound)
	suite.mockRuleRepo.AssertExpectations(suite.T())
}

func (suite *RuleEngineTestSuite) TestExpand_PercentageSplit() {
	ctx := context.Background()
	rule := domain.Rule{
		RuleID:          "rule-1",
		TransactionType: "commission",
		Mode:            domain.ModePercentage,
		Splits: []domain.Split{
			{Field: "cash", SummaryID: int64Ptr(1), Percentage: decimal.NewFromInt(60), Side: domain.Debit},
			{Field: "commissionRevenue", SummaryID: int64Ptr(2), Percentage: decimal.NewFromInt(40), Side: domain.Credit},
		},
	}
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "commission").Return([]domain.Rule{rule}, nil).Once()

	lines, skips, err := suite.engine.Expand(ctx, "commission", decimal.NewFromInt(200))

	suite.Require().NoError(err)
	suite.Empty(skips)
	suite.Require().Len(lines, 2)
	suite.True(lines[0].Amount.Equal(decimal.NewFromInt(120)), "got %s", lines[0].Amount)
	suite.True(lines[1].Amount.Equal(decimal.NewFromInt(80)), "got %s", lines[1].Amount)
}

func (suite *RuleEngineTestSuite) TestExpand_HalfSplitRoundsStably() {
	ctx := context.Background()
	rule := domain.Rule{
		RuleID:          "rule-5050",
		TransactionType: "commission",
		Mode:            domain.ModePercentage,
		Splits: []domain.Split{
			{Field: "a", SummaryID: int64Ptr(1), Percentage: decimal.NewFromInt(50), Side: domain.Debit},
			{Field: "b", SummaryID: int64Ptr(2), Percentage: decimal.NewFromInt(50), Side: domain.Credit},
		},
	}
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "commission").Return([]domain.Rule{rule}, nil).Once()

	lines, _, err := suite.engine.Expand(ctx, "commission", decimal.NewFromFloat(100.01))

	suite.Require().NoError(err)
	suite.Require().Len(lines, 2)
	// Both halves round to the same value; the document stays symmetric.
	suite.True(lines[0].Amount.Equal(lines[1].Amount))
	suite.True(lines[0].Amount.Equal(decimal.NewFromFloat(50.01)), "got %s", lines[0].Amount)
}

func (suite *RuleEngineTestSuite) TestExpand_ImplicitFullPercentage() {
	ctx := context.Background()
	// No split declares a percentage; each takes the full base.
	rule := domain.Rule{
		RuleID:          "rule-implicit",
		TransactionType: "deposit",
		Mode:            domain.ModePercentage,
		Splits: []domain.Split{
			{Field: "cash", SummaryID: int64Ptr(1), Side: domain.Debit},
			{Field: "capital", SummaryID: int64Ptr(2), Side: domain.Credit},
		},
	}
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "deposit").Return([]domain.Rule{rule}, nil).Once()

	lines, skips, err := suite.engine.Expand(ctx, "deposit", decimal.NewFromInt(250))

	suite.Require().NoError(err)
	suite.Empty(skips)
	suite.Require().Len(lines, 2)
	suite.True(lines[0].Amount.Equal(decimal.NewFromInt(250)))
	suite.True(lines[1].Amount.Equal(decimal.NewFromInt(250)))
}

func (suite *RuleEngineTestSuite) TestExpand_MirrorCarriesParentAmount() {
	ctx := context.Background()
	rule := domain.Rule{
		RuleID:          "rule-mirror",
		TransactionType: "commission",
		Mode:            domain.ModePercentage,
		Splits: []domain.Split{
			{
				Field:      "commissionRevenue",
				SummaryID:  int64Ptr(2),
				Percentage: decimal.NewFromInt(100),
				Side:       domain.Credit,
				Mirrors: []domain.Mirror{
					{Field: "revenueTracking", SummaryID: int64Ptr(3), Side: domain.None},
				},
			},
		},
	}
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "commission").Return([]domain.Rule{rule}, nil).Once()

	lines, _, err := suite.engine.Expand(ctx, "commission", decimal.NewFromFloat(33.33))

	suite.Require().NoError(err)
	suite.Require().Len(lines, 2)
	suite.True(lines[1].Amount.Equal(lines[0].Amount), "mirror must carry the parent's computed amount")
	suite.Equal(domain.None, lines[1].Side)
	suite.Equal(int64(3), lines[1].SummaryID)
}

func (suite *RuleEngineTestSuite) TestExpand_ZeroAmountSkipped() {
	ctx := context.Background()
	rule := domain.Rule{
		RuleID:          "rule-zero",
		TransactionType: "commission",
		Mode:            domain.ModePercentage,
		Splits: []domain.Split{
			{Field: "cash", SummaryID: int64Ptr(1), Percentage: decimal.NewFromInt(100), Side: domain.Debit},
			{Field: "nothing", SummaryID: int64Ptr(2), Percentage: decimal.Zero, Side: domain.Credit},
		},
	}
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "commission").Return([]domain.Rule{rule}, nil).Once()

	lines, skips, err := suite.engine.Expand(ctx, "commission", decimal.NewFromInt(100))

	suite.Require().NoError(err)
	suite.Require().Len(lines, 1)
	suite.Require().Len(skips, 1)
	suite.Equal("nothing", skips[0].Field)
	suite.Equal(domain.SkipZeroAmount, skips[0].Reason)
}

func (suite *RuleEngineTestSuite) TestExpand_UnresolvedReferenceSkipped() {
	ctx := context.Background()
	rule := domain.Rule{
		RuleID:          "rule-dangling",
		TransactionType: "commission",
		Mode:            domain.ModePercentage,
		Splits: []domain.Split{
			{Field: "cash", SummaryID: int64Ptr(1), Percentage: decimal.NewFromInt(50), Side: domain.Debit},
			{Field: "ghost", SummaryID: int64Ptr(999), Percentage: decimal.NewFromInt(50), Side: domain.Credit},
		},
	}
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "commission").Return([]domain.Rule{rule}, nil).Once()

	lines, skips, err := suite.engine.Expand(ctx, "commission", decimal.NewFromInt(100))

	suite.Require().NoError(err)
	suite.Require().Len(lines, 1)
	suite.Require().Len(skips, 1)
	suite.Equal("ghost", skips[0].Field)
	suite.Equal(domain.SkipUnresolvedReference, skips[0].Reason)
}

func (suite *RuleEngineTestSuite) TestExpand_ReflectionLinesStillPost() {
	ctx := context.Background()
	rule := domain.Rule{
		RuleID:          "rule-reflection",
		TransactionType: "commission",
		Mode:            domain.ModePercentage,
		Splits: []domain.Split{
			{Field: "cash", SummaryID: int64Ptr(1), Percentage: decimal.NewFromInt(100), Side: domain.Debit, Reflection: true},
		},
	}
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "commission").Return([]domain.Rule{rule}, nil).Once()

	lines, _, err := suite.engine.Expand(ctx, "commission", decimal.NewFromInt(75))

	suite.Require().NoError(err)
	suite.Require().Len(lines, 1)
	suite.True(lines[0].Reflection)
	suite.True(lines[0].Amount.Equal(decimal.NewFromInt(75)))
}

func (suite *RuleEngineTestSuite) TestExpand_InstanceReferenceResolvesOwningSummary() {
	ctx := context.Background()
	rule := domain.Rule{
		RuleID:          "rule-instance",
		TransactionType: "salary",
		Mode:            domain.ModePercentage,
		Splits: []domain.Split{
			{Field: "salary", InstanceID: int64Ptr(100), Percentage: decimal.NewFromInt(100), Side: domain.Debit},
		},
	}
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "salary").Return([]domain.Rule{rule}, nil).Once()

	lines, _, err := suite.engine.Expand(ctx, "salary", decimal.NewFromInt(500))

	suite.Require().NoError(err)
	suite.Require().Len(lines, 1)
	suite.Equal(int64(2), lines[0].SummaryID, "instance reference must resolve to the owning summary")
	suite.Require().NotNil(lines[0].InstanceID)
	suite.Equal(int64(100), *lines[0].InstanceID)
}

func (suite *RuleEngineTestSuite) TestExpand_FixedMode() {
	ctx := context.Background()
	rule := domain.Rule{
		RuleID:          "rule-fixed",
		TransactionType: "fee",
		Mode:            domain.ModeFixed,
		Splits: []domain.Split{
			{Field: "fee", SummaryID: int64Ptr(1), FixedAmount: decimal.NewFromFloat(12.50), Side: domain.Debit},
		},
	}
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "fee").Return([]domain.Rule{rule}, nil).Once()

	lines, _, err := suite.engine.Expand(ctx, "fee", decimal.NewFromInt(9999))

	suite.Require().NoError(err)
	suite.Require().Len(lines, 1)
	suite.True(lines[0].Amount.Equal(decimal.NewFromFloat(12.50)), "fixed mode ignores the base amount")
}

func (suite *RuleEngineTestSuite) TestExpand_RepositoryError() {
	ctx := context.Background()
	repoErr := assert.AnError
	suite.mockRuleRepo.On("FindRulesByTransactionType", ctx, "commission").Return(nil, repoErr).Once()

	_, _, err := suite.engine.Expand(ctx, "commission", decimal.NewFromInt(1))

	suite.Require().Error(err)
	suite.ErrorIs(err, repoErr)
}

func TestRuleEngineTestSuite(t *testing.T) {
	suite.Run(t, new(RuleEngineTestSuite))
}
