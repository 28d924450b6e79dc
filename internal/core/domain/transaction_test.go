package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/crestpeak/hrfin_backend/internal/core/domain"
)

func TestTransactionTotals(t *testing.T) {
	txn := domain.Transaction{
		Lines: []domain.Line{
			{Side: domain.Debit, Amount: decimal.NewFromInt(70)},
			{Side: domain.Debit, Amount: decimal.NewFromInt(30)},
			{Side: domain.Credit, Amount: decimal.NewFromInt(100)},
		},
	}

	assert.True(t, txn.TotalDebits().Equal(decimal.NewFromInt(100)))
	assert.True(t, txn.TotalCredits().Equal(decimal.NewFromInt(100)))
}

func TestResultTypeFor(t *testing.T) {
	assert.Equal(t, domain.Profit, domain.ResultTypeFor(decimal.NewFromInt(1)))
	assert.Equal(t, domain.Loss, domain.ResultTypeFor(decimal.NewFromInt(-1)))
	assert.Equal(t, domain.Breakeven, domain.ResultTypeFor(decimal.Zero))
}

func TestFilterByCategory(t *testing.T) {
	breakup := domain.OrderBreakup{
		Lines: []domain.BreakupLine{
			{Field: "baseRent", Category: domain.CategorySeller},
			{Field: "platformFee", Category: domain.CategoryBuyer},
			{Field: "stampTax", Category: domain.CategoryTax},
		},
	}

	seller := breakup.FilterByCategory(domain.CategorySeller)
	assert.Len(t, seller, 1)
	assert.Equal(t, "baseRent", seller[0].Field)

	assert.Empty(t, breakup.FilterByCategory(domain.CategoryCommon))
}
