package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	"github.com/crestpeak/hrfin_backend/internal/utils/accounting"
)

func TestRoundCurrency(t *testing.T) {
	assert.True(t, accounting.RoundCurrency(decimal.NewFromFloat(10.005)).Equal(decimal.NewFromFloat(10.01)))
	assert.True(t, accounting.RoundCurrency(decimal.NewFromFloat(10.004)).Equal(decimal.NewFromFloat(10.00)))
}

func TestSignedDelta(t *testing.T) {
	debit := domain.Line{Side: domain.Debit, Amount: decimal.NewFromInt(50)}
	credit := domain.Line{Side: domain.Credit, Amount: decimal.NewFromInt(50)}
	tracking := domain.Line{Side: domain.None, Amount: decimal.NewFromInt(50)}

	assert.True(t, accounting.SignedDelta(debit).Equal(decimal.NewFromInt(50)))
	assert.True(t, accounting.SignedDelta(credit).Equal(decimal.NewFromInt(-50)))
	assert.True(t, accounting.SignedDelta(tracking).Equal(decimal.NewFromInt(-50)))
}

func TestSumSignedDeltas_BalancedPostingIsZero(t *testing.T) {
	lines := []domain.Line{
		{Side: domain.Debit, Amount: decimal.NewFromInt(75)},
		{Side: domain.Debit, Amount: decimal.NewFromInt(25)},
		{Side: domain.Credit, Amount: decimal.NewFromInt(100)},
	}
	assert.True(t, accounting.SumSignedDeltas(lines).IsZero())
}
