package accounting

import (
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RoundCurrency rounds an amount to 2 decimal places, the precision every
// persisted balance and line amount carries.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// SignedDelta converts a line into the balance delta applied to its target
// account: debits increase, every other side decreases.
func SignedDelta(line domain.Line) decimal.Decimal {
	if line.Side == domain.Debit {
		return line.Amount
	}
	return line.Amount.Neg()
}

// SumSignedDeltas totals the signed deltas of a set of lines. A balanced
// posting sums to zero.
func SumSignedDeltas(lines []domain.Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(SignedDelta(l))
	}
	return sum
}
