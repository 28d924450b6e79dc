package domain

import (
	"github.com/shopspring/decimal"
)

// Order carries the inputs to a one-shot breakup derivation. ActualAmounts
// supplies per-field overrides for splits flagged UseActualAmount.
type Order struct {
	OrderID       string                     `json:"orderID"`
	OrderType     string                     `json:"orderType"`
	Amount        decimal.Decimal            `json:"amount"`
	BuyerID       string                     `json:"buyerID"`
	SellerID      string                     `json:"sellerID"`
	ActualAmounts map[string]decimal.Decimal `json:"actualAmounts"`
}

// BreakupLine is one computed entry of an order breakup.
type BreakupLine struct {
	Field    string          `json:"field"`
	Category SplitCategory   `json:"category"`
	Side     EntrySide       `json:"side"`
	Amount   decimal.Decimal `json:"amount"`
}

// OrderBreakup is the parent split of an order amount. Seller and buyer
// sub-views are categorical filters over these lines; they never recompute
// amounts.
type OrderBreakup struct {
	OrderID   string          `json:"orderID"`
	OrderType string          `json:"orderType"`
	Amount    decimal.Decimal `json:"amount"`
	Lines     []BreakupLine   `json:"lines"`
}

// FilterByCategory returns the subset of lines tagged with the given category.
func (b OrderBreakup) FilterByCategory(category SplitCategory) []BreakupLine {
	filtered := make([]BreakupLine, 0, len(b.Lines))
	for _, l := range b.Lines {
		if l.Category == category {
			filtered = append(filtered, l)
		}
	}
	return filtered
}
