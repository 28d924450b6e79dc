package dto

import (
	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DeriveOrderBreakupRequest triggers a one-shot breakup of an order amount.
type DeriveOrderBreakupRequest struct {
	OrderID       string                     `json:"orderID" binding:"required"`
	OrderType     string                     `json:"orderType" binding:"required"`
	OrderAmount   decimal.Decimal            `json:"orderAmount" binding:"required"`
	BuyerID       string                     `json:"buyerID"`
	SellerID      string                     `json:"sellerID"`
	ActualAmounts map[string]decimal.Decimal `json:"actualAmounts"`
}

// BreakupView is one categorical view over the parent breakup's lines.
type BreakupView struct {
	PartyID string               `json:"partyID,omitempty"`
	Lines   []domain.BreakupLine `json:"lines"`
	Total   decimal.Decimal      `json:"total"`
}

// DeriveOrderBreakupResponse returns the parent breakup plus seller/buyer
// views when the corresponding party ids were supplied.
type DeriveOrderBreakupResponse struct {
	ParentBreakup domain.OrderBreakup `json:"parentBreakup"`
	SellerBreakup *BreakupView        `json:"sellerBreakup,omitempty"`
	BuyerBreakup  *BreakupView        `json:"buyerBreakup,omitempty"`
}
