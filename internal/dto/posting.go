package dto

import (
	"time"

	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpandAndPostRequest triggers rule expansion and posting for one event.
type ExpandAndPostRequest struct {
	TransactionType string          `json:"transactionType" binding:"required"`
	BaseAmount      decimal.Decimal `json:"baseAmount" binding:"required"`
	Description     string          `json:"description" binding:"required"`
}

// LineResponse is the outward shape of one posted ledger line.
type LineResponse struct {
	Field      string          `json:"field"`
	SummaryID  int64           `json:"summaryID"`
	InstanceID *int64          `json:"instanceID,omitempty"`
	Side       domain.EntrySide `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
	Reflection bool            `json:"reflection,omitempty"`
}

// SkipResponse reports one split the engine declined to expand.
type SkipResponse struct {
	RuleID string `json:"ruleID"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ExpandAndPostResponse returns the created transaction and expansion detail.
type ExpandAndPostResponse struct {
	TransactionID string         `json:"transactionID"`
	Lines         []LineResponse `json:"lines"`
	Skips         []SkipResponse `json:"skips,omitempty"`
}

// TransactionResponse is the outward shape of one posted transaction.
type TransactionResponse struct {
	TransactionID   string         `json:"transactionID"`
	TransactionType string         `json:"transactionType"`
	Description     string         `json:"description"`
	Timestamp       time.Time      `json:"timestamp"`
	Lines           []LineResponse `json:"lines"`
}

// ToTransactionResponse maps a domain transaction to its response shape.
func ToTransactionResponse(txn domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		TransactionType: txn.TransactionType,
		Description:     txn.Description,
		Timestamp:       txn.Timestamp,
		Lines:           ToLineResponses(txn.Lines),
	}
}

// ToLineResponses maps domain lines to their response shape.
func ToLineResponses(lines []domain.Line) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i, l := range lines {
		out[i] = LineResponse{
			Field:      l.Field,
			SummaryID:  l.SummaryID,
			InstanceID: l.InstanceID,
			Side:       l.Side,
			Amount:     l.Amount,
			Reflection: l.Reflection,
		}
	}
	return out
}

// ToSkipResponses maps split skips to their response shape.
func ToSkipResponses(skips []domain.SplitSkip) []SkipResponse {
	out := make([]SkipResponse, len(skips))
	for i, s := range skips {
		out[i] = SkipResponse{RuleID: s.RuleID, Field: s.Field, Reason: string(s.Reason)}
	}
	return out
}
