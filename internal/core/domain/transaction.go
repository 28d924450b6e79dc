package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is one ledger entry inside a transaction, affecting a summary directly
// or a field-line instance (which then propagates to its owning summary).
type Line struct {
	LineID     string          `json:"lineID"`
	Field      string          `json:"field"`
	SummaryID  int64           `json:"summaryID"`
	InstanceID *int64          `json:"instanceID"` // Nil when posting directly to a summary
	Side       EntrySide       `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
	Reflection bool            `json:"reflection"`
}

// SkipReason explains why the rule engine dropped a split instead of
// producing a line for it.
type SkipReason string

const (
	SkipZeroAmount          SkipReason = "ZERO_AMOUNT"
	SkipUnresolvedReference SkipReason = "UNRESOLVED_REFERENCE"
)

// SplitSkip records one split the engine declined to expand, so callers can
// distinguish an intentional zero from broken configuration.
type SplitSkip struct {
	RuleID string     `json:"ruleID"`
	Field  string     `json:"field"`
	Reason SkipReason `json:"reason"`
}

// ExpenseDetails is present on transactions created by the expense posting
// path and drives the expense settlement workflow.
type ExpenseDetails struct {
	IsCleared bool       `json:"isCleared"`
	PaidBy    string     `json:"paidBy"`
	PaidAt    *time.Time `json:"paidAt"`
}

// Transaction is an immutable posting event. Lines are never edited after
// creation; corrections happen through new, reversing transactions. Only the
// settlement bookkeeping flags (readiness, lock, expense clearing) advance.
type Transaction struct {
	TransactionID   string    `json:"transactionID"`
	TransactionType string    `json:"transactionType"`
	Description     string    `json:"description"`
	Timestamp       time.Time `json:"timestamp"`
	Lines           []Line    `json:"lines"` // Only DEBIT/CREDIT lines are persisted

	ReadyForRetainedEarning bool       `json:"readyForRetainedEarning"`
	RetainedLocked          bool       `json:"retainedLocked"`
	RetainedPeriodKey       *string    `json:"retainedPeriodKey"`
	CommissionReportID      *string    `json:"commissionReportID"`
	ReturnWindowExpiry      *time.Time `json:"returnWindowExpiry"`

	Expense *ExpenseDetails `json:"expense"`
	AuditFields
}

// TotalDebits sums the debit side of the persisted lines.
func (t Transaction) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range t.Lines {
		if l.Side == Debit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// TotalCredits sums the credit side of the persisted lines.
func (t Transaction) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range t.Lines {
		if l.Side == Credit {
			total = total.Add(l.Amount)
		}
	}
	return total
}
