package domain

import (
	"github.com/shopspring/decimal"
)

// EntrySide indicates whether a ledger line debits, credits, or merely tracks
// an account. NONE-side lines affect balances but are never persisted on the
// transaction document.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
	None   EntrySide = "NONE"
)

// IncrementMode controls how a rule's splits derive their amounts from the
// base amount.
type IncrementMode string

const (
	ModeFixed      IncrementMode = "FIXED"
	ModePercentage IncrementMode = "PERCENTAGE"
	ModeBoth       IncrementMode = "BOTH"
)

// SplitCategory tags a split for downstream filtering. Seller/buyer views of
// an order breakup are pure category filters; tax-category splits are the
// only ones subject to slab matching.
type SplitCategory string

const (
	CategoryCommon SplitCategory = "COMMON"
	CategorySeller SplitCategory = "SELLER"
	CategoryBuyer  SplitCategory = "BUYER"
	CategoryTax    SplitCategory = "TAX"
)

// Periodicity describes how often a split's charge recurs; amounts are
// normalized to a monthly figure during order breakup derivation.
type Periodicity string

const (
	PeriodicityNone      Periodicity = "NONE"
	PeriodicityYearly    Periodicity = "YEARLY"
	PeriodicityBiannual  Periodicity = "BIANNUAL"
	PeriodicityQuarterly Periodicity = "QUARTERLY"
)

// TaxSlab overrides a tax-category split's value when the base amount falls
// inside [SlabStart, SlabEnd].
type TaxSlab struct {
	SlabStart               decimal.Decimal `json:"slabStart"`
	SlabEnd                 decimal.Decimal `json:"slabEnd"`
	FixedTax                decimal.Decimal `json:"fixedTax"`
	AdditionalTaxPercentage decimal.Decimal `json:"additionalTaxPercentage"`
}

// Mirror is a secondary line attached to a split, posted alongside it with
// the same computed amount for tracking. A mirror never recomputes its value.
type Mirror struct {
	Field      string    `json:"field"`
	SummaryID  *int64    `json:"summaryID"`
	InstanceID *int64    `json:"instanceID"`
	Side       EntrySide `json:"side"`
	Reflection bool      `json:"reflection"`
}

// Split is one instruction inside a rule: which account to hit, for how much,
// and on which side.
type Split struct {
	Field       string          `json:"field"`
	SummaryID   *int64          `json:"summaryID"`
	InstanceID  *int64          `json:"instanceID"`
	Percentage  decimal.Decimal `json:"percentage"`  // 0..100, zero means absent
	FixedAmount decimal.Decimal `json:"fixedAmount"` // zero means absent
	Side        EntrySide       `json:"side"`
	Reflection  bool            `json:"reflection"` // Informational tag; reflected lines still post
	Category    SplitCategory   `json:"category"`

	// Order-breakup value function inputs (ignored by the ledger expansion path).
	UseActualAmount bool            `json:"useActualAmount"`
	Addend          decimal.Decimal `json:"addend"` // Flat per-transaction addend
	Periodicity     Periodicity     `json:"periodicity"`
	TaxSlabs        []TaxSlab       `json:"taxSlabs"`

	Mirrors []Mirror `json:"mirrors"`
}

// Rule is a declarative split rule keyed by transaction type. Rules are
// long-lived configuration, edited out-of-band.
type Rule struct {
	RuleID          string        `json:"ruleID"`
	TransactionType string        `json:"transactionType"`
	Mode            IncrementMode `json:"mode"`
	Splits          []Split       `json:"splits"`
	AuditFields
}
