package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of a summary account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Well-known summary codes resolved through the account registry at startup.
const (
	CodeCash    = "CASH"
	CodeCapital = "CAPITAL"
)

// Summary is a top-level account (e.g., Cash, Capital, Commission Income).
// EndingBalance is the only field mutated during normal operation; it is the
// running signed total of every posting that touched the summary directly or
// through one of its field-line instances.
type Summary struct {
	SummaryID       int64           `json:"summaryID"`
	Code            string          `json:"code"` // Stable lookup key, unique
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	ParentSummaryID *int64          `json:"parentSummaryID"` // Nullable, self-referencing
	StartingBalance decimal.Decimal `json:"startingBalance"`
	EndingBalance   decimal.Decimal `json:"endingBalance"`
	AuditFields
}

// FieldLineDefinition is a named sub-account category, independent of any summary.
type FieldLineDefinition struct {
	DefinitionID int64  `json:"definitionID"`
	Name         string `json:"name"`
	AuditFields
}

// FieldLineInstance is a concrete balance holder owned by exactly one summary
// and one definition. Its balance mirrors into the owning summary's ending
// balance on every posting.
type FieldLineInstance struct {
	InstanceID   int64           `json:"instanceID"`
	DefinitionID int64           `json:"definitionID"`
	SummaryID    int64           `json:"summaryID"`
	Balance      decimal.Decimal `json:"balance"`
	AuditFields
}
