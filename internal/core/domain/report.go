package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseReportStatus tracks the one-way CALCULATED -> PAID transition.
type ExpenseReportStatus string

const (
	ExpenseCalculated ExpenseReportStatus = "CALCULATED"
	ExpensePaid       ExpenseReportStatus = "PAID"
)

// ExpenseReport aggregates the expense transactions of one settlement period.
// Created once per period key; never deleted by the engine.
type ExpenseReport struct {
	ReportID           string              `json:"reportID"`
	PeriodKey          string              `json:"periodKey"` // Unique
	FromDate           time.Time           `json:"fromDate"`
	ToDate             time.Time           `json:"toDate"`
	TotalAmount        decimal.Decimal     `json:"totalAmount"`
	TransactionIDs     []string            `json:"transactionIDs"`
	Status             ExpenseReportStatus `json:"status"`
	PaidAt             *time.Time          `json:"paidAt"`
	CommissionReportID *string             `json:"commissionReportID"` // Set when settled by a commission close
	AuditFields
}

// ResultType is derived from the sign of a commission period's net result.
type ResultType string

const (
	Profit    ResultType = "PROFIT"
	Loss      ResultType = "LOSS"
	Breakeven ResultType = "BREAKEVEN"
)

// ResultTypeFor maps a net result to its result type by sign.
func ResultTypeFor(netResult decimal.Decimal) ResultType {
	switch netResult.Sign() {
	case 1:
		return Profit
	case -1:
		return Loss
	default:
		return Breakeven
	}
}

// CommissionReportStatus tracks the settlement state of a commission period.
type CommissionReportStatus string

const (
	CommissionLocked  CommissionReportStatus = "LOCKED"
	CommissionSettled CommissionReportStatus = "SETTLED"
)

// CommissionReport records one commission-period close. Immutable after
// creation except for status/settledAt.
type CommissionReport struct {
	ReportID         string                 `json:"reportID"`
	PeriodKey        string                 `json:"periodKey"` // Unique
	FromDate         time.Time              `json:"fromDate"`
	ToDate           time.Time              `json:"toDate"`
	CommissionAmount decimal.Decimal        `json:"commissionAmount"`
	ExpenseAmount    decimal.Decimal        `json:"expenseAmount"`
	NetResult        decimal.Decimal        `json:"netResult"`
	ResultType       ResultType             `json:"resultType"`
	Status           CommissionReportStatus `json:"status"`
	SettledAt        *time.Time             `json:"settledAt"`
	TransactionIDs   []string               `json:"transactionIDs"` // Transactions locked by this close
	AuditFields
}
