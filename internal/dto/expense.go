package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostExpenseRequest posts one expense through the retrying path.
type PostExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
}

// PostExpenseResponse returns the committed expense transaction.
type PostExpenseResponse struct {
	TransactionID string         `json:"transactionID"`
	Lines         []LineResponse `json:"lines"`
	Skips         []SkipResponse `json:"skips,omitempty"`
}

// GenerateExpenseReportRequest builds an expense report for a cycle or an
// explicit set of months. Exactly one of CycleID / Months must be supplied.
type GenerateExpenseReportRequest struct {
	CycleID string   `json:"cycleID"`
	Months  []string `json:"months"` // "2024-01" style month keys
}

// GenerateExpenseReportResponse summarizes the created report.
type GenerateExpenseReportResponse struct {
	ReportID         string          `json:"reportID"`
	PeriodKey        string          `json:"periodKey"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int             `json:"transactionCount"`
}

// PayExpensePeriodRequest settles the expense transactions of a period.
type PayExpensePeriodRequest struct {
	FromDate   time.Time `json:"fromDate" binding:"required"`
	ToDate     time.Time `json:"toDate" binding:"required"`
	PeriodKey  string    `json:"periodKey" binding:"required"`
	EmployeeID string    `json:"employeeID" binding:"required"` // Resolved to paidBy via the directory
}

// PayExpensePeriodResponse reports what was paid.
type PayExpensePeriodResponse struct {
	PaidTransactions int             `json:"paidTransactions"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
}
