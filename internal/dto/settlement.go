package dto

import (
	"time"

	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CloseCommissionPeriodRequest triggers a commission period close.
type CloseCommissionPeriodRequest struct {
	FromDate            time.Time `json:"fromDate" binding:"required"`
	ToDate              time.Time `json:"toDate" binding:"required"`
	ExpenseReportIDs    []string  `json:"expenseReportIDs"`
	ConfirmCapitalUsage bool      `json:"confirmCapitalUsage"`
}

// CloseCommissionPeriodResponse summarizes the settled period.
type CloseCommissionPeriodResponse struct {
	CommissionReportID string            `json:"commissionReportID"`
	PeriodKey          string            `json:"periodKey"`
	CommissionAmount   decimal.Decimal   `json:"commissionAmount"`
	ExpenseAmount      decimal.Decimal   `json:"expenseAmount"`
	NetResult          decimal.Decimal   `json:"netResult"`
	ResultType         domain.ResultType `json:"resultType"`
	LockedTransactions int               `json:"lockedTransactions"`
}
