package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/dto"
	"github.com/crestpeak/hrfin_backend/internal/middleware"
)

// expenseHandler handles expense posting and the expense report cycle.
type expenseHandler struct {
	expense portssvc.ExpenseSvcFacade
}

func newExpenseHandler(expense portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{expense: expense}
}

// postExpense posts one expense through the retrying path.
func (h *expenseHandler) postExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for postExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.expense.PostExpense(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Expense posting failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// generateReport builds an expense report for a cycle or month set.
func (h *expenseHandler) generateReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.GenerateExpenseReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for generateReport", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.expense.GenerateReport(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Expense report generation failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// payPeriod settles the expense transactions of a period.
func (h *expenseHandler) payPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PayExpensePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for payPeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.expense.PayPeriod(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Expense period payment failed", slog.String("period_key", req.PeriodKey), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func registerExpenseRoutes(rg *gin.RouterGroup, expense portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expense)
	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.postExpense)
		expenses.POST("/reports", h.generateReport)
		expenses.POST("/pay", h.payPeriod)
	}
}
