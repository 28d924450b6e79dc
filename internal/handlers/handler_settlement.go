package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/dto"
	"github.com/crestpeak/hrfin_backend/internal/middleware"
)

// settlementHandler handles commission period closes.
type settlementHandler struct {
	commission portssvc.CommissionSvcFacade
}

func newSettlementHandler(commission portssvc.CommissionSvcFacade) *settlementHandler {
	return &settlementHandler{commission: commission}
}

// closeCommissionPeriod settles one commission period.
func (h *settlementHandler) closeCommissionPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CloseCommissionPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for closeCommissionPeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	if !req.ToDate.After(req.FromDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "toDate must be after fromDate"})
		return
	}

	resp, err := h.commission.ClosePeriod(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Commission close failed", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func registerSettlementRoutes(rg *gin.RouterGroup, commission portssvc.CommissionSvcFacade) {
	h := newSettlementHandler(commission)
	settlements := rg.Group("/settlements")
	{
		settlements.POST("/commission", h.closeCommissionPeriod)
	}
}
