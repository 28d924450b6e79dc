package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/dto"
	"github.com/crestpeak/hrfin_backend/internal/middleware"
)

// breakupHandler handles one-shot order breakup derivation.
type breakupHandler struct {
	breakup portssvc.BreakupSvcFacade
}

func newBreakupHandler(breakup portssvc.BreakupSvcFacade) *breakupHandler {
	return &breakupHandler{breakup: breakup}
}

// deriveBreakup splits an order amount into parent / seller / buyer views.
func (h *breakupHandler) deriveBreakup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.DeriveOrderBreakupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for deriveBreakup", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.breakup.Derive(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Order breakup derivation failed", slog.String("order_id", req.OrderID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func registerBreakupRoutes(rg *gin.RouterGroup, breakup portssvc.BreakupSvcFacade) {
	h := newBreakupHandler(breakup)
	orders := rg.Group("/orders")
	{
		orders.POST("/breakup", h.deriveBreakup)
	}
}
