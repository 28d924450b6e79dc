package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
	"github.com/crestpeak/hrfin_backend/internal/dto"
	"github.com/crestpeak/hrfin_backend/internal/middleware"
)

// ledgerHandler handles rule-driven posting requests.
type ledgerHandler struct {
	posting portssvc.PostingSvcFacade
}

func newLedgerHandler(posting portssvc.PostingSvcFacade) *ledgerHandler {
	return &ledgerHandler{posting: posting}
}

// expandAndPost expands the split rules for a transaction type and posts the
// resulting lines as one atomic event.
func (h *ledgerHandler) expandAndPost(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ExpandAndPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for expandAndPost", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.posting.ExpandAndPost(c.Request.Context(), req)
	if err != nil {
		logger.Warn("ExpandAndPost failed", slog.String("transaction_type", req.TransactionType), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getPosting fetches one posted transaction by id.
func (h *ledgerHandler) getPosting(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	txn, err := h.posting.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		logger.Warn("GetTransaction failed", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}

func registerLedgerRoutes(rg *gin.RouterGroup, posting portssvc.PostingSvcFacade) {
	h := newLedgerHandler(posting)
	ledger := rg.Group("/ledger")
	{
		ledger.POST("/postings", h.expandAndPost)
		ledger.GET("/postings/:transactionID", h.getPosting)
	}
}
