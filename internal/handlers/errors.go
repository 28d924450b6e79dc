package handlers

import (
	"errors"
	"net/http"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// respondError translates taxonomy errors into HTTP responses. Unexpected
// failures surface as a generic posting failure without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrNoRulesFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAccountReference),
		errors.Is(err, apperrors.ErrUnbalancedTransaction),
		errors.Is(err, apperrors.ErrNoEligibleTransactions):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrCapitalConfirmationRequired):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrMaxRetriesExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
