package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container interfaces.
func RegisterRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	v1 := r.Group("/api/v1")

	registerLedgerRoutes(v1, services.Posting)
	registerSettlementRoutes(v1, services.Commission)
	registerExpenseRoutes(v1, services.Expense)
	registerBreakupRoutes(v1, services.Breakup)
}
