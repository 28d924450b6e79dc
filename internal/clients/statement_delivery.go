package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/crestpeak/hrfin_backend/internal/core/domain"
	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
)

// HTTPStatementDelivery pushes settlement statements to the external
// business-side API. Callers treat failures as non-fatal.
type HTTPStatementDelivery struct {
	baseURL string
	client  *http.Client
}

// NewHTTPStatementDelivery creates a delivery client for the given base URL.
func NewHTTPStatementDelivery(baseURL string) *HTTPStatementDelivery {
	return &HTTPStatementDelivery{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

var _ portssvc.StatementDelivery = (*HTTPStatementDelivery)(nil)

// Deliver POSTs the settled period's statement.
func (d *HTTPStatementDelivery) Deliver(ctx context.Context, report domain.CommissionReport) error {
	payload, err := json.Marshal(map[string]any{
		"periodKey":        report.PeriodKey,
		"commissionAmount": report.CommissionAmount,
		"expenseAmount":    report.ExpenseAmount,
		"netResult":        report.NetResult,
		"resultType":       report.ResultType,
		"settledAt":        report.SettledAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode statement: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/statements", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build statement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("statement delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("statement delivery returned status %d", resp.StatusCode)
	}
	return nil
}
