// Package clients implements the external collaborator interfaces the core
// consumes: the HR employee directory and statement delivery to the business
// API. Both are plain data surfaces with no algorithmic content.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
	portssvc "github.com/crestpeak/hrfin_backend/internal/core/ports/services"
)

// HTTPEmployeeDirectory resolves employee ids against the HR service.
type HTTPEmployeeDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEmployeeDirectory creates a directory client for the given base URL.
func NewHTTPEmployeeDirectory(baseURL string) *HTTPEmployeeDirectory {
	return &HTTPEmployeeDirectory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

var _ portssvc.EmployeeDirectory = (*HTTPEmployeeDirectory)(nil)

// LookupApprover returns the display name recorded as paidBy on expense
// payments.
func (d *HTTPEmployeeDirectory) LookupApprover(ctx context.Context, employeeID string) (string, error) {
	reqURL := fmt.Sprintf("%s/api/employees/%s", d.baseURL, url.PathEscape(employeeID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build employee lookup request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("employee lookup failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("failed to decode employee response: %w", err)
		}
		return body.Name, nil
	case http.StatusNotFound:
		return "", fmt.Errorf("%w: employee %s", apperrors.ErrNotFound, employeeID)
	default:
		return "", fmt.Errorf("employee lookup returned status %d", resp.StatusCode)
	}
}
