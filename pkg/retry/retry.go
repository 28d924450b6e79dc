// Package retry provides a bounded retry combinator for atomic units of work
// that can fail with transient storage conflicts.
package retry

import (
	"context"
	"errors"
	"fmt"

	"github.com/crestpeak/hrfin_backend/internal/apperrors"
)

// Do runs fn up to maxAttempts times. fn is expected to open, commit or abort
// one atomic unit of work per invocation; a retried attempt always starts
// from scratch. Only apperrors.ErrTransientConflict triggers a retry; any
// other error aborts the loop and is returned as-is. Exhausting the budget
// yields apperrors.ErrMaxRetriesExceeded wrapping the last conflict.
func Do(ctx context.Context, maxAttempts int, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, apperrors.ErrTransientConflict) {
			return lastErr
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", apperrors.ErrMaxRetriesExceeded, maxAttempts, lastErr)
}
