package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Ledger / settlement taxonomy.
var (
	// ErrNoRulesFound indicates no split rules exist for a transaction type.
	ErrNoRulesFound = errors.New("no split rules found for transaction type")

	// ErrInvalidAccountReference indicates a referenced summary or field-line
	// id does not exist in the account graph.
	ErrInvalidAccountReference = errors.New("invalid account reference")

	// ErrUnbalancedTransaction indicates debits and credits could not be
	// balanced, even after owner funding.
	ErrUnbalancedTransaction = errors.New("transaction debits and credits do not balance")

	// ErrNoEligibleTransactions indicates a settlement period selected no
	// unlocked, ready transactions.
	ErrNoEligibleTransactions = errors.New("no eligible transactions in period")

	// ErrCapitalConfirmationRequired indicates a loss-making close was
	// attempted without explicit confirmation of capital usage.
	ErrCapitalConfirmationRequired = errors.New("capital usage confirmation required")

	// ErrMaxRetriesExceeded indicates the bounded retry budget was exhausted.
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")

	// ErrTransientConflict indicates a storage-level write conflict that is
	// safe to retry with a fresh atomic scope. It is never surfaced to
	// callers unless the retry budget runs out.
	ErrTransientConflict = errors.New("transient write conflict")
)

// AppError wraps a lower-level failure with a status-like code, used at the
// repository boundary.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
