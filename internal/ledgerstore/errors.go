package ledgerstore

import (
	"errors"
	"fmt"
)

// Sentinel errors a Store implementation returns for well-known conditions;
// handlers and the pre-validation pipeline match on these with errors.Is
// rather than inspecting driver-specific error values.
var (
	ErrNotFound          = errors.New("ledgerstore: not found")
	ErrInsufficientFunds = errors.New("ledgerstore: insufficient funds")
	ErrDuplicateEvent    = errors.New("ledgerstore: event already persisted")
)

// ErrorType classifies a StoreError for retry/non-retry dispatch (§7).
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeConnection
	ErrorTypeTransaction
	ErrorTypeData
	ErrorTypeConstraint
)

// StoreError carries the same operation/cause/retryable shape the
// reference relational-DB layer uses for its DatabaseError, trimmed to the
// classifications the ledger's retry loop (§4.4) actually consults.
type StoreError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
	Retryable bool
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// IsRetryable reports whether err is a retryable *StoreError: a *StoreError
// carries an explicit verdict, any other error is treated as
// non-retryable. Manager.ExecuteWithRetry consults it; the engine's
// request-level retry loop does not, and retries every error that is not a
// Rejection.
func IsRetryable(err error) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

func NewConnectionError(operation string, cause error) *StoreError {
	return &StoreError{Type: ErrorTypeConnection, Operation: operation, Message: "connection failure", Cause: cause, Retryable: true}
}

func NewTransactionError(operation string, cause error, retryable bool) *StoreError {
	return &StoreError{Type: ErrorTypeTransaction, Operation: operation, Message: "transaction failure", Cause: cause, Retryable: retryable}
}

func NewDataError(operation string, cause error) *StoreError {
	return &StoreError{Type: ErrorTypeData, Operation: operation, Message: "data error", Cause: cause, Retryable: false}
}

func NewConstraintError(operation string, cause error) *StoreError {
	return &StoreError{Type: ErrorTypeConstraint, Operation: operation, Message: "constraint violation", Cause: cause, Retryable: false}
}
