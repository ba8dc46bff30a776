package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("record not found")
)

// ValidationError reports a missing or invalid required field. Detected
// before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// CapacityError reports an outbound request exceeding the remaining
// quantity or weight of the referenced lot.
type CapacityError struct {
	RemainingQty    int64
	RemainingWeight decimal.Decimal
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("capacity exceeded: remaining qty=%d weight=%s",
		e.RemainingQty, e.RemainingWeight.String())
}

// StoreError wraps an underlying persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
