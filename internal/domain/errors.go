package domain

import (
	"errors"
	"fmt"
)

// ValidationError marks a user-correctable request error. The lifecycle
// surfaces only the first failed check.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GatewayError wraps a failure from the external payment gateway. It is
// transient from the caller's perspective and triggers compensating rollback,
// never an automatic retry.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string { return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err) }
func (e *GatewayError) Unwrap() error { return e.Err }

var (
	ErrNoSuitableVehicle  = errors.New("no suitable vehicle for passenger and luggage counts")
	ErrNoAvailableVehicle = errors.New("no vehicle available for the requested class")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrForbidden          = errors.New("booking does not belong to caller")

	// Payment-verification integrity failures. All terminal, non-retryable.
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrDuplicatePayment = errors.New("payment already processed")
	ErrOrderMismatch    = errors.New("order id mismatch")
	ErrAlreadyProcessed = errors.New("payment is not pending")

	ErrCannotCancel = errors.New("booking cannot be cancelled")
)
