package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eleqt/eleqt-rides/internal/domain"
	"github.com/eleqt/eleqt-rides/pkg/logger"
)

// ErrorResponse is the structured JSON error body every endpoint returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code}); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// WriteJSON writes a success payload.
func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// Common error codes
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeNoSuitableVehicle  = "NO_SUITABLE_VEHICLE"
	CodeNoAvailableVehicle = "NO_AVAILABLE_VEHICLE"
	CodeGatewayError       = "PAYMENT_GATEWAY_ERROR"
	CodeInvalidSignature   = "INVALID_PAYMENT_SIGNATURE"
	CodeDuplicatePayment   = "DUPLICATE_PAYMENT"
	CodeOrderMismatch      = "ORDER_MISMATCH"
	CodeAlreadyProcessed   = "PAYMENT_ALREADY_PROCESSED"
	CodeCannotCancel       = "CANNOT_CANCEL"
)

// Convenience functions for common errors
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message, CodeConflict)
}

// FromError maps a booking-flow error onto the right status and code, so
// handlers stay thin.
func FromError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrNoSuitableVehicle):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), CodeNoSuitableVehicle)
	case errors.Is(err, domain.ErrNoAvailableVehicle):
		WriteError(w, http.StatusConflict, err.Error(), CodeNoAvailableVehicle)
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrVehicleNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrInvalidSignature):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidSignature)
	case errors.Is(err, domain.ErrDuplicatePayment):
		WriteError(w, http.StatusConflict, err.Error(), CodeDuplicatePayment)
	case errors.Is(err, domain.ErrOrderMismatch):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeOrderMismatch)
	case errors.Is(err, domain.ErrAlreadyProcessed):
		WriteError(w, http.StatusConflict, err.Error(), CodeAlreadyProcessed)
	case errors.Is(err, domain.ErrCannotCancel):
		WriteError(w, http.StatusConflict, err.Error(), CodeCannotCancel)
	default:
		var gwErr *domain.GatewayError
		if errors.As(err, &gwErr) {
			WriteError(w, http.StatusBadGateway, "payment gateway is unavailable, your booking was not created", CodeGatewayError)
			return
		}
		logger.Error("unhandled error", "error", err)
		InternalError(w, "something went wrong")
	}
}
