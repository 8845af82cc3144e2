package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gridbill/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, "CUSTOMER_NOT_FOUND", "customer not found"
	case errors.Is(err, domain.ErrBillNotFound):
		return http.StatusNotFound, "BILL_NOT_FOUND", "bill not found"
	case errors.Is(err, domain.ErrTariffNotFound):
		return http.StatusNotFound, "TARIFF_NOT_FOUND", "tariff not found"
	case errors.Is(err, domain.ErrReadingNotFound):
		return http.StatusNotFound, "READING_NOT_FOUND", "meter reading not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrCustomerInactive):
		return http.StatusConflict, "CUSTOMER_INACTIVE", "customer connection is not active"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already exists"
	case errors.Is(err, domain.ErrDuplicateBill):
		return http.StatusConflict, "DUPLICATE_BILL", err.Error()
	case errors.Is(err, domain.ErrAlreadyPaid):
		return http.StatusConflict, "ALREADY_PAID", "bill is already paid"
	case errors.Is(err, domain.ErrDuplicateTransaction):
		return http.StatusConflict, "DUPLICATE_TRANSACTION", "transaction reference already recorded"
	case errors.Is(err, domain.ErrTariffOverlap):
		return http.StatusConflict, "TARIFF_OVERLAP", "multiple tariffs cover this category and date"
	case errors.Is(err, domain.ErrAmountMismatch):
		return http.StatusBadRequest, "AMOUNT_MISMATCH", err.Error()
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest, "INVALID_TRANSITION", err.Error()
	case errors.Is(err, domain.ErrMalformedTariff):
		return http.StatusBadRequest, "MALFORMED_TARIFF", err.Error()
	case errors.Is(err, domain.ErrReadingBelowPrevious):
		return http.StatusBadRequest, "READING_BELOW_PREVIOUS", err.Error()
	case errors.Is(err, domain.ErrNoActiveTariff):
		return http.StatusUnprocessableEntity, "NO_ACTIVE_TARIFF", "no tariff covers this category and date"
	case errors.Is(err, domain.ErrNoMeterReading):
		return http.StatusUnprocessableEntity, "NO_METER_READING", "no meter reading for the billing month"
	case errors.Is(err, domain.ErrInvalidBillingPeriod):
		return http.StatusUnprocessableEntity, "INVALID_BILLING_PERIOD", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
