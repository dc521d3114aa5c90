package server

import (
	"errors"
	"net/http"

	paymentdomain "github.com/ahmadkhan32/Internet-Billing-System-Backend-sub001/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code }

var (
	ErrNotFound = &apiError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "resource not found",
	}
	ErrTooManyRequests = &apiError{
		Status:  http.StatusTooManyRequests,
		Code:    "rate_limited",
		Message: "too many requests",
	}
	ErrServiceUnavailable = &apiError{
		Status:  http.StatusServiceUnavailable,
		Code:    "service_unavailable",
		Message: "service unavailable",
	}
)

func invalidRequestError() *apiError {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body could not be parsed",
	}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

// AbortWithError maps domain errors onto HTTP responses.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, paymentdomain.ErrMissingContact),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidPayload):
		status = http.StatusBadRequest
		code = err.Error()
	case errors.Is(err, paymentdomain.ErrCustomerNotFound),
		errors.Is(err, paymentdomain.ErrProviderNotFound):
		status = http.StatusNotFound
		code = err.Error()
	case errors.Is(err, paymentdomain.ErrEventNotSupported):
		status = http.StatusUnprocessableEntity
		code = err.Error()
	}

	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{
		"code":    code,
		"message": code,
	}})
}
