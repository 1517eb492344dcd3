package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"pickupwatch/pkg/response"

	"github.com/gin-gonic/gin"
)

// Common error type definitions
var (
	// ErrResourceNotFound indicates resource not found error
	ErrResourceNotFound = errors.New("resource not found")

	// ErrServiceUnavailable indicates service unavailable error
	ErrServiceUnavailable = errors.New("service unavailable")
)

// APIError represents a custom API error structure
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("API Error (Code: %d, Message: %s): %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("API Error (Code: %d, Message: %s)", e.Code, e.Message)
}

// Unwrap supports error wrapping
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(message string, err error) *APIError {
	return &APIError{Code: http.StatusNotFound, Message: message, Err: err}
}

// NewServiceUnavailableError creates a 503 Service Unavailable error
func NewServiceUnavailableError(message string, err error) *APIError {
	return &APIError{Code: http.StatusServiceUnavailable, Message: message, Err: err}
}

// HandleError provides unified error handling
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		response.Error(c, apiErr.Code, apiErr.Message, apiErr.Err)
		return
	}

	response.Error(c, http.StatusInternalServerError, "Internal Server Error", err)
}
