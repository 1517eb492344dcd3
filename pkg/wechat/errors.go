package wechat

import (
	"errors"
	"fmt"
)

var (
	// ErrWebhookURLEmpty indicates webhook URL is empty
	ErrWebhookURLEmpty = errors.New("wechat work webhook URL not configured")

	// ErrAPIError indicates WeChat Work API error
	ErrAPIError = errors.New("wechat work API error")

	// ErrHTTPStatusError indicates HTTP status code error
	ErrHTTPStatusError = errors.New("HTTP request failed")

	// ErrRetryExceeded indicates retry attempts exceeded
	ErrRetryExceeded = errors.New("failed to send wechat work message after retries")
)

// APIError represents WeChat Work API error type
type APIError struct {
	Code    int    `json:"errcode"`
	Message string `json:"errmsg"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("wechat work API error: %d %s", e.Code, e.Message)
}

// Is matches ErrAPIError
func (e *APIError) Is(target error) bool {
	return target == ErrAPIError
}

// HTTPError represents HTTP error type
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP request failed: %d, response: %s", e.StatusCode, e.Body)
}

// Is matches ErrHTTPStatusError
func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTPStatusError
}
