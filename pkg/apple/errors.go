package apple

import (
	"errors"
	"fmt"
)

// StatusAuthRejected is the status the storefront answers with when the session cookie is refused
const StatusAuthRejected = 541

var (
	// Session bootstrap
	ErrBootstrap      = errors.New("session bootstrap failed")
	ErrNoCookies      = errors.New("response carried no Set-Cookie header")
	ErrEmptyChallenge = errors.New("verification challenge payload is empty")

	// Fulfillment
	ErrAuthRejected  = errors.New("apple api returned 541")
	ErrPickupMessage = errors.New("pickup message reported an error")
	ErrDecode        = errors.New("failed to decode apple response")

	// Catalog
	ErrInvalidCountry = errors.New("invalid country")
	ErrInvalidModel   = errors.New("invalid model selector")
	ErrInvalidZip     = errors.New("invalid zip")
)

// HTTPError is a non-200 answer from the storefront
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("failed response from %s. Status: %d, response: %s", e.URL, e.StatusCode, e.Body)
}

// Is reports a 541 answer as ErrAuthRejected
func (e *HTTPError) Is(target error) bool {
	return target == ErrAuthRejected && e.StatusCode == StatusAuthRejected
}

// NewHTTPError creates an HTTP error, truncating long bodies
func NewHTTPError(url string, statusCode int, body []byte) *HTTPError {
	const maxBody = 512
	text := string(body)
	if len(text) > maxBody {
		text = text[:maxBody] + "..."
	}
	return &HTTPError{
		URL:        url,
		StatusCode: statusCode,
		Body:       text,
	}
}
