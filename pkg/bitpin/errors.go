package bitpin

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Validation errors raised locally, before any network call is made.
var (
	// ErrTooManyBulkOrders is returned when bulk order placement is given
	// more than ten entries.
	ErrTooManyBulkOrders = errors.New("a maximum of 10 orders can be placed at a time")

	// ErrMixedBulkMarkets is returned when bulk order entries reference
	// more than one market symbol.
	ErrMixedBulkMarkets = errors.New("all bulk orders must be in the same market")

	// ErrNoCredentials is returned when login is attempted without an API
	// key and secret.
	ErrNoCredentials = errors.New("api key and secret are required to login")
)

// APIError represents any non-2xx response from the exchange. It always
// carries the status code and the raw response body so the caller has
// enough context to diagnose the failure. Message is the exchange's
// "detail" field when the body parses as JSON, empty otherwise.
type APIError struct {
	StatusCode int
	Body       string
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bitpin api error: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("bitpin api error: status %d: %s", e.StatusCode, e.Body)
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Body:       string(body),
	}
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil {
		apiErr.Message = detail.Detail
	}
	return apiErr
}

// DecodeError represents a 2xx response whose body is not the JSON the
// endpoint promises.
type DecodeError struct {
	Body string
	Err  error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid response: %s", e.Body)
}

// Unwrap returns the underlying decode error
func (e *DecodeError) Unwrap() error {
	return e.Err
}
