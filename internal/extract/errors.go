package extract

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// RateLimitError indicates the provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// ServerError indicates a 5xx response from the provider.
type ServerError struct {
	Status int
	Err    error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("provider server error (status %d): %v", e.Status, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

// NetworkError indicates the HTTP round trip itself failed.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("provider unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ModelNotFoundError indicates the selected model does not exist at the
// provider (404, or a not_found_error message naming the model).
type ModelNotFoundError struct {
	Model string
	Err   error
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model %s not found: %v", e.Model, e.Err)
}

func (e *ModelNotFoundError) Unwrap() error {
	return e.Err
}

// isTransient reports whether an attempt error warrants a backoff-and-retry.
func isTransient(err error) bool {
	var rl *RateLimitError
	var srv *ServerError
	var net *NetworkError
	return errors.As(err, &rl) || errors.As(err, &srv) || errors.As(err, &net)
}

// isModelNotFound reports whether an attempt error warrants a model downgrade.
func isModelNotFound(err error) bool {
	var nf *ModelNotFoundError
	return errors.As(err, &nf)
}
