package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrContract marks a malformed adapter or caller; never swallowed.
	ErrContract = errors.New("contract violation")
	// ErrNotFound is returned by stores for missing rows.
	ErrNotFound = errors.New("not found")
	// ErrRunFinalized is returned when finishing a run that already left running.
	ErrRunFinalized = errors.New("run already finalized")
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}
