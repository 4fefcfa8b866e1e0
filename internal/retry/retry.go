package retry

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/amishk599/jobscout/internal/model"
)

// Defaults for NewRetrySource when Options fields are zero.
const (
	DefaultMaxRetries = 2
	DefaultBaseDelay  = 5 * time.Second
	DefaultMaxDelay   = 30 * time.Second
	DefaultMaxElapsed = 2 * time.Minute
)

// Options tunes the retry policy.
type Options struct {
	MaxRetries int           // attempts after the first failure
	BaseDelay  time.Duration // first backoff interval, doubled per retry
	MaxDelay   time.Duration
	MaxElapsed time.Duration
}

// RetrySource is a decorator that retries transient failures with
// exponential backoff and jitter before giving up.
type RetrySource struct {
	inner  model.Source
	opts   Options
	logger *slog.Logger
}

// NewRetrySource wraps a Source with retry logic.
func NewRetrySource(inner model.Source, opts Options, logger *slog.Logger) *RetrySource {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	if opts.MaxElapsed <= 0 {
		opts.MaxElapsed = DefaultMaxElapsed
	}
	return &RetrySource{inner: inner, opts: opts, logger: logger}
}

func (s *RetrySource) Name() string { return s.inner.Name() }

// Search delegates to the wrapped source, retrying 429, 5xx and network
// errors. A Retry-After hint from the server replaces the computed delay.
func (s *RetrySource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.opts.BaseDelay
	bo.MaxInterval = s.opts.MaxDelay
	bo.RandomizationFactor = 0.3

	operation := func() ([]model.RawPosting, error) {
		postings, err := s.inner.Search(ctx, query, maxResults)
		if err == nil {
			return postings, nil
		}
		if !isRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		var httpErr *model.HTTPError
		if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
			secs := int(math.Ceil(httpErr.RetryAfter.Seconds()))
			return nil, &retryAfterError{hint: backoff.RetryAfter(secs), err: err}
		}
		return nil, err
	}

	notify := func(err error, delay time.Duration) {
		s.logger.Warn("retrying after transient error",
			"source", s.inner.Name(),
			"query", query,
			"delay", delay,
			"error", err,
		)
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(s.opts.MaxRetries+1)),
		backoff.WithMaxElapsedTime(s.opts.MaxElapsed),
		backoff.WithNotify(notify),
	)
}

// retryAfterError passes the server's Retry-After hint to backoff while
// keeping the original error reachable through errors.As.
type retryAfterError struct {
	hint error
	err  error
}

func (e *retryAfterError) Error() string   { return e.err.Error() }
func (e *retryAfterError) Unwrap() []error { return []error{e.hint, e.err} }

// isRetryable returns true if the error represents a transient failure worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation, never retry.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, model.ErrContract) {
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	// Non-HTTP errors (network, DNS, etc.) are retryable.
	return true
}
