package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockSource calls a function on each invocation, tracking call count.
type mockSource struct {
	calls int
	fn    func(attempt int) ([]model.RawPosting, error)
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Search(_ context.Context, _ string, _ int) ([]model.RawPosting, error) {
	m.calls++
	return m.fn(m.calls)
}

func fastOptions(retries int) Options {
	return Options{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, MaxElapsed: time.Second}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	postings := []model.RawPosting{{Title: "Engineer"}}
	mock := &mockSource{fn: func(_ int) ([]model.RawPosting, error) {
		return postings, nil
	}}

	rs := NewRetrySource(mock, fastOptions(2), discardLogger())
	got, err := rs.Search(context.Background(), "engineer", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Engineer" {
		t.Fatalf("unexpected postings: %v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockSource{fn: func(attempt int) ([]model.RawPosting, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503}
		}
		return []model.RawPosting{{Title: "x"}}, nil
	}}

	rs := NewRetrySource(mock, fastOptions(2), discardLogger())
	got, err := rs.Search(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(got))
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.RawPosting, error) {
		return nil, &model.HTTPError{StatusCode: 404}
	}}

	rs := NewRetrySource(mock, fastOptions(3), discardLogger())
	_, err := rs.Search(context.Background(), "q", 10)
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("expected the 404 to be returned, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_DoesNotRetryContractErrors(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.RawPosting, error) {
		return nil, fmt.Errorf("misconfigured: %w", model.ErrContract)
	}}

	rs := NewRetrySource(mock, fastOptions(3), discardLogger())
	if _, err := rs.Search(context.Background(), "q", 10); !errors.Is(err, model.ErrContract) {
		t.Fatalf("expected ErrContract, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.RawPosting, error) {
		return nil, errors.New("connection reset")
	}}

	rs := NewRetrySource(mock, fastOptions(2), discardLogger())
	if _, err := rs.Search(context.Background(), "q", 10); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_HonorsRetryAfterAndKeepsHTTPError(t *testing.T) {
	mock := &mockSource{fn: func(_ int) ([]model.RawPosting, error) {
		return nil, &model.HTTPError{StatusCode: 429, RetryAfter: time.Second}
	}}

	rs := NewRetrySource(mock, Options{MaxRetries: 1, BaseDelay: time.Millisecond, MaxElapsed: 5 * time.Second}, discardLogger())
	start := time.Now()
	_, err := rs.Search(context.Background(), "q", 10)
	elapsed := time.Since(start)

	if elapsed < 900*time.Millisecond {
		t.Errorf("expected to wait for Retry-After, waited %v", elapsed)
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 429 {
		t.Fatalf("expected 429 HTTPError in chain, got %v", err)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := &mockSource{fn: func(_ int) ([]model.RawPosting, error) {
		cancel()
		return nil, &model.HTTPError{StatusCode: 500}
	}}

	rs := NewRetrySource(mock, Options{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour, MaxElapsed: 2 * time.Hour}, discardLogger())
	_, err := rs.Search(ctx, "q", 10)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}
