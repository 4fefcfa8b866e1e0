package adapter

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/amishk599/jobscout/internal/model"
)

// Failure records one search that failed and was replaced by zero results.
type Failure struct {
	Source string
	Query  string
	Err    error
}

// FailSoftSource turns ordinary search failures into empty results so one
// bad source cannot sink a discovery run. Errors wrapping model.ErrContract
// and caller cancellation still propagate.
type FailSoftSource struct {
	inner  model.Source
	logger *slog.Logger

	mu       sync.Mutex
	failures []Failure
}

func NewFailSoftSource(inner model.Source, logger *slog.Logger) *FailSoftSource {
	return &FailSoftSource{inner: inner, logger: logger}
}

func (s *FailSoftSource) Name() string { return s.inner.Name() }

func (s *FailSoftSource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	postings, err := s.inner.Search(ctx, query, maxResults)
	if err == nil {
		return postings, nil
	}
	if errors.Is(err, model.ErrContract) || ctx.Err() != nil {
		return nil, err
	}

	s.logger.Warn("source search failed, continuing with no results",
		"source", s.inner.Name(),
		"query", query,
		"error", err,
	)
	s.mu.Lock()
	s.failures = append(s.failures, Failure{Source: s.inner.Name(), Query: query, Err: err})
	s.mu.Unlock()
	return nil, nil
}

// Failures returns and clears the failures recorded so far.
func (s *FailSoftSource) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.failures
	s.failures = nil
	return out
}
