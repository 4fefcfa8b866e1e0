package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobscout/internal/model"
)

// SourceRateLimiter enforces a minimum delay between requests to the same
// backend. Keys are backend names, so sources sharing a host share a limiter.
type SourceRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewSourceRateLimiter creates a limiter allowing one request per minDelay
// per key. The first request for a key never waits.
func NewSourceRateLimiter(minDelay time.Duration) *SourceRateLimiter {
	return &SourceRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		minDelay: minDelay,
	}
}

// WithOverrides sets per-key delays that replace the default minimum delay.
func (r *SourceRateLimiter) WithOverrides(overrides map[string]time.Duration) *SourceRateLimiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides = overrides
	return r
}

// DelayFor returns the minimum delay enforced for key.
func (r *SourceRateLimiter) DelayFor(key string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delayFor(key)
}

func (r *SourceRateLimiter) delayFor(key string) time.Duration {
	if d, ok := r.overrides[key]; ok {
		return d
	}
	return r.minDelay
}

// Wait blocks until the backend identified by key may be called again.
// Returns an error if the context is cancelled while waiting.
func (r *SourceRateLimiter) Wait(ctx context.Context, key string) error {
	l := r.limiter(key)
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", key, err)
	}
	return nil
}

func (r *SourceRateLimiter) limiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	delay := r.delayFor(key)
	if delay <= 0 {
		return nil
	}
	l, ok := r.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(delay), 1)
		r.limiters[key] = l
	}
	return l
}

// RateLimitedSource is a decorator that waits on the shared limiter before
// delegating to the wrapped Source.
type RateLimitedSource struct {
	inner   model.Source
	limiter *SourceRateLimiter
	key     string
}

// NewRateLimitedSource wraps a Source. All sources hitting the same backend
// should share the limiter and key.
func NewRateLimitedSource(inner model.Source, limiter *SourceRateLimiter, key string) *RateLimitedSource {
	if key == "" {
		key = inner.Name()
	}
	return &RateLimitedSource{inner: inner, limiter: limiter, key: key}
}

func (s *RateLimitedSource) Name() string { return s.inner.Name() }

func (s *RateLimitedSource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	if err := s.limiter.Wait(ctx, s.key); err != nil {
		return nil, err
	}
	return s.inner.Search(ctx, query, maxResults)
}
