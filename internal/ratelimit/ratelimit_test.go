package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

func TestWait_SameKey_EnforcesMinDelay(t *testing.T) {
	rl := NewSourceRateLimiter(100 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	if err := rl.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if err := rl.Wait(ctx, "adzuna"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected at least ~100ms between calls, got %v", elapsed)
	}
}

func TestWait_DifferentKeys_NoCrossBlocking(t *testing.T) {
	rl := NewSourceRateLimiter(time.Second)
	ctx := context.Background()

	start := time.Now()
	rl.Wait(ctx, "adzuna")
	rl.Wait(ctx, "remoteok")
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("different keys should not block each other, took %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	rl := NewSourceRateLimiter(time.Hour)
	rl.Wait(context.Background(), "adzuna")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx, "adzuna"); err == nil {
		t.Fatal("expected error when context expires before the limiter allows")
	}
}

func TestWait_ZeroDelayNeverBlocks(t *testing.T) {
	rl := NewSourceRateLimiter(0)
	for i := 0; i < 5; i++ {
		if err := rl.Wait(context.Background(), "x"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestWait_OverrideReplacesDefault(t *testing.T) {
	rl := NewSourceRateLimiter(time.Hour).WithOverrides(map[string]time.Duration{"remoteok": 0})
	if got := rl.DelayFor("remoteok"); got != 0 {
		t.Fatalf("DelayFor(remoteok) = %v, want 0", got)
	}
	if got := rl.DelayFor("adzuna"); got != time.Hour {
		t.Fatalf("DelayFor(adzuna) = %v, want 1h", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx, "remoteok"); err != nil {
			t.Fatalf("overridden key should not wait: %v", err)
		}
	}
}

type recordingSource struct {
	calls []time.Time
	err   error
}

func (r *recordingSource) Name() string { return "recording" }

func (r *recordingSource) Search(_ context.Context, _ string, _ int) ([]model.RawPosting, error) {
	r.calls = append(r.calls, time.Now())
	return nil, r.err
}

func TestRateLimitedSource_WaitsBeforeDelegating(t *testing.T) {
	inner := &recordingSource{}
	rl := NewSourceRateLimiter(50 * time.Millisecond)
	s := NewRateLimitedSource(inner, rl, "")

	for i := 0; i < 3; i++ {
		if _, err := s.Search(context.Background(), "q", 10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(inner.calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(inner.calls))
	}
	if gap := inner.calls[2].Sub(inner.calls[0]); gap < 90*time.Millisecond {
		t.Errorf("expected calls to be spaced by the limiter, total gap %v", gap)
	}
	if s.Name() != "recording" {
		t.Errorf("expected inner name, got %q", s.Name())
	}
}

func TestRateLimitedSource_PassesErrorsThrough(t *testing.T) {
	inner := &recordingSource{err: errors.New("boom")}
	s := NewRateLimitedSource(inner, NewSourceRateLimiter(0), "k")
	if _, err := s.Search(context.Background(), "q", 10); err == nil {
		t.Fatal("expected inner error")
	}
}
