package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

func TestNopStoreWritesNothing(t *testing.T) {
	backing := newTestStore(t)
	ctx := context.Background()
	backing.InsertJob(ctx, testJob("known", "Backend Engineer", 0.5, model.TierMedium))

	s := NewNopStore(backing)
	ids, err := s.KnownJobIDs(ctx)
	if err != nil {
		t.Fatalf("KnownJobIDs: %v", err)
	}
	if _, ok := ids["known"]; !ok {
		t.Error("expected reads to fall through to the backing store")
	}

	inserted, _ := s.InsertJob(ctx, testJob("fresh", "Go Engineer", 0.9, model.TierHigh))
	if !inserted {
		t.Error("expected first insert to report new")
	}
	inserted, _ = s.InsertJob(ctx, testJob("fresh", "Go Engineer", 0.9, model.TierHigh))
	if inserted {
		t.Error("expected repeated insert to report existing")
	}
	if _, err := backing.GetJob(ctx, "fresh"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("dry-run insert reached the backing store: %v", err)
	}
}

func TestNopStoreRunLifecycle(t *testing.T) {
	s := NewNopStore(nil)
	ctx := context.Background()

	run := model.DiscoveryRun{ID: "r", StartedAt: time.Now(), Status: model.RunRunning}
	s.CreateRun(ctx, run)
	run.Status = model.RunCompleted
	if err := s.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := s.FinishRun(ctx, run); !errors.Is(err, model.ErrRunFinalized) {
		t.Errorf("expected ErrRunFinalized, got %v", err)
	}
	if _, err := s.LoadProfile(ctx); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound without backing store, got %v", err)
	}
}
