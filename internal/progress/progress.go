// Package progress tracks the live stage of discovery runs so other parts of
// the process (the terminal browser, the CLI) can report on them.
package progress

import (
	"sync"
	"time"
)

// Stage is a step of the discovery pipeline.
type Stage string

const (
	StageQueries   Stage = "generating_queries"
	StageSearching Stage = "searching"
	StageDedup     Stage = "deduplicating"
	StageRanking   Stage = "ranking"
	StagePersist   Stage = "persisting"
	StageDone      Stage = "done"
)

const (
	DefaultMaxEntries = 64
	DefaultTTL        = time.Hour
)

// Snapshot is the progress of one run at a point in time.
type Snapshot struct {
	RunID        string
	Stage        Stage
	QueriesTotal int
	QueriesDone  int
	JobsFound    int
	JobsNew      int
	UpdatedAt    time.Time
}

// Tracker is a bounded in-memory map of run progress. Entries expire after
// the TTL; when full, the least recently updated entry is dropped.
type Tracker struct {
	mu         sync.Mutex
	entries    map[string]Snapshot
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// NewTracker creates a Tracker. Non-positive arguments select the defaults.
func NewTracker(maxEntries int, ttl time.Duration) *Tracker {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		entries:    make(map[string]Snapshot),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Update applies fn to the run's current snapshot and stores the result.
func (t *Tracker) Update(runID string, fn func(*Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.evictExpired(now)

	snap, ok := t.entries[runID]
	if !ok {
		if len(t.entries) >= t.maxEntries {
			t.evictOldest()
		}
		snap = Snapshot{RunID: runID}
	}
	fn(&snap)
	snap.RunID = runID
	snap.UpdatedAt = now
	t.entries[runID] = snap
}

// SetStage records the run's current stage.
func (t *Tracker) SetStage(runID string, stage Stage) {
	t.Update(runID, func(s *Snapshot) { s.Stage = stage })
}

// Get returns the latest snapshot for a run.
func (t *Tracker) Get(runID string) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap, ok := t.entries[runID]
	if !ok || t.now().Sub(snap.UpdatedAt) > t.ttl {
		return Snapshot{}, false
	}
	return snap, true
}

// Latest returns the most recently updated unexpired snapshot.
func (t *Tracker) Latest() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var latest Snapshot
	found := false
	now := t.now()
	for _, snap := range t.entries {
		if now.Sub(snap.UpdatedAt) > t.ttl {
			continue
		}
		if !found || snap.UpdatedAt.After(latest.UpdatedAt) {
			latest, found = snap, true
		}
	}
	return latest, found
}

// Len reports the number of tracked runs, expired ones included until the
// next write evicts them.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Tracker) evictExpired(now time.Time) {
	for id, snap := range t.entries {
		if now.Sub(snap.UpdatedAt) > t.ttl {
			delete(t.entries, id)
		}
	}
}

func (t *Tracker) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, snap := range t.entries {
		if oldestID == "" || snap.UpdatedAt.Before(oldest) {
			oldestID, oldest = id, snap.UpdatedAt
		}
	}
	delete(t.entries, oldestID)
}
