package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/amishk599/jobscout/internal/model"
)

// NopStore is the dry-run store. Reads fall through to an optional backing
// store so dedup still sees known jobs; writes never leave memory.
type NopStore struct {
	read model.Store

	mu       sync.Mutex
	inserted map[string]struct{}
	runs     map[string]model.RunStatus
}

// NewNopStore returns a NopStore reading from read, which may be nil.
func NewNopStore(read model.Store) *NopStore {
	return &NopStore{
		read:     read,
		inserted: make(map[string]struct{}),
		runs:     make(map[string]model.RunStatus),
	}
}

func (s *NopStore) KnownJobIDs(ctx context.Context) (map[string]struct{}, error) {
	if s.read == nil {
		return map[string]struct{}{}, nil
	}
	return s.read.KnownJobIDs(ctx)
}

func (s *NopStore) KnownTitleCompanies(ctx context.Context) ([]string, error) {
	if s.read == nil {
		return nil, nil
	}
	return s.read.KnownTitleCompanies(ctx)
}

// InsertJob reports a job as new once per ID per process.
func (s *NopStore) InsertJob(_ context.Context, job model.NormalizedJob) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inserted[job.ID]; ok {
		return false, nil
	}
	s.inserted[job.ID] = struct{}{}
	return true, nil
}

func (s *NopStore) GetJob(ctx context.Context, id string) (model.NormalizedJob, error) {
	if s.read == nil {
		return model.NormalizedJob{}, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	return s.read.GetJob(ctx, id)
}

func (s *NopStore) ListJobs(ctx context.Context, q model.JobQuery) ([]model.NormalizedJob, error) {
	if s.read == nil {
		return nil, nil
	}
	return s.read.ListJobs(ctx, q)
}

func (s *NopStore) ArchiveJob(context.Context, string) error { return nil }

func (s *NopStore) CreateRun(_ context.Context, run model.DiscoveryRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run.Status
	return nil
}

func (s *NopStore) FinishRun(_ context.Context, run model.DiscoveryRun) error {
	if err := checkTerminal(run); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.runs[run.ID]
	if !ok {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrNotFound)
	}
	if status != model.RunRunning {
		return fmt.Errorf("run %s: %w", run.ID, model.ErrRunFinalized)
	}
	s.runs[run.ID] = run.Status
	return nil
}

func (s *NopStore) ListRuns(ctx context.Context, limit int) ([]model.DiscoveryRun, error) {
	if s.read == nil {
		return nil, nil
	}
	return s.read.ListRuns(ctx, limit)
}

func (s *NopStore) LoadProfile(ctx context.Context) (*model.UserProfile, error) {
	if s.read == nil {
		return nil, fmt.Errorf("profile: %w", model.ErrNotFound)
	}
	return s.read.LoadProfile(ctx)
}

func (s *NopStore) SaveProfile(context.Context, *model.UserProfile) error { return nil }

// Close leaves the backing store open; its owner closes it.
func (s *NopStore) Close() error { return nil }
