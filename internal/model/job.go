package model

import (
	"context"
	"time"
)

// MatchTier is the discrete bucket derived from a match score.
type MatchTier string

const (
	TierLow    MatchTier = "low"
	TierMedium MatchTier = "medium"
	TierHigh   MatchTier = "high"
)

// RawPosting is a listing as returned by a source, before normalization.
type RawPosting struct {
	Title       string
	Company     string
	Location    string
	Description string
	Source      string // source name, e.g. "greenhouse"
	SourceURL   string
	PostedDate  string // raw, optional
}

// RequiredSkill is a skill extracted from a job description.
type RequiredSkill struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	UserHas  *bool  `json:"userHas"` // nil until ranked against a profile
}

// NormalizedJob is the canonical persisted job record.
type NormalizedJob struct {
	ID             string // 16 hex chars, derived from title|company|location
	Title          string
	Company        string
	Location       string
	Remote         bool
	Description    string
	RequiredSkills []RequiredSkill
	Source         string
	SourceURL      string
	MatchScore     float64 // [0,1]
	MatchTier      MatchTier
	PostedDate     string
	DiscoveredAt   time.Time
	Archived       bool
}

// SkillNames returns the names of the job's required skills in order.
func (j NormalizedJob) SkillNames() []string {
	names := make([]string, 0, len(j.RequiredSkills))
	for _, s := range j.RequiredSkills {
		names = append(names, s.Name)
	}
	return names
}

// Source searches one job board or search origin.
//
// Implementations return ordinary failures (network, HTTP status, payload)
// as errors; the adapter.FailSoft decorator turns those into empty results.
// Errors wrapping ErrContract signal a broken adapter and always propagate.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]RawPosting, error)
}

// JobQuery filters a job listing.
type JobQuery struct {
	Tier            MatchTier // empty = any
	IncludeArchived bool
	Limit           int // 0 = no limit
}

// JobStore persists normalized jobs.
type JobStore interface {
	KnownJobIDs(ctx context.Context) (map[string]struct{}, error)
	KnownTitleCompanies(ctx context.Context) ([]string, error)
	// InsertJob writes job unless a row with the same ID exists.
	// It reports whether a row was inserted.
	InsertJob(ctx context.Context, job NormalizedJob) (bool, error)
	GetJob(ctx context.Context, id string) (NormalizedJob, error)
	ListJobs(ctx context.Context, q JobQuery) ([]NormalizedJob, error)
	ArchiveJob(ctx context.Context, id string) error
}

// RunStore persists discovery run records.
type RunStore interface {
	CreateRun(ctx context.Context, run DiscoveryRun) error
	// FinishRun moves a running run to its terminal state. It returns
	// ErrRunFinalized if the run is not in the running state.
	FinishRun(ctx context.Context, run DiscoveryRun) error
	ListRuns(ctx context.Context, limit int) ([]DiscoveryRun, error)
}

// ProfileStore holds the single local user profile.
type ProfileStore interface {
	// LoadProfile returns ErrNotFound when no profile has been saved.
	LoadProfile(ctx context.Context) (*UserProfile, error)
	SaveProfile(ctx context.Context, p *UserProfile) error
}

// Store is everything the discovery pipeline persists.
type Store interface {
	JobStore
	RunStore
	ProfileStore
	Close() error
}

// JobFilter decides whether a discovered job is worth keeping.
type JobFilter interface {
	Match(job NormalizedJob) bool
}

// Notifier sends notifications for newly discovered jobs.
type Notifier interface {
	Notify(ctx context.Context, jobs []NormalizedJob) error
}
