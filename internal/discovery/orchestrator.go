// Package discovery runs the job discovery pipeline: generate queries,
// search every source, normalize, deduplicate against stored jobs, rank,
// and persist, recording each execution as a DiscoveryRun.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobscout/internal/adapter"
	"github.com/amishk599/jobscout/internal/dedup"
	"github.com/amishk599/jobscout/internal/filter"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/normalize"
	"github.com/amishk599/jobscout/internal/progress"
	"github.com/amishk599/jobscout/internal/query"
	"github.com/amishk599/jobscout/internal/rank"
)

const (
	DefaultMaxResults = 25
	DefaultMaxNewJobs = 50
	DefaultLabel      = "cli"
)

// Options tunes one Orchestrator.
type Options struct {
	Roles              []model.RoleInterest
	MaxQueriesPerRole  int    // 0 = query.DefaultMaxQueries
	MaxResultsPerQuery int    // 0 = DefaultMaxResults
	MaxNewJobs         int    // 0 = DefaultMaxNewJobs
	Label              string // recorded as the run's source, e.g. "cli", "scheduler"
	// NotifyFirstRun sends notifications even when the store held no jobs
	// before the run. Off by default so the first run only seeds the store.
	NotifyFirstRun bool
}

// Report is the full outcome of a run. Run returns only its Result.
type Report struct {
	Result   model.RunResult
	Queries  []string
	Inserted []model.NormalizedJob
	Failures []adapter.Failure
}

// Orchestrator owns the discovery pipeline for one profile store.
type Orchestrator struct {
	store      model.Store
	sources    []*adapter.FailSoftSource
	generator  *query.Generator
	normalizer *normalize.Normalizer
	dedup      *dedup.Deduplicator
	tracker    *progress.Tracker
	notifier   model.Notifier
	filter     model.JobFilter
	opts       Options
	logger     *slog.Logger

	newID func() string
	now   func() time.Time
}

// New creates an Orchestrator. Every source is wrapped in a FailSoftSource
// so that one failing board contributes zero results instead of failing
// the run.
func New(
	store model.Store,
	sources []model.Source,
	generator *query.Generator,
	normalizer *normalize.Normalizer,
	deduplicator *dedup.Deduplicator,
	opts Options,
	logger *slog.Logger,
) *Orchestrator {
	if opts.MaxResultsPerQuery <= 0 {
		opts.MaxResultsPerQuery = DefaultMaxResults
	}
	if opts.MaxNewJobs <= 0 {
		opts.MaxNewJobs = DefaultMaxNewJobs
	}
	if opts.Label == "" {
		opts.Label = DefaultLabel
	}
	wrapped := make([]*adapter.FailSoftSource, 0, len(sources))
	for _, s := range sources {
		wrapped = append(wrapped, adapter.NewFailSoftSource(s, logger))
	}
	return &Orchestrator{
		store:      store,
		sources:    wrapped,
		generator:  generator,
		normalizer: normalizer,
		dedup:      deduplicator,
		opts:       opts,
		logger:     logger,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

// WithProgress publishes stage and count updates to t.
func (o *Orchestrator) WithProgress(t *progress.Tracker) *Orchestrator {
	o.tracker = t
	return o
}

// WithFilter drops normalized jobs that f rejects before deduplication.
func (o *Orchestrator) WithFilter(f model.JobFilter) *Orchestrator {
	o.filter = f
	return o
}

// WithNotifier sends newly inserted high-tier jobs to n after each
// completed run.
func (o *Orchestrator) WithNotifier(n model.Notifier) *Orchestrator {
	o.notifier = n
	return o
}

// Run executes one discovery run. A nil profile is loaded from the store.
func (o *Orchestrator) Run(ctx context.Context, profile *model.UserProfile) (model.RunResult, error) {
	rep, err := o.RunReport(ctx, profile)
	return rep.Result, err
}

// RunReport is Run with the generated queries, inserted jobs and source
// failures attached.
func (o *Orchestrator) RunReport(ctx context.Context, profile *model.UserProfile) (Report, error) {
	run := model.DiscoveryRun{
		ID:        o.newID(),
		StartedAt: o.now(),
		Source:    o.opts.Label,
		Status:    model.RunRunning,
	}
	if err := o.store.CreateRun(ctx, run); err != nil {
		return Report{}, fmt.Errorf("starting discovery run: %w", err)
	}
	o.stage(run.ID, progress.StageQueries)
	log := o.logger.With("run_id", run.ID)

	rep := Report{Result: model.RunResult{RunID: run.ID, Status: model.RunRunning}}

	if profile == nil {
		p, err := o.store.LoadProfile(ctx)
		switch {
		case errors.Is(err, model.ErrNotFound):
			log.Info("no profile stored, skipping discovery")
			return o.finish(ctx, run, rep, model.RunSkippedNoProfile, nil)
		case err != nil:
			return o.finish(ctx, run, rep, model.RunFailed, fmt.Errorf("loading profile: %w", err))
		}
		profile = p
	}

	rep.Queries = o.Queries()
	if len(rep.Queries) == 0 {
		log.Info("no role interests configured, skipping discovery")
		return o.finish(ctx, run, rep, model.RunSkippedNoRoles, nil)
	}
	o.update(run.ID, func(s *progress.Snapshot) {
		s.Stage = progress.StageSearching
		s.QueriesTotal = len(rep.Queries)
	})

	raws, err := o.search(ctx, run.ID, rep.Queries)
	rep.Failures = o.collectFailures()
	if err != nil {
		return o.finish(ctx, run, rep, model.RunFailed, err)
	}
	for _, f := range rep.Failures {
		log.Warn("source returned no results", "source", f.Source, "query", f.Query, "error", f.Err)
	}

	o.stage(run.ID, progress.StageDedup)
	knownIDs, err := o.store.KnownJobIDs(ctx)
	if err != nil {
		return o.finish(ctx, run, rep, model.RunFailed, fmt.Errorf("loading known job ids: %w", err))
	}
	knownPairs, err := o.store.KnownTitleCompanies(ctx)
	if err != nil {
		return o.finish(ctx, run, rep, model.RunFailed, fmt.Errorf("loading known titles: %w", err))
	}
	candidates := filter.Apply(o.filter, o.normalizer.NormalizeAll(raws))
	fresh := o.dedup.Dedup(candidates, knownIDs, knownPairs)

	o.stage(run.ID, progress.StageRanking)
	ranked := rank.RankAll(fresh, profile)
	rep.Result.JobsFound = len(ranked)
	if len(ranked) > o.opts.MaxNewJobs {
		ranked = ranked[:o.opts.MaxNewJobs]
	}
	o.update(run.ID, func(s *progress.Snapshot) {
		s.Stage = progress.StagePersist
		s.JobsFound = rep.Result.JobsFound
	})

	for _, job := range ranked {
		inserted, err := o.store.InsertJob(ctx, job)
		if err != nil {
			return o.finish(ctx, run, rep, model.RunFailed, fmt.Errorf("persisting job %s: %w", job.ID, err))
		}
		if inserted {
			rep.Inserted = append(rep.Inserted, job)
		}
	}
	rep.Result.JobsNew = len(rep.Inserted)

	rep, err = o.finish(ctx, run, rep, model.RunCompleted, nil)
	if err != nil {
		return rep, err
	}
	log.Info("discovery run completed",
		"queries", len(rep.Queries),
		"fetched", len(raws),
		"found", rep.Result.JobsFound,
		"new", rep.Result.JobsNew,
		"failed_searches", len(rep.Failures),
	)
	o.notify(ctx, log, rep.Inserted, len(knownIDs) == 0)
	return rep, nil
}

// Queries generates the per-role query lists and merges them, keeping the
// first occurrence of each query across roles.
func (o *Orchestrator) Queries() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, role := range o.opts.Roles {
		for _, q := range o.generator.Generate(role.Title, role.Location, role.Remote, o.opts.MaxQueriesPerRole) {
			key := strings.ToLower(q)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, q)
		}
	}
	return out
}

func (o *Orchestrator) search(ctx context.Context, runID string, queries []string) ([]model.RawPosting, error) {
	var raws []model.RawPosting
	for _, q := range queries {
		for _, src := range o.sources {
			postings, err := src.Search(ctx, q, o.opts.MaxResultsPerQuery)
			if err != nil {
				return nil, fmt.Errorf("searching %s for %q: %w", src.Name(), q, err)
			}
			raws = append(raws, postings...)
		}
		o.update(runID, func(s *progress.Snapshot) {
			s.QueriesDone++
			s.JobsFound = len(raws)
		})
	}
	return raws, nil
}

func (o *Orchestrator) collectFailures() []adapter.Failure {
	var out []adapter.Failure
	for _, src := range o.sources {
		out = append(out, src.Failures()...)
	}
	return out
}

// finish moves the run to its terminal state. The update runs even when
// ctx is already cancelled so an interrupted run is still recorded.
func (o *Orchestrator) finish(ctx context.Context, run model.DiscoveryRun, rep Report, status model.RunStatus, cause error) (Report, error) {
	completed := o.now()
	run.CompletedAt = &completed
	run.Status = status
	run.JobsFound = rep.Result.JobsFound
	run.JobsNew = rep.Result.JobsNew
	if cause != nil {
		run.Error = cause.Error()
	}
	rep.Result.Status = status
	o.update(run.ID, func(s *progress.Snapshot) {
		s.Stage = progress.StageDone
		s.JobsFound = rep.Result.JobsFound
		s.JobsNew = rep.Result.JobsNew
	})

	if err := o.store.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		if cause != nil {
			return rep, fmt.Errorf("discovery run %s failed: %w (finalizing: %v)", run.ID, cause, err)
		}
		return rep, fmt.Errorf("finalizing discovery run %s: %w", run.ID, err)
	}
	if cause != nil {
		o.logger.Error("discovery run failed", "run_id", run.ID, "error", cause)
		return rep, fmt.Errorf("discovery run %s failed: %w", run.ID, cause)
	}
	return rep, nil
}

func (o *Orchestrator) notify(ctx context.Context, log *slog.Logger, inserted []model.NormalizedJob, seeding bool) {
	if o.notifier == nil {
		return
	}
	var high []model.NormalizedJob
	for _, job := range inserted {
		if job.MatchTier == model.TierHigh {
			high = append(high, job)
		}
	}
	if len(high) == 0 {
		return
	}
	if seeding && !o.opts.NotifyFirstRun {
		log.Info("first run seeded the store, skipping notifications", "high_matches", len(high))
		return
	}
	if err := o.notifier.Notify(ctx, high); err != nil {
		log.Error("notifying new matches", "count", len(high), "error", err)
	}
}

func (o *Orchestrator) stage(runID string, stage progress.Stage) {
	if o.tracker != nil {
		o.tracker.SetStage(runID, stage)
	}
}

func (o *Orchestrator) update(runID string, fn func(*progress.Snapshot)) {
	if o.tracker != nil {
		o.tracker.Update(runID, fn)
	}
}
