// Package scheduler runs discovery and maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work. Errors are logged, never fatal.
type Job func(ctx context.Context) error

type entry struct {
	name string
	id   cron.EntryID
}

// Scheduler wraps robfig/cron. Runs of the same job never overlap: a tick
// that arrives while the previous run is still going is skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	entries []entry
	onStart []cron.EntryID
}

// New creates a stopped Scheduler.
func New(logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		logger: logger,
		ctx:    context.Background(),
	}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return s
}

// Add registers job under name. spec is a standard 5-field cron expression
// or a descriptor such as "@every 6h" or "@daily". With runOnStart the job
// also fires once as soon as Run starts.
func (s *Scheduler) Add(name, spec string, runOnStart bool, job Job) error {
	id, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()

		s.logger.Info("scheduled job started", "job", name)
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.Info("scheduled job finished", "job", name)
	})
	if err != nil {
		return fmt.Errorf("scheduling %s with %q: %w", name, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{name: name, id: id})
	if runOnStart {
		s.onStart = append(s.onStart, id)
	}
	return nil
}

// Run starts the scheduler and blocks until ctx is cancelled. It then waits
// for running jobs to return and reports nil (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	onStart := append([]cron.EntryID(nil), s.onStart...)
	s.mu.Unlock()

	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("job scheduled", "job", s.nameOf(e.ID), "next", e.Next)
	}

	// The wrapped job carries the skip-if-running chain, so an immediate
	// run still blocks the first tick from overlapping it.
	var wg sync.WaitGroup
	for _, id := range onStart {
		job := s.cron.Entry(id).WrappedJob
		wg.Add(1)
		go func() {
			defer wg.Done()
			job.Run()
		}()
	}

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-s.cron.Stop().Done()
	wg.Wait()
	return nil
}

func (s *Scheduler) nameOf(id cron.EntryID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.id == id {
			return e.name
		}
	}
	return ""
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
