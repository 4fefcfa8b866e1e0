package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/scheduler"
)

// pruneSchedule runs run-history maintenance once a day.
const pruneSchedule = "@daily"

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the discovery daemon",
	Long:  "Start the scheduler daemon: discovery runs on the configured schedule (and once at startup), old runs are pruned daily. Blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"schedule", cfg.Schedule,
		"roles", len(cfg.Roles),
		"database", cfg.Database.Driver,
		"title_keywords", len(cfg.Filters.TitleKeywords),
		"locations", len(cfg.Filters.Locations),
		"notification", cfg.Notification.Type,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	sources, err := buildSources(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to build sources", "error", err)
		os.Exit(1)
	}
	defer sources.Close()

	orch := newOrchestrator(cfg, st, sources.sources, "scheduler", logger).
		WithNotifier(setupNotifier(cfg, httpClient, logger)).
		WithProgress(newTracker())

	sched := scheduler.New(logger)
	err = sched.Add("discovery", cfg.Schedule, true, func(ctx context.Context) error {
		res, err := orch.Run(ctx, nil)
		if err != nil {
			return err
		}
		logger.Info("scheduled run finished",
			"run_id", res.RunID,
			"status", res.Status,
			"jobs_found", res.JobsFound,
			"jobs_new", res.JobsNew,
		)
		return nil
	})
	if err != nil {
		logger.Error("failed to schedule discovery", "error", err)
		os.Exit(1)
	}

	err = sched.Add("prune-runs", pruneSchedule, false, func(ctx context.Context) error {
		n, err := st.PruneRuns(ctx, cfg.Discovery.RunRetention)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("pruned old discovery runs", "count", n, "retention", cfg.Discovery.RunRetention.String())
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to schedule run pruning", "error", err)
		os.Exit(1)
	}

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
