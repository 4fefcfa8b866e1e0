package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/notifier"
	"github.com/amishk599/jobscout/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run discovery, print what would be stored, exit",
	Long:  "One-shot discovery against the real sources and the stored jobs, without writing anything. Notifications go to the log only.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: nothing will be written to the store")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backing, err := openStore(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer backing.Close()
	nopStore := store.NewNopStore(backing)

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	sources, err := buildSources(ctx, cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to build sources", "error", err)
		os.Exit(1)
	}
	defer sources.Close()

	orch := newOrchestrator(cfg, nopStore, sources.sources, "check", logger).
		WithNotifier(notifier.NewLogNotifier(logger))

	rep, err := orch.RunReport(ctx, nil)
	if err != nil {
		logger.Error("check failed", "error", err)
		os.Exit(1)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nCheck %s: %d queries, %d candidates, %d would be stored\n",
		rep.Result.Status, len(rep.Queries), rep.Result.JobsFound, rep.Result.JobsNew)
	for _, f := range rep.Failures {
		fmt.Fprintf(out, "  failed: %s %q: %v\n", f.Source, f.Query, f.Err)
	}
	if len(rep.Inserted) > 0 {
		fmt.Fprintln(out)
		printJobs(out, rep.Inserted)
	}

	logger.Info("check complete")
	return nil
}
