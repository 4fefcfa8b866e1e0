package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/model"
)

var (
	runProfilePath string
	runJSON        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run discovery once and exit",
	Long:  "Runs the discovery pipeline once: generate queries, search every source, dedup, rank and store new jobs. Uses the stored profile unless --profile is given.",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().StringVar(&runProfilePath, "profile", "", "rank against this profile YAML instead of the stored one")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the run result as JSON")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var profile *model.UserProfile
	if runProfilePath != "" {
		profile, err = readProfileFile(runProfilePath)
		if err != nil {
			logger.Error("failed to read profile", "error", err)
			os.Exit(1)
		}
	}

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

	orch := newOrchestrator(cfg, st, sources.sources, "cli", logger).
		WithNotifier(setupNotifier(cfg, httpClient, logger))

	rep, err := orch.RunReport(ctx, profile)
	if err != nil {
		logger.Error("discovery run failed", "run_id", rep.Result.RunID, "error", err)
		os.Exit(1)
	}

	out := cmd.OutOrStdout()
	if runJSON {
		return printJSON(out, rep.Result)
	}
	fmt.Fprintf(out, "\nRun %s %s: %d queries, %d candidates, %d new\n",
		rep.Result.RunID, rep.Result.Status, len(rep.Queries), rep.Result.JobsFound, rep.Result.JobsNew)
	if len(rep.Failures) > 0 {
		fmt.Fprintf(out, "%d source calls failed (see log)\n", len(rep.Failures))
	}
	if len(rep.Inserted) > 0 {
		fmt.Fprintln(out)
		printJobs(out, rep.Inserted)
	}
	return nil
}
