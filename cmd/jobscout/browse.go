package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/browse"
	"github.com/amishk599/jobscout/internal/discovery"
	"github.com/amishk599/jobscout/internal/fragment"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/normalize"
	"github.com/amishk599/jobscout/internal/progress"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored jobs interactively (TUI)",
	Long:  "Shows the tier picker, then a split list/detail view of stored jobs with skills, match reasons and resume fragments. Discovery can be run from the picker.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Any log output while the TUI owns the terminal corrupts the display.
	silentLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	normalizer := normalize.New(nil)
	analyzer, cleanup, err := setupAnalyzer(ctx, cfg, normalizer, silentLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	actions := browse.Actions{
		Archive: func(ctx context.Context, jobID string) error {
			return st.ArchiveJob(ctx, jobID)
		},
		Tailor: func(ctx context.Context, job model.NormalizedJob) (fragment.Selection, error) {
			profile, err := st.LoadProfile(ctx)
			if errors.Is(err, model.ErrNotFound) {
				return fragment.Selection{}, errors.New("no profile stored; run `jobscout profile import <file>`")
			}
			if err != nil {
				return fragment.Selection{}, err
			}
			_, sel, err := newTailorer(analyzer, normalizer, profile).Tailor(ctx, job)
			return sel, err
		},
	}

	tracker := newTracker()
	var (
		orch    *discovery.Orchestrator
		sources *sourceSet
	)
	defer func() {
		if sources != nil {
			sources.Close()
		}
	}()

	for {
		stored, err := st.ListJobs(ctx, model.JobQuery{})
		if err != nil {
			return fmt.Errorf("list jobs: %w", err)
		}
		choices := browse.CountChoices(browse.DefaultChoices(), stored)
		idx, err := browse.RunPicker(choices)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if idx < 0 {
			return nil
		}
		choice := choices[idx]
		title := choice.Label

		if choice.Discover {
			if orch == nil {
				httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
				sources, err = buildSources(ctx, cfg, httpClient, silentLogger)
				if err != nil {
					return err
				}
				orch = newOrchestrator(cfg, st, sources.sources, "browse", silentLogger).
					WithNotifier(setupNotifier(cfg, httpClient, silentLogger)).
					WithProgress(tracker)
			}

			var res model.RunResult
			err := browse.RunLoader(ctx, "Discovering jobs", progressLine(tracker), func(ctx context.Context) error {
				var runErr error
				res, runErr = orch.Run(ctx, nil)
				return runErr
			})
			if err != nil {
				fmt.Printf("Discovery failed: %v\n", err)
				continue
			}
			fmt.Printf("Run %s %s: %d candidates, %d new\n", res.RunID, res.Status, res.JobsFound, res.JobsNew)
			title = "All jobs"
		}

		jobs, err := st.ListJobs(ctx, model.JobQuery{Tier: choice.Tier})
		if err != nil {
			return fmt.Errorf("list jobs: %w", err)
		}

		wantQuit, err := browse.Run(title, jobs, actions)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
	}
}

// progressLine renders the latest run snapshot for the loader.
func progressLine(t *progress.Tracker) func() string {
	return func() string {
		snap, ok := t.Latest()
		if !ok {
			return ""
		}
		switch snap.Stage {
		case progress.StageSearching:
			return fmt.Sprintf("searching %d/%d queries, %d postings", snap.QueriesDone, snap.QueriesTotal, snap.JobsFound)
		case "":
			return ""
		default:
			return string(snap.Stage)
		}
	}
}
