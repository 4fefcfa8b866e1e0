package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/model"
)

var (
	jobsTier  string
	jobsAll   bool
	jobsLimit int
	jobsJSON  bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List stored jobs",
	Long:  "Lists stored jobs by match score, best first. Archived jobs are hidden unless --all is set.",
	RunE:  runJobs,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show one stored job with its skills",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var jobsArchiveCmd = &cobra.Command{
	Use:   "archive <job-id>...",
	Short: "Archive jobs so they no longer show up",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runJobsArchive,
}

func init() {
	jobsCmd.Flags().StringVar(&jobsTier, "tier", "", "only show jobs in this tier (high, medium, low)")
	jobsCmd.Flags().BoolVar(&jobsAll, "all", false, "include archived jobs")
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 50, "maximum number of jobs to list (0 = no limit)")
	jobsCmd.Flags().BoolVar(&jobsJSON, "json", false, "print jobs as JSON")
	jobsCmd.AddCommand(jobsShowCmd, jobsArchiveCmd)
	rootCmd.AddCommand(jobsCmd)
}

func parseTier(s string) (model.MatchTier, error) {
	switch t := model.MatchTier(strings.ToLower(strings.TrimSpace(s))); t {
	case "", model.TierHigh, model.TierMedium, model.TierLow:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tier %q (want high, medium or low)", s)
	}
}

func runJobs(cmd *cobra.Command, args []string) error {
	tier, err := parseTier(jobsTier)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	jobs, err := st.ListJobs(ctx, model.JobQuery{Tier: tier, IncludeArchived: jobsAll, Limit: jobsLimit})
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	out := cmd.OutOrStdout()
	if jobsJSON {
		return printJSON(out, jobs)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs stored yet; run `jobscout run` first.")
		return nil
	}
	printJobs(out, jobs)
	fmt.Fprintf(out, "\n%d jobs\n", len(jobs))
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	job, err := st.GetJob(ctx, args[0])
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("no job with id %s", args[0])
	}
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n%s · %s\n", job.Title, job.Company, job.Location)
	fmt.Fprintf(out, "Match: %.0f%% (%s)   Source: %s   Posted: %s\n", job.MatchScore*100, job.MatchTier, job.Source, job.PostedDate)
	fmt.Fprintf(out, "URL: %s\n", job.SourceURL)
	if len(job.RequiredSkills) > 0 {
		fmt.Fprintln(out, "\nSkills:")
		for _, s := range job.RequiredSkills {
			mark := "·"
			if s.UserHas != nil {
				mark = "✗"
				if *s.UserHas {
					mark = "✓"
				}
			}
			fmt.Fprintf(out, "  %s %s\n", mark, s.Name)
		}
	}
	if job.Archived {
		fmt.Fprintln(out, "\n(archived)")
	}
	return nil
}

func runJobsArchive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	var failed int
	for _, id := range args {
		if err := st.ArchiveJob(ctx, id); err != nil {
			fmt.Fprintf(out, "%s: %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "%s: archived\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs could not be archived", failed, len(args))
	}
	return nil
}
