package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/ai"
	"github.com/amishk599/jobscout/internal/fragment"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/normalize"
)

var tailorJSON bool

var tailorCmd = &cobra.Command{
	Use:   "tailor <job-id>",
	Short: "Pick the resume bullets and projects that fit a stored job",
	Long:  "Analyzes the stored job description (with the configured LLM, or the skill taxonomy when AI is disabled) and scores every bullet and project of the stored profile against it.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTailor,
}

func init() {
	tailorCmd.Flags().BoolVar(&tailorJSON, "json", false, "print the analysis and fragments as JSON")
	rootCmd.AddCommand(tailorCmd)
}

// tailorer analyzes a job and selects profile fragments for it.
type tailorer struct {
	analyzer ai.JobAnalyzer
	selector *fragment.Selector
	profile  *model.UserProfile
}

func newTailorer(analyzer ai.JobAnalyzer, normalizer *normalize.Normalizer, profile *model.UserProfile) *tailorer {
	return &tailorer{
		analyzer: analyzer,
		selector: fragment.NewSelector(normalizer),
		profile:  profile,
	}
}

func (t *tailorer) Tailor(ctx context.Context, job model.NormalizedJob) (model.JobAnalysis, fragment.Selection, error) {
	analysis, err := t.analyzer.Analyze(ctx, job)
	if err != nil {
		return model.JobAnalysis{}, fragment.Selection{}, fmt.Errorf("analyze job %s: %w", job.ID, err)
	}
	return analysis, t.selector.Select(analysis, t.profile), nil
}

func runTailor(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
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
	profile, err := st.LoadProfile(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("no profile stored; run `jobscout profile import <file>` first")
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	normalizer := normalize.New(nil)
	analyzer, cleanup, err := setupAnalyzer(ctx, cfg, normalizer, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	analysis, sel, err := newTailorer(analyzer, normalizer, profile).Tailor(ctx, job)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if tailorJSON {
		return printJSON(out, struct {
			JobID    string                 `json:"job_id"`
			Analysis model.JobAnalysis      `json:"analysis"`
			Bullets  []model.ScoredFragment `json:"bullets"`
			Projects []model.ScoredFragment `json:"projects"`
		}{job.ID, analysis, sel.Bullets, sel.Projects})
	}
	printTailoring(out, job, analysis, sel)
	return nil
}

func printTailoring(w io.Writer, job model.NormalizedJob, analysis model.JobAnalysis, sel fragment.Selection) {
	fmt.Fprintf(w, "%s at %s\n", job.Title, job.Company)
	if analysis.Seniority != "" {
		fmt.Fprintf(w, "Seniority: %s\n", analysis.Seniority)
	}
	if analysis.Summary != "" {
		fmt.Fprintf(w, "Summary:   %s\n", analysis.Summary)
	}
	if len(analysis.RequiredSkills) > 0 {
		fmt.Fprintf(w, "Required:  %s\n", strings.Join(analysis.RequiredSkills, ", "))
	}
	if len(analysis.PreferredSkills) > 0 {
		fmt.Fprintf(w, "Preferred: %s\n", strings.Join(analysis.PreferredSkills, ", "))
	}

	section := func(title string, frags []model.ScoredFragment) {
		fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("─", len(title)))
		if len(frags) == 0 {
			fmt.Fprintln(w, "  (none overlap this job's skills)")
			return
		}
		for i, f := range frags {
			fmt.Fprintf(w, "%d. [%.2f] %s\n   %s · %s\n", i+1, f.Score, f.Text, f.Origin, f.Reason)
		}
	}
	section("Bullets", sel.Bullets)
	section("Projects", sel.Projects)
}
