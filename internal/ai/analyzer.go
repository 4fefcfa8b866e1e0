package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/amishk599/jobscout/internal/model"
)

// JobAnalyzer turns a stored job into the structured analysis used for
// resume fragment selection.
type JobAnalyzer interface {
	Analyze(ctx context.Context, job model.NormalizedJob) (model.JobAnalysis, error)
}

// LLMJobAnalyzer implements JobAnalyzer using an LLM.
type LLMJobAnalyzer struct {
	provider LLMProvider
	tmpl     *template.Template
	logger   *slog.Logger
}

// NewLLMJobAnalyzer creates an analyzer backed by provider.
func NewLLMJobAnalyzer(provider LLMProvider, tmpl *template.Template, logger *slog.Logger) *LLMJobAnalyzer {
	return &LLMJobAnalyzer{
		provider: provider,
		tmpl:     tmpl,
		logger:   logger,
	}
}

// Analyze renders the prompt, calls the provider and validates the answer.
func (a *LLMJobAnalyzer) Analyze(ctx context.Context, job model.NormalizedJob) (model.JobAnalysis, error) {
	if strings.TrimSpace(job.Description) == "" {
		return model.JobAnalysis{}, fmt.Errorf("job %s has no description", job.ID)
	}

	var promptBuf bytes.Buffer
	if err := a.tmpl.Execute(&promptBuf, struct {
		Title, Company, Description string
	}{job.Title, job.Company, job.Description}); err != nil {
		return model.JobAnalysis{}, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := a.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return model.JobAnalysis{}, fmt.Errorf("llm complete: %w", err)
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		return model.JobAnalysis{}, fmt.Errorf("parse analysis: %w", err)
	}
	if a.logger != nil {
		a.logger.Debug("analyzed job with llm",
			"job_id", job.ID,
			"required", len(analysis.RequiredSkills),
			"preferred", len(analysis.PreferredSkills),
		)
	}
	return analysis, nil
}

// rawAnalysis is the JSON shape returned by the LLM (matches jobAnalysisSchema).
type rawAnalysis struct {
	RequiredSkills  []string `json:"required_skills"`
	PreferredSkills []string `json:"preferred_skills"`
	Seniority       string   `json:"seniority"`
	Summary         string   `json:"summary"`
}

// parseAnalysis validates raw against the schema and decodes it. Gemini may
// wrap JSON in a markdown fence even in JSON mode, so fences are stripped.
func parseAnalysis(raw string) (model.JobAnalysis, error) {
	raw = cleanJSONBlock(raw)
	if err := validateAnalysis(raw); err != nil {
		return model.JobAnalysis{}, err
	}

	var ra rawAnalysis
	if err := json.Unmarshal([]byte(raw), &ra); err != nil {
		return model.JobAnalysis{}, fmt.Errorf("unmarshal analysis JSON: %w", err)
	}
	return model.JobAnalysis{
		RequiredSkills:  cleanSkills(ra.RequiredSkills),
		PreferredSkills: cleanSkills(ra.PreferredSkills),
		Seniority:       ra.Seniority,
		Summary:         strings.TrimSpace(ra.Summary),
	}, nil
}

// cleanSkills trims names and drops blanks and case-insensitive repeats.
func cleanSkills(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	if len(out) > maxSkills {
		out = out[:maxSkills]
	}
	return out
}

func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// FallbackAnalyzer tries primary and falls back to secondary when it fails.
type FallbackAnalyzer struct {
	primary   JobAnalyzer
	secondary JobAnalyzer
	logger    *slog.Logger
}

func NewFallbackAnalyzer(primary, secondary JobAnalyzer, logger *slog.Logger) *FallbackAnalyzer {
	return &FallbackAnalyzer{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackAnalyzer) Analyze(ctx context.Context, job model.NormalizedJob) (model.JobAnalysis, error) {
	analysis, err := f.primary.Analyze(ctx, job)
	if err == nil {
		return analysis, nil
	}
	if ctx.Err() != nil {
		return model.JobAnalysis{}, err
	}
	f.logger.Warn("llm analysis failed, using skill taxonomy", "job_id", job.ID, "error", err)
	return f.secondary.Analyze(ctx, job)
}
