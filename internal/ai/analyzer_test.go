package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"text/template"

	"github.com/amishk599/jobscout/internal/model"
)

// mockProvider is a stub LLMProvider for testing.
type mockProvider struct {
	response string
	err      error
	prompt   string
}

func (m *mockProvider) Complete(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAnalyzer(provider LLMProvider) *LLMJobAnalyzer {
	tmpl := template.Must(template.New("test").Parse("{{.Title}} at {{.Company}}: {{.Description}}"))
	return NewLLMJobAnalyzer(provider, tmpl, nil)
}

func jobWithDesc(desc string) model.NormalizedJob {
	return model.NormalizedJob{
		ID:          "j1",
		Company:     "testco",
		Title:       "Software Engineer",
		Description: desc,
	}
}

const validJSON = `{
	"required_skills": ["Go", "Kubernetes", "go"],
	"preferred_skills": ["Terraform"],
	"seniority": "senior",
	"summary": "  Build distributed systems.  "
}`

func TestAnalyze_SkipsJobWithNoDescription(t *testing.T) {
	provider := &mockProvider{}
	analyzer := newTestAnalyzer(provider)

	if _, err := analyzer.Analyze(context.Background(), jobWithDesc("  ")); err == nil {
		t.Fatal("expected error for empty description")
	}
	if provider.prompt != "" {
		t.Error("provider should not be called without a description")
	}
}

func TestAnalyze_ParsesAnalysis(t *testing.T) {
	provider := &mockProvider{response: validJSON}
	analyzer := newTestAnalyzer(provider)

	got, err := analyzer.Analyze(context.Background(), jobWithDesc("we use Go and Kubernetes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.RequiredSkills) != 2 || got.RequiredSkills[0] != "Go" {
		t.Errorf("RequiredSkills = %v, want [Go Kubernetes]", got.RequiredSkills)
	}
	if got.Seniority != "senior" {
		t.Errorf("Seniority = %q", got.Seniority)
	}
	if got.Summary != "Build distributed systems." {
		t.Errorf("Summary = %q", got.Summary)
	}
	if !strings.Contains(provider.prompt, "Software Engineer at testco") {
		t.Errorf("prompt not rendered from job: %q", provider.prompt)
	}
}

func TestAnalyze_ProviderError(t *testing.T) {
	analyzer := newTestAnalyzer(&mockProvider{err: errors.New("network error")})

	if _, err := analyzer.Analyze(context.Background(), jobWithDesc("some description")); err == nil {
		t.Fatal("expected error from provider failure")
	}
}

func TestParseAnalysis_StripsCodeFence(t *testing.T) {
	got, err := parseAnalysis("```json\n" + validJSON + "\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Seniority != "senior" {
		t.Errorf("Seniority = %q", got.Seniority)
	}
}

func TestParseAnalysis_RejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing field": `{"required_skills":[],"preferred_skills":[],"seniority":"mid"}`,
		"bad enum":      `{"required_skills":[],"preferred_skills":[],"seniority":"wizard","summary":""}`,
		"extra field":   `{"required_skills":[],"preferred_skills":[],"seniority":"mid","summary":"","salary":1}`,
		"wrong type":    `{"required_skills":"Go","preferred_skills":[],"seniority":"mid","summary":""}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseAnalysis(raw)
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if len(se.Fields) == 0 {
				t.Error("expected at least one field error")
			}
		})
	}
}

func TestParseAnalysis_InvalidJSON(t *testing.T) {
	if _, err := parseAnalysis("not json"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestFallbackAnalyzer_UsesTaxonomyOnFailure(t *testing.T) {
	primary := newTestAnalyzer(&mockProvider{err: errors.New("quota exceeded")})
	secondary := NewTaxonomyAnalyzer(nil)
	f := NewFallbackAnalyzer(primary, secondary, discardLogger())

	job := jobWithDesc("Go services.")
	job.RequiredSkills = []model.RequiredSkill{{Name: "Go", Required: true}}
	got, err := f.Analyze(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.RequiredSkills) != 1 || got.RequiredSkills[0] != "Go" {
		t.Errorf("RequiredSkills = %v", got.RequiredSkills)
	}
}

func TestFallbackAnalyzer_PrefersPrimary(t *testing.T) {
	primary := newTestAnalyzer(&mockProvider{response: validJSON})
	f := NewFallbackAnalyzer(primary, NewTaxonomyAnalyzer(nil), discardLogger())

	got, err := f.Analyze(context.Background(), jobWithDesc("Go services."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Seniority != "senior" {
		t.Errorf("expected primary analysis, got %+v", got)
	}
}

func TestJobAnalysisTemplateRenders(t *testing.T) {
	var b strings.Builder
	err := JobAnalysisTemplate.Execute(&b, struct{ Title, Company, Description string }{"SRE", "Acme", "Run Kubernetes."})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(b.String(), "Run Kubernetes.") || !strings.Contains(b.String(), "Company: Acme") {
		t.Errorf("template output missing job fields:\n%s", b.String())
	}
}
