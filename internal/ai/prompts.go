package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/job_analysis.md
var jobAnalysisPromptRaw string

// JobAnalysisTemplate is the parsed prompt template for job analysis.
var JobAnalysisTemplate = template.Must(template.New("job_analysis").Parse(jobAnalysisPromptRaw))
