package ai

import (
	"context"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

const summaryLimit = 240

// SkillExtractor finds known skills in free text.
type SkillExtractor interface {
	ExtractSkills(text string) []string
}

// TaxonomyAnalyzer is the no-LLM analyzer used when ai.enabled is false.
// Required skills come from the stored job, or the taxonomy when the job
// has none; seniority is read from the title.
type TaxonomyAnalyzer struct {
	extractor SkillExtractor
}

func NewTaxonomyAnalyzer(extractor SkillExtractor) *TaxonomyAnalyzer {
	return &TaxonomyAnalyzer{extractor: extractor}
}

func (t *TaxonomyAnalyzer) Analyze(_ context.Context, job model.NormalizedJob) (model.JobAnalysis, error) {
	skills := job.SkillNames()
	if len(skills) == 0 && t.extractor != nil {
		skills = t.extractor.ExtractSkills(job.Description)
	}
	return model.JobAnalysis{
		RequiredSkills: skills,
		Seniority:      seniorityFromTitle(job.Title),
		Summary:        firstSentence(job.Description),
	}, nil
}

var seniorityMarkers = []struct {
	level   string
	markers []string
}{
	{"intern", []string{"intern", "internship", "co-op"}},
	{"lead", []string{"staff", "principal", "lead", "head", "director"}},
	{"senior", []string{"senior", "sr"}},
	{"junior", []string{"junior", "jr", "entry", "graduate", "grad", "associate"}},
}

func seniorityFromTitle(title string) string {
	words := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !('a' <= r && r <= 'z') && r != '-'
	})
	for _, level := range seniorityMarkers {
		for _, w := range words {
			for _, m := range level.markers {
				if w == m {
					return level.level
				}
			}
		}
	}
	return "mid"
}

func firstSentence(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if i := strings.Index(text, ". "); i >= 0 {
		text = text[:i+1]
	}
	if len(text) > summaryLimit {
		cut := strings.LastIndex(text[:summaryLimit], " ")
		if cut <= 0 {
			cut = summaryLimit
		}
		text = text[:cut] + "..."
	}
	return text
}
