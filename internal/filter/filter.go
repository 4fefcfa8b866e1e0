// Package filter drops discovered jobs the user never wants to see before
// they are deduplicated and ranked.
package filter

import (
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

// Ensure TitleAndLocationFilter implements model.JobFilter.
var _ model.JobFilter = (*TitleAndLocationFilter)(nil)

// Rules lists case-insensitive substrings. Empty include lists match all.
type Rules struct {
	TitleKeywords        []string
	TitleExcludeKeywords []string
	Locations            []string
	ExcludeLocations     []string
}

// TitleAndLocationFilter matches jobs whose title contains any of the title
// keywords and whose location contains any of the location keywords, unless
// an exclude keyword also matches. Remote jobs satisfy a "remote" location
// keyword even when the location field names a city.
type TitleAndLocationFilter struct {
	rules Rules
}

// NewTitleAndLocationFilter lowercases rules once up front.
func NewTitleAndLocationFilter(rules Rules) *TitleAndLocationFilter {
	return &TitleAndLocationFilter{rules: Rules{
		TitleKeywords:        lowerAll(rules.TitleKeywords),
		TitleExcludeKeywords: lowerAll(rules.TitleExcludeKeywords),
		Locations:            lowerAll(rules.Locations),
		ExcludeLocations:     lowerAll(rules.ExcludeLocations),
	}}
}

// Empty reports whether the filter passes every job.
func (f *TitleAndLocationFilter) Empty() bool {
	r := f.rules
	return len(r.TitleKeywords)+len(r.TitleExcludeKeywords)+len(r.Locations)+len(r.ExcludeLocations) == 0
}

// Match reports whether job passes the include and exclude rules.
func (f *TitleAndLocationFilter) Match(job model.NormalizedJob) bool {
	title := strings.ToLower(job.Title)
	location := strings.ToLower(job.Location)
	if job.Remote && !strings.Contains(location, "remote") {
		location += " remote"
	}

	if containsAny(title, f.rules.TitleExcludeKeywords) {
		return false
	}
	if len(f.rules.TitleKeywords) > 0 && !containsAny(title, f.rules.TitleKeywords) {
		return false
	}
	if containsAny(location, f.rules.ExcludeLocations) {
		return false
	}
	if len(f.rules.Locations) > 0 && !containsAny(location, f.rules.Locations) {
		return false
	}
	return true
}

// Apply returns the jobs that match, in order.
func Apply(f model.JobFilter, jobs []model.NormalizedJob) []model.NormalizedJob {
	if f == nil {
		return jobs
	}
	out := jobs[:0:0]
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
