// Package normalize converts raw source postings into canonical job records.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// idLength is the number of hex characters kept from the digest.
const idLength = 16

// JobID derives the stable job identifier from title, company, and location.
func JobID(title, company, location string) string {
	key := strings.ToLower(title) + "|" + strings.ToLower(company) + "|" + strings.ToLower(location)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:idLength]
}

// Normalizer turns RawPostings into NormalizedJobs using a skill taxonomy.
type Normalizer struct {
	taxonomy []string
	patterns []*regexp.Regexp
	now      func() time.Time
}

// New builds a Normalizer. A nil taxonomy selects DefaultTaxonomy.
func New(taxonomy []string) *Normalizer {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy
	}
	n := &Normalizer{now: time.Now}
	for _, skill := range taxonomy {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		n.taxonomy = append(n.taxonomy, skill)
		n.patterns = append(n.patterns, wordPattern(skill))
	}
	return n
}

// WithClock sets the clock used for DiscoveredAt.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// wordPattern matches skill as a whole word, case-insensitively. Boundaries
// are explicit so skills ending in symbols ("C++", "C#") still match.
func wordPattern(skill string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\pL\pN_+#])` + regexp.QuoteMeta(skill) + `(?:$|[^\pL\pN_+#])`)
}

// Normalize converts one raw posting. It never fails: missing fields stay empty.
func (n *Normalizer) Normalize(raw model.RawPosting) model.NormalizedJob {
	title := collapse(raw.Title)
	company := collapse(raw.Company)
	location := collapse(raw.Location)
	description := strings.TrimSpace(raw.Description)

	skills := n.ExtractSkills(description)
	required := make([]model.RequiredSkill, 0, len(skills))
	for _, s := range skills {
		required = append(required, model.RequiredSkill{Name: s, Required: true})
	}

	return model.NormalizedJob{
		ID:             JobID(title, company, location),
		Title:          title,
		Company:        company,
		Location:       location,
		Remote:         isRemote(location, description),
		Description:    description,
		RequiredSkills: required,
		Source:         raw.Source,
		SourceURL:      strings.TrimSpace(raw.SourceURL),
		MatchScore:     0,
		MatchTier:      model.TierLow,
		PostedDate:     strings.TrimSpace(raw.PostedDate),
		DiscoveredAt:   n.now().UTC(),
	}
}

// NormalizeAll converts postings in order.
func (n *Normalizer) NormalizeAll(raws []model.RawPosting) []model.NormalizedJob {
	jobs := make([]model.NormalizedJob, 0, len(raws))
	for _, r := range raws {
		jobs = append(jobs, n.Normalize(r))
	}
	return jobs
}

// ExtractSkills returns taxonomy entries that occur in text as whole words,
// in taxonomy order.
func (n *Normalizer) ExtractSkills(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var found []string
	for i, re := range n.patterns {
		if re.MatchString(text) {
			found = append(found, n.taxonomy[i])
		}
	}
	return found
}

func isRemote(location, description string) bool {
	return strings.Contains(strings.ToLower(location), "remote") ||
		strings.Contains(strings.ToLower(description), "remote")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
