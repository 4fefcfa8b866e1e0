// Package dedup drops postings that are already known or that fuzzily
// repeat a posting accepted earlier.
package dedup

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/amishk599/jobscout/internal/model"
)

// DefaultThreshold is the similarity ratio above which two title/company
// keys are treated as the same posting.
const DefaultThreshold = 0.85

// abbreviations are expanded before comparing keys so that "Sr. SWE" and
// "Senior Software Engineer" collapse to the same words.
var abbreviations = map[string]string{
	"sr":   "senior",
	"jr":   "junior",
	"swe":  "software engineer",
	"sde":  "software engineer",
	"eng":  "engineer",
	"engr": "engineer",
	"dev":  "developer",
	"mgr":  "manager",
	"mgmt": "management",
	"&":    "and",
}

// Deduplicator filters a batch of jobs against known IDs and fuzzy keys.
type Deduplicator struct {
	threshold float64
}

// New returns a Deduplicator. A threshold outside (0, 1] selects DefaultThreshold.
func New(threshold float64) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Deduplicator{threshold: threshold}
}

// Threshold returns the configured similarity threshold.
func (d *Deduplicator) Threshold() float64 { return d.threshold }

// Dedup returns the jobs that are neither known by ID nor similar to an
// existing or already-accepted title/company key. Accepted jobs keep their
// input order. existingPairs holds "title company" strings of stored jobs.
func (d *Deduplicator) Dedup(jobs []model.NormalizedJob, existingIDs map[string]struct{}, existingPairs []string) []model.NormalizedJob {
	seenIDs := make(map[string]struct{}, len(existingIDs)+len(jobs))
	for id := range existingIDs {
		seenIDs[id] = struct{}{}
	}

	keys := make([][]string, 0, len(existingPairs)+len(jobs))
	for _, p := range existingPairs {
		if k := normalizeKey(p); k != "" {
			keys = append(keys, splitChars(k))
		}
	}

	out := make([]model.NormalizedJob, 0, len(jobs))
	for _, job := range jobs {
		if _, dup := seenIDs[job.ID]; dup {
			continue
		}
		key := splitChars(PairKey(job.Title, job.Company))
		if d.similarToAny(key, keys) {
			continue
		}
		seenIDs[job.ID] = struct{}{}
		keys = append(keys, key)
		out = append(out, job)
	}
	return out
}

func (d *Deduplicator) similarToAny(key []string, keys [][]string) bool {
	if len(key) == 0 {
		return false
	}
	m := difflib.NewMatcher(key, nil)
	for _, other := range keys {
		m.SetSeq2(other)
		// Cheap upper bounds first; Ratio is quadratic.
		if m.RealQuickRatio() <= d.threshold || m.QuickRatio() <= d.threshold {
			continue
		}
		if m.Ratio() > d.threshold {
			return true
		}
	}
	return false
}

// Ratio returns the sequence-matching similarity of two title/company pairs
// after normalization.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(splitChars(normalizeKey(a)), splitChars(normalizeKey(b))).Ratio()
}

// PairKey builds the normalized "title company" key used for fuzzy matching.
func PairKey(title, company string) string {
	return normalizeKey(title + " " + company)
}

// normalizeKey lowercases, strips punctuation, expands abbreviations, and
// collapses whitespace.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", " & ")
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '&' || r == '+' || r == '#' {
			return r
		}
		return ' '
	}, s)

	words := strings.Fields(cleaned)
	for i, w := range words {
		if full, ok := abbreviations[w]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

func splitChars(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}
