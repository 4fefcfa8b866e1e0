// Package fragment picks the resume bullets and projects most relevant to a
// job and explains each pick.
package fragment

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	MaxBullets  = 4
	MaxProjects = 3

	overlapWeight = 0.6
	impactWeight  = 0.3
	recencyWeight = 0.1

	defaultRecency = 0.5
)

var (
	percentPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)
	numberPattern  = regexp.MustCompile(`\d{2,}`)
)

// SkillExtractor finds known skill names in free text.
type SkillExtractor interface {
	ExtractSkills(text string) []string
}

// Selection is the outcome of scoring one profile against one job.
type Selection struct {
	Bullets  []model.ScoredFragment
	Projects []model.ScoredFragment
}

// Selector scores resume fragments against a job analysis.
type Selector struct {
	extractor SkillExtractor
	now       func() time.Time
}

// NewSelector creates a Selector. extractor may be nil, in which case only
// the skills declared on each experience or project count toward overlap.
func NewSelector(extractor SkillExtractor) *Selector {
	return &Selector{extractor: extractor, now: time.Now}
}

// WithClock overrides the clock used for recency scoring.
func (s *Selector) WithClock(now func() time.Time) *Selector {
	s.now = now
	return s
}

// Select returns at most MaxBullets bullets and MaxProjects projects, each
// list ordered by non-increasing score. Ties keep profile order.
func (s *Selector) Select(analysis model.JobAnalysis, profile *model.UserProfile) Selection {
	var sel Selection
	if profile == nil {
		return sel
	}
	required := requiredSkills(analysis)
	now := s.now()

	for _, exp := range profile.Experience {
		recency := Recency(exp, now)
		for _, bullet := range exp.Bullets {
			if strings.TrimSpace(bullet) == "" {
				continue
			}
			matched := matchSkills(required, exp.Skills, s.extract(bullet))
			overlap := fraction(len(matched), len(required))
			score := round4(overlapWeight*overlap + impactWeight*Impact(bullet) + recencyWeight*recency)
			sel.Bullets = append(sel.Bullets, model.ScoredFragment{
				Kind:          model.FragmentBullet,
				Text:          bullet,
				Origin:        exp.Company,
				Score:         score,
				MatchedSkills: matched,
				Reason:        reason(matched, score),
			})
		}
	}

	for _, p := range profile.Projects {
		matched := matchSkills(required, p.Skills, s.extract(p.Name+" "+p.Description))
		score := round4(fraction(len(matched), len(required)))
		sel.Projects = append(sel.Projects, model.ScoredFragment{
			Kind:          model.FragmentProject,
			Text:          projectText(p),
			Origin:        p.Name,
			Score:         score,
			MatchedSkills: matched,
			Reason:        reason(matched, score),
		})
	}

	sel.Bullets = top(sel.Bullets, MaxBullets)
	sel.Projects = top(sel.Projects, MaxProjects)
	return sel
}

func (s *Selector) extract(text string) []string {
	if s.extractor == nil {
		return nil
	}
	return s.extractor.ExtractSkills(text)
}

// Impact scores a bullet's evidence of measurable results, in [0,1].
func Impact(bullet string) float64 {
	score := 0.0
	if percentPattern.MatchString(bullet) {
		score += 0.5
	}
	if numberPattern.MatchString(bullet) {
		score += 0.3
	}
	if fields := strings.Fields(strings.TrimLeft(bullet, "-•* \t")); len(fields) > 0 {
		first := strings.ToLower(strings.Trim(fields[0], ".,;:"))
		if _, ok := strongVerbs[first]; ok {
			score += 0.2
		}
	}
	return math.Min(score, 1.0)
}

var endDateLayouts = []string{"2006-01-02", "2006-01", "2006", "Jan 2006", "January 2006", "01/2006"}

// Recency scores how recently an experience ended, relative to now.
func Recency(exp model.Experience, now time.Time) float64 {
	end := strings.TrimSpace(exp.EndDate)
	if exp.Current || strings.EqualFold(end, "present") || strings.EqualFold(end, "current") {
		return 1.0
	}
	var ended time.Time
	parsed := false
	for _, layout := range endDateLayouts {
		if t, err := time.Parse(layout, end); err == nil {
			ended, parsed = t, true
			break
		}
	}
	if !parsed {
		return defaultRecency
	}

	years := now.Sub(ended).Hours() / (24 * 365)
	switch {
	case years <= 1:
		return 0.9
	case years <= 2:
		return 0.7
	case years <= 4:
		return 0.4
	default:
		return 0.2
	}
}

// requiredSkills returns the analysis' required skills, trimmed and
// deduplicated case-insensitively, in their original order.
func requiredSkills(a model.JobAnalysis) []string {
	seen := make(map[string]struct{}, len(a.RequiredSkills))
	out := make([]string, 0, len(a.RequiredSkills))
	for _, s := range a.RequiredSkills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// matchSkills returns the required skills present in any of the given
// skill lists, in required order.
func matchSkills(required []string, lists ...[]string) []string {
	have := make(map[string]struct{})
	for _, list := range lists {
		for _, s := range list {
			have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
		}
	}
	var matched []string
	for _, r := range required {
		if _, ok := have[strings.ToLower(r)]; ok {
			matched = append(matched, r)
		}
	}
	return matched
}

func fraction(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func top(frags []model.ScoredFragment, n int) []model.ScoredFragment {
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].Score > frags[j].Score })
	if len(frags) > n {
		frags = frags[:n]
	}
	return frags
}

func reason(matched []string, score float64) string {
	pct := int(math.Round(score * 100))
	if len(matched) == 0 {
		return fmt.Sprintf("No direct skill match (%d%% relevant)", pct)
	}
	return fmt.Sprintf("Matches %s (%d%% relevant)", strings.Join(matched, ", "), pct)
}

func projectText(p model.Project) string {
	if p.Description == "" {
		return p.Name
	}
	return p.Name + ": " + p.Description
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
