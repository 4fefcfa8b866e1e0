// Package rank scores jobs against the user's declared skills.
package rank

import (
	"math"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

// Tier thresholds, inclusive lower bounds.
const (
	HighThreshold   = 0.7
	MediumThreshold = 0.4
)

// Score returns the fraction of the job's required skills the profile
// declares, rounded to 4 decimals. A job without required skills scores 0.
func Score(job model.NormalizedJob, profile *model.UserProfile) float64 {
	required := requiredNames(job)
	if len(required) == 0 || profile == nil {
		return 0
	}
	have := profile.SkillSet()
	matched := 0
	for name := range required {
		if _, ok := have[name]; ok {
			matched++
		}
	}
	return round4(float64(matched) / float64(len(required)))
}

// TierFor maps a score to its match tier.
func TierFor(score float64) model.MatchTier {
	switch {
	case score >= HighThreshold:
		return model.TierHigh
	case score >= MediumThreshold:
		return model.TierMedium
	default:
		return model.TierLow
	}
}

// Rank returns a copy of job with MatchScore, MatchTier, and each skill's
// UserHas filled in. The input job is not modified.
func Rank(job model.NormalizedJob, profile *model.UserProfile) model.NormalizedJob {
	score := Score(job, profile)
	job.MatchScore = score
	job.MatchTier = TierFor(score)

	var have map[string]struct{}
	if profile != nil {
		have = profile.SkillSet()
	}
	skills := make([]model.RequiredSkill, len(job.RequiredSkills))
	for i, s := range job.RequiredSkills {
		_, ok := have[strings.ToLower(strings.TrimSpace(s.Name))]
		userHas := ok
		s.UserHas = &userHas
		skills[i] = s
	}
	job.RequiredSkills = skills
	return job
}

// RankAll ranks jobs in order; the result keeps input order.
func RankAll(jobs []model.NormalizedJob, profile *model.UserProfile) []model.NormalizedJob {
	out := make([]model.NormalizedJob, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, Rank(j, profile))
	}
	return out
}

// requiredNames is the lowercased set of required skill names.
func requiredNames(job model.NormalizedJob) map[string]struct{} {
	set := make(map[string]struct{}, len(job.RequiredSkills))
	for _, s := range job.RequiredSkills {
		if !s.Required {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
