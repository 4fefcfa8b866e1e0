package model

// FragmentKind distinguishes resume bullets from projects.
type FragmentKind string

const (
	FragmentBullet  FragmentKind = "experience_bullet"
	FragmentProject FragmentKind = "project"
)

// JobAnalysis is the structured reading of a job description used for
// fragment selection.
type JobAnalysis struct {
	RequiredSkills  []string
	PreferredSkills []string
	Seniority       string
	Summary         string
}

// ScoredFragment is a resume bullet or project with its relevance score.
type ScoredFragment struct {
	Kind          FragmentKind
	Text          string
	Origin        string // company for bullets, project name for projects
	Score         float64
	MatchedSkills []string
	Reason        string
}
