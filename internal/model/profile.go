package model

import "strings"

// ProfileSkill is a declared user skill.
type ProfileSkill struct {
	Name  string   `json:"name" yaml:"name"`
	Years *float64 `json:"years,omitempty" yaml:"years,omitempty"`
}

// Experience is one role on the user's resume.
type Experience struct {
	Title     string   `json:"title" yaml:"title"`
	Company   string   `json:"company" yaml:"company"`
	StartDate string   `json:"startDate,omitempty" yaml:"start_date,omitempty"`
	EndDate   string   `json:"endDate,omitempty" yaml:"end_date,omitempty"` // "YYYY-MM", "YYYY", or "present"
	Current   bool     `json:"current,omitempty" yaml:"current,omitempty"`
	Bullets   []string `json:"bullets" yaml:"bullets"`
	Skills    []string `json:"skills" yaml:"skills"`
}

// Project is a side or portfolio project.
type Project struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Skills      []string `json:"skills" yaml:"skills"`
}

// UserProfile is the read-only input to ranking and fragment selection.
type UserProfile struct {
	Name       string         `json:"name" yaml:"name"`
	Skills     []ProfileSkill `json:"skills" yaml:"skills"`
	Experience []Experience   `json:"experience" yaml:"experience"`
	Projects   []Project      `json:"projects" yaml:"projects"`
}

// SkillSet returns the profile's skill names, lowercased, as a set.
func (p *UserProfile) SkillSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// RoleInterest is a role the user wants discovery to search for.
type RoleInterest struct {
	Title    string
	Location string
	Remote   bool
	Synonyms []string
}
