// Package query expands a role interest into search-engine query strings.
package query

import "strings"

// DefaultMaxQueries caps Generate when the caller passes a non-positive max.
const DefaultMaxQueries = 12

// Generator expands roles using a synonym table and level modifiers.
// Output is deterministic for identical inputs.
type Generator struct {
	synonyms map[string][]string
}

// NewGenerator returns a generator using the built-in synonym table merged
// with extra. Extra synonyms for a role are tried before the built-in ones.
func NewGenerator(extra map[string][]string) *Generator {
	merged := make(map[string][]string, len(defaultSynonyms)+len(extra))
	for role, syns := range defaultSynonyms {
		merged[role] = syns
	}
	for role, syns := range extra {
		key := normalize(role)
		if key == "" {
			continue
		}
		merged[key] = append(append([]string{}, syns...), merged[key]...)
	}
	return &Generator{synonyms: merged}
}

// Generate returns up to maxQueries queries for role × location × modifier.
// The unmodified query for each role and location comes first, followed by
// the level modifiers in order. A blank role yields nil.
func (g *Generator) Generate(role, location string, remote bool, maxQueries int) []string {
	role = collapse(role)
	if role == "" {
		return nil
	}
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}

	roles := append([]string{role}, g.synonyms[normalize(role)]...)
	locations := locationsFor(location, remote)
	modifiers := append([]string{""}, modifiersFor(role)...)

	seen := make(map[string]struct{})
	var out []string
	for _, r := range roles {
		for _, loc := range locations {
			for _, mod := range modifiers {
				if mod != "" && containsWords(r, mod) {
					continue
				}
				q := join(r, loc, mod)
				key := normalize(q)
				if key == "" {
					continue
				}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, q)
				if len(out) == maxQueries {
					return out
				}
			}
		}
	}
	return out
}

func locationsFor(location string, remote bool) []string {
	location = collapse(location)
	locs := []string{location}
	if remote && !strings.Contains(strings.ToLower(location), "remote") {
		locs = append(locs, "Remote")
	}
	return locs
}

// modifiersFor picks level modifiers from how senior the title sounds.
func modifiersFor(role string) []string {
	words := strings.Fields(strings.ToLower(role))
	switch {
	case hasAny(words, seniorMarkers):
		return nil
	case hasAny(words, internMarkers):
		return internModifiers
	case hasAny(words, juniorMarkers) || strings.Contains(strings.ToLower(role), "new grad"):
		return juniorModifiers
	default:
		return defaultModifiers
	}
}

func hasAny(words, markers []string) bool {
	for _, w := range words {
		w = strings.Trim(w, ",()")
		for _, m := range markers {
			if w == m {
				return true
			}
		}
	}
	return false
}

// containsWords reports whether every word of phrase appears in s.
func containsWords(s, phrase string) bool {
	words := strings.Fields(strings.ToLower(s))
	for _, p := range strings.Fields(strings.ToLower(phrase)) {
		if !hasAny(words, []string{p}) {
			return false
		}
	}
	return true
}

func join(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func normalize(s string) string {
	return strings.ToLower(collapse(s))
}
