package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// Fixed-width UTC text so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}

func encodeSkills(skills []model.RequiredSkill) (string, error) {
	if skills == nil {
		skills = []model.RequiredSkill{}
	}
	b, err := json.Marshal(skills)
	if err != nil {
		return "", fmt.Errorf("encoding required skills: %w", err)
	}
	return string(b), nil
}

func decodeSkills(raw string) ([]model.RequiredSkill, error) {
	if raw == "" {
		return nil, nil
	}
	var skills []model.RequiredSkill
	if err := json.Unmarshal([]byte(raw), &skills); err != nil {
		return nil, fmt.Errorf("decoding required skills: %w", err)
	}
	return skills, nil
}

func checkTerminal(run model.DiscoveryRun) error {
	if !run.Status.Terminal() {
		return fmt.Errorf("finishing run %s with non-terminal status %q: %w", run.ID, run.Status, model.ErrContract)
	}
	return nil
}
