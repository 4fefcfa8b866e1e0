package notifier

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new job matches to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, jobs []model.NormalizedJob) error {
	for _, j := range jobs {
		args := []any{
			"id", j.ID,
			"company", j.Company,
			"title", j.Title,
			"location", j.Location,
			"score", j.MatchScore,
			"tier", j.MatchTier,
			"url", j.SourceURL,
		}
		if skills := j.SkillNames(); len(skills) > 0 {
			args = append(args, "skills", strings.Join(skills, ","))
		}
		if j.PostedDate != "" {
			args = append(args, "posted", j.PostedDate)
		}
		n.logger.Info("new job match", args...)
	}
	return nil
}
