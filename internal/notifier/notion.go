package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gnt "github.com/dstotijn/go-notion"

	"github.com/amishk599/jobscout/internal/model"
)

// Ensure NotionNotifier implements model.Notifier.
var _ model.Notifier = (*NotionNotifier)(nil)

// NotionNotifier adds each new match as a row in a Notion database. The
// database needs these properties: Position (title), Company, Location
// (text), Job Posting (URL), Match (number), Tier, Source, Work Mode
// (select), Skills (multi-select).
type NotionNotifier struct {
	api        *gnt.Client
	databaseID string
	logger     *slog.Logger
}

// NewNotionNotifier returns a notifier writing to databaseID.
func NewNotionNotifier(token, databaseID string, httpClient *http.Client, logger *slog.Logger) *NotionNotifier {
	return &NotionNotifier{
		api:        gnt.NewClient(token, gnt.WithHTTPClient(httpClient)),
		databaseID: databaseID,
		logger:     logger,
	}
}

// Ping checks that the database is reachable with the configured token.
func (n *NotionNotifier) Ping(ctx context.Context) error {
	_, err := n.api.QueryDatabase(ctx, n.databaseID, &gnt.DatabaseQuery{PageSize: 1})
	if err != nil {
		return fmt.Errorf("query notion database: %w", err)
	}
	return nil
}

// Notify creates one page per job. Returns an error only if ALL pages fail.
func (n *NotionNotifier) Notify(ctx context.Context, jobs []model.NormalizedJob) error {
	if len(jobs) == 0 {
		return nil
	}
	failures := 0
	for _, j := range jobs {
		props := buildJobPageProperties(j)
		page, err := n.api.CreatePage(ctx, gnt.CreatePageParams{
			ParentType:             gnt.ParentTypeDatabase,
			ParentID:               n.databaseID,
			DatabasePageProperties: &props,
		})
		if err != nil {
			n.logger.Error("notion page creation failed", "company", j.Company, "title", j.Title, "error", err)
			failures++
			continue
		}
		n.logger.Info("notion page created", "company", j.Company, "title", j.Title, "page_id", page.ID)
	}
	if failures == len(jobs) {
		return fmt.Errorf("all %d notion pages failed", failures)
	}
	return nil
}

// richText builds a Notion rich_text slice from a plain string.
func richText(s string) []gnt.RichText {
	if s == "" {
		return nil
	}
	return []gnt.RichText{{Text: &gnt.Text{Content: s}}}
}

func buildJobPageProperties(j model.NormalizedJob) gnt.DatabasePageProperties {
	score := j.MatchScore
	props := gnt.DatabasePageProperties{
		"Position": gnt.DatabasePageProperty{Title: richText(j.Title)},
		"Match":    gnt.DatabasePageProperty{Number: &score},
		"Tier":     gnt.DatabasePageProperty{Select: &gnt.SelectOptions{Name: string(j.MatchTier)}},
	}

	if j.Company != "" {
		props["Company"] = gnt.DatabasePageProperty{RichText: richText(j.Company)}
	}
	if j.Location != "" {
		props["Location"] = gnt.DatabasePageProperty{RichText: richText(j.Location)}
	}
	if j.SourceURL != "" {
		url := j.SourceURL
		props["Job Posting"] = gnt.DatabasePageProperty{URL: &url}
	}
	if j.Source != "" {
		props["Source"] = gnt.DatabasePageProperty{Select: &gnt.SelectOptions{Name: j.Source}}
	}

	mode := "On-site"
	if j.Remote {
		mode = "Remote"
	}
	props["Work Mode"] = gnt.DatabasePageProperty{Select: &gnt.SelectOptions{Name: mode}}

	if len(j.RequiredSkills) > 0 {
		skills := make([]gnt.SelectOptions, 0, len(j.RequiredSkills))
		for _, s := range j.RequiredSkills {
			// Notion rejects commas in select option names.
			skills = append(skills, gnt.SelectOptions{Name: strings.ReplaceAll(s.Name, ",", "")})
		}
		props["Skills"] = gnt.DatabasePageProperty{MultiSelect: skills}
	}
	return props
}
