package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

var _ model.Notifier = (*SlackNotifier)(nil)

const (
	slackSpacing     = 500 * time.Millisecond
	slackMaxAttempts = 2
)

// SlackNotifier posts one Block Kit message per job to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	spacing    time.Duration
}

func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger.With("notifier", "slack"),
		spacing:    slackSpacing,
	}
}

// Notify fails only when every message fails. Messages are spaced to stay
// under the webhook's one-per-second limit.
func (s *SlackNotifier) Notify(ctx context.Context, jobs []model.NormalizedJob) error {
	if len(jobs) == 0 {
		return nil
	}

	var sent int
	for i, j := range jobs {
		if i > 0 {
			if err := sleep(ctx, s.spacing); err != nil {
				return err
			}
		}
		if err := s.deliver(ctx, j); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("message failed", "job_id", j.ID, "company", j.Company, "error", err)
			continue
		}
		sent++
	}

	if sent == 0 {
		return fmt.Errorf("slack: all %d messages failed", len(jobs))
	}
	s.logger.Info("messages delivered", "sent", sent, "failed", len(jobs)-sent)
	return nil
}

// deliver posts the job's message, retrying once after a 429.
func (s *SlackNotifier) deliver(ctx context.Context, j model.NormalizedJob) error {
	body, err := json.Marshal(buildPayload(j))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	for attempt := 1; ; attempt++ {
		status, wait, err := s.post(ctx, body)
		switch {
		case err != nil:
			return err
		case status == http.StatusOK:
			s.logger.Debug("message sent", "job_id", j.ID, "attempt", attempt)
			return nil
		case status == http.StatusTooManyRequests && attempt < slackMaxAttempts:
			s.logger.Warn("rate limited by webhook", "retry_after", wait)
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		default:
			return fmt.Errorf("webhook status %d after %d attempt(s)", status, attempt)
		}
	}
}

// post returns the response status and the Retry-After delay (at least 1s).
func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("webhook: %w", err)
	}
	resp.Body.Close()

	wait := time.Second
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		wait = time.Duration(secs) * time.Second
	}
	return resp.StatusCode, wait, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SendTestMessage pushes a synthetic high-tier match through n.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	has := true
	now := time.Now()
	return n.Notify(ctx, []model.NormalizedJob{{
		ID:             "test000000000001",
		Company:        "jobscout",
		Title:          "Test Notification: Integration Verified",
		Location:       "Everywhere",
		Remote:         true,
		RequiredSkills: []model.RequiredSkill{{Name: "Go", Required: true, UserHas: &has}},
		Source:         "test",
		SourceURL:      "https://www.ycombinator.com/jobs",
		MatchScore:     1,
		MatchTier:      model.TierHigh,
		PostedDate:     now.Format(time.DateOnly),
		DiscoveredAt:   now,
	}})
}

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

func mrkdwn(s string) slackText { return slackText{Type: "mrkdwn", Text: s} }

// fieldRow is a two-column section of "*label:*\nvalue" pairs.
func fieldRow(l1, v1, l2, v2 string) slackBlock {
	return slackBlock{
		Type: "section",
		Fields: []slackText{
			mrkdwn("*" + l1 + ":*\n" + v1),
			mrkdwn("*" + l2 + ":*\n" + v2),
		},
	}
}

func buildPayload(j model.NormalizedJob) slackPayload {
	company := capitalize(j.Company)
	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: "🚀 " + company + ": " + j.Title}},
		fieldRow("Company", company, "Location", orDefault(j.Location, "Not listed")),
		fieldRow("Posted", orDefault(j.PostedDate, "Just discovered"), "Source", capitalize(j.Source)),
		fieldRow("Match", fmt.Sprintf("%.0f%% (%s)", j.MatchScore*100, j.MatchTier), "Remote", yesNo(j.Remote)),
	}
	if len(j.RequiredSkills) > 0 {
		text := mrkdwn("*Skills:* " + skillSummary(j.RequiredSkills))
		blocks = append(blocks, slackBlock{Type: "section", Text: &text})
	}
	apply := slackElement{
		Type:  "button",
		Text:  slackText{Type: "plain_text", Text: "Apply Now"},
		URL:   j.SourceURL,
		Style: "primary",
	}
	blocks = append(blocks,
		slackBlock{Type: "actions", Elements: []slackElement{apply}},
		slackBlock{Type: "divider"},
	)
	return slackPayload{Blocks: blocks}
}

// skillSummary renders "Go ✓, Kubernetes ✗"; unranked skills get no mark.
func skillSummary(skills []model.RequiredSkill) string {
	parts := make([]string, len(skills))
	for i, s := range skills {
		switch {
		case s.UserHas == nil:
			parts[i] = s.Name
		case *s.UserHas:
			parts[i] = s.Name + " ✓"
		default:
			parts[i] = s.Name + " ✗"
		}
	}
	return strings.Join(parts, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
