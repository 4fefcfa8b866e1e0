package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

const gemBaseURL = "https://api.gem.com/job_board/v0"

type gemJob struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Location       gemLocation `json:"location"`
	AbsoluteURL    string      `json:"absolute_url"`
	FirstPublished string      `json:"first_published_at"`
	Content        string      `json:"content"`
	ContentPlain   string      `json:"content_plain"`
}

type gemLocation struct {
	Name string `json:"name"`
}

// GemBoard reads one company's Gem job board.
type GemBoard struct {
	boardToken  string
	companyName string
	client      *http.Client
}

func NewGemBoard(boardToken, companyName string, client *http.Client) *GemBoard {
	return &GemBoard{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (b *GemBoard) Kind() string    { return "gem" }
func (b *GemBoard) Company() string { return b.companyName }

func (b *GemBoard) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	url := fmt.Sprintf("%s/%s/job_posts/", gemBaseURL, b.boardToken)

	var gemJobs []gemJob
	if err := getJSON(ctx, b.client, url, "gem fetch for "+b.boardToken, &gemJobs); err != nil {
		return nil, err
	}

	postings := make([]model.RawPosting, 0, len(gemJobs))
	for _, gj := range gemJobs {
		desc := gj.ContentPlain
		if desc == "" {
			desc = extractText(gj.Content)
		}
		p := model.RawPosting{
			Title:       gj.Title,
			Company:     b.companyName,
			Location:    gj.Location.Name,
			Description: collapse(desc),
			Source:      "gem",
			SourceURL:   gj.AbsoluteURL,
		}
		if t, err := time.Parse(time.RFC3339, gj.FirstPublished); err == nil {
			p.PostedDate = t.UTC().Format(time.DateOnly)
		}
		postings = append(postings, p)
	}
	return postings, nil
}
