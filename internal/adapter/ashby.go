package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob represents a single job in the Ashby API response.
type ashbyJob struct {
	Title            string `json:"title"`
	Location         string `json:"location"`
	IsRemote         bool   `json:"isRemote"`
	JobURL           string `json:"jobUrl"`
	PublishedAt      string `json:"publishedAt"`
	IsListed         bool   `json:"isListed"`
	DescriptionPlain string `json:"descriptionPlain"`
	DescriptionHTML  string `json:"descriptionHtml"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbyBoard reads one company's Ashby job board.
type AshbyBoard struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewAshbyBoard creates a board reader for an Ashby board token.
func NewAshbyBoard(boardToken, companyName string, client *http.Client) *AshbyBoard {
	return &AshbyBoard{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (b *AshbyBoard) Kind() string    { return "ashby" }
func (b *AshbyBoard) Company() string { return b.companyName }

// Fetch retrieves listed jobs; unlisted ones are skipped.
func (b *AshbyBoard) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	url := fmt.Sprintf("%s/%s", ashbyBaseURL, b.boardToken)

	var ashbyResp ashbyResponse
	if err := getJSON(ctx, b.client, url, "ashby fetch for "+b.boardToken, &ashbyResp); err != nil {
		return nil, err
	}

	postings := make([]model.RawPosting, 0, len(ashbyResp.Jobs))
	for _, aj := range ashbyResp.Jobs {
		if !aj.IsListed {
			continue
		}
		location := aj.Location
		if aj.IsRemote && location == "" {
			location = "Remote"
		}
		desc := aj.DescriptionPlain
		if desc == "" {
			desc = extractText(aj.DescriptionHTML)
		}
		p := model.RawPosting{
			Title:       aj.Title,
			Company:     b.companyName,
			Location:    location,
			Description: collapse(desc),
			Source:      "ashby",
			SourceURL:   aj.JobURL,
		}
		if t, err := time.Parse(time.RFC3339, aj.PublishedAt); err == nil {
			p.PostedDate = t.UTC().Format(time.DateOnly)
		}
		postings = append(postings, p)
	}
	return postings, nil
}
