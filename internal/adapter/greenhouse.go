package adapter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
	Content     string             `json:"content"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseBoard reads one company's Greenhouse public job board.
type GreenhouseBoard struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewGreenhouseBoard creates a board reader for a Greenhouse board token.
func NewGreenhouseBoard(boardToken, companyName string, client *http.Client) *GreenhouseBoard {
	return &GreenhouseBoard{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (b *GreenhouseBoard) Kind() string    { return "greenhouse" }
func (b *GreenhouseBoard) Company() string { return b.companyName }

// Fetch retrieves every open job on the board, descriptions included.
func (b *GreenhouseBoard) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, b.boardToken)

	var ghResp greenhouseResponse
	if err := getJSON(ctx, b.client, url, "greenhouse fetch for "+b.boardToken, &ghResp); err != nil {
		return nil, err
	}

	postings := make([]model.RawPosting, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		p := model.RawPosting{
			Title:       gj.Title,
			Company:     b.companyName,
			Location:    gj.Location.Name,
			Description: extractText(gj.Content),
			Source:      "greenhouse",
			SourceURL:   gj.AbsoluteURL,
		}
		if t, err := time.Parse(time.RFC3339, gj.UpdatedAt); err == nil {
			p.PostedDate = t.UTC().Format(time.DateOnly)
		}
		postings = append(postings, p)
	}
	return postings, nil
}
