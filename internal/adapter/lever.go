package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Team         string   `json:"team"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	Description      string          `json:"description"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Categories       leverCategories `json:"categories"`
	CreatedAt        int64           `json:"createdAt"`
	WorkplaceType    string          `json:"workplaceType"`
	HostedURL        string          `json:"hostedUrl"`
}

// LeverBoard reads one company's Lever postings.
type LeverBoard struct {
	companySlug string
	companyName string
	client      *http.Client
}

// NewLeverBoard creates a board reader for a Lever company slug.
func NewLeverBoard(companySlug, companyName string, client *http.Client) *LeverBoard {
	return &LeverBoard{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

func (b *LeverBoard) Kind() string    { return "lever" }
func (b *LeverBoard) Company() string { return b.companyName }

func (b *LeverBoard) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, b.companySlug)

	var leverJobs []leverJob
	if err := getJSON(ctx, b.client, url, "lever fetch for "+b.companySlug, &leverJobs); err != nil {
		return nil, err
	}

	postings := make([]model.RawPosting, 0, len(leverJobs))
	for _, lj := range leverJobs {
		// Prefer allLocations when present.
		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}
		if strings.EqualFold(lj.WorkplaceType, "remote") && !strings.Contains(strings.ToLower(location), "remote") {
			location = strings.TrimPrefix(location+", Remote", ", ")
		}

		desc := lj.DescriptionPlain
		if desc == "" {
			desc = extractText(lj.Description)
		}

		p := model.RawPosting{
			Title:       lj.Text,
			Company:     b.companyName,
			Location:    location,
			Description: collapse(desc),
			Source:      "lever",
			SourceURL:   lj.HostedURL,
		}
		if lj.CreatedAt > 0 {
			p.PostedDate = time.UnixMilli(lj.CreatedAt).UTC().Format(time.DateOnly)
		}
		postings = append(postings, p)
	}
	return postings, nil
}
