package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	adzunaBaseURL     = "https://api.adzuna.com/v1/api/jobs"
	adzunaMaxPageSize = 50
)

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	RedirectURL string `json:"redirect_url"`
	Created     string `json:"created"`
}

// AdzunaSource queries the Adzuna job search API.
type AdzunaSource struct {
	appID   string
	appKey  string
	country string
	baseURL string
	client  *http.Client
}

// NewAdzunaSource creates an Adzuna source for a country code ("us", "gb", ...).
func NewAdzunaSource(appID, appKey, country string, client *http.Client) *AdzunaSource {
	if country == "" {
		country = "us"
	}
	return &AdzunaSource{
		appID:   appID,
		appKey:  appKey,
		country: strings.ToLower(country),
		baseURL: adzunaBaseURL,
		client:  client,
	}
}

func (s *AdzunaSource) Name() string { return "adzuna" }

// Search returns the first page of date-sorted results for query.
func (s *AdzunaSource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	if s.appID == "" || s.appKey == "" {
		return nil, fmt.Errorf("adzuna: app_id and app_key are required: %w", model.ErrContract)
	}
	if maxResults <= 0 || maxResults > adzunaMaxPageSize {
		maxResults = adzunaMaxPageSize
	}

	params := url.Values{}
	params.Set("app_id", s.appID)
	params.Set("app_key", s.appKey)
	params.Set("results_per_page", strconv.Itoa(maxResults))
	params.Set("what", query)
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")
	reqURL := fmt.Sprintf("%s/%s/search/1?%s", s.baseURL, s.country, params.Encode())

	var resp adzunaResponse
	if err := getJSON(ctx, s.client, reqURL, "adzuna search", &resp); err != nil {
		return nil, err
	}

	postings := make([]model.RawPosting, 0, len(resp.Results))
	for _, r := range resp.Results {
		p := model.RawPosting{
			Title:       extractText(r.Title),
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: extractText(r.Description),
			Source:      "adzuna",
			SourceURL:   r.RedirectURL,
		}
		if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
			p.PostedDate = t.UTC().Format(time.DateOnly)
		}
		postings = append(postings, p)
	}
	return limit(postings, maxResults), nil
}
