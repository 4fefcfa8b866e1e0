package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	microsoftBaseURL  = "https://apply.careers.microsoft.com"
	microsoftPageSize = 10
	microsoftMaxPages = 5
)

// microsoftPosition represents a single position in the Microsoft search API response.
type microsoftPosition struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Locations   []string `json:"locations"`
	PostedTs    int64    `json:"postedTs"`
	PositionURL string   `json:"positionUrl"`
}

// microsoftSearchResponse is the top-level Microsoft search API response.
type microsoftSearchResponse struct {
	Data struct {
		Positions []microsoftPosition `json:"positions"`
		Count     int                 `json:"count"`
	} `json:"data"`
}

// microsoftDetailResponse is the response from the Microsoft position detail endpoint.
type microsoftDetailResponse struct {
	Data struct {
		JobDescription string `json:"jobDescription"`
		PublicURL      string `json:"publicUrl"`
	} `json:"data"`
}

// MicrosoftSource searches the Microsoft careers API.
type MicrosoftSource struct {
	country string
	client  *http.Client
	logger  *slog.Logger
}

// NewMicrosoftSource creates a source restricted to one country, e.g.
// "United States". Remote positions are always included.
func NewMicrosoftSource(country string, client *http.Client, logger *slog.Logger) *MicrosoftSource {
	if country == "" {
		country = "United States"
	}
	return &MicrosoftSource{country: country, client: client, logger: logger}
}

func (s *MicrosoftSource) Name() string { return "microsoft" }

// Search pages the newest-first search results until maxResults are
// collected, then fetches each position's description.
func (s *MicrosoftSource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	if maxResults <= 0 {
		maxResults = microsoftPageSize
	}

	var positions []microsoftPosition
	for page := 0; page < microsoftMaxPages && len(positions) < maxResults; page++ {
		batch, count, err := s.fetchPage(ctx, query, page*microsoftPageSize)
		if err != nil {
			return nil, err
		}
		positions = append(positions, batch...)
		if len(batch) == 0 || (page+1)*microsoftPageSize >= count {
			break
		}
	}
	if len(positions) > maxResults {
		positions = positions[:maxResults]
	}

	postings := make([]model.RawPosting, 0, len(positions))
	for _, p := range positions {
		posting := s.postingFromPosition(p)
		if err := s.fetchDetail(ctx, p.ID, &posting); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Debug("microsoft detail fetch failed", "id", p.ID, "error", err)
		}
		postings = append(postings, posting)
	}
	return postings, nil
}

// fetchPage fetches a single page of search results at the given start offset.
func (s *MicrosoftSource) fetchPage(ctx context.Context, query string, start int) ([]microsoftPosition, int, error) {
	u, _ := url.Parse(microsoftBaseURL + "/api/pcsx/search")
	q := u.Query()
	q.Set("domain", "microsoft.com")
	q.Set("query", query)
	q.Set("location", s.country)
	q.Set("start", strconv.Itoa(start))
	q.Set("sort_by", "timestamp")
	q.Set("filter_include_remote", "1")
	u.RawQuery = q.Encode()

	var msResp microsoftSearchResponse
	if err := getJSON(ctx, s.client, u.String(), fmt.Sprintf("microsoft search (start=%d)", start), &msResp); err != nil {
		return nil, 0, err
	}
	return msResp.Data.Positions, msResp.Data.Count, nil
}

func (s *MicrosoftSource) postingFromPosition(p microsoftPosition) model.RawPosting {
	location := ""
	if len(p.Locations) > 0 {
		location = p.Locations[0]
	}
	posting := model.RawPosting{
		Title:     p.Name,
		Company:   "Microsoft",
		Location:  location,
		Source:    "microsoft",
		SourceURL: microsoftBaseURL + p.PositionURL,
	}
	if p.PostedTs > 0 {
		posting.PostedDate = time.Unix(p.PostedTs, 0).UTC().Format(time.DateOnly)
	}
	return posting
}

// fetchDetail fills in the description and canonical URL.
func (s *MicrosoftSource) fetchDetail(ctx context.Context, id int64, posting *model.RawPosting) error {
	u, _ := url.Parse(microsoftBaseURL + "/api/pcsx/position_details")
	q := u.Query()
	q.Set("position_id", strconv.FormatInt(id, 10))
	q.Set("domain", "microsoft.com")
	q.Set("hl", "en")
	u.RawQuery = q.Encode()

	var detail microsoftDetailResponse
	if err := getJSON(ctx, s.client, u.String(), fmt.Sprintf("microsoft detail for %d", id), &detail); err != nil {
		return err
	}
	if detail.Data.JobDescription != "" {
		posting.Description = extractText(detail.Data.JobDescription)
	}
	if detail.Data.PublicURL != "" {
		posting.SourceURL = detail.Data.PublicURL
	}
	return nil
}
