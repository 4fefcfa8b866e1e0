package adapter

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

const workdayPageSize = 20

// workdayListingResponse is the response from the Workday jobs listing endpoint.
type workdayListingResponse struct {
	Total       int              `json:"total"`
	JobPostings []workdayListing `json:"jobPostings"`
}

type workdayListing struct {
	Title         string `json:"title"`
	ExternalPath  string `json:"externalPath"`
	LocationsText string `json:"locationsText"`
	PostedOn      string `json:"postedOn"`
}

// workdayListingRequest is the POST body for the Workday jobs listing endpoint.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

// workdayDetailResponse is the response from the Workday job detail endpoint.
type workdayDetailResponse struct {
	JobPostingInfo workdayJobDetail `json:"jobPostingInfo"`
}

type workdayJobDetail struct {
	Title               string   `json:"title"`
	Location            string   `json:"location"`
	PostedOn            string   `json:"postedOn"`
	StartDate           string   `json:"startDate"`
	ExternalURL         string   `json:"externalUrl"`
	AdditionalLocations []string `json:"additionalLocations"`
	JobDescription      string   `json:"jobDescription"`
}

// WorkdaySource searches one company's Workday career site with its
// searchText endpoint, then fetches each hit's detail page for the
// description.
type WorkdaySource struct {
	baseURL     string
	companyName string
	client      *http.Client
	logger      *slog.Logger
	now         func() time.Time
}

// NewWorkdaySource creates a source for a Workday career site, e.g.
// https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/Careers.
func NewWorkdaySource(baseURL, companyName string, client *http.Client, logger *slog.Logger) *WorkdaySource {
	return &WorkdaySource{
		baseURL:     strings.TrimRight(baseURL, "/"),
		companyName: companyName,
		client:      client,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *WorkdaySource) Name() string { return "workday:" + strings.ToLower(s.companyName) }

// Search pages through listings until maxResults are collected. A failed
// detail fetch keeps the listing-level posting without a description.
func (s *WorkdaySource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	listings, err := s.fetchListings(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	postings := make([]model.RawPosting, 0, len(listings))
	for _, l := range listings {
		p, err := s.fetchDetail(ctx, l)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Debug("workday detail fetch failed", "company", s.companyName, "path", l.ExternalPath, "error", err)
			p = s.postingFromListing(l)
		}
		postings = append(postings, p)
	}
	return postings, nil
}

func (s *WorkdaySource) fetchListings(ctx context.Context, query string, maxResults int) ([]workdayListing, error) {
	if maxResults <= 0 {
		maxResults = workdayPageSize
	}
	var all []workdayListing
	offset := 0
	for len(all) < maxResults {
		body := workdayListingRequest{
			AppliedFacets: map[string]any{},
			Limit:         min(workdayPageSize, maxResults-len(all)),
			Offset:        offset,
			SearchText:    query,
		}
		var listResp workdayListingResponse
		if err := postJSON(ctx, s.client, s.baseURL+"/jobs", "workday listing fetch for "+s.companyName, body, &listResp); err != nil {
			return nil, err
		}
		all = append(all, listResp.JobPostings...)

		offset += workdayPageSize
		if len(listResp.JobPostings) == 0 || offset >= listResp.Total {
			break
		}
	}
	if len(all) > maxResults {
		all = all[:maxResults]
	}
	return all, nil
}

func (s *WorkdaySource) fetchDetail(ctx context.Context, l workdayListing) (model.RawPosting, error) {
	var detail workdayDetailResponse
	if err := getJSON(ctx, s.client, s.baseURL+"/"+strings.TrimLeft(l.ExternalPath, "/"), "workday detail fetch for "+s.companyName, &detail); err != nil {
		return model.RawPosting{}, err
	}

	info := detail.JobPostingInfo
	location := info.Location
	if len(info.AdditionalLocations) > 0 {
		location = location + "; " + strings.Join(info.AdditionalLocations, "; ")
	}

	p := model.RawPosting{
		Title:       info.Title,
		Company:     s.companyName,
		Location:    location,
		Description: extractText(info.JobDescription),
		Source:      "workday",
		SourceURL:   info.ExternalURL,
	}
	if p.Title == "" {
		p.Title = l.Title
	}
	// startDate ("2006-01-02") is exact; postedOn is relative.
	if _, err := time.Parse(time.DateOnly, info.StartDate); err == nil {
		p.PostedDate = info.StartDate
	} else {
		p.PostedDate = s.postedDate(info.PostedOn)
	}
	return p, nil
}

// postingFromListing builds a posting from listing-level data only.
func (s *WorkdaySource) postingFromListing(l workdayListing) model.RawPosting {
	return model.RawPosting{
		Title:      l.Title,
		Company:    s.companyName,
		Location:   l.LocationsText,
		Source:     "workday",
		SourceURL:  s.siteURL(l.ExternalPath),
		PostedDate: s.postedDate(l.PostedOn),
	}
}

// siteURL maps a cxs API path to the public career site URL.
func (s *WorkdaySource) siteURL(externalPath string) string {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return ""
	}
	// /wday/cxs/{tenant}/{site} -> /{site}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	site := parts[len(parts)-1]
	return u.Scheme + "://" + u.Host + "/" + site + "/" + strings.TrimLeft(externalPath, "/")
}

var daysAgoRegex = regexp.MustCompile(`^Posted (\d+)\+? Days? Ago$`)

// postedDate converts a Workday relative date ("Posted 3 Days Ago") to
// YYYY-MM-DD. Unknown formats yield an empty string.
func (s *WorkdaySource) postedDate(postedOn string) string {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch postedOn {
	case "Posted Today":
		return today.Format(time.DateOnly)
	case "Posted Yesterday":
		return today.AddDate(0, 0, -1).Format(time.DateOnly)
	}
	m := daysAgoRegex.FindStringSubmatch(postedOn)
	if m == nil {
		return ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return ""
	}
	return today.AddDate(0, 0, -n).Format(time.DateOnly)
}
