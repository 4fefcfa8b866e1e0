package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/amishk599/jobscout/internal/model"
)

const webSearchMaxResults = 10

// DefaultJobSites restricts web search to hosted ATS job pages.
var DefaultJobSites = []string{"boards.greenhouse.io", "jobs.lever.co", "jobs.ashbyhq.com"}

// WebSearchSource finds postings through a Google Programmable Search
// engine. Results carry only the page title and snippet.
type WebSearchSource struct {
	svc   *customsearch.Service
	cx    string
	sites []string
}

// NewWebSearchSource creates a source for the search engine cx. Extra client
// options are appended after the API key.
func NewWebSearchSource(ctx context.Context, apiKey, cx string, sites []string, opts ...option.ClientOption) (*WebSearchSource, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create customsearch service: %w", err)
	}
	if len(sites) == 0 {
		sites = DefaultJobSites
	}
	return &WebSearchSource{svc: svc, cx: cx, sites: sites}, nil
}

func (s *WebSearchSource) Name() string { return "websearch" }

func (s *WebSearchSource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	if maxResults <= 0 || maxResults > webSearchMaxResults {
		maxResults = webSearchMaxResults
	}

	resp, err := s.svc.Cse.List().Cx(s.cx).Q(s.siteQuery(query)).Num(int64(maxResults)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("websearch %q: %w", query, err)
	}

	postings := make([]model.RawPosting, 0, len(resp.Items))
	for _, item := range resp.Items {
		title, company := splitResultTitle(item.Title, item.DisplayLink)
		if title == "" {
			continue
		}
		postings = append(postings, model.RawPosting{
			Title:       title,
			Company:     company,
			Description: collapse(item.Snippet),
			Source:      "websearch",
			SourceURL:   item.Link,
			Location:    locationHint(item.Snippet),
		})
	}
	return postings, nil
}

func (s *WebSearchSource) siteQuery(query string) string {
	sites := make([]string, len(s.sites))
	for i, site := range s.sites {
		sites[i] = "site:" + site
	}
	return query + " (" + strings.Join(sites, " OR ") + ")"
}

// splitResultTitle splits result titles such as "Job Application for
// Backend Engineer at Acme" or "Acme - Backend Engineer" (Lever) into
// title and company.
func splitResultTitle(raw, displayLink string) (title, company string) {
	raw = collapse(strings.TrimPrefix(raw, "Job Application for "))
	if i := strings.LastIndex(raw, " at "); i > 0 {
		return raw[:i], raw[i+4:]
	}
	if i := strings.Index(raw, " - "); i > 0 {
		left, right := raw[:i], raw[i+3:]
		if strings.Contains(displayLink, "lever.co") {
			return right, left
		}
		return left, right
	}
	return raw, companyFromLink(displayLink)
}

func companyFromLink(link string) string {
	u, err := url.Parse("https://" + strings.TrimPrefix(link, "https://"))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// locationHint returns "Remote" when a snippet says so; search snippets have
// no structured location.
func locationHint(snippet string) string {
	if strings.Contains(strings.ToLower(snippet), "remote") {
		return "Remote"
	}
	return ""
}
