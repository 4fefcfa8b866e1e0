package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

const remoteOKAPI = "https://remoteok.com/api"

type remoteOKJob struct {
	Slug        string   `json:"slug"`
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Tags        []string `json:"tags"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	URL         string   `json:"url"`
}

// remoteOKStopWords make poor API tags.
var remoteOKStopWords = map[string]struct{}{
	"remote": {}, "junior": {}, "senior": {}, "intern": {}, "entry": {}, "level": {},
	"engineer": {}, "developer": {}, "the": {}, "and": {},
}

// RemoteOKSource queries the RemoteOK public API. Every listing is remote.
type RemoteOKSource struct {
	apiURL string
	client *http.Client
}

func NewRemoteOKSource(client *http.Client) *RemoteOKSource {
	return &RemoteOKSource{apiURL: remoteOKAPI, client: client}
}

func (s *RemoteOKSource) Name() string { return "remoteok" }

// Search fetches listings for the most specific query word as a tag and
// keeps those whose title, company or tags contain all other keywords.
func (s *RemoteOKSource) Search(ctx context.Context, query string, maxResults int) ([]model.RawPosting, error) {
	keywords := queryKeywords(query, "remote")
	if len(keywords) == 0 {
		return nil, nil
	}

	u, err := url.Parse(s.apiURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("tag", pickTag(keywords))
	u.RawQuery = q.Encode()

	var raw []json.RawMessage
	if err := getJSON(ctx, s.client, u.String(), "remoteok search", &raw); err != nil {
		return nil, err
	}

	var out []model.RawPosting
	// Element 0 is API metadata.
	for i := 1; i < len(raw); i++ {
		var j remoteOKJob
		if err := json.Unmarshal(raw[i], &j); err != nil || j.Position == "" {
			continue
		}
		if !matchesAll(j.Position+" "+j.Company+" "+strings.Join(j.Tags, " "), keywords) {
			continue
		}
		out = append(out, postingFromRemoteOK(j))
	}
	return limit(out, maxResults), nil
}

func postingFromRemoteOK(j remoteOKJob) model.RawPosting {
	jobURL := j.URL
	if jobURL == "" && j.Slug != "" {
		jobURL = "https://remoteok.com/remote-jobs/" + j.Slug
	}
	location := "Remote"
	if j.Location != "" && !strings.Contains(strings.ToLower(j.Location), "remote") {
		location = "Remote, " + j.Location
	}
	p := model.RawPosting{
		Title:       j.Position,
		Company:     j.Company,
		Location:    location,
		Description: extractText(j.Description),
		Source:      "remoteok",
		SourceURL:   jobURL,
	}
	if t, err := time.Parse(time.RFC3339, j.Date); err == nil {
		p.PostedDate = t.UTC().Format(time.DateOnly)
	}
	return p
}

func pickTag(keywords []string) string {
	for _, k := range keywords {
		if _, stop := remoteOKStopWords[k]; !stop && len(k) > 2 {
			return k
		}
	}
	return keywords[0]
}
