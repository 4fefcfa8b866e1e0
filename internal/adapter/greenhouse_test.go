package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amishk599/jobscout/internal/model"
)

func TestGreenhouseBoard_Fetch_Success(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 12345,
				"title": "Software Engineer",
				"location": {"name": "San Francisco, CA"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/12345",
				"updated_at": "2026-02-13T10:00:00Z",
				"content": "&lt;p&gt;Build services in Go and Kubernetes.&lt;/p&gt;"
			},
			{
				"id": 67890,
				"title": "Backend Engineer",
				"location": {"name": "Remote, US"},
				"absolute_url": "https://boards.greenhouse.io/acme/jobs/67890",
				"updated_at": "not a date"
			}
		]
	}`
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	b := NewGreenhouseBoard("acme", "Acme Corp", rewriteClient(srv))
	postings, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v1/boards/acme/jobs" || gotQuery != "content=true" {
		t.Errorf("unexpected request %s?%s", gotPath, gotQuery)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	p := postings[0]
	if p.Title != "Software Engineer" || p.Company != "Acme Corp" || p.Location != "San Francisco, CA" {
		t.Errorf("unexpected posting: %+v", p)
	}
	if p.Source != "greenhouse" {
		t.Errorf("expected source greenhouse, got %s", p.Source)
	}
	if p.SourceURL != "https://boards.greenhouse.io/acme/jobs/12345" {
		t.Errorf("unexpected URL %s", p.SourceURL)
	}
	if p.PostedDate != "2026-02-13" {
		t.Errorf("expected posted date 2026-02-13, got %q", p.PostedDate)
	}
	if !strings.Contains(p.Description, "Build services in Go and Kubernetes.") || strings.Contains(p.Description, "<p>") {
		t.Errorf("description not reduced to text: %q", p.Description)
	}
	if postings[1].PostedDate != "" {
		t.Errorf("unparseable date should be empty, got %q", postings[1].PostedDate)
	}
}

func TestGreenhouseBoard_Fetch_EmptyBoard(t *testing.T) {
	srv := jsonServer(`{"jobs": []}`)
	defer srv.Close()

	postings, err := NewGreenhouseBoard("empty-co", "Empty Co", rewriteClient(srv)).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 0 {
		t.Fatalf("expected 0 postings, got %d", len(postings))
	}
}

func TestGreenhouseBoard_Fetch_MalformedJSON(t *testing.T) {
	srv := jsonServer(`{not valid json`)
	defer srv.Close()

	_, err := NewGreenhouseBoard("bad-co", "Bad Co", rewriteClient(srv)).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestGreenhouseBoard_Fetch_HTTPError(t *testing.T) {
	srv := statusServer(http.StatusTooManyRequests, "30")
	defer srv.Close()

	_, err := NewGreenhouseBoard("fail-co", "Fail Co", rewriteClient(srv)).Fetch(context.Background())
	var httpErr *model.HTTPError
	if !isHTTPError(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.StatusCode)
	}
	if httpErr.RetryAfter.Seconds() != 30 {
		t.Errorf("expected Retry-After 30s, got %v", httpErr.RetryAfter)
	}
}
