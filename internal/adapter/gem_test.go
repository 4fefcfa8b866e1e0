package adapter

import (
	"context"
	"net/http"
	"testing"

	"github.com/amishk599/jobscout/internal/model"
)

func TestGemBoard_Fetch_Success(t *testing.T) {
	payload := `[
		{
			"id": "abc",
			"title": "Site Reliability Engineer",
			"location": {"name": "Remote - US"},
			"absolute_url": "https://jobs.gem.com/acme/abc",
			"first_published_at": "2026-02-12T08:00:00Z",
			"content": "<p>Kubernetes</p>",
			"content_plain": ""
		},
		{
			"id": "def",
			"title": "Intern",
			"location": {"name": "NYC"},
			"absolute_url": "https://jobs.gem.com/acme/def",
			"content_plain": "Python"
		}
	]`
	srv := jsonServer(payload)
	defer srv.Close()

	postings, err := NewGemBoard("acme", "Acme", rewriteClient(srv)).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
	if postings[0].Description != "Kubernetes" {
		t.Errorf("expected HTML content fallback, got %q", postings[0].Description)
	}
	if postings[0].PostedDate != "2026-02-12" {
		t.Errorf("unexpected posted date %q", postings[0].PostedDate)
	}
	if postings[1].Description != "Python" || postings[1].PostedDate != "" {
		t.Errorf("unexpected second posting %+v", postings[1])
	}
}

func TestGemBoard_Fetch_HTTPError(t *testing.T) {
	srv := statusServer(http.StatusServiceUnavailable, "")
	defer srv.Close()

	_, err := NewGemBoard("acme", "Acme", rewriteClient(srv)).Fetch(context.Background())
	var httpErr *model.HTTPError
	if !isHTTPError(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 HTTPError, got %v", err)
	}
}
