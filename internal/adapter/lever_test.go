package adapter

import (
	"context"
	"net/http"
	"testing"
)

func TestLeverBoard_Fetch_Success(t *testing.T) {
	payload := `[
		{
			"id": "ff7ef527",
			"text": "Software Engineer",
			"description": "<div>Full HTML description</div>",
			"descriptionPlain": "Plain text   job description",
			"categories": {
				"location": "San Francisco, CA",
				"allLocations": ["San Francisco, CA", "New York, NY"]
			},
			"createdAt": 1769784074110,
			"workplaceType": "hybrid",
			"hostedUrl": "https://jobs.lever.co/acme/ff7ef527"
		},
		{
			"id": "a1b2c3d4",
			"text": "Backend Engineer",
			"description": "<div>Backend <b>job</b> description</div>",
			"categories": {"location": "Austin, TX"},
			"workplaceType": "remote",
			"hostedUrl": "https://jobs.lever.co/acme/a1b2c3d4"
		}
	]`
	srv := jsonServer(payload)
	defer srv.Close()

	postings, err := NewLeverBoard("acme", "Acme Corp", rewriteClient(srv)).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}

	first := postings[0]
	if first.Location != "San Francisco, CA, New York, NY" {
		t.Errorf("expected allLocations to be joined, got %q", first.Location)
	}
	if first.Description != "Plain text job description" {
		t.Errorf("unexpected description %q", first.Description)
	}
	if first.PostedDate != "2026-01-30" {
		t.Errorf("expected posted date 2026-01-30, got %q", first.PostedDate)
	}
	if first.Source != "lever" || first.SourceURL != "https://jobs.lever.co/acme/ff7ef527" {
		t.Errorf("unexpected source fields: %+v", first)
	}

	second := postings[1]
	if second.Location != "Austin, TX, Remote" {
		t.Errorf("remote workplace should be reflected in location, got %q", second.Location)
	}
	if second.Description == "" {
		t.Error("expected HTML description fallback")
	}
	if second.PostedDate != "" {
		t.Errorf("expected empty posted date, got %q", second.PostedDate)
	}
}

func TestLeverBoard_Fetch_HTTPError(t *testing.T) {
	srv := statusServer(http.StatusNotFound, "")
	defer srv.Close()

	if _, err := NewLeverBoard("missing", "Missing", rewriteClient(srv)).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 404, got nil")
	}
}
