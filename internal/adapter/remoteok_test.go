package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteOKSource_Search_FiltersAndSkipsMetadata(t *testing.T) {
	var gotTag string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTag = r.URL.Query().Get("tag")
		w.Write([]byte(`[
			{"legal": "metadata"},
			{"slug": "backend-golang-1", "position": "Backend Engineer", "company": "Globex", "tags": ["golang", "backend"], "location": "Worldwide", "date": "2026-02-15T00:00:00+00:00"},
			{"slug": "frontend-2", "position": "Frontend Engineer", "company": "Globex", "tags": ["react"], "url": "https://remoteok.com/x/2"},
			{"position": ""}
		]`))
	}))
	defer srv.Close()

	s := NewRemoteOKSource(rewriteClient(srv))
	postings, err := s.Search(context.Background(), "Backend Engineer Remote", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTag != "backend" {
		t.Errorf("expected tag backend, got %q", gotTag)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	p := postings[0]
	if p.Location != "Remote, Worldwide" {
		t.Errorf("unexpected location %q", p.Location)
	}
	if p.SourceURL != "https://remoteok.com/remote-jobs/backend-golang-1" {
		t.Errorf("expected slug URL, got %q", p.SourceURL)
	}
	if p.PostedDate != "2026-02-15" {
		t.Errorf("unexpected posted date %q", p.PostedDate)
	}
}

func TestRemoteOKSource_Search_BlankQuery(t *testing.T) {
	postings, err := NewRemoteOKSource(http.DefaultClient).Search(context.Background(), "  remote ", 10)
	if err != nil || postings != nil {
		t.Fatalf("expected no request and no results, got %v, %v", postings, err)
	}
}
