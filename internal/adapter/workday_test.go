package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWorkdaySource_Search_Success(t *testing.T) {
	listingResp := `{
		"total": 1,
		"jobPostings": [
			{
				"title": "Software Engineer",
				"externalPath": "/job/Software-Engineer/JR328732",
				"locationsText": "San Francisco, CA",
				"postedOn": "Posted Today"
			}
		]
	}`
	detailResp := `{
		"jobPostingInfo": {
			"title": "Software Engineer",
			"location": "San Francisco, CA",
			"postedOn": "Posted Today",
			"startDate": "2026-02-17",
			"externalUrl": "https://acme.wd12.myworkdayjobs.com/Careers/job/Software-Engineer/JR328732",
			"additionalLocations": ["New York, NY"],
			"jobDescription": "<p>Build scalable systems.</p>"
		}
	}`

	var gotSearch workdayListingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			json.NewDecoder(r.Body).Decode(&gotSearch)
			w.Write([]byte(listingResp))
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/job/Software-Engineer/JR328732") {
			t.Errorf("unexpected detail path %s", r.URL.Path)
		}
		w.Write([]byte(detailResp))
	}))
	defer srv.Close()

	s := newWorkdayTestSource(srv)
	postings, err := s.Search(context.Background(), "software engineer", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSearch.SearchText != "software engineer" || gotSearch.Limit != 10 {
		t.Errorf("unexpected listing request %+v", gotSearch)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if p.Company != "TestCo" || p.Source != "workday" {
		t.Errorf("unexpected posting %+v", p)
	}
	if p.Location != "San Francisco, CA; New York, NY" {
		t.Errorf("expected joined locations, got %q", p.Location)
	}
	if p.PostedDate != "2026-02-17" {
		t.Errorf("expected startDate as posted date, got %q", p.PostedDate)
	}
	if p.Description != "Build scalable systems." {
		t.Errorf("unexpected description %q", p.Description)
	}
}

func TestWorkdaySource_Search_PaginatesUpToMax(t *testing.T) {
	var offsets []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req workdayListingRequest
		json.NewDecoder(r.Body).Decode(&req)
		offsets = append(offsets, req.Offset)

		var postings []string
		for i := 0; i < req.Limit; i++ {
			postings = append(postings, fmt.Sprintf(`{"title":"Job %d","externalPath":"/job/%d","locationsText":"Remote","postedOn":"Posted 3 Days Ago"}`, req.Offset+i, req.Offset+i))
		}
		fmt.Fprintf(w, `{"total": 100, "jobPostings": [%s]}`, strings.Join(postings, ","))
	}))
	defer srv.Close()

	s := newWorkdayTestSource(srv)
	postings, err := s.Search(context.Background(), "engineer", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 25 {
		t.Fatalf("expected 25 postings, got %d", len(postings))
	}
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != workdayPageSize {
		t.Errorf("unexpected offsets %v", offsets)
	}
	// Detail fetches 404, so listing-level data is kept.
	p := postings[0]
	if p.Title != "Job 0" || p.Location != "Remote" {
		t.Errorf("unexpected listing fallback %+v", p)
	}
	if p.PostedDate != "2026-02-14" {
		t.Errorf("expected relative date to resolve to 2026-02-14, got %q", p.PostedDate)
	}
	if !strings.HasSuffix(p.SourceURL, "/Careers/job/0") {
		t.Errorf("unexpected site URL %q", p.SourceURL)
	}
}

func TestWorkdaySource_Search_HTTPError(t *testing.T) {
	srv := statusServer(http.StatusInternalServerError, "")
	defer srv.Close()

	if _, err := newWorkdayTestSource(srv).Search(context.Background(), "x", 5); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func TestWorkdayPostedDate(t *testing.T) {
	s := &WorkdaySource{now: func() time.Time { return time.Date(2026, 2, 17, 15, 0, 0, 0, time.UTC) }}
	tests := []struct {
		in   string
		want string
	}{
		{"Posted Today", "2026-02-17"},
		{"Posted Yesterday", "2026-02-16"},
		{"Posted 1 Day Ago", "2026-02-16"},
		{"Posted 5 Days Ago", "2026-02-12"},
		{"Posted 30+ Days Ago", "2026-01-18"},
		{"sometime", ""},
	}
	for _, tc := range tests {
		if got := s.postedDate(tc.in); got != tc.want {
			t.Errorf("postedDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func newWorkdayTestSource(srv *httptest.Server) *WorkdaySource {
	s := NewWorkdaySource("https://testco.wd1.myworkdayjobs.com/wday/cxs/testco/Careers", "TestCo", rewriteClient(srv), discardLogger())
	s.now = func() time.Time { return time.Date(2026, 2, 17, 12, 0, 0, 0, time.UTC) }
	return s
}
