package adapter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/cache"
	"github.com/amishk599/jobscout/internal/model"
)

// fakeBoard serves fixed postings and counts fetches.
type fakeBoard struct {
	kind, company string
	postings      []model.RawPosting
	err           error
	delay         time.Duration
	calls         atomic.Int32
}

func (b *fakeBoard) Kind() string    { return b.kind }
func (b *fakeBoard) Company() string { return b.company }

func (b *fakeBoard) Fetch(ctx context.Context) ([]model.RawPosting, error) {
	b.calls.Add(1)
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	return b.postings, b.err
}

func newTestCache() *cache.Cache {
	return cache.New(context.Background(), cache.Options{TTL: time.Minute}, discardLogger())
}

func TestBoardSource_Search_FiltersInBoardOrder(t *testing.T) {
	slow := &fakeBoard{kind: "greenhouse", company: "Acme", delay: 20 * time.Millisecond, postings: []model.RawPosting{
		{Title: "Backend Engineer", Location: "Remote, US", Company: "Acme"},
		{Title: "Designer", Location: "Remote", Company: "Acme"},
	}}
	fast := &fakeBoard{kind: "lever", company: "Globex", postings: []model.RawPosting{
		{Title: "Senior Backend Engineer", Location: "Remote", Company: "Globex"},
		{Title: "Backend Engineer", Location: "Berlin", Company: "Globex"},
	}}

	s := NewBoardSource([]Board{slow, fast}, newTestCache(), 2, discardLogger())
	postings, err := s.Search(context.Background(), "Backend Engineer Remote", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d: %+v", len(postings), postings)
	}
	if postings[0].Company != "Acme" || postings[1].Company != "Globex" {
		t.Errorf("expected board order, got %+v", postings)
	}
}

func TestBoardSource_Search_FetchesEachBoardOncePerTTL(t *testing.T) {
	b := &fakeBoard{kind: "ashby", company: "Acme", postings: []model.RawPosting{{Title: "Go Engineer"}}}
	s := NewBoardSource([]Board{b}, newTestCache(), 0, discardLogger())

	for _, q := range []string{"go engineer", "engineer", "go"} {
		if _, err := s.Search(context.Background(), q, 10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := b.calls.Load(); got != 1 {
		t.Errorf("expected 1 fetch, got %d", got)
	}
}

func TestBoardSource_Search_PartialFailure(t *testing.T) {
	bad := &fakeBoard{kind: "gem", company: "Broken", err: errors.New("boom")}
	good := &fakeBoard{kind: "lever", company: "Fine", postings: []model.RawPosting{{Title: "Data Engineer"}}}

	s := NewBoardSource([]Board{bad, good}, newTestCache(), 0, discardLogger())
	postings, err := s.Search(context.Background(), "data engineer", 10)
	if err != nil {
		t.Fatalf("partial failure should not error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
}

func TestBoardSource_Search_AllFail(t *testing.T) {
	bad := &fakeBoard{kind: "gem", company: "Broken", err: errors.New("boom")}
	s := NewBoardSource([]Board{bad}, newTestCache(), 0, discardLogger())
	if _, err := s.Search(context.Background(), "engineer", 10); err == nil {
		t.Fatal("expected error when every board fails")
	}
}

func TestBoardSource_Search_RespectsMax(t *testing.T) {
	b := &fakeBoard{kind: "greenhouse", company: "Acme", postings: []model.RawPosting{
		{Title: "Engineer I"}, {Title: "Engineer II"}, {Title: "Engineer III"},
	}}
	s := NewBoardSource([]Board{b}, newTestCache(), 0, discardLogger())
	postings, _ := s.Search(context.Background(), "engineer", 2)
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d", len(postings))
	}
}
