package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testJob(id, title string, score float64, tier model.MatchTier) model.NormalizedJob {
	yes := true
	return model.NormalizedJob{
		ID:          id,
		Title:       title,
		Company:     "Acme",
		Location:    "Remote",
		Remote:      true,
		Description: "Build things in Go.",
		RequiredSkills: []model.RequiredSkill{
			{Name: "go", Required: true, UserHas: &yes},
			{Name: "kubernetes", Required: true},
		},
		Source:       "greenhouse",
		SourceURL:    "https://example.com/" + id,
		MatchScore:   score,
		MatchTier:    tier,
		DiscoveredAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInsertJobThenGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inserted, err := s.InsertJob(ctx, testJob("a1", "Backend Engineer", 0.8, model.TierHigh))
	if err != nil {
		t.Fatalf("InsertJob: %v", err)
	}
	if !inserted {
		t.Fatal("expected first insert to report a new row")
	}

	got, err := s.GetJob(ctx, "a1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Title != "Backend Engineer" || !got.Remote || got.MatchTier != model.TierHigh {
		t.Errorf("unexpected job: %+v", got)
	}
	if len(got.RequiredSkills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(got.RequiredSkills))
	}
	if got.RequiredSkills[0].UserHas == nil || !*got.RequiredSkills[0].UserHas {
		t.Error("expected userHas=true to survive a round trip")
	}
	if got.RequiredSkills[1].UserHas != nil {
		t.Error("expected unranked skill to keep a nil userHas")
	}
	if !got.DiscoveredAt.Equal(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("discovered_at = %v", got.DiscoveredAt)
	}
}

func TestInsertJobIgnoresExistingID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertJob(ctx, testJob("a1", "Backend Engineer", 0.8, model.TierHigh)); err != nil {
		t.Fatalf("first InsertJob: %v", err)
	}
	inserted, err := s.InsertJob(ctx, testJob("a1", "Renamed", 0.1, model.TierLow))
	if err != nil {
		t.Fatalf("second InsertJob: %v", err)
	}
	if inserted {
		t.Error("expected duplicate insert to be ignored")
	}

	got, _ := s.GetJob(ctx, "a1")
	if got.Title != "Backend Engineer" {
		t.Errorf("existing row was overwritten: title=%q", got.Title)
	}
}

func TestGetJobUnknownReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetJob(context.Background(), "missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestKnownIDsAndPairsIncludeArchived(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.InsertJob(ctx, testJob("a1", "Backend Engineer", 0.8, model.TierHigh))
	s.InsertJob(ctx, testJob("a2", "Data Engineer", 0.2, model.TierLow))
	if err := s.ArchiveJob(ctx, "a2"); err != nil {
		t.Fatalf("ArchiveJob: %v", err)
	}

	ids, err := s.KnownJobIDs(ctx)
	if err != nil {
		t.Fatalf("KnownJobIDs: %v", err)
	}
	if _, ok := ids["a2"]; !ok || len(ids) != 2 {
		t.Errorf("expected both ids, got %v", ids)
	}

	pairs, err := s.KnownTitleCompanies(ctx)
	if err != nil {
		t.Fatalf("KnownTitleCompanies: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %v", pairs)
	}
	found := false
	for _, p := range pairs {
		if p == "Data Engineer Acme" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected archived pair in %v", pairs)
	}
}

func TestListJobsFiltersAndOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.InsertJob(ctx, testJob("low", "Support Engineer", 0.1, model.TierLow))
	s.InsertJob(ctx, testJob("high", "Backend Engineer", 0.9, model.TierHigh))
	s.InsertJob(ctx, testJob("mid", "Platform Engineer", 0.5, model.TierMedium))
	s.InsertJob(ctx, testJob("old", "Go Engineer", 0.95, model.TierHigh))
	s.ArchiveJob(ctx, "old")

	all, err := s.ListJobs(ctx, model.JobQuery{})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	want := []string{"high", "mid", "low"}
	if len(all) != len(want) {
		t.Fatalf("expected %d jobs, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, all[i].ID, id)
		}
	}

	high, _ := s.ListJobs(ctx, model.JobQuery{Tier: model.TierHigh, IncludeArchived: true})
	if len(high) != 2 || high[0].ID != "old" {
		t.Errorf("unexpected high-tier listing: %+v", high)
	}

	limited, _ := s.ListJobs(ctx, model.JobQuery{Limit: 1})
	if len(limited) != 1 || limited[0].ID != "high" {
		t.Errorf("unexpected limited listing: %+v", limited)
	}
}

func TestArchiveUnknownJob(t *testing.T) {
	s := newTestStore(t)
	if err := s.ArchiveJob(context.Background(), "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	run := model.DiscoveryRun{ID: "run-1", StartedAt: started, Source: "cli", Status: model.RunRunning}
	if err := s.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	done := started.Add(2 * time.Minute)
	run.Status = model.RunCompleted
	run.JobsFound = 12
	run.JobsNew = 5
	run.CompletedAt = &done
	if err := s.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	runs, err := s.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Status != model.RunCompleted || got.JobsFound != 12 || got.JobsNew != 5 {
		t.Errorf("unexpected run: %+v", got)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
		t.Errorf("completed_at = %v, want %v", got.CompletedAt, done)
	}
}

func TestFinishRunOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := model.DiscoveryRun{ID: "run-1", StartedAt: time.Now(), Status: model.RunRunning}
	s.CreateRun(ctx, run)

	run.Status = model.RunFailed
	run.Error = "boom"
	if err := s.FinishRun(ctx, run); err != nil {
		t.Fatalf("first FinishRun: %v", err)
	}
	run.Status = model.RunCompleted
	if err := s.FinishRun(ctx, run); !errors.Is(err, model.ErrRunFinalized) {
		t.Errorf("expected ErrRunFinalized, got %v", err)
	}

	runs, _ := s.ListRuns(ctx, 0)
	if runs[0].Status != model.RunFailed || runs[0].Error != "boom" {
		t.Errorf("terminal state changed: %+v", runs[0])
	}
}

func TestFinishRunRejectsNonTerminalStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	run := model.DiscoveryRun{ID: "run-1", StartedAt: time.Now(), Status: model.RunRunning}
	s.CreateRun(ctx, run)

	if err := s.FinishRun(ctx, run); !errors.Is(err, model.ErrContract) {
		t.Errorf("expected ErrContract, got %v", err)
	}
}

func TestFinishRunUnknown(t *testing.T) {
	s := newTestStore(t)
	run := model.DiscoveryRun{ID: "nope", Status: model.RunCompleted}
	if err := s.FinishRun(context.Background(), run); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPruneRunsKeepsRunningAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	old := model.DiscoveryRun{ID: "old", StartedAt: now.AddDate(0, 0, -40), Status: model.RunRunning}
	stuck := model.DiscoveryRun{ID: "stuck", StartedAt: now.AddDate(0, 0, -40), Status: model.RunRunning}
	recent := model.DiscoveryRun{ID: "recent", StartedAt: now.AddDate(0, 0, -1), Status: model.RunRunning}
	for _, r := range []model.DiscoveryRun{old, stuck, recent} {
		s.CreateRun(ctx, r)
	}
	old.Status = model.RunCompleted
	s.FinishRun(ctx, old)
	recent.Status = model.RunCompleted
	s.FinishRun(ctx, recent)

	n, err := s.PruneRuns(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("PruneRuns: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned run, got %d", n)
	}
	runs, _ := s.ListRuns(ctx, 0)
	if len(runs) != 2 {
		t.Errorf("expected 2 runs left, got %d", len(runs))
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadProfile(ctx); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before save, got %v", err)
	}

	p := &model.UserProfile{
		Name:   "Sam",
		Skills: []model.ProfileSkill{{Name: "Go"}, {Name: "Postgres"}},
		Experience: []model.Experience{{
			Title: "Engineer", Company: "Acme", EndDate: "present",
			Bullets: []string{"Built a scheduler"}, Skills: []string{"go"},
		}},
	}
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	p.Name = "Sam Updated"
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("second SaveProfile: %v", err)
	}

	got, err := s.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if got.Name != "Sam Updated" || len(got.Skills) != 2 || got.Experience[0].Bullets[0] != "Built a scheduler" {
		t.Errorf("unexpected profile: %+v", got)
	}
}
