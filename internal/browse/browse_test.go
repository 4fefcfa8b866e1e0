package browse

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobscout/internal/fragment"
	"github.com/amishk599/jobscout/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func testJobs() []model.NormalizedJob {
	return []model.NormalizedJob{
		{
			ID: "a1", Title: "Backend Engineer", Company: "Acme", Location: "Berlin",
			MatchScore: 0.6667, MatchTier: model.TierMedium, Remote: true,
			RequiredSkills: []model.RequiredSkill{
				{Name: "go", Required: true, UserHas: boolPtr(true)},
				{Name: "postgresql", Required: true, UserHas: boolPtr(true)},
				{Name: "kubernetes", Required: true, UserHas: boolPtr(false)},
			},
		},
		{ID: "b2", Title: "Platform Engineer", Company: "Globex", Location: "Remote", MatchTier: model.TierLow},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(m browseModel) browseModel {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(browseModel)
}

func TestMatchReasons(t *testing.T) {
	reasons := matchReasons(testJobs()[0])
	want := []string{
		"You have 2 of 3 required skills (67%, medium tier).",
		"Matched: go, postgresql",
		"Missing: kubernetes",
		"Remote friendly.",
	}
	if len(reasons) != len(want) {
		t.Fatalf("reasons = %q, want %q", reasons, want)
	}
	for i := range want {
		if reasons[i] != want[i] {
			t.Errorf("reasons[%d] = %q, want %q", i, reasons[i], want[i])
		}
	}
}

func TestMatchReasons_NoSkills(t *testing.T) {
	reasons := matchReasons(testJobs()[1])
	if len(reasons) != 1 || !strings.Contains(reasons[0], "0%") {
		t.Errorf("reasons = %q", reasons)
	}
}

func TestBrowse_CursorMovesAndClamps(t *testing.T) {
	m := sized(newBrowseModel("All jobs", testJobs(), Actions{}))
	for i := 0; i < 5; i++ {
		next, _ := m.Update(key("down"))
		m = next.(browseModel)
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	if !strings.Contains(m.detailView.View(), "Platform Engineer") {
		t.Error("detail pane should follow the cursor")
	}
}

func TestBrowse_EnterOpensFullViewAndEscReturns(t *testing.T) {
	m := sized(newBrowseModel("All jobs", testJobs(), Actions{}))
	next, _ := m.Update(key("enter"))
	m = next.(browseModel)
	if m.view != viewFull {
		t.Fatal("enter should open the full view")
	}
	next, _ = m.Update(key("esc"))
	m = next.(browseModel)
	if m.view != viewSplit {
		t.Error("esc should return to the split view")
	}
}

func TestBrowse_EscAndQuit(t *testing.T) {
	m := sized(newBrowseModel("All jobs", testJobs(), Actions{}))
	next, cmd := m.Update(key("esc"))
	if next.(browseModel).wantQuit || cmd == nil {
		t.Error("esc should leave the browser without quitting the program")
	}
	next, cmd = m.Update(key("q"))
	if !next.(browseModel).wantQuit || cmd == nil {
		t.Error("q should quit")
	}
}

func TestBrowse_ArchiveRemovesJob(t *testing.T) {
	var archived string
	actions := Actions{Archive: func(_ context.Context, id string) error {
		archived = id
		return nil
	}}
	m := sized(newBrowseModel("All jobs", testJobs(), actions))

	_, cmd := m.Update(key("a"))
	if cmd == nil {
		t.Fatal("archive should return a command")
	}
	msg := cmd()
	if archived != "a1" {
		t.Fatalf("archived = %q, want a1", archived)
	}
	next, _ := m.Update(msg)
	m = next.(browseModel)
	if len(m.jobs) != 1 || m.jobs[0].ID != "b2" {
		t.Errorf("jobs = %+v, want only b2", m.jobs)
	}
}

func TestBrowse_ArchiveFailureKeepsJob(t *testing.T) {
	m := sized(newBrowseModel("All jobs", testJobs(), Actions{}))
	next, _ := m.Update(archivedMsg{jobID: "a1", err: errors.New("db locked")})
	m = next.(browseModel)
	if len(m.jobs) != 2 {
		t.Errorf("jobs = %d, want 2", len(m.jobs))
	}
	if !strings.Contains(m.message, "db locked") {
		t.Errorf("message = %q", m.message)
	}
}

func TestBrowse_TailorShowsFragments(t *testing.T) {
	calls := 0
	actions := Actions{Tailor: func(_ context.Context, job model.NormalizedJob) (fragment.Selection, error) {
		calls++
		return fragment.Selection{Bullets: []model.ScoredFragment{{
			Kind: model.FragmentBullet, Text: "Cut p99 latency by 40% with Go workers",
			Origin: "Acme", Score: 0.82, Reason: "matches go (50% relevant)",
		}}}, nil
	}}
	m := sized(newBrowseModel("All jobs", testJobs(), actions))

	next, cmd := m.Update(key("t"))
	m = next.(browseModel)
	if cmd == nil || m.tailorLoading != "a1" {
		t.Fatal("tailor should start for the selected job")
	}
	next, _ = m.Update(cmd())
	m = next.(browseModel)
	if !strings.Contains(m.detailView.View(), "Cut p99 latency") {
		t.Error("detail pane should list the selected fragments")
	}

	// A second press reuses the cached selection.
	if _, cmd := m.Update(key("t")); cmd != nil {
		t.Error("tailoring twice should not start a new command")
	}
	if calls != 1 {
		t.Errorf("tailor calls = %d, want 1", calls)
	}
}

func TestPicker_SelectAndQuit(t *testing.T) {
	m := pickerModel{choices: DefaultChoices(), chosen: -1}
	next, _ := m.Update(key("j"))
	next, cmd := next.Update(key("enter"))
	if got := next.(pickerModel).chosen; got != 1 || cmd == nil {
		t.Errorf("chosen = %d, want 1", got)
	}
	if DefaultChoices()[1].Tier != model.TierHigh {
		t.Error("second choice should browse the high tier")
	}

	next, _ = m.Update(key("q"))
	if next.(pickerModel).chosen != -2 {
		t.Error("q should mark the picker as quit")
	}
}

func TestLoader_ReportsTaskResult(t *testing.T) {
	boom := errors.New("boom")
	m := newLoaderModel(context.Background(), "Discovering", func() string { return "searching 3/9" },
		func(context.Context) error { return boom })
	defer m.cancel()

	if !strings.Contains(m.View(), "searching 3/9") {
		t.Errorf("view = %q, want status line", m.View())
	}
	next, cmd := m.Update(m.runTask()())
	final := next.(loaderModel)
	if !errors.Is(final.err, boom) || !final.done || cmd == nil {
		t.Errorf("final = %+v", final)
	}
}

func TestLoader_CtrlCCancelsTask(t *testing.T) {
	m := newLoaderModel(context.Background(), "Discovering", nil, func(context.Context) error { return nil })
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	final := next.(loaderModel)
	if !errors.Is(final.err, ErrCancelled) {
		t.Errorf("err = %v, want ErrCancelled", final.err)
	}
	if final.ctx.Err() == nil {
		t.Error("task context should be cancelled")
	}
}

func TestCountChoices(t *testing.T) {
	jobs := []model.NormalizedJob{
		{ID: "a", MatchTier: model.TierHigh},
		{ID: "b", MatchTier: model.TierHigh},
		{ID: "c", MatchTier: model.TierLow},
	}
	got := CountChoices(DefaultChoices(), jobs)
	want := []int{3, 2, 0, 1, -1}
	for i, c := range got {
		if c.Count != want[i] {
			t.Errorf("%s count = %d, want %d", c.Label, c.Count, want[i])
		}
	}
	if DefaultChoices()[0].Count != -1 {
		t.Error("CountChoices must not modify its input")
	}
}
