package browse

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobscout/internal/fragment"
	"github.com/amishk599/jobscout/internal/model"
)

// Lines per job item in the list view (title + subtitle + blank separator).
const jobItemHeight = 3

// actionTimeout bounds archive and tailor callbacks.
const actionTimeout = 2 * time.Minute

type viewState int

const (
	viewSplit viewState = iota
	viewFull
)

var (
	paneBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	paneTitle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	statusBar  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))

	rowTitle    = lipgloss.NewStyle().Bold(true)
	rowMeta     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cursorBg    = lipgloss.Color("24")
	headingText = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	fieldLabel  = lipgloss.NewStyle().Bold(true).Foreground(accent).Width(12)
	rule        = lipgloss.NewStyle().Foreground(muted)
	hint        = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	haveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	tierStyles = map[model.MatchTier]lipgloss.Style{
		model.TierHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		model.TierMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.TierLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
)

// focusColor is the border and title colour of a pane.
func focusColor(focused bool) lipgloss.Color {
	if focused {
		return accent
	}
	return muted
}

// Actions are optional callbacks bound to keys in the browser. Nil
// callbacks disable their key.
type Actions struct {
	Archive func(ctx context.Context, jobID string) error
	Tailor  func(ctx context.Context, job model.NormalizedJob) (fragment.Selection, error)
}

type archivedMsg struct {
	jobID string
	err   error
}

type tailoredMsg struct {
	jobID     string
	selection fragment.Selection
	err       error
}

type browseModel struct {
	title         string
	jobs          []model.NormalizedJob
	cursor        int
	listViewport  viewport.Model
	detailView    viewport.Model
	fullViewport  viewport.Model
	activePane    int // 0=list, 1=detail
	width         int
	height        int
	ready         bool
	view          viewState
	actions       Actions
	tailored      map[string]fragment.Selection
	tailorLoading string // job ID being tailored
	message       string

	wantQuit bool
}

func newBrowseModel(title string, jobs []model.NormalizedJob, actions Actions) browseModel {
	return browseModel{
		title:    title,
		jobs:     jobs,
		actions:  actions,
		tailored: make(map[string]fragment.Selection),
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case archivedMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("archive failed: %v", msg.err)
		} else {
			m.removeJob(msg.jobID)
			m.message = "job archived"
		}
		m.recalcContent()
		return m, nil

	case tailoredMsg:
		m.tailorLoading = ""
		if msg.err != nil {
			m.message = fmt.Sprintf("tailoring failed: %v", msg.err)
		} else {
			m.tailored[msg.jobID] = msg.selection
			m.message = ""
		}
		m.recalcContent()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewFull {
			return m.updateFullView(msg)
		}
		return m.updateSplitView(msg)
	}

	return m, nil
}

func (m browseModel) updateSplitView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		m.wantQuit = false
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		return m, nil
	case "up", "k":
		if m.activePane == 0 {
			m.moveCursor(-1)
			return m, nil
		}
	case "down", "j":
		if m.activePane == 0 {
			m.moveCursor(1)
			return m, nil
		}
	case "enter":
		if job, ok := m.selected(); ok {
			m.view = viewFull
			m.fullViewport = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
			m.fullViewport.SetContent(m.renderDetail(job, true, m.fullViewport.Width))
		}
		return m, nil
	case "o":
		if job, ok := m.selected(); ok && job.SourceURL != "" {
			openURL(job.SourceURL)
		}
		return m, nil
	case "a":
		return m, m.archiveCmd()
	case "t":
		return m.startTailor()
	}

	// Forward other keys (pgup/pgdn/home/end) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.listViewport, cmd = m.listViewport.Update(msg)
	} else {
		m.detailView, cmd = m.detailView.Update(msg)
	}
	return m, cmd
}

func (m browseModel) updateFullView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewSplit
		m.recalcContent()
		return m, nil
	case "o":
		if job, ok := m.selected(); ok && job.SourceURL != "" {
			openURL(job.SourceURL)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.fullViewport, cmd = m.fullViewport.Update(msg)
	return m, cmd
}

func (m browseModel) archiveCmd() tea.Cmd {
	job, ok := m.selected()
	if !ok || m.actions.Archive == nil {
		return nil
	}
	archive := m.actions.Archive
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return archivedMsg{jobID: job.ID, err: archive(ctx, job.ID)}
	}
}

func (m browseModel) startTailor() (tea.Model, tea.Cmd) {
	job, ok := m.selected()
	if !ok || m.actions.Tailor == nil || m.tailorLoading != "" {
		return m, nil
	}
	if _, done := m.tailored[job.ID]; done {
		return m, nil
	}
	m.tailorLoading = job.ID
	m.message = ""
	m.recalcContent()

	tailor := m.actions.Tailor
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		sel, err := tailor(ctx, job)
		return tailoredMsg{jobID: job.ID, selection: sel, err: err}
	}
}

func (m *browseModel) selected() (model.NormalizedJob, bool) {
	if len(m.jobs) == 0 {
		return model.NormalizedJob{}, false
	}
	return m.jobs[m.cursor], true
}

func (m *browseModel) removeJob(id string) {
	for i := range m.jobs {
		if m.jobs[i].ID == id {
			m.jobs = append(m.jobs[:i], m.jobs[i+1:]...)
			break
		}
	}
	m.cursor = clamp(m.cursor, 0, max(len(m.jobs)-1, 0))
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.jobs)-1, 0))
	m.recalcContent()
	m.ensureCursorVisible()
}

func (m *browseModel) ensureCursorVisible() {
	vp := &m.listViewport
	cursorTop := m.cursor * jobItemHeight
	cursorBottom := cursorTop + jobItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m *browseModel) recalcLayout() {
	// List takes two fifths of the width; borders and the gap take 5 columns.
	listWidth := max((m.width-5)*2/5, 20)
	detailWidth := max(m.width-5-listWidth, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(listWidth, paneHeight)
		m.detailView = viewport.New(detailWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = listWidth
		m.listViewport.Height = paneHeight
		m.detailView.Width = detailWidth
		m.detailView.Height = paneHeight
	}
	if m.view == viewFull {
		m.fullViewport.Width = max(m.width-4, 20)
		m.fullViewport.Height = max(m.height-4, 5)
	}

	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	m.listViewport.SetContent(renderJobs(m.jobs, m.cursor))
	job, ok := m.selected()
	if !ok {
		m.detailView.SetContent("  (no job selected)")
		return
	}
	m.detailView.SetContent(m.renderDetail(job, false, m.detailView.Width))
	if m.view == viewFull {
		m.fullViewport.SetContent(m.renderDetail(job, true, m.fullViewport.Width))
	}
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewFull {
		return m.viewFull()
	}
	return m.viewSplit()
}

func (m browseModel) viewSplit() string {
	lw, dw := m.listViewport.Width, m.detailView.Width
	listFocused := m.activePane == 0

	titles := lipgloss.JoinHorizontal(lipgloss.Top,
		paneTitle.Foreground(focusColor(listFocused)).Width(lw+2).Render(fmt.Sprintf("%s (%d)", m.title, len(m.jobs))),
		" ",
		paneTitle.Foreground(focusColor(!listFocused)).Width(dw+2).Render("Details"),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		paneBorder.BorderForeground(focusColor(listFocused)).Width(lw).Render(m.listViewport.View()),
		" ",
		paneBorder.BorderForeground(focusColor(!listFocused)).Width(dw).Render(m.detailView.View()),
	)
	return titles + "\n" + panes + "\n" + statusBar.Width(m.width).Render(m.keyHelp())
}

// keyHelp lists the split-view keys, prefixed by the last action message.
func (m browseModel) keyHelp() string {
	keys := []string{"↑/↓ move", "tab pane", "enter full view", "o open"}
	if m.actions.Archive != nil {
		keys = append(keys, "a archive")
	}
	if m.actions.Tailor != nil {
		keys = append(keys, "t tailor")
	}
	keys = append(keys, "esc back", "q quit")
	help := strings.Join(keys, "  ")
	if m.message != "" {
		help = m.message + "  |  " + help
	}
	return help
}

func (m browseModel) viewFull() string {
	body := paneBorder.BorderForeground(accent).Width(m.width - 2).Render(m.fullViewport.View())
	return headingText.Render("Job Details") + "\n" + body + "\n" +
		statusBar.Width(m.width).Render("o open URL  esc back  ↑/↓ scroll  q quit")
}

func (m browseModel) renderDetail(j model.NormalizedJob, withDescription bool, width int) string {
	var b strings.Builder
	wrapWidth := max(width-4, 20)

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(fieldLabel.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return rule.Render(label + fill)
	}

	b.WriteString(headingText.Render(j.Title) + "\n\n")
	addField("Company", j.Company)
	location := j.Location
	if j.Remote && !strings.Contains(strings.ToLower(location), "remote") {
		location = strings.TrimSpace(location + " (remote)")
	}
	addField("Location", location)
	addField("Match", fmt.Sprintf("%.0f%% %s", j.MatchScore*100, tierLabel(j.MatchTier)))
	addField("Source", j.Source)
	addField("Posted", j.PostedDate)
	if !j.DiscoveredAt.IsZero() {
		addField("Discovered", j.DiscoveredAt.Local().Format("2006-01-02 15:04"))
	}
	addField("URL", j.SourceURL)

	b.WriteByte('\n')
	b.WriteString(divider("── Why it matched ") + "\n")
	for _, r := range matchReasons(j) {
		b.WriteString(wordWrap("  • "+r, wrapWidth) + "\n")
	}

	if len(j.RequiredSkills) > 0 {
		b.WriteByte('\n')
		b.WriteString(divider("── Skills ") + "\n")
		b.WriteString(wordWrap(renderSkills(j.RequiredSkills), wrapWidth) + "\n")
	}

	if sel, ok := m.tailored[j.ID]; ok {
		b.WriteByte('\n')
		b.WriteString(divider("── Resume fragments ") + "\n")
		b.WriteString(renderSelection(sel, wrapWidth))
	} else if m.tailorLoading == j.ID {
		b.WriteString("\n" + hint.Render("  selecting resume fragments...") + "\n")
	} else if m.actions.Tailor != nil {
		b.WriteString("\n" + hint.Render("  press t to pick resume fragments for this job") + "\n")
	}

	if withDescription && j.Description != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Job Description ") + "\n\n")
		b.WriteString(wordWrap(j.Description, wrapWidth) + "\n")
	} else if j.Description != "" {
		b.WriteString("\n" + hint.Render("  press enter to read the job description") + "\n")
	}

	if m.message != "" && strings.Contains(m.message, "failed") {
		b.WriteString("\n" + errorStyle.Render("⚠ "+m.message) + "\n")
	}

	return b.String()
}

// matchReasons explains a job's score in plain sentences.
func matchReasons(j model.NormalizedJob) []string {
	if len(j.RequiredSkills) == 0 {
		return []string{"No known skills found in the description, so the score is 0%."}
	}

	var have, missing, unknown []string
	for _, s := range j.RequiredSkills {
		switch {
		case s.UserHas == nil:
			unknown = append(unknown, s.Name)
		case *s.UserHas:
			have = append(have, s.Name)
		default:
			missing = append(missing, s.Name)
		}
	}

	reasons := []string{fmt.Sprintf("You have %d of %d required skills (%.0f%%, %s tier).",
		len(have), len(j.RequiredSkills), j.MatchScore*100, j.MatchTier)}
	if len(have) > 0 {
		reasons = append(reasons, "Matched: "+strings.Join(have, ", "))
	}
	if len(missing) > 0 {
		reasons = append(reasons, "Missing: "+strings.Join(missing, ", "))
	}
	if len(unknown) > 0 {
		reasons = append(reasons, "Not compared with a profile: "+strings.Join(unknown, ", "))
	}
	if j.Remote {
		reasons = append(reasons, "Remote friendly.")
	}
	return reasons
}

func renderSkills(skills []model.RequiredSkill) string {
	parts := make([]string, 0, len(skills))
	for _, s := range skills {
		switch {
		case s.UserHas == nil:
			parts = append(parts, "· "+s.Name)
		case *s.UserHas:
			parts = append(parts, haveStyle.Render("✓ "+s.Name))
		default:
			parts = append(parts, missingStyle.Render("✗ "+s.Name))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func renderSelection(sel fragment.Selection, width int) string {
	if len(sel.Bullets) == 0 && len(sel.Projects) == 0 {
		return hint.Render("  no fragments overlap this job's skills") + "\n"
	}
	var b strings.Builder
	write := func(f model.ScoredFragment) {
		b.WriteString(wordWrap(fmt.Sprintf("  %.2f  %s", f.Score, f.Text), width) + "\n")
		b.WriteString(rowMeta.Render(fmt.Sprintf("        %s · %s", f.Origin, f.Reason)) + "\n")
	}
	for _, f := range sel.Bullets {
		write(f)
	}
	if len(sel.Projects) > 0 {
		b.WriteString("  Projects\n")
		for _, f := range sel.Projects {
			write(f)
		}
	}
	return b.String()
}

func tierLabel(t model.MatchTier) string {
	st, ok := tierStyles[t]
	if !ok {
		return string(t)
	}
	return st.Render(string(t))
}

func renderJobs(jobs []model.NormalizedJob, cursor int) string {
	if len(jobs) == 0 {
		return "  (no jobs)"
	}
	rows := make([]string, len(jobs))
	for i, j := range jobs {
		title, meta, marker := rowTitle, rowMeta, "  "
		if i == cursor {
			title = title.Foreground(lipgloss.Color("15")).Background(cursorBg)
			meta = meta.Foreground(lipgloss.Color("252")).Background(cursorBg)
			marker = "> "
		}
		rows[i] = marker + title.Render(j.Title) + "\n" +
			marker + meta.Render(fmt.Sprintf("%s · %s · %.0f%%", j.Company, j.Location, j.MatchScore*100)) + "\n"
	}
	return strings.Join(rows, "\n")
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if lipgloss.Width(line)+1+lipgloss.Width(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the split-pane job browser. jobs are shown in the given
// order. Returns wantQuit=true if the user pressed q/ctrl+c, false if they
// pressed esc to return to the picker.
func Run(title string, jobs []model.NormalizedJob, actions Actions) (bool, error) {
	p := tea.NewProgram(newBrowseModel(title, jobs, actions), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(browseModel)
	return final.wantQuit, nil
}
