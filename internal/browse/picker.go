package browse

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	accent = lipgloss.Color("39")
	muted  = lipgloss.Color("240")
)

var (
	menuHeader  = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(1, 0, 1, 2)
	menuRow     = lipgloss.NewStyle().PaddingLeft(4)
	menuCurrent = lipgloss.NewStyle().Bold(true).Foreground(accent).PaddingLeft(2)
	menuCount   = lipgloss.NewStyle().Foreground(muted)
	menuFooter  = lipgloss.NewStyle().Foreground(muted).Padding(1, 0, 0, 2)
)

// Choice is a start-menu entry. Discover entries run discovery before
// listing; the rest list stored jobs of Tier (empty means every tier).
type Choice struct {
	Label    string
	Tier     model.MatchTier
	Discover bool
	Count    int // -1 hides the count
}

func DefaultChoices() []Choice {
	return []Choice{
		{Label: "All jobs", Count: -1},
		{Label: "High match", Tier: model.TierHigh, Count: -1},
		{Label: "Medium match", Tier: model.TierMedium, Count: -1},
		{Label: "Low match", Tier: model.TierLow, Count: -1},
		{Label: "Run discovery now", Discover: true, Count: -1},
	}
}

// CountChoices fills in how many of jobs each listing choice would show.
func CountChoices(choices []Choice, jobs []model.NormalizedJob) []Choice {
	byTier := make(map[model.MatchTier]int)
	for _, j := range jobs {
		byTier[j.MatchTier]++
	}
	out := make([]Choice, len(choices))
	for i, c := range choices {
		switch {
		case c.Discover:
			c.Count = -1
		case c.Tier == "":
			c.Count = len(jobs)
		default:
			c.Count = byTier[c.Tier]
		}
		out[i] = c
	}
	return out
}

const (
	pickPending = -1
	pickQuit    = -2
)

type pickerModel struct {
	choices []Choice
	cursor  int
	chosen  int
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.choices)-1)
	case "home", "g":
		m.cursor = 0
	case "enter":
		m.chosen = m.cursor
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.chosen = pickQuit
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	fmt.Fprintln(&b, menuHeader.Render("jobscout · What do you want to browse?"))
	for i, c := range m.choices {
		label := c.Label
		if c.Count >= 0 {
			label += " " + menuCount.Render(fmt.Sprintf("(%d)", c.Count))
		}
		if i == m.cursor {
			fmt.Fprintln(&b, menuCurrent.Render("> "+label))
		} else {
			fmt.Fprintln(&b, menuRow.Render(label))
		}
	}
	b.WriteString(menuFooter.Render("↑/↓ move  enter select  q quit"))
	return b.String()
}

// RunPicker returns the chosen index, or -1 when the user backs out.
func RunPicker(choices []Choice) (int, error) {
	result, err := tea.NewProgram(pickerModel{choices: choices, chosen: pickPending}).Run()
	if err != nil {
		return -1, err
	}
	if final := result.(pickerModel); final.chosen >= 0 {
		return final.chosen, nil
	}
	return -1, nil
}
