package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned by RunLoader when the user interrupts the task.
var ErrCancelled = errors.New("cancelled")

type taskDoneMsg struct {
	err error
}

type loaderModel struct {
	label   string
	task    func(ctx context.Context) error
	status  func() string
	ctx     context.Context
	cancel  context.CancelFunc
	spinner spinner.Model
	err     error
	done    bool
}

func newLoaderModel(ctx context.Context, label string, status func() string, task func(ctx context.Context) error) loaderModel {
	ctx, cancel := context.WithCancel(ctx)
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel{
		label:   label,
		task:    task,
		status:  status,
		ctx:     ctx,
		cancel:  cancel,
		spinner: s,
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.runTask(), m.spinner.Tick)
}

func (m loaderModel) runTask() tea.Cmd {
	task, ctx := m.task, m.ctx
	return func() tea.Msg {
		return taskDoneMsg{err: task(ctx)}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.cancel()
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	line := fmt.Sprintf("%s %s...", m.spinner.View(), m.label)
	if m.status != nil {
		if s := m.status(); s != "" {
			line += " " + rowMeta.Render(s)
		}
	}
	return line + "\n"
}

// RunLoader shows a spinner while task runs. It renders inline (no alt
// screen). status, when non-nil, is polled on every frame for a short
// progress line. Ctrl+C cancels the task's context.
func RunLoader(ctx context.Context, label string, status func() string, task func(ctx context.Context) error) error {
	m := newLoaderModel(ctx, label, status, task)
	defer m.cancel()

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return err
	}
	return result.(loaderModel).err
}
