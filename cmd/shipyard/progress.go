package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/shipyard/pkg/poll"
	"github.com/entrhq/shipyard/pkg/tools"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(salmonPink)
	siteStyle    = lipgloss.NewStyle().Foreground(mintGreen)
)

// attemptMsg reports one poll attempt to the progress view.
type attemptMsg struct {
	site    string
	attempt poll.Attempt
}

// doneMsg ends the progress view.
type doneMsg struct{}

// progressModel shows a spinner with the current wait, its attempt count
// and elapsed time.
type progressModel struct {
	spinner spinner.Model
	tool    string
	site    string
	attempt int
	elapsed time.Duration
	done    bool
}

func newProgressModel(tool string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return progressModel{spinner: s, tool: tool}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case attemptMsg:
		m.site = msg.site
		m.attempt = msg.attempt.Number
		m.elapsed = msg.attempt.Elapsed
		return m, nil
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	if m.site == "" {
		return fmt.Sprintf("%s running %s\n", m.spinner.View(), m.tool)
	}
	return fmt.Sprintf("%s waiting for %s (attempt %d, %s elapsed)\n",
		m.spinner.View(), siteStyle.Render(m.site), m.attempt, m.elapsed.Round(time.Second))
}

// runWithProgress runs fn while a spinner on out tracks its poll attempts.
// The caller's signal handling stays in charge of interrupts.
func runWithProgress(out io.Writer, tool string, fn func(report func(string, poll.Attempt)) *tools.Result) *tools.Result {
	program := tea.NewProgram(newProgressModel(tool),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	results := make(chan *tools.Result, 1)
	go func() {
		results <- fn(func(site string, a poll.Attempt) {
			program.Send(attemptMsg{site: site, attempt: a})
		})
		program.Send(doneMsg{})
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(out, "progress view failed: %v\n", err)
	}
	return <-results
}
