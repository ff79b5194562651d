// Package tui shows a long integration live: accepted steps stream
// into a bubbletea view that plots one state component and the
// current step statistics.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// StepMsg is one accepted integration step.
type StepMsg struct {
	T    float64
	X    []float64
	Step int
}

// DoneMsg ends the stream.
type DoneMsg struct {
	StepLimit bool
}

type model struct {
	problem   string
	component int
	steps     chan tea.Msg

	series []float64
	t      float64
	step   int
	done   bool
	limit  bool
}

// NewProgram builds the live view; the caller feeds StepMsg and a
// final DoneMsg into the returned channel. buffer must be large
// enough for the whole run so the producer never blocks after the
// view quits.
func NewProgram(problem string, component, buffer int) (*tea.Program, chan<- tea.Msg) {
	steps := make(chan tea.Msg, buffer)
	m := model{problem: problem, component: component, steps: steps}
	return tea.NewProgram(m), steps
}

func (m model) next() tea.Cmd {
	return func() tea.Msg { return <-m.steps }
}

func (m model) Init() tea.Cmd { return m.next() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case StepMsg:
		m.t = msg.T
		m.step = msg.Step
		m.series = append(m.series, msg.X[m.component])
		if len(m.series) > 400 {
			m.series = m.series[len(m.series)-400:]
		}
		return m, m.next()
	case DoneMsg:
		m.done = true
		m.limit = msg.StepLimit
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	header := cyan.Render(m.problem) + dim.Render(fmt.Sprintf("  t=%.6g  step %d", m.t, m.step))
	body := ""
	if len(m.series) >= 2 {
		body = asciigraph.Plot(m.series, asciigraph.Width(72), asciigraph.Height(14))
	}
	footer := dim.Render("q to quit")
	if m.done {
		if m.limit {
			footer = yellow.Render("stopped at step budget")
		} else {
			footer = green.Render("done")
		}
	}
	return header + "\n\n" + body + "\n\n" + footer + "\n"
}
