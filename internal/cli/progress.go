// internal/cli/progress.go
package redqueen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// maxRecentJobs bounds the finished jobs kept on screen.
const maxRecentJobs = 8

type jobStartedMsg struct {
	id           string
	index, total int
}

type jobFinishedMsg struct {
	id  string
	err error
}

type runDoneMsg struct{ err error }

// progressModel shows a spinner next to the running benchmark and the last
// few finished ones.
type progressModel struct {
	spinner    spinner.Model
	cancel     func()
	current    string
	index      int
	total      int
	recent     []string
	failed     int
	cancelling bool
	done       bool
}

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func newProgressModel(cancel func()) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return progressModel{spinner: s, cancel: cancel}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.cancelling && m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
		}
		return m, nil

	case jobStartedMsg:
		m.current = msg.id
		m.index = msg.index
		m.total = msg.total
		return m, nil

	case jobFinishedMsg:
		line := okStyle.Render("✓ ") + msg.id
		if msg.err != nil {
			m.failed++
			line = failStyle.Render("✗ ") + msg.id + pendingStyle.Render(" ("+msg.err.Error()+")")
		}
		m.recent = append(m.recent, line)
		if len(m.recent) > maxRecentJobs {
			m.recent = m.recent[len(m.recent)-maxRecentJobs:]
		}
		if msg.id == m.current {
			m.current = ""
		}
		return m, nil

	case runDoneMsg:
		m.done = true
		m.current = ""
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	for _, line := range m.recent {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	switch {
	case m.done:
		fmt.Fprintf(&b, "Finished %d benchmarks, %d failed.\n", m.total, m.failed)
	case m.current != "":
		fmt.Fprintf(&b, "%s [%d/%d] %s\n", m.spinner.View(), m.index, m.total, m.current)
	default:
		fmt.Fprintf(&b, "%s preparing...\n", m.spinner.View())
	}
	if m.cancelling && !m.done {
		b.WriteString(pendingStyle.Render("Cancelling after the current benchmark...") + "\n")
	}
	return b.String()
}
