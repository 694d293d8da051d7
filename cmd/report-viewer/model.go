package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"weather-server/entities"
	"weather-server/services"
)

const pageSize = 15

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			PaddingLeft(4)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// reportSource is the slice of the weather use case the viewer needs.
type reportSource interface {
	GetAllReports() ([]entities.DailyReport, error)
	GenerateReports() (*services.ReportRun, error)
}

type reportsLoadedMsg []entities.DailyReport
type runFinishedMsg struct{ run *services.ReportRun }
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type model struct {
	source   reportSource
	keys     keyMap
	reports  []entities.DailyReport
	devices  []string // distinct device ids, sorted
	filter   int      // 0 shows every device, i>0 shows devices[i-1]
	cursor   int
	loading  bool
	message  string
	quitting bool
}

func initialModel(source reportSource) model {
	return model{source: source, keys: defaultKeyMap(), loading: true}
}

func (m model) Init() tea.Cmd {
	return loadReports(m.source)
}

func loadReports(source reportSource) tea.Cmd {
	return func() tea.Msg {
		reports, err := source.GetAllReports()
		if err != nil {
			return errMsg{fmt.Errorf("loading reports: %w", err)}
		}
		return reportsLoadedMsg(reports)
	}
}

func generateReports(source reportSource) tea.Cmd {
	return func() tea.Msg {
		run, err := source.GenerateReports()
		if err != nil {
			return errMsg{fmt.Errorf("generating reports: %w", err)}
		}
		return runFinishedMsg{run: run}
	}
}

// visible returns the reports that pass the device filter.
func (m model) visible() []entities.DailyReport {
	if m.filter == 0 {
		return m.reports
	}
	device := m.devices[m.filter-1]
	var out []entities.DailyReport
	for _, r := range m.reports {
		if r.DeviceID == device {
			out = append(out, r)
		}
	}
	return out
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Prev):
			if len(m.devices) > 0 {
				m.filter = (m.filter + len(m.devices)) % (len(m.devices) + 1)
				m.cursor = 0
			}

		case key.Matches(msg, m.keys.Next):
			if len(m.devices) > 0 {
				m.filter = (m.filter + 1) % (len(m.devices) + 1)
				m.cursor = 0
			}

		case key.Matches(msg, m.keys.Reload):
			m.loading = true
			m.message = "Reloading..."
			return m, loadReports(m.source)

		case key.Matches(msg, m.keys.Generate):
			if !m.loading {
				m.loading = true
				m.message = "Generating daily reports..."
				return m, generateReports(m.source)
			}
		}

	case reportsLoadedMsg:
		m.loading = false
		m.reports = []entities.DailyReport(msg)
		sort.Slice(m.reports, func(i, j int) bool {
			if m.reports[i].DeviceID != m.reports[j].DeviceID {
				return m.reports[i].DeviceID < m.reports[j].DeviceID
			}
			return m.reports[i].ReportDate.Before(m.reports[j].ReportDate)
		})
		m.devices = m.devices[:0]
		for _, r := range m.reports {
			if len(m.devices) == 0 || m.devices[len(m.devices)-1] != r.DeviceID {
				m.devices = append(m.devices, r.DeviceID)
			}
		}
		if m.filter > len(m.devices) {
			m.filter = 0
		}
		if n := len(m.visible()); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		if m.message == "Reloading..." {
			m.message = ""
		}

	case runFinishedMsg:
		if msg.run.Skipped {
			m.message = successStyle.Render("Reports already exist, nothing generated")
		} else {
			m.message = successStyle.Render(fmt.Sprintf("✓ Stored %d daily reports", msg.run.Inserted))
		}
		return m, loadReports(m.source)

	case errMsg:
		m.loading = false
		m.message = errorStyle.Render("✗ " + msg.err.Error())
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Daily Weather Reports"))
	s.WriteString("\n")

	filter := "all devices"
	if m.filter > 0 {
		filter = m.devices[m.filter-1]
	}
	s.WriteString(fmt.Sprintf("Showing: %s\n\n", filter))

	if m.message != "" {
		s.WriteString(m.message + "\n\n")
	}

	reports := m.visible()
	switch {
	case m.loading && len(reports) == 0:
		s.WriteString("Loading...\n")
	case len(reports) == 0:
		s.WriteString("No daily reports yet. Press g to generate them.\n")
	default:
		s.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %-10s %8s %8s %8s", "DEVICE", "DATE", "AVG", "MIN", "MAX")))
		s.WriteString("\n")

		start := 0
		if m.cursor >= pageSize {
			start = m.cursor - pageSize + 1
		}
		end := min(start+pageSize, len(reports))
		for i := start; i < end; i++ {
			r := reports[i]
			line := fmt.Sprintf("%-10s %-10s %8s %8s %8s",
				r.DeviceID,
				r.ReportDate.Format(entities.DateLayout),
				r.AvgValue.StringFixed(2),
				r.MinValue.StringFixed(2),
				r.MaxValue.StringFixed(2),
			)
			if m.cursor == i {
				s.WriteString(selectedStyle.Render("> " + line))
			} else {
				s.WriteString(normalStyle.Render(line))
			}
			s.WriteString("\n")
		}
		s.WriteString(fmt.Sprintf("\n%d/%d\n", m.cursor+1, len(reports)))
	}

	s.WriteString(helpStyle.Render("\n" + m.keys.helpLine()))
	s.WriteString("\n")
	return s.String()
}
