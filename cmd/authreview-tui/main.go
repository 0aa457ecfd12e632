package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/exp/slices"

	"github.com/rinexis/authreview/pkg/analysis"
	"github.com/rinexis/authreview/pkg/ingest"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF8800")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF8800")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)

	levelStyles = map[string]lipgloss.Style{
		"Critical": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		"High":     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8800")),
		"Medium":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		"Low":      lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
	}
)

type view int

const (
	dashboardView view = iota
	exposuresView
	rolesView
)

const viewCount = 3

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Filter   key.Binding
	Clear    key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter by role"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Filter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Filter, k.Clear},
		{k.Up, k.Down, k.Quit},
	}
}

type model struct {
	result        *analysis.Result
	currentView   view
	exposureTable table.Model
	filterInput   textinput.Model
	filtering     bool
	roleFilter    string
	help          help.Model
	keys          keyMap
	width         int
	height        int
	message       string
}

func initialModel(result *analysis.Result) model {
	ti := textinput.New()
	ti.Placeholder = "role name (empty = all)"
	ti.CharLimit = 100
	ti.Width = 40

	columns := []table.Column{
		{Title: "Role", Width: 24},
		{Title: "Risk", Width: 10},
		{Title: "Level", Width: 10},
		{Title: "Type", Width: 22},
		{Title: "Description", Width: 48},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF8800")).
		Bold(false)
	t.SetStyles(s)

	m := model{
		result:        result,
		currentView:   dashboardView,
		exposureTable: t,
		filterInput:   ti,
		help:          help.New(),
		keys:          keys,
	}
	m.refreshExposureTable()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if m.filtering {
			switch msg.String() {
			case "enter":
				m.applyFilter()
			case "esc":
				m.filtering = false
				m.filterInput.Blur()
			default:
				m.filterInput, cmd = m.filterInput.Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount

		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = viewCount - 1
			} else {
				m.currentView--
			}

		case key.Matches(msg, m.keys.Filter):
			if m.currentView == exposuresView {
				m.filtering = true
				m.filterInput.Focus()
				cmds = append(cmds, textinput.Blink)
			}

		case key.Matches(msg, m.keys.Clear):
			if m.currentView == exposuresView && m.roleFilter != "" {
				m.roleFilter = ""
				m.filterInput.SetValue("")
				m.message = ""
				m.refreshExposureTable()
			}
		}
	}

	if m.currentView == exposuresView && !m.filtering {
		m.exposureTable, cmd = m.exposureTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) applyFilter() {
	role := strings.TrimSpace(m.filterInput.Value())
	m.filtering = false
	m.filterInput.Blur()

	if role != "" && !slices.Contains(m.result.Roles, role) {
		m.message = fmt.Sprintf("Role %q not present in the role assignment file", role)
		return
	}

	m.roleFilter = role
	m.message = ""
	m.refreshExposureTable()
}

func (m *model) refreshExposureTable() {
	rows := make([]table.Row, 0, len(m.result.Exposures))
	for _, exp := range m.result.Exposures {
		if m.roleFilter != "" && exp.Role != m.roleFilter {
			continue
		}
		rows = append(rows, table.Row{
			exp.Role,
			exp.RiskID,
			exp.RiskLevel,
			string(exp.RiskType),
			exp.Description,
		})
	}
	m.exposureTable.SetRows(rows)
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Authorization Review - Report Browser"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case dashboardView:
		s.WriteString(m.renderDashboard())
	case exposuresView:
		s.WriteString(m.renderExposures())
	case rolesView:
		s.WriteString(m.renderRoles())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(m.message))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Dashboard", "Exposures", "Roles"}
	var renderedTabs []string

	for i, tab := range tabs {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderDashboard() string {
	summary := m.result.Summary

	countsContent := fmt.Sprintf(`Findings
Total:      %d
SoD:        %d
Critical:   %d
Roles:      %d

Highest-risk role:  %s
Busiest process:    %s`,
		summary.TotalRisks,
		summary.SoDCount,
		summary.CriticalCount,
		summary.TotalRoles,
		orDash(summary.HighestRiskRole),
		orDash(summary.MostAffectedProcess),
	)

	var levels strings.Builder
	levels.WriteString("By Risk Level\n")
	for _, slice := range summary.ByRiskLevel {
		if slice.Count == 0 {
			continue
		}
		label := slice.Level
		if style, ok := levelStyles[slice.Level]; ok {
			label = style.Render(slice.Level)
		}
		bar := strings.Repeat("█", int(slice.Percentage/5))
		levels.WriteString(fmt.Sprintf("%-10s %4d  %5.1f%% %s\n", label, slice.Count, slice.Percentage, bar))
	}

	countsBox := statsBoxStyle.Render(countsContent)
	levelsBox := statsBoxStyle.Render(levels.String())

	return contentStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top, countsBox, levelsBox),
	)
}

func (m model) renderExposures() string {
	var s strings.Builder

	title := "Exposures"
	if m.roleFilter != "" {
		title = fmt.Sprintf("Exposures - %s", m.roleFilter)
	}
	s.WriteString(headerStyle.Render(title))
	s.WriteString("\n\n")

	if m.filtering {
		s.WriteString("Filter by role:\n")
		s.WriteString(m.filterInput.View())
		s.WriteString("\n\n")
	}

	s.WriteString(m.exposureTable.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(fmt.Sprintf("%d of %d exposures shown", len(m.exposureTable.Rows()), len(m.result.Exposures))))

	return contentStyle.Render(s.String())
}

func (m model) renderRoles() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Roles by Risk Score"))
	s.WriteString("\n\n")

	if len(m.result.Summary.TopRiskyRoles) == 0 {
		s.WriteString(helpStyle.Render("No exposures found. Every analyzed role is clean."))
		return contentStyle.Render(s.String())
	}

	maxScore := m.result.Summary.TopRiskyRoles[0].Score
	for i, role := range m.result.Summary.TopRiskyRoles {
		bar := ""
		if maxScore > 0 {
			bar = strings.Repeat("█", role.Score*30/maxScore)
		}
		s.WriteString(fmt.Sprintf("  %2d. %-30s score %4d  (%d findings) %s\n",
			i+1, role.Role, role.Score, role.Count, bar))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(fmt.Sprintf("%d distinct roles in the assignment file", len(m.result.Roles))))

	return contentStyle.Render(s.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// loadResult either replays a saved report JSON (as returned by the server's
// results API) or runs the analysis locally from the two CSV files.
func loadResult(reportPath, riskPath, rolesPath string) (*analysis.Result, error) {
	if reportPath != "" {
		data, err := os.ReadFile(reportPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read report: %w", err)
		}
		var report analysis.Report
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("failed to parse report: %w", err)
		}
		if report.Result == nil {
			return nil, fmt.Errorf("report %s has no result payload", reportPath)
		}
		return report.Result, nil
	}

	riskFile, err := os.Open(riskPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open risk dataset: %w", err)
	}
	defer riskFile.Close()

	roleFile, err := os.Open(rolesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open role assignments: %w", err)
	}
	defer roleFile.Close()

	riskRows, err := ingest.ReadRiskDataset(riskFile, ingest.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk dataset: %w", err)
	}
	roleRows, err := ingest.ReadRoleAssignments(roleFile, ingest.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse role assignments: %w", err)
	}

	return analysis.Analyze(riskRows, roleRows), nil
}

func main() {
	reportPath := flag.String("report", "", "Path to a saved analysis report JSON")
	riskPath := flag.String("risks", "", "Path to the risk definition CSV")
	rolesPath := flag.String("roles", "", "Path to the role assignment CSV")
	flag.Parse()

	if *reportPath == "" && (*riskPath == "" || *rolesPath == "") {
		fmt.Fprintln(os.Stderr, "usage: authreview-tui -report <report.json>")
		fmt.Fprintln(os.Stderr, "       authreview-tui -risks <risk.csv> -roles <roles.csv>")
		os.Exit(2)
	}

	result, err := loadResult(*reportPath, *riskPath, *rolesPath)
	if err != nil {
		log.Fatal(err)
	}

	p := tea.NewProgram(initialModel(result), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
