package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type statusFetchedMsg struct {
	payload statusPayload
}

type statusFetchErrMsg struct {
	err error
}

type statusTickMsg time.Time

type statusModel struct {
	addr    string
	spinner spinner.Model
	status  statusPayload
	loaded  bool
	errMsg  string
	width   int
	height  int
	fetched time.Time
}

func newStatusModel(addr string) statusModel {
	sp := spinner.New()
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	return statusModel{addr: addr, spinner: sp}
}

func runStatusTUI(addr string) error {
	p := tea.NewProgram(newStatusModel(addr), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m statusModel) fetchCmd() tea.Cmd {
	addr := m.addr
	return func() tea.Msg {
		st, err := fetchStatus(addr)
		if err != nil {
			return statusFetchErrMsg{err}
		}
		return statusFetchedMsg{payload: st}
	}
}

func statusTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func (m statusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd(), statusTick())
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}
		return m, nil
	case statusTickMsg:
		return m, tea.Batch(m.fetchCmd(), statusTick())
	case statusFetchedMsg:
		m.status = msg.payload
		m.loaded = true
		m.errMsg = ""
		m.fetched = time.Now()
		return m, nil
	case statusFetchErrMsg:
		m.errMsg = msg.err.Error()
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m statusModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if !m.loaded {
		line := m.spinner.View() + " Connecting to " + m.addr + "..."
		if m.errMsg != "" {
			line += "\n" + errStyle.Render(m.errMsg)
		}
		return line + "\n" + dimStyle.Render("q:quit")
	}

	p := m.status.Proxy
	uptime := (time.Duration(p.UptimeSeconds) * time.Second).String()
	header := accentStyle.Render("tenantgate "+m.status.Version) +
		dimStyle.Render("  "+m.addr+"  up "+uptime)

	rows := []struct {
		label string
		value string
	}{
		{"connections", fmt.Sprintf("%d open / %d total", p.OpenConnections, p.TotalConnections)},
		{"requests", fmt.Sprintf("%d handled, %d proxied", p.Requests, p.Proxied)},
		{"rejected", fmt.Sprintf("%d unroutable host, %d blocked tenant", p.RejectedHosts, p.BlockedTenants)},
		{"failures", fmt.Sprintf("%d backend, %d upgrade mismatch", p.BackendFailures, p.UpgradeMismatches)},
		{"tunnels", fmt.Sprintf("%d active / %d total", p.ActiveTunnels, p.TotalTunnels)},
		{"tunnel bytes", fmt.Sprintf("%s from clients, %s from backend",
			formatBytes(p.TunnelClientBytes), formatBytes(p.TunnelBackendBytes))},
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(dimStyle.Render(fmt.Sprintf("%-14s", row.label)))
		b.WriteString(row.value)
		b.WriteString("\n")
	}
	counters := boxStyle.Render(strings.TrimRight(b.String(), "\n"))

	var policyLine string
	if m.status.Policy != nil {
		blocked := m.status.Policy.BlockedTenants
		if len(blocked) == 0 {
			policyLine = dimStyle.Render("policy: no tenants blocked")
		} else {
			policyLine = "policy: " + strings.Join(blocked, ", ")
		}
	}

	var messages string
	if m.errMsg != "" {
		messages = errStyle.Render("refresh failed: " + m.errMsg)
	}

	helpLine := dimStyle.Render("r:refresh  q:quit")

	parts := []string{header, counters}
	if policyLine != "" {
		parts = append(parts, policyLine)
	}
	if messages != "" {
		parts = append(parts, messages)
	}
	parts = append(parts, helpLine)
	return strings.Join(parts, "\n") + "\n"
}
