package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/monitor"
	"github.com/jobguard/jobguard/internal/render"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(render.Accent)

	operatorStyle = lipgloss.NewStyle().Bold(true).Foreground(render.Color("neon-green"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2d6a80")).
			Padding(0, 1)

	focusedPanelStyle = panelStyle.BorderForeground(render.Accent)

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.NormalBorder())

	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(render.Color("neon-pink"))

	okStyle = lipgloss.NewStyle().Bold(true).Foreground(render.Color("neon-green"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// severityColors follows the tag colors of the server log panel.
var severityColors = map[model.LogSeverity]lipgloss.Color{
	model.LogCritical: render.Color("neon-pink"),
	model.LogWarning:  render.Color("neon-yellow"),
	model.LogSuccess:  render.Color("neon-green"),
	model.LogInfo:     render.Color("neon-blue"),
	model.LogDefault:  lipgloss.Color("#888888"),
}

// View implements tea.Model.
func (m Model) View() string {
	left := []string{
		m.renderHeader(),
		m.renderStatus(),
		m.renderInput(),
		m.styles.Muted.Render(m.monitor.Readout()),
		m.renderTrigger(),
	}
	if line := m.renderNotice(); line != "" {
		left = append(left, line)
	}
	if m.report != nil {
		left = append(left, m.styles.RenderView(m.report.View, m.fill, m.input.Width()+4))
	}
	left = append(left, helpStyle.Render(m.helpLine()))

	body := lipgloss.JoinVertical(lipgloss.Left, left...)
	if m.identity.AdminPanel {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", m.renderLogPanel())
	}
	return body
}

func (m Model) renderHeader() string {
	header := titleStyle.Render("JOBGUARD // FRAUD SCANNER") + "  " + operatorStyle.Render(m.identity.Label)
	if m.server != "" {
		header += "  " + m.styles.Muted.Render(m.server)
	}
	return header
}

// renderStatus shows, in priority order, the in-flight indicator, the
// verdict status line, or the buffer monitor state.
func (m Model) renderStatus() string {
	switch {
	case m.scanning:
		return m.spin.View() + " " + lipgloss.NewStyle().Foreground(render.Accent).Render(StatusAnalyzing)
	case m.verdictUp && m.report != nil:
		c := render.Color(m.report.View.Style.Color)
		return lipgloss.NewStyle().Foreground(c).Bold(true).Render(m.report.View.StatusLine)
	}

	snap := m.monitor.Snapshot()
	style := m.styles.Text
	if snap.State == monitor.StateTyping {
		style = style.Foreground(render.Accent).Blink(snap.Blink)
	}
	return style.Render(snap.Label)
}

func (m Model) renderInput() string {
	style := panelStyle
	if m.focus == paneInput && !m.blurred {
		style = focusedPanelStyle
	}
	return style.Render(m.input.View())
}

func (m Model) renderTrigger() string {
	style := buttonStyle.Foreground(render.Accent).BorderForeground(render.Accent)
	switch {
	case !m.triggerEnabled():
		style = buttonStyle.Foreground(lipgloss.Color("#666666")).BorderForeground(lipgloss.Color("#666666"))
	case m.trigger == TriggerComplete && m.report != nil:
		c := render.Color(m.report.View.Style.Color)
		style = buttonStyle.Foreground(c).BorderForeground(c)
	}
	return style.Render(m.trigger)
}

func (m Model) renderNotice() string {
	switch {
	case m.confirm == actionLogout:
		return errorStyle.Render(PromptLogout + " [y/N]")
	case m.confirm == actionDelete:
		return errorStyle.Render(PromptDeleteAccount + " [y/N]")
	case m.notice == "":
		return ""
	case m.noticeError:
		return errorStyle.Render(m.notice)
	default:
		return okStyle.Render(m.notice)
	}
}

func (m Model) renderLogPanel() string {
	style := panelStyle
	if m.focus == paneLogs {
		style = focusedPanelStyle
	}
	title := m.styles.Heading.Render("LIVE SYSTEM LOGS")
	return style.Render(title + "\n" + m.logs.View())
}

func (m Model) renderLogLines() string {
	entries := m.stream.Entries()
	if len(entries) == 0 {
		return m.styles.Muted.Render("NO LOG DATA")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = lipgloss.NewStyle().Foreground(severityColors[e.Severity]).Render(e.Text)
	}
	return strings.Join(lines, "\n")
}

func (m Model) helpLine() string {
	parts := []string{"ctrl+s scan", "esc focus", "ctrl+r refresh identity", "ctrl+o logout", "ctrl+x delete account"}
	if m.identity.AdminPanel {
		parts = append(parts, "tab logs", "ctrl+y copy logs")
	}
	parts = append(parts, "ctrl+c quit")
	return strings.Join(parts, " | ")
}
