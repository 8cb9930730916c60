package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// palette maps tier color tokens to terminal colors.
var palette = map[string]lipgloss.Color{
	"neon-green":  lipgloss.Color("#00ff9d"),
	"neon-yellow": lipgloss.Color("#fcee0a"),
	"neon-orange": lipgloss.Color("#ffa500"),
	"neon-pink":   lipgloss.Color("#ff0099"),
	"neon-blue":   lipgloss.Color("#00f3ff"),
}

// Color resolves a tier color token ("neon-pink") or a literal hex value.
func Color(token string) lipgloss.Color {
	if c, ok := palette[token]; ok {
		return c
	}
	return lipgloss.Color(token)
}

// Accent is the color used for scanning and neutral status text.
var Accent = Color("neon-blue")

// Styles holds the lipgloss styles shared by the terminal writer and the
// dashboard.
type Styles struct {
	Heading lipgloss.Style
	Muted   lipgloss.Style
	Strong  lipgloss.Style
	Text    lipgloss.Style
	Box     lipgloss.Style
}

// DefaultStyles returns the standard style set.
func DefaultStyles() Styles {
	return Styles{
		Heading: lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Strong:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")),
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color("#e6e6e6")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
	}
}

// RenderView draws v with the meter at fill percent. width bounds the
// box; zero means unbounded.
func (s Styles) RenderView(v View, fill float64, width int) string {
	tierColor := Color(v.Style.Color)
	tierStyle := lipgloss.NewStyle().Foreground(tierColor).Bold(true)

	var blocks []string
	for _, section := range v.Sections() {
		switch section {
		case SectionVerdict:
			blocks = append(blocks,
				tierStyle.Render(v.Title)+"\n"+
					lipgloss.NewStyle().Foreground(tierColor).Render(v.StatusLine))
		case SectionMeter:
			blocks = append(blocks, s.renderMeter(fill, tierColor, width))
		case SectionAdvisory:
			blocks = append(blocks, s.renderList("ADVISORY NOTES", v.Advisory))
		case SectionReasons:
			blocks = append(blocks, s.renderReasons(v.Reasons))
		case SectionTechnical:
			blocks = append(blocks, s.renderTechnical(v.Technical))
		}
	}

	box := s.Box.BorderForeground(tierColor)
	if width > 4 {
		box = box.Width(width - 2)
	}
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

func (s Styles) renderMeter(fill float64, c lipgloss.Color, width int) string {
	barWidth := 30
	if width > 0 && width-16 < barWidth {
		barWidth = max(10, width-16)
	}
	bar := lipgloss.NewStyle().Foreground(c).Render(Bar(fill, barWidth))
	score := lipgloss.NewStyle().Foreground(c).Bold(true).Render(FormatPercent(roundTenth(fill)))
	return fmt.Sprintf("%s %s %s", s.Muted.Render("CONFIDENCE"), bar, score)
}

func (s Styles) renderList(title string, lines []string) string {
	var sb strings.Builder
	sb.WriteString(s.Heading.Render(title))
	for _, l := range lines {
		sb.WriteString("\n")
		sb.WriteString(s.Text.Render("> " + l))
	}
	return sb.String()
}

func (s Styles) renderReasons(reasons [][]Span) string {
	var sb strings.Builder
	sb.WriteString(s.Heading.Render("ANALYSIS"))
	for _, spans := range reasons {
		sb.WriteString("\n")
		sb.WriteString(s.Text.Render("> "))
		for _, sp := range spans {
			if sp.Strong {
				sb.WriteString(s.Strong.Render(sp.Text))
			} else {
				sb.WriteString(s.Text.Render(sp.Text))
			}
		}
	}
	return sb.String()
}

func (s Styles) renderTechnical(t *Technical) string {
	parts := []string{s.Heading.Render("TECHNICAL DETAILS")}
	if len(t.Anomaly) > 0 {
		parts = append(parts, s.renderList("ANOMALY ANALYSIS", t.Anomaly))
	}
	if len(t.XAI) > 0 {
		parts = append(parts, s.renderList("XAI INSIGHTS", t.XAI))
	}
	return strings.Join(parts, "\n")
}

func roundTenth(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
