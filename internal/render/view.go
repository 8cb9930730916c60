package render

import (
	"strconv"
	"strings"

	"github.com/jobguard/jobguard/internal/model"
	"github.com/jobguard/jobguard/internal/risk"
)

// Section identifies one block of the result view.
type Section int

const (
	// SectionVerdict is the title and status line.
	SectionVerdict Section = iota
	// SectionMeter is the confidence bar.
	SectionMeter
	// SectionAdvisory is the advisory notes block.
	SectionAdvisory
	// SectionReasons is the reasons list.
	SectionReasons
	// SectionTechnical is the anomaly and explainability block.
	SectionTechnical
)

// String returns the section name.
func (s Section) String() string {
	switch s {
	case SectionVerdict:
		return "verdict"
	case SectionMeter:
		return "meter"
	case SectionAdvisory:
		return "advisory"
	case SectionReasons:
		return "reasons"
	case SectionTechnical:
		return "technical"
	default:
		return "unknown"
	}
}

// Technical holds the technical details block. Either list may be empty.
type Technical struct {
	Anomaly []string `json:"anomaly_analysis,omitempty"`
	XAI     []string `json:"xai_insights,omitempty"`
}

// View is the display model of one scan result.
type View struct {
	Tier        model.Tier      `json:"-"`
	TierName    string          `json:"tier"`
	Style       model.TierStyle `json:"-"`
	Title       string          `json:"title"`
	StatusLine  string          `json:"status_line"`
	Probability float64         `json:"probability"`
	Meter       Meter           `json:"meter"`
	Advisory    []string        `json:"advisory,omitempty"`
	Reasons     [][]Span        `json:"reasons,omitempty"`
	Technical   *Technical      `json:"technical,omitempty"`
}

// BuildView derives the view for result at tier. It has no side effects.
func BuildView(result *model.ScanResult, tier model.Tier) View {
	style := risk.Style(tier)
	p, _ := result.Probability()

	v := View{
		Tier:        tier,
		TierName:    tier.String(),
		Style:       style,
		Title:       style.Title,
		StatusLine:  style.StatusLine,
		Probability: p,
		Meter:       NewMeter(p),
	}

	if advisory := nonBlank(result.Advisory); len(advisory) > 0 {
		v.Advisory = advisory
	}

	for _, r := range nonBlank(result.Reasons) {
		v.Reasons = append(v.Reasons, Emphasize(r))
	}

	anomaly := nonBlank(result.AnomalyAnalysis)
	xai := nonBlank(result.XAIInsights)
	if len(anomaly) > 0 || len(xai) > 0 {
		v.Technical = &Technical{Anomaly: anomaly, XAI: xai}
	}
	return v
}

// Sections lists the sections present in v, in display order.
func (v View) Sections() []Section {
	sections := []Section{SectionVerdict, SectionMeter}
	if len(v.Advisory) > 0 {
		sections = append(sections, SectionAdvisory)
	}
	if len(v.Reasons) > 0 {
		sections = append(sections, SectionReasons)
	}
	if v.Technical != nil {
		sections = append(sections, SectionTechnical)
	}
	return sections
}

// Has reports whether section s is present.
func (v View) Has(s Section) bool {
	for _, got := range v.Sections() {
		if got == s {
			return true
		}
	}
	return false
}

// nonBlank drops whitespace-only entries and control characters.
func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		l = sanitize(l)
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// sanitize removes control characters so server text cannot emit terminal
// escape sequences.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) {
			return -1
		}
		return r
	}, s)
}

func strconvFormat(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}
