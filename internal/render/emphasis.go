package render

import (
	"regexp"
	"strings"
)

// emphasisPattern matches the one markup form server text may carry.
// The match is non-greedy and does not cross line breaks.
var emphasisPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Span is a run of text, optionally strong.
type Span struct {
	Text   string `json:"text"`
	Strong bool   `json:"strong,omitempty"`
}

// Emphasize splits s into spans, turning each **text** pair into a strong
// span. Anything else, including unpaired delimiters, stays literal text.
//
// Markup(Emphasize(s)) == s, so applying Emphasize to the markup of its own
// output yields the same spans.
func Emphasize(s string) []Span {
	if s == "" {
		return nil
	}

	var spans []Span
	last := 0
	for _, m := range emphasisPattern.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > last {
			spans = append(spans, Span{Text: s[last:m[0]]})
		}
		spans = append(spans, Span{Text: s[m[2]:m[3]], Strong: true})
		last = m[1]
	}
	if last < len(s) {
		spans = append(spans, Span{Text: s[last:]})
	}
	return spans
}

// Markup reassembles spans into delimiter form.
func Markup(spans []Span) string {
	var sb strings.Builder
	for _, sp := range spans {
		if sp.Strong {
			sb.WriteString("**")
			sb.WriteString(sp.Text)
			sb.WriteString("**")
			continue
		}
		sb.WriteString(sp.Text)
	}
	return sb.String()
}

// PlainText joins the span texts without any markup.
func PlainText(spans []Span) string {
	var sb strings.Builder
	for _, sp := range spans {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}
