package render

import (
	"reflect"
	"testing"
)

func TestEmphasize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []Span
	}{
		{name: "empty", in: "", want: nil},
		{name: "plain", in: "no markup here", want: []Span{{Text: "no markup here"}}},
		{
			name: "single strong",
			in:   "**Upfront fee** requested",
			want: []Span{{Text: "Upfront fee", Strong: true}, {Text: " requested"}},
		},
		{
			name: "two strong runs",
			in:   "a **b** c **d**",
			want: []Span{{Text: "a "}, {Text: "b", Strong: true}, {Text: " c "}, {Text: "d", Strong: true}},
		},
		{
			name: "unpaired delimiter stays literal",
			in:   "salary ** unclear",
			want: []Span{{Text: "salary ** unclear"}},
		},
		{
			name: "html is literal text",
			in:   "<script>alert(1)</script> **x**",
			want: []Span{{Text: "<script>alert(1)</script> "}, {Text: "x", Strong: true}},
		},
		{
			name: "other markup is not interpreted",
			in:   "_italic_ [link](http://x) `code`",
			want: []Span{{Text: "_italic_ [link](http://x) `code`"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Emphasize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Emphasize(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEmphasizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"plain",
		"**a** and **b**",
		"** **a**",
		"****",
		"tail **",
		"**open only",
		"mixed *single* and **double**",
	}

	for _, in := range inputs {
		first := Emphasize(in)
		if got := Markup(first); got != in {
			t.Errorf("Markup(Emphasize(%q)) = %q", in, got)
		}
		second := Emphasize(Markup(first))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Emphasize not idempotent for %q: %#v vs %#v", in, first, second)
		}
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	if got := PlainText(Emphasize("**Wire** money now")); got != "Wire money now" {
		t.Errorf("PlainText() = %q", got)
	}
}
