package source

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// skipped elements never contribute text.
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"iframe":   true,
	"title":    true,
	"nav":      true,
	"footer":   true,
}

// block elements end a line.
var block = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "table": true, "section": true, "article": true, "header": true,
	"blockquote": true, "pre": true, "dd": true, "dt": true, "hr": true,
}

// lineBreaks flattens source formatting so only block elements break lines.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func parseHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if n.Data == "title" && doc.Title == "" && n.FirstChild != nil {
				doc.Title = strings.TrimSpace(n.FirstChild.Data)
			}
			if skipped[n.Data] {
				return
			}
		case html.TextNode:
			b.WriteString(lineBreaks.Replace(n.Data))
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && block[n.Data] {
			b.WriteByte('\n')
		}
	}
	walk(root)

	doc.Text = tidy(b.String())
	return doc, nil
}

// tidy collapses runs of spaces within lines and drops blank lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
