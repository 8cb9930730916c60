package source

import (
	"io"
	"strings"

	"github.com/jhillyerd/enmime"
)

// parseEmail prefers the text/plain part and falls back to the HTML part.
// The subject leads the text since scam offers often put the hook there.
func parseEmail(r io.Reader) (*Document, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(env.Text)
	if body == "" && env.HTML != "" {
		h, err := parseHTML(strings.NewReader(env.HTML))
		if err != nil {
			return nil, err
		}
		body = h.Text
	}

	subject := strings.TrimSpace(env.GetHeader("Subject"))
	doc := &Document{Title: subject, Text: body}
	if subject != "" && body != "" {
		doc.Text = subject + "\n\n" + body
	}
	return doc, nil
}
