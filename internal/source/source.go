package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxInputSize limits how many bytes are read from any input.
const MaxInputSize = 2 * 1024 * 1024

// Kind identifies an input format.
type Kind string

const (
	// KindText is plain text, used as is.
	KindText Kind = "text"
	// KindHTML is a saved web page.
	KindHTML Kind = "html"
	// KindEmail is an RFC 5322 message.
	KindEmail Kind = "email"
)

// Document is posting text extracted from an input.
type Document struct {
	// Path is the file the document came from, or "-" for stdin.
	Path string
	// Kind is the detected input format.
	Kind Kind
	// Title is the page title or email subject, if any.
	Title string
	// Text is the posting text that is sent for analysis.
	Text string
}

// DetectKind maps a file extension to a Kind.
func DetectKind(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case "", ".txt", ".text", ".md":
		return KindText, nil
	case ".html", ".htm", ".xhtml":
		return KindHTML, nil
	case ".eml", ".msg":
		return KindEmail, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads the file at path and extracts its posting text.
// The path "-" reads plain text from stdin.
func Load(path string) (*Document, error) {
	if path == "-" {
		doc, err := Read(os.Stdin, KindText)
		if err != nil {
			return nil, err
		}
		doc.Path = path
		return doc, nil
	}

	kind, err := DetectKind(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // user-selected input file
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only

	doc, err := Read(f, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Read extracts posting text of the given kind from r.
func Read(r io.Reader, kind Kind) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxInputSize {
		return nil, ErrInputTooLarge
	}

	var doc *Document
	switch kind {
	case KindText:
		doc = &Document{Text: string(data)}
	case KindHTML:
		doc, err = parseHTML(bytes.NewReader(data))
	case KindEmail:
		doc, err = parseEmail(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
	}
	if err != nil {
		return nil, err
	}

	doc.Kind = kind
	doc.Text = strings.TrimSpace(doc.Text)
	if doc.Text == "" {
		return nil, ErrEmptyDocument
	}
	return doc, nil
}
