// Package render turns a scan result into a display model and writes it out.
//
// BuildView is pure: it takes a result and its tier and returns a View whose
// sections appear in a fixed order (verdict, meter, advisory, reasons,
// technical details). A section whose data is absent or empty is omitted;
// nothing is ever rendered as an empty container.
//
// Writers render a Report (a View plus the raw result) to a terminal with
// lipgloss, to Markdown with nao1215/markdown, or to JSON.
package render
