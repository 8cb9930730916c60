package source

import "errors"

var (
	// ErrUnsupportedFormat is returned for file extensions with no extractor.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrEmptyDocument is returned when no text could be extracted.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrInputTooLarge is returned when the input exceeds MaxInputSize.
	ErrInputTooLarge = errors.New("input too large")
)
