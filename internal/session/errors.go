package session

import (
	"errors"

	"github.com/jobguard/jobguard/internal/pipeline"
)

// Messages shown to the operator.
const (
	// MessageDataEmpty is shown when the input is too short to scan.
	MessageDataEmpty = "DATA EMPTY"

	// MessageConnectionError is shown when the server cannot be reached.
	MessageConnectionError = "CONNECTION ERROR"
)

var (
	// ErrInputTooShort is returned when the trimmed input is shorter than
	// the minimum. No request is made.
	ErrInputTooShort = errors.New("input too short to scan")

	// ErrScanInFlight is returned when a scan is already running.
	ErrScanInFlight = errors.New("a scan is already in progress")

	// ErrMissingProbability is returned when the server answered without a
	// fraud probability for a non-gibberish text.
	ErrMissingProbability = pipeline.ErrMissingProbability
)

// Message maps a Submit error to the operator-facing text.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputTooShort):
		return MessageDataEmpty
	case errors.Is(err, ErrScanInFlight):
		return "SCAN IN PROGRESS"
	case isConnection(err):
		return MessageConnectionError
	default:
		return "ERROR: " + serverMessage(err)
	}
}
