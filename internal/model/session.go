package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the state of a single scan session.
type SessionStatus int

const (
	// StatusIdle means the buffer is empty and nothing is pending.
	StatusIdle SessionStatus = iota

	// StatusTyping means input arrived recently and the debounce is armed.
	StatusTyping

	// StatusStandby means the buffer holds settled, non-empty input.
	StatusStandby

	// StatusSubmitting means an analysis request is in flight.
	// At most one session per controller may be in this state.
	StatusSubmitting

	// StatusReady means a verdict was produced for the session.
	StatusReady

	// StatusError means the session ended without a verdict.
	StatusError
)

// String returns a human-readable representation of the status.
func (s SessionStatus) String() string {
	switch s {
	case StatusIdle:
		return "IDLE"
	case StatusTyping:
		return "TYPING"
	case StatusStandby:
		return "STANDBY"
	case StatusSubmitting:
		return "SUBMITTING"
	case StatusReady:
		return "READY"
	case StatusError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the status ends a session.
func (s SessionStatus) Terminal() bool {
	return s == StatusReady || s == StatusError
}

// ScanSession is one user-initiated analysis cycle.
// It is never persisted and is replaced on the next trigger.
type ScanSession struct {
	// ID identifies the session in logs and local history.
	ID string `json:"id"`

	// RawText is the trimmed text that was submitted.
	RawText string `json:"rawText"`

	// Status is the current lifecycle state.
	Status SessionStatus `json:"status"`

	// StartedAt is when the trigger was accepted.
	StartedAt time.Time `json:"startedAt"`

	// FinishedAt is set once Status is terminal.
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

// NewScanSession creates a session in the Submitting state.
func NewScanSession(text string) *ScanSession {
	return &ScanSession{
		ID:        uuid.New().String(),
		RawText:   text,
		Status:    StatusSubmitting,
		StartedAt: time.Now(),
	}
}

// Finish moves the session to a terminal status.
// The first terminal outcome sticks; later calls are no-ops.
func (s *ScanSession) Finish(status SessionStatus) {
	if s.Status.Terminal() || !status.Terminal() {
		return
	}
	s.Status = status
	s.FinishedAt = time.Now()
}

// Elapsed returns how long the session took, or has taken so far.
func (s *ScanSession) Elapsed() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
