package monitor

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jobguard/jobguard/internal/model"
)

// DefaultDelay is the quiet period after the last keystroke before the
// buffer counts as settled.
const DefaultDelay = 800 * time.Millisecond

// State is the buffer status shown next to the input.
type State int

const (
	// StateIdle means the buffer is empty and settled.
	StateIdle State = iota

	// StateAwaitingInput means the input has focus but nothing was typed.
	StateAwaitingInput

	// StateTyping means input changed within the debounce window.
	StateTyping

	// StateStandby means the buffer is non-empty and settled.
	StateStandby
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAwaitingInput:
		return "AWAITING_INPUT"
	case StateTyping:
		return "TYPING"
	case StateStandby:
		return "STANDBY"
	default:
		return "UNKNOWN"
	}
}

// Label returns the status indicator text for the state.
func (s State) Label() string {
	switch s {
	case StateAwaitingInput:
		return ">> AWAITING INPUT"
	case StateTyping:
		return ">> RECEIVING DATA..."
	case StateStandby:
		return ">> SIGNAL STANDBY"
	default:
		return ">> IDLE"
	}
}

// SessionStatus maps the buffer state onto the scan session status.
func (s State) SessionStatus() model.SessionStatus {
	switch s {
	case StateTyping:
		return model.StatusTyping
	case StateStandby:
		return model.StatusStandby
	default:
		return model.StatusIdle
	}
}

// Arm is returned by Input. The caller schedules a settle for Gen after Delay.
type Arm struct {
	Gen   uint64
	Delay time.Duration
}

// Snapshot is a consistent view of the monitor.
type Snapshot struct {
	State State
	Label string
	Blink bool
	Chars int
	Bytes int
}

// Monitor is the input buffer state machine. It is safe for concurrent use.
type Monitor struct {
	mu    sync.Mutex
	text  string
	state State
	gen   uint64
	delay time.Duration
}

// New creates a monitor with the given debounce delay.
// A non-positive delay falls back to DefaultDelay.
func New(delay time.Duration) *Monitor {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Monitor{delay: delay, state: StateIdle}
}

// Input records a text change, moves to Typing and invalidates any
// pending settle.
func (m *Monitor) Input(text string) Arm {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.text = text
	m.state = StateTyping
	m.gen++
	return Arm{Gen: m.gen, Delay: m.delay}
}

// Settle resolves the debounce armed with gen.
// It reports false, and changes nothing, when gen is stale or the monitor
// is not typing.
func (m *Monitor) Settle(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen || m.state != StateTyping {
		return false
	}
	m.settleLocked()
	return true
}

// Blur resolves a pending debounce immediately.
func (m *Monitor) Blur() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	if m.state == StateTyping || m.state == StateAwaitingInput {
		m.settleLocked()
	}
}

// Focus surfaces AwaitingInput when the buffer is empty.
func (m *Monitor) Focus() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.text == "" && m.state != StateTyping {
		m.state = StateAwaitingInput
	}
}

func (m *Monitor) settleLocked() {
	if m.text != "" {
		m.state = StateStandby
	} else {
		m.state = StateIdle
	}
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Text returns the current buffer.
func (m *Monitor) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// Snapshot returns the state, indicator and buffer counts together.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		State: m.state,
		Label: m.state.Label(),
		Blink: m.state == StateTyping,
		Chars: utf8.RuneCountInString(m.text),
		Bytes: len(m.text),
	}
}

// Readout returns the buffer size line shown under the input.
func (m *Monitor) Readout() string {
	s := m.Snapshot()
	return Readout(s.Chars, s.Bytes)
}

// Readout formats a buffer size line.
func Readout(chars, bytes int) string {
	return fmt.Sprintf("BUFFER: %d chars | %d bytes", chars, bytes)
}
