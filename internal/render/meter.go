package render

import (
	"math"
	"strings"
	"time"
)

const (
	// MeterDelay is how long the meter stays at zero before easing.
	MeterDelay = 100 * time.Millisecond

	// MeterEase is how long the meter takes to reach its target.
	MeterEase = 600 * time.Millisecond
)

// Meter is the confidence bar. It starts at 0 and, after Delay, eases to
// Target percent over Ease. It is cosmetic: callers sample it and never
// wait on it.
type Meter struct {
	Target float64       `json:"target"`
	Delay  time.Duration `json:"-"`
	Ease   time.Duration `json:"-"`
}

// NewMeter creates a meter easing to target with the default timings.
func NewMeter(target float64) Meter {
	return Meter{Target: target, Delay: MeterDelay, Ease: MeterEase}
}

// At returns the fill percentage elapsed after the meter was shown.
func (m Meter) At(elapsed time.Duration) float64 {
	if elapsed < m.Delay {
		return 0
	}
	if m.Ease <= 0 {
		return m.Target
	}
	t := float64(elapsed-m.Delay) / float64(m.Ease)
	if t >= 1 {
		return m.Target
	}
	// ease-out cubic
	return m.Target * (1 - math.Pow(1-t, 3))
}

// Done reports whether the meter has reached its target.
func (m Meter) Done(elapsed time.Duration) bool {
	return elapsed >= m.Delay+m.Ease
}

// Bar draws a fill of percent over width cells.
func Bar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(percent / 100 * float64(width)))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// FormatPercent renders a percentage the way the verdict shows it:
// integers without decimals, anything else with one.
func FormatPercent(p float64) string {
	if p == math.Trunc(p) {
		return strconvFormat(p, 0) + "%"
	}
	return strconvFormat(p, 1) + "%"
}
