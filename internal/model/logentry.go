package model

// LogSeverity is the display severity of a server log line.
type LogSeverity int

const (
	// LogDefault is any line without a recognised tag.
	LogDefault LogSeverity = iota

	// LogInfo marks model commentary ([AI]).
	LogInfo

	// LogSuccess marks [SUCCESS] and [INIT] lines.
	LogSuccess

	// LogWarning marks [WARN] lines.
	LogWarning

	// LogCritical marks [ERROR] lines and anything mentioning BLOCK.
	LogCritical
)

// String returns a human-readable representation of the severity.
func (s LogSeverity) String() string {
	switch s {
	case LogDefault:
		return "DEFAULT"
	case LogInfo:
		return "INFO"
	case LogSuccess:
		return "SUCCESS"
	case LogWarning:
		return "WARNING"
	case LogCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// LogEntry is one server log line ready for display.
type LogEntry struct {
	Text     string      `json:"text"`
	Severity LogSeverity `json:"severity"`
}
