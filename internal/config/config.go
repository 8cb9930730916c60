package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultServerURL is the address of a locally running JobGuard server.
	DefaultServerURL = "http://127.0.0.1:5000"

	// DefaultTimeout bounds each request to the server.
	DefaultTimeout = 30 * time.Second

	// DefaultAdminUser is the account allowed to read the system log panel.
	// The comparison is case-sensitive.
	DefaultAdminUser = "Yoge"

	// DefaultDebounce is how long the input buffer must be quiet before the
	// monitor settles into standby.
	DefaultDebounce = 800 * time.Millisecond

	// DefaultMinInput is the minimum number of trimmed characters a scan needs.
	DefaultMinInput = 5

	// DefaultMeterDelay is the pause before the risk meter starts to fill.
	DefaultMeterDelay = 100 * time.Millisecond

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// AppName is the application name used for XDG directory paths.
	AppName = "jobguard"

	// LogFileName is the dashboard log file inside XDGStateDir.
	LogFileName = "jobguard.log"
)

// Config holds all configuration options for the JobGuard client.
// It is populated from defaults, the config file and CLI flags, in that
// order, and passed down explicitly.
type Config struct {
	// ServerURL is the base URL of the JobGuard server.
	ServerURL string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// AdminUser is the username that unlocks the system log panel.
	AdminUser string

	// Debounce is the input settle delay used by the dashboard.
	Debounce time.Duration

	// MinInput is the minimum trimmed input length accepted by a scan.
	MinInput int

	// MeterDelay is the pause before the risk meter animation starts.
	MeterDelay time.Duration

	// Proxy is an optional SOCKS5 proxy in "host:port" form.
	Proxy string

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string

	// UseTor routes traffic through an embedded Tor daemon.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap. Only used with UseTor.
	TorStartupTimeout time.Duration

	// DBDir is the directory of the local sqlite database.
	// Defaults to the XDG data directory (~/.local/share/jobguard on Linux).
	DBDir string

	// NoHistory disables recording scans in the local database.
	NoHistory bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit path to the config file. When empty
	// FindConfigFile searches the current and home directories.
	ConfigFilePath string

	// Profile selects a named profile from the config file.
	Profile string

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerURL:         DefaultServerURL,
		Timeout:           DefaultTimeout,
		AdminUser:         DefaultAdminUser,
		Debounce:          DefaultDebounce,
		MinInput:          DefaultMinInput,
		MeterDelay:        DefaultMeterDelay,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
	}
}

// Apply overlays the non-zero fields of p onto c.
func (c *Config) Apply(p Profile) {
	if p.Server != "" {
		c.ServerURL = p.Server
	}
	if p.AdminUser != "" {
		c.AdminUser = p.AdminUser
	}
	if p.Timeout > 0 {
		c.Timeout = p.Timeout
	}
	if p.Proxy != "" {
		c.Proxy = p.Proxy
	}
	if len(p.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(p.Headers))
		}
		for k, v := range p.Headers {
			c.Headers[k] = v
		}
	}
}

// XDGDataDir returns the XDG data directory for JobGuard.
// On Linux: ~/.local/share/jobguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for JobGuard.
// On Linux: ~/.config/jobguard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGStateDir returns the XDG state directory for JobGuard.
// On Linux: ~/.local/state/jobguard
func XDGStateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// LogFilePath returns the dashboard log file path.
func LogFilePath() string {
	return filepath.Join(XDGStateDir(), LogFileName)
}

// Validate checks the configuration and returns the first problem found.
// Proxy address syntax is checked by the client when it is built.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidServerURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Debounce <= 0 {
		return ErrInvalidDebounce
	}

	if c.MinInput < 1 {
		return ErrInvalidMinInput
	}

	if c.MeterDelay < 0 {
		return ErrInvalidMeterDelay
	}

	if c.AdminUser == "" {
		return ErrEmptyAdminUser
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.UseTor && c.Proxy != "" {
		return ErrConflictingTransports
	}

	if c.UseTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}

	return nil
}
