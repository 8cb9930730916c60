package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidServerURL is returned when the server URL is not an absolute
	// http or https URL.
	ErrInvalidServerURL = errors.New("invalid server url: must be an absolute http or https url")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDebounce is returned when the input settle delay is not positive.
	ErrInvalidDebounce = errors.New("invalid debounce: must be positive")

	// ErrInvalidMinInput is returned when the minimum scan input length is below one.
	ErrInvalidMinInput = errors.New("invalid min input: must be at least 1")

	// ErrInvalidMeterDelay is returned when the meter animation delay is negative.
	ErrInvalidMeterDelay = errors.New("invalid meter delay: must be non-negative")

	// ErrEmptyAdminUser is returned when no admin username is configured.
	ErrEmptyAdminUser = errors.New("invalid admin user: must not be empty")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingTransports is returned when both --proxy and --tor are specified.
	ErrConflictingTransports = errors.New("conflicting transports: --proxy and --tor cannot be used together")

	// ErrInvalidTorStartupTimeout is returned when --tor is set with a
	// non-positive bootstrap timeout.
	ErrInvalidTorStartupTimeout = errors.New("invalid tor startup timeout: must be positive")
)
