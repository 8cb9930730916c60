package client

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is returned when the server cannot be reached or the
	// request fails before a response arrives.
	ErrConnection = errors.New("connection to scan server failed")

	// ErrMalformedResponse is returned when a successful response body is
	// not valid JSON of the expected shape.
	ErrMalformedResponse = errors.New("malformed server response")

	// ErrInvalidServerURL is returned when the configured server URL cannot
	// be used.
	ErrInvalidServerURL = errors.New("invalid server URL: expected http(s)://host[:port]")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrTorNotRunning is returned when a client is requested from an
	// embedded Tor daemon that was never started.
	ErrTorNotRunning = errors.New("embedded Tor daemon is not running")

	// ErrTorStart is returned when the embedded Tor daemon fails to launch.
	ErrTorStart = errors.New("failed to start embedded Tor daemon")
)

// ServerError is a failure reported by the server itself, either through an
// "error" field in the body or through a non-2xx status.
type ServerError struct {
	// Status is the HTTP status code.
	Status int

	// Message is the server-supplied error text.
	Message string

	// Logs are the system log lines that came with the error, if any.
	Logs []string
}

// Error implements error.
func (e *ServerError) Error() string {
	if e.Status == 0 {
		return "server error: " + e.Message
	}
	return fmt.Sprintf("server error (HTTP %d): %s", e.Status, e.Message)
}

// IsServerError reports whether err carries a *ServerError.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}
