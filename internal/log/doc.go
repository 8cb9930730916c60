// Package log builds slog loggers that mask credentials before they reach
// any output.
//
// The JobGuard client handles passwords at login and signup and carries a
// server session cookie on every request. SecureHandler replaces those
// values with MaskValue whether they are passed under a telling key
// ("password", "cookie") or only look like a secret (a signed session
// cookie, a bearer token). Long posting text is shortened so a scan does
// not copy a whole job advertisement into the log.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("login", "username", name, "password", pw) // password=***REDACTED***
//
// The dashboard cannot write to the terminal it draws on, so it logs to a
// file instead:
//
//	logger, closer, err := log.NewFileLogger(config.LogFilePath(), verbose)
package log
