package auth

import "errors"

// Field validation errors. Their text is shown next to the offending field.
var (
	// ErrInvalidUsername is returned for usernames outside 3-15 word characters.
	ErrInvalidUsername = errors.New("3-15 CHARS, ALPHANUMERIC")

	// ErrInvalidEmail is returned for malformed email addresses.
	ErrInvalidEmail = errors.New("INVALID EMAIL FORMAT")

	// ErrWeakPassword is returned for passwords that miss the length,
	// digit or special character rule.
	ErrWeakPassword = errors.New("8+ CHARS, 1 NUM, 1 SPECIAL")

	// ErrEmptyCredentials is returned when login is attempted without a
	// username or password.
	ErrEmptyCredentials = errors.New("USERNAME AND PASSWORD REQUIRED")
)
