package auth

import (
	"errors"
	"regexp"
	"strings"
)

// Prefix marks a field message in the operator console style.
const Prefix = ">> "

// ValidMessage is shown next to a field that passes validation.
const ValidMessage = Prefix + "VALID"

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,15}$`)
	emailPattern    = regexp.MustCompile(`^([a-z\d\.-]+)@([a-z\d-]+)\.([a-z]{2,8})(\.[a-z]{2,8})?$`)
)

// passwordSpecials are the accepted special characters, at least one required.
const passwordSpecials = "!@#$%^&*"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidateUsername checks a signup username.
func ValidateUsername(s string) error {
	if !usernamePattern.MatchString(s) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidateEmail checks a signup email. Uppercase letters are rejected.
func ValidateEmail(s string) error {
	if !emailPattern.MatchString(s) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks a signup password: at least MinPasswordLength
// characters from letters, digits and passwordSpecials, with at least one
// digit and one special.
func ValidatePassword(s string) error {
	if len(s) < MinPasswordLength {
		return ErrWeakPassword
	}

	var digit, special bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		default:
			return ErrWeakPassword
		}
	}

	if !digit || !special {
		return ErrWeakPassword
	}
	return nil
}

// Signup holds the fields of a registration form.
type Signup struct {
	Username string
	Email    string
	Password string
}

// FieldErrors maps a field name ("username", "email", "password") to its
// failure. It is empty when every field is valid.
type FieldErrors map[string]error

// Error joins the field messages in form order.
func (fe FieldErrors) Error() string {
	var parts []string
	for _, field := range []string{"username", "email", "password"} {
		if err, ok := fe[field]; ok {
			parts = append(parts, field+": "+err.Error())
		}
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the individual field errors to errors.Is.
func (fe FieldErrors) Unwrap() []error {
	errs := make([]error, 0, len(fe))
	for _, field := range []string{"username", "email", "password"} {
		if err, ok := fe[field]; ok {
			errs = append(errs, err)
		}
	}
	return errs
}

// Validate checks every field and returns FieldErrors, or nil if all pass.
func (s Signup) Validate() error {
	fe := FieldErrors{}
	if err := ValidateUsername(s.Username); err != nil {
		fe["username"] = err
	}
	if err := ValidateEmail(s.Email); err != nil {
		fe["email"] = err
	}
	if err := ValidatePassword(s.Password); err != nil {
		fe["password"] = err
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// ValidateLogin only checks that both fields are present; the server
// decides whether they are correct.
func ValidateLogin(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return ErrEmptyCredentials
	}
	return nil
}

// FieldMessage is the status line for a field: ValidMessage for nil, the
// prefixed error text otherwise.
func FieldMessage(err error) string {
	if err == nil {
		return ValidMessage
	}
	var fe FieldErrors
	if errors.As(err, &fe) {
		return Prefix + fe.Error()
	}
	return Prefix + err.Error()
}

// DeniedMessage formats a rejected login.
func DeniedMessage(reason string) string {
	return "ACCESS DENIED: " + reason
}

// RegistrationFailedMessage formats a rejected signup.
func RegistrationFailedMessage(reason string) string {
	return "REGISTRATION FAILED: " + reason
}
