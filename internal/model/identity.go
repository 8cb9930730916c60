package model

// IdentitySource records which source wrote the current identity.
type IdentitySource string

const (
	// SourceServer means the identity came from /api/user_info.
	SourceServer IdentitySource = "server"

	// SourceCache means the identity was read from the local cache.
	SourceCache IdentitySource = "cache"

	// SourceNone means no identity is known.
	SourceNone IdentitySource = "none"
)

const (
	// GuestLabel is displayed when the server reports no session.
	GuestLabel = "GUEST"

	// UnknownLabel is displayed before anything is known.
	UnknownLabel = "UNKNOWN"
)

// Identity is the operator identity shown on the dashboard.
type Identity struct {
	// Username is empty when no user is known.
	Username string `json:"username,omitempty"`

	// Source is the writer of the current value.
	Source IdentitySource `json:"source"`
}

// Known reports whether a username is present.
func (i Identity) Known() bool {
	return i.Username != ""
}

// DisplayName returns the username or the placeholder for its source.
func (i Identity) DisplayName() string {
	if i.Username != "" {
		return i.Username
	}
	if i.Source == SourceServer {
		return GuestLabel
	}
	return UnknownLabel
}
