package model

// Tier is the discrete risk bucket that drives verdict display.
// It is derived on the client and never transmitted.
type Tier int

const (
	// TierLanguageError means the server could not read the text as language.
	TierLanguageError Tier = iota

	// TierClean covers probabilities up to 30.
	TierClean

	// TierModerate covers probabilities above 30 and up to 60.
	TierModerate

	// TierHigh covers probabilities above 60 and below the critical boundary.
	TierHigh

	// TierCritical covers everything from the critical boundary up.
	TierCritical
)

// String returns a short machine-friendly name for the tier.
func (t Tier) String() string {
	switch t {
	case TierLanguageError:
		return "language_error"
	case TierClean:
		return "clean"
	case TierModerate:
		return "moderate"
	case TierHigh:
		return "high"
	case TierCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseTier is the inverse of Tier.String.
func ParseTier(s string) (Tier, bool) {
	for _, t := range AllTiers() {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// AllTiers returns every tier, language error first, then by rising risk.
func AllTiers() []Tier {
	return []Tier{TierLanguageError, TierClean, TierModerate, TierHigh, TierCritical}
}

// TierStyle holds the fixed display parameters of a tier.
type TierStyle struct {
	// Color is the foreground color token.
	Color string `json:"color"`

	// Title is the verdict heading.
	Title string `json:"title"`

	// Tint is the translucent background used behind the trigger.
	Tint string `json:"tint"`

	// StatusLine replaces the input status indicator once a verdict is shown.
	StatusLine string `json:"statusLine"`
}
