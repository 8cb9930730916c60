package risk

import "github.com/jobguard/jobguard/internal/model"

const (
	// CleanCeiling is the highest probability still classified as Clean.
	CleanCeiling = 30

	// ModerateCeiling is the highest probability still classified as Moderate.
	ModerateCeiling = 60

	// HighCeiling is the boundary between High and Critical.
	// Probabilities strictly below it are High; 81 and above are Critical.
	HighCeiling = 81
)

// styles holds the fixed display parameters for each tier.
var styles = map[model.Tier]model.TierStyle{
	model.TierLanguageError: {
		Color:      "neon-yellow",
		Title:      "LANGUAGE ERROR",
		Tint:       "rgba(255, 255, 0, 0.1)",
		StatusLine: ">> GIBBERISH DETECTED",
	},
	model.TierClean: {
		Color:      "neon-green",
		Title:      "SYSTEM CLEAN",
		Tint:       "rgba(0, 255, 157, 0.1)",
		StatusLine: ">> CLEAN SIGNAL",
	},
	model.TierModerate: {
		Color:      "#ffff00",
		Title:      "MODERATE RISK",
		Tint:       "rgba(255, 255, 0, 0.1)",
		StatusLine: ">> CAUTION ADVISED",
	},
	model.TierHigh: {
		Color:      "neon-orange",
		Title:      "HIGH RISK",
		Tint:       "rgba(255, 165, 0, 0.1)",
		StatusLine: ">> THREAT DETECTED",
	},
	model.TierCritical: {
		Color:      "neon-pink",
		Title:      "CRITICAL THREAT",
		Tint:       "rgba(255, 0, 153, 0.1)",
		StatusLine: ">> MALICIOUS PATTERN",
	},
}

// Classify maps a probability and the gibberish flag to a tier.
// The probability is ignored when isGibberish is true.
func Classify(probability float64, isGibberish bool) model.Tier {
	switch {
	case isGibberish:
		return model.TierLanguageError
	case probability <= CleanCeiling:
		return model.TierClean
	case probability <= ModerateCeiling:
		return model.TierModerate
	case probability < HighCeiling:
		return model.TierHigh
	default:
		return model.TierCritical
	}
}

// Style returns the display parameters for a tier.
// Unknown tiers get the Critical style so they are never shown as safe.
func Style(tier model.Tier) model.TierStyle {
	if s, ok := styles[tier]; ok {
		return s
	}
	return styles[model.TierCritical]
}

// Assessment is a classified result: the tier, its style and the
// probability it was derived from.
type Assessment struct {
	Tier        model.Tier      `json:"tier"`
	Style       model.TierStyle `json:"style"`
	Probability float64         `json:"probability"`
}

// Assess classifies a probability and attaches the tier style.
func Assess(probability float64, isGibberish bool) Assessment {
	tier := Classify(probability, isGibberish)
	return Assessment{
		Tier:        tier,
		Style:       Style(tier),
		Probability: probability,
	}
}
