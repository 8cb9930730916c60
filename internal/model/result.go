package model

// ScanResult is the /predict response body.
//
// Optional display arrays may be absent; absent and empty are treated the
// same. SystemLogs is the exception: absent (nil) keeps the log panel as it
// is, while an explicit empty list clears it.
// FraudProbability is a pointer because a missing probability is a server
// error and must be distinguishable from a legitimate 0.
type ScanResult struct {
	FraudProbability *float64 `json:"fraud_probability,omitempty"`
	IsGibberish      bool     `json:"is_gibberish"`
	Reasons          []string `json:"reasons,omitempty"`
	Advisory         []string `json:"advisory,omitempty"`
	AnomalyAnalysis  []string `json:"anomaly_analysis,omitempty"`
	XAIInsights      []string `json:"xai_insights,omitempty"`
	SystemLogs       []string `json:"system_logs,omitempty"`
	Error            string   `json:"error,omitempty"`

	// Older servers answer with is_fake/confidence and, without a model
	// loaded, mode "mock". They are kept so the probability can be derived.
	IsFake     *bool    `json:"is_fake,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Mode       string   `json:"mode,omitempty"`
}

// HasError reports whether the server flagged the response as failed.
func (r *ScanResult) HasError() bool {
	return r.Error != ""
}

// Probability returns the fraud probability clamped to [0,100].
// The boolean is false when no probability can be determined.
//
// When fraud_probability is absent but the legacy is_fake/confidence
// pair is present, a fake verdict maps to the confidence and a genuine
// one to its complement.
func (r *ScanResult) Probability() (float64, bool) {
	if r.FraudProbability != nil {
		return clampPercent(*r.FraudProbability), true
	}
	if r.IsFake != nil && r.Confidence != nil {
		if *r.IsFake {
			return clampPercent(*r.Confidence), true
		}
		return clampPercent(100 - *r.Confidence), true
	}
	return 0, false
}

// HasTechnicalDetails reports whether anomaly or explainability data is present.
func (r *ScanResult) HasTechnicalDetails() bool {
	return len(r.AnomalyAnalysis) > 0 || len(r.XAIInsights) > 0
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
