package model

// RiskType identifies a deception or anomaly pattern a detector can emit.
type RiskType string

const (
	// RiskSharedAccount flags an account operated by multiple people
	// (generic handle, low username entropy, several activity clusters,
	// varying writing style).
	RiskSharedAccount RiskType = "shared_account"

	// RiskTimezoneManipulation flags a mismatch between declared and
	// observed timezones, or activity inconsistent with the declared one.
	RiskTimezoneManipulation RiskType = "timezone_manipulation"

	// RiskIdentityFragmentation flags deliberately compartmentalized
	// personas: many name variants and strategically incomplete profiles.
	RiskIdentityFragmentation RiskType = "identity_fragmentation"

	// RiskProfileSpoofing flags profiles that imitate another identity.
	RiskProfileSpoofing RiskType = "profile_spoofing"

	// RiskActivityAnomaly flags activity patterns inconsistent with a
	// single human operator.
	RiskActivityAnomaly RiskType = "activity_anomaly"

	// RiskHardwareSpoofing flags contradictory device fingerprints.
	RiskHardwareSpoofing RiskType = "hardware_spoofing"

	// RiskBehavioralInconsistency flags profiles whose self-descriptions
	// contradict each other across platforms.
	RiskBehavioralInconsistency RiskType = "behavioral_inconsistency"
)

// RiskIndicator is one emitted deception signal.
// An emitted indicator always carries at least one piece of evidence;
// detectors that find nothing emit no indicator rather than an empty one.
type RiskIndicator struct {
	// Type identifies the deception pattern.
	Type RiskType `json:"type"`

	// Confidence is the detector's confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Evidence lists human-readable observations supporting the indicator.
	// Never empty.
	Evidence []string `json:"evidence"`

	// Severity tiers the indicator by confidence.
	Severity Severity `json:"severity"`

	// Impact weights how much this indicator contributes to overall risk,
	// in [0,1]. Shared accounts weigh more than, say, timezone anomalies.
	Impact float64 `json:"impact"`
}

// RiskAssessment aggregates all emitted indicators for one query.
type RiskAssessment struct {
	// OverallRisk is the combined risk score in [0,1].
	OverallRisk float64 `json:"overall_risk"`

	// Indicators lists every emitted indicator.
	Indicators []RiskIndicator `json:"indicators"`

	// Recommendations suggests follow-up actions derived from the indicators.
	Recommendations []string `json:"recommendations,omitempty"`

	// AnomalyCount is len(Indicators), kept for report convenience.
	AnomalyCount int `json:"anomaly_count"`
}

// HighRisk reports whether the assessment crosses the threshold at which
// the correlator down-weights identity confidence.
func (ra RiskAssessment) HighRisk(threshold float64) bool {
	return ra.OverallRisk > threshold
}
