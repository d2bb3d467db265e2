package model

// Severity tiers a risk indicator by its potential impact.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityLow indicates a weak signal that is informative on its own.
	SeverityLow Severity = iota

	// SeverityMedium indicates a moderate signal that warrants attention
	// when combined with other indicators.
	SeverityMedium

	// SeverityHigh indicates a strong deception signal.
	SeverityHigh

	// SeverityCritical indicates near-certain manipulation.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// SeverityForConfidence maps a detector confidence to a severity tier.
// The bands match the detector emit thresholds: below 0.5 is LOW,
// 0.5-0.7 MEDIUM, 0.7-0.85 HIGH, above CRITICAL.
func SeverityForConfidence(confidence float64) Severity {
	switch {
	case confidence >= 0.85:
		return SeverityCritical
	case confidence >= 0.7:
		return SeverityHigh
	case confidence >= 0.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
