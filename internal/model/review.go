package model

// Review is one oversight reviewer's output for a query. Every review is
// recorded on the identity whether or not it changed the outcome, so the
// caller can audit the corrections that were (and were not) applied.
type Review struct {
	// Reviewer identifies the reviewer that produced this entry.
	Reviewer string `json:"reviewer"`

	// Note is the reviewer's human-readable finding.
	Note string `json:"note"`

	// Applied is true when the reviewer adjusted the result.
	Applied bool `json:"applied"`

	// Factor is the confidence multiplier the reviewer applied, 1.0 when
	// nothing was adjusted. Corrections are bounded: reviewers may
	// down-weight confidence but never invalidate the decision.
	Factor float64 `json:"factor"`
}
