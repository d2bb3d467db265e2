package model

import "time"

// CorrelatedIdentity is the engine's merged, confidence-scored output for a
// single query. It is created exactly once per query by the correlator;
// after creation the evidence list is append-only and every other field is
// fixed.
type CorrelatedIdentity struct {
	// Query is the query that produced this identity.
	Query Query `json:"query"`

	// FullName is the merged display name, taken from the highest-confidence
	// observation that carries one.
	FullName string `json:"full_name,omitempty"`

	// Location is the merged location.
	Location string `json:"location,omitempty"`

	// Company is the merged employer.
	Company string `json:"company,omitempty"`

	// JobTitle is the merged role.
	JobTitle string `json:"job_title,omitempty"`

	// PictureURL is the best profile picture found across observations.
	PictureURL string `json:"picture_url,omitempty"`

	// Evidence lists the deduplicated observations contributing to this
	// identity, ordered by descending confidence.
	Evidence []Observation `json:"evidence"`

	// Confidence is the overall identity confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Sources lists the ids of sources whose observations survived
	// deduplication. Always a subset of Attempted.
	Sources []string `json:"sources"`

	// Attempted lists the ids of every source dispatched for this query,
	// including those that failed or returned nothing.
	Attempted []string `json:"attempted"`

	// Reviews lists every oversight reviewer output for this query,
	// including reviews that changed nothing.
	Reviews []Review `json:"reviews,omitempty"`

	// Partial is true when the search did not complete: the outer deadline
	// expired or a phase deadline cut collection short. A complete search
	// with zero matches is not partial.
	Partial bool `json:"partial"`

	// ProcessedAt is when correlation finished.
	ProcessedAt time.Time `json:"processed_at"`
}

// CoveredPlatforms returns the count of evidence observations per platform
// category. Used by reports and by the fragmentation detector.
func (ci *CorrelatedIdentity) CoveredPlatforms() map[Category]int {
	coverage := make(map[Category]int)
	for _, obs := range ci.Evidence {
		coverage[obs.Category]++
	}
	return coverage
}
