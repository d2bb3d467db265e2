package model

import "time"

// Observation is one source's raw finding for a query. Observations are
// created once per successful source call and never mutated afterwards;
// the correlator copies what it needs instead of editing them in place.
type Observation struct {
	// SourceID identifies the source instance that produced this observation.
	SourceID string `json:"source_id"`

	// Platform is the platform id the source covers (e.g. "github").
	Platform string `json:"platform"`

	// Category is the platform category of the producing source.
	Category Category `json:"category"`

	// ProfileURL is the canonical URL of the matched profile.
	// May be empty when the platform exposes no stable profile URL.
	ProfileURL string `json:"profile_url,omitempty"`

	// Username is the platform-local handle, when known.
	Username string `json:"username,omitempty"`

	// FullName is the display name on the profile, when known.
	FullName string `json:"full_name,omitempty"`

	// Location is the free-text location declared on the profile.
	Location string `json:"location,omitempty"`

	// Company is the employer or organization declared on the profile.
	Company string `json:"company,omitempty"`

	// JobTitle is the role declared on the profile.
	JobTitle string `json:"job_title,omitempty"`

	// Bio is the profile description or about text.
	Bio string `json:"bio,omitempty"`

	// PictureURL points to the profile picture. The engine never fetches it;
	// it is evidence for the caller.
	PictureURL string `json:"picture_url,omitempty"`

	// LastActivity is the most recent activity timestamp the source could
	// determine. Zero when unknown.
	LastActivity time.Time `json:"last_activity,omitzero"`

	// Verified is true when the platform marks the profile as verified.
	Verified bool `json:"verified"`

	// Raw preserves source-specific fields that do not map onto the
	// structured set above.
	Raw map[string]string `json:"raw,omitempty"`

	// Confidence is the per-observation score in [0,1], set once by the
	// correlator during merge. Zero on raw observations straight from a
	// source.
	Confidence float64 `json:"confidence"`

	// CollectedAt is when the source call completed.
	CollectedAt time.Time `json:"collected_at"`
}

// trackedFieldCount is the number of structured fields counted by
// Completeness. Kept next to the method so the two stay in sync.
const trackedFieldCount = 7

// Completeness returns the ratio of filled structured fields to tracked
// fields, in [0,1]. Used as one factor of the observation confidence score.
func (o Observation) Completeness() float64 {
	filled := 0
	for _, f := range []string{
		o.Username, o.FullName, o.Location, o.Company, o.JobTitle, o.Bio, o.PictureURL,
	} {
		if f != "" {
			filled++
		}
	}
	return float64(filled) / float64(trackedFieldCount)
}
