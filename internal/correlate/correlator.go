package correlate

import (
	"fmt"
	"sort"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// recencyHorizon is the activity age at which the recency factor reaches
// zero. Decay is linear: activity today scores 1.0, activity a year ago
// scores 0.
const recencyHorizon = 365 * 24 * time.Hour

// Correlator merges observations into identities. It is stateless apart
// from its configuration; every call works only on its inputs.
type Correlator struct {
	weights     config.Weights
	reliability func(sourceID string) float64
	now         func() time.Time
}

// Option configures a Correlator.
type Option func(*Correlator)

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Correlator) { c.now = now }
}

// New builds a Correlator. The reliability function returns the static
// prior for a source id; unknown ids should return a neutral 0.5.
func New(weights config.Weights, reliability func(sourceID string) float64, opts ...Option) *Correlator {
	c := &Correlator{
		weights:     weights,
		reliability: reliability,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ObservationConfidence scores one observation in [0,1]: the source's
// reliability prior, the filled-field ratio, and the recency of the last
// observed activity, combined by the configured weights, plus the
// verification bonus for platform-verified profiles.
func (c *Correlator) ObservationConfidence(obs model.Observation) float64 {
	score := c.weights.Reliability*c.reliability(obs.SourceID) +
		c.weights.Completeness*obs.Completeness() +
		c.weights.Recency*c.recencyScore(obs.LastActivity)
	if obs.Verified {
		score += c.weights.VerificationBonus
	}
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// recencyScore decays linearly from 1.0 at the current instant to 0 at
// the horizon. Unknown activity scores 0.
func (c *Correlator) recencyScore(lastActivity time.Time) float64 {
	if lastActivity.IsZero() {
		return 0
	}
	age := c.now().Sub(lastActivity)
	if age <= 0 {
		return 1
	}
	if age >= recencyHorizon {
		return 0
	}
	return 1 - float64(age)/float64(recencyHorizon)
}

// Merge deduplicates the observations and assembles the identity for the
// query. Zero observations produce a zero-confidence identity with empty
// evidence; that is a complete answer, not a partial one.
func (c *Correlator) Merge(query model.Query, observations []model.Observation) model.CorrelatedIdentity {
	identity := model.CorrelatedIdentity{
		Query:       query,
		ProcessedAt: c.now(),
	}

	evidence := c.dedupe(observations)
	if len(evidence) == 0 {
		identity.Evidence = []model.Observation{}
		identity.Sources = []string{}
		return identity
	}

	// Score each surviving observation once; the stored confidence is what
	// reports and the lookup history carry.
	for i := range evidence {
		evidence[i].Confidence = c.ObservationConfidence(evidence[i])
	}

	// Order by descending confidence so field merging takes the best
	// observation first. Ties break on source id for determinism.
	sort.SliceStable(evidence, func(i, j int) bool {
		if evidence[i].Confidence != evidence[j].Confidence {
			return evidence[i].Confidence > evidence[j].Confidence
		}
		return evidence[i].SourceID < evidence[j].SourceID
	})

	var sum float64
	seen := make(map[string]bool)
	for _, obs := range evidence {
		sum += obs.Confidence
		if !seen[obs.SourceID] {
			seen[obs.SourceID] = true
			identity.Sources = append(identity.Sources, obs.SourceID)
		}

		if identity.FullName == "" {
			identity.FullName = obs.FullName
		}
		if identity.Location == "" {
			identity.Location = obs.Location
		}
		if identity.Company == "" {
			identity.Company = obs.Company
		}
		if identity.JobTitle == "" {
			identity.JobTitle = obs.JobTitle
		}
		if identity.PictureURL == "" {
			identity.PictureURL = obs.PictureURL
		}
	}
	sort.Strings(identity.Sources)

	identity.Evidence = evidence
	identity.Confidence = sum / float64(len(evidence))
	return identity
}

// dedupe collapses observations describing the same profile. The group
// key is the normalized profile URL when present, else the platform plus
// normalized full name; observations with neither stand alone. Within a
// group the most complete observation wins, with the most recent
// collection time as tie-break.
func (c *Correlator) dedupe(observations []model.Observation) []model.Observation {
	best := make(map[string]model.Observation)
	order := make([]string, 0, len(observations))

	for i, obs := range observations {
		key := groupKey(obs, i)
		current, exists := best[key]
		if !exists {
			best[key] = obs
			order = append(order, key)
			continue
		}
		if betterRepresentative(obs, current) {
			best[key] = obs
		}
	}

	out := make([]model.Observation, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

func groupKey(obs model.Observation, index int) string {
	if u := NormalizeProfileURL(obs.ProfileURL); u != "" {
		return "url:" + u
	}
	if n := NormalizeName(obs.FullName); n != "" {
		return "name:" + obs.Platform + ":" + n
	}
	// No stable identity; never merged with anything.
	return fmt.Sprintf("solo:%s:%d", obs.SourceID, index)
}

func betterRepresentative(candidate, current model.Observation) bool {
	cc, cu := candidate.Completeness(), current.Completeness()
	if cc != cu {
		return cc > cu
	}
	return candidate.CollectedAt.After(current.CollectedAt)
}

// PenalizeRisk down-weights the identity confidence when the overall risk
// crosses the configured threshold. Applying it twice with the same risk
// double-penalizes; the orchestrator calls it exactly once per query.
func (c *Correlator) PenalizeRisk(identity *model.CorrelatedIdentity, overallRisk float64) {
	if overallRisk > c.weights.RiskPenaltyThreshold {
		identity.Confidence *= c.weights.RiskPenaltyFactor
	}
}
