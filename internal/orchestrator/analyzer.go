package orchestrator

import (
	"context"
	"errors"
	"sort"

	"github.com/FJ-cyberzilla/mailzilla/internal/correlate"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// Candidate is an analyzer's proposed reading of the merged identity's
// headline fields. Candidates are compared by structural equality during
// the decision phase, so the struct stays comparable.
type Candidate struct {
	FullName string
	Location string
	Company  string
	JobTitle string
}

// finding is one analyzer's output: a candidate plus derived signals.
type finding struct {
	analyzer   string
	candidate  Candidate
	hints      []string
	confidence float64
}

// Analyzer derives signals from the collection output and proposes a
// candidate interpretation. Analyzers are independent; one failing never
// blocks the others.
type Analyzer interface {
	// Name returns the analyzer's stable id. Registration order matters:
	// it is the decision phase's tie-break.
	Name() string

	// Analyze inspects the observations and proposes a candidate.
	Analyze(ctx context.Context, observations []model.Observation) (finding, error)
}

// errNoSignal is returned by analyzers that cannot form a candidate from
// the available observations. Treated as a skip, not a failure.
var errNoSignal = errors.New("no usable signal in observations")

// majorityAnalyzer proposes the most frequent value per field across all
// observations. Frequency across independent sources is the strongest
// single signal that a field is real.
type majorityAnalyzer struct{}

func (majorityAnalyzer) Name() string { return "majority" }

func (a majorityAnalyzer) Analyze(_ context.Context, observations []model.Observation) (finding, error) {
	if len(observations) == 0 {
		return finding{}, errNoSignal
	}

	f := finding{analyzer: a.Name()}
	var votes int
	f.candidate.FullName, votes = majorityValue(observations, func(o model.Observation) string { return o.FullName })
	f.candidate.Location, _ = majorityValue(observations, func(o model.Observation) string { return o.Location })
	f.candidate.Company, _ = majorityValue(observations, func(o model.Observation) string { return o.Company })
	f.candidate.JobTitle, _ = majorityValue(observations, func(o model.Observation) string { return o.JobTitle })

	f.confidence = float64(votes) / float64(len(observations))
	if votes > 1 {
		f.hints = append(f.hints, "name agreed by multiple sources")
	}
	return f, nil
}

// majorityValue returns the most frequent non-empty value for one field
// and its vote count. Normalized comparison, original casing preserved
// from the first occurrence. Ties resolve to the lexically smaller
// normalized value for determinism.
func majorityValue(observations []model.Observation, field func(model.Observation) string) (string, int) {
	counts := make(map[string]int)
	originals := make(map[string]string)
	for _, obs := range observations {
		v := field(obs)
		n := correlate.NormalizeName(v)
		if n == "" {
			continue
		}
		counts[n]++
		if _, seen := originals[n]; !seen {
			originals[n] = v
		}
	}
	if len(counts) == 0 {
		return "", 0
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestCount := "", 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return originals[best], bestCount
}

// completenessAnalyzer proposes the fields of the single most complete
// observation. A thoroughly filled profile tends to be the primary one.
type completenessAnalyzer struct{}

func (completenessAnalyzer) Name() string { return "completeness" }

func (a completenessAnalyzer) Analyze(_ context.Context, observations []model.Observation) (finding, error) {
	if len(observations) == 0 {
		return finding{}, errNoSignal
	}

	best := observations[0]
	for _, obs := range observations[1:] {
		if obs.Completeness() > best.Completeness() {
			best = obs
		}
	}

	return finding{
		analyzer: a.Name(),
		candidate: Candidate{
			FullName: best.FullName,
			Location: best.Location,
			Company:  best.Company,
			JobTitle: best.JobTitle,
		},
		hints:      []string{"most complete profile on " + best.Platform},
		confidence: best.Completeness(),
	}, nil
}

// reliabilityAnalyzer proposes the fields of the observation from the
// most reliable source, preferring verified profiles.
type reliabilityAnalyzer struct {
	// reliability returns the static prior for a source id.
	reliability func(sourceID string) float64
}

func (reliabilityAnalyzer) Name() string { return "reliability" }

func (a reliabilityAnalyzer) Analyze(_ context.Context, observations []model.Observation) (finding, error) {
	if len(observations) == 0 {
		return finding{}, errNoSignal
	}

	score := func(o model.Observation) float64 {
		s := a.reliability(o.SourceID)
		if o.Verified {
			s += 0.1
		}
		return s
	}

	best := observations[0]
	for _, obs := range observations[1:] {
		if score(obs) > score(best) {
			best = obs
		}
	}

	f := finding{
		analyzer: a.Name(),
		candidate: Candidate{
			FullName: best.FullName,
			Location: best.Location,
			Company:  best.Company,
			JobTitle: best.JobTitle,
		},
		confidence: a.reliability(best.SourceID),
	}
	if best.Verified {
		f.hints = append(f.hints, "backed by a platform-verified profile")
	}
	return f, nil
}

// standardAnalyzerCount is where the standard quality tier cuts the
// registration order; analyzers past it only run at comprehensive
// quality.
const standardAnalyzerCount = 2

// defaultAnalyzers returns the full analyzer set in registration order.
// The order is the decision tie-break and must stay stable; the
// completeness analyzer is the comprehensive-only extra.
func defaultAnalyzers(reliability func(sourceID string) float64) []Analyzer {
	return []Analyzer{
		majorityAnalyzer{},
		reliabilityAnalyzer{reliability: reliability},
		completenessAnalyzer{},
	}
}
