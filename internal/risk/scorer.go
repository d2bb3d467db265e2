package risk

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// Detector examines one deception dimension of a correlated identity and
// emits at most one indicator. Detectors finding nothing return nil, not
// an indicator with empty evidence.
type Detector interface {
	// Name identifies the detector in logs.
	Name() string

	// Detect runs the heuristic. A nil indicator with nil error means the
	// dimension is clean.
	Detect(ctx context.Context, identity *model.CorrelatedIdentity) (*model.RiskIndicator, error)
}

// Scorer runs the detector set over identities.
type Scorer struct {
	detectors []Detector
	logger    *slog.Logger
}

// NewScorer builds a scorer with the full detector set.
func NewScorer(thresholds config.Thresholds, logger *slog.Logger) *Scorer {
	return &Scorer{
		detectors: []Detector{
			&sharedAccountDetector{thresholds: thresholds},
			&timezoneDetector{thresholds: thresholds},
			&fragmentationDetector{thresholds: thresholds},
			&spoofingDetector{thresholds: thresholds},
			&activityAnomalyDetector{thresholds: thresholds},
			&hardwareSpoofingDetector{thresholds: thresholds},
			&behavioralDetector{thresholds: thresholds},
		},
		logger: logger,
	}
}

// NewScorerWithDetectors builds a scorer over an explicit detector set.
// Used by tests and by callers that trim the set for the basic quality
// tier.
func NewScorerWithDetectors(detectors []Detector, logger *slog.Logger) *Scorer {
	return &Scorer{detectors: detectors, logger: logger}
}

// Assess runs every detector concurrently and aggregates the emitted
// indicators. A detector failure is logged and skipped; it never blocks
// the others or fails the assessment.
func (s *Scorer) Assess(ctx context.Context, identity *model.CorrelatedIdentity) model.RiskAssessment {
	results := make([]*model.RiskIndicator, len(s.detectors))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range s.detectors {
		i, d := i, d
		g.Go(func() error {
			indicator, err := d.Detect(gctx, identity)
			if err != nil {
				s.logger.Warn("risk detector failed", "detector", d.Name(), "error", err)
				return nil
			}
			results[i] = indicator
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // detectors never return errors through the group

	var indicators []model.RiskIndicator
	for _, indicator := range results {
		if indicator != nil {
			indicators = append(indicators, *indicator)
		}
	}

	// Deterministic order: strongest signal first, type as tie-break.
	sort.SliceStable(indicators, func(i, j int) bool {
		if indicators[i].Confidence != indicators[j].Confidence {
			return indicators[i].Confidence > indicators[j].Confidence
		}
		return indicators[i].Type < indicators[j].Type
	})

	return model.RiskAssessment{
		OverallRisk:     overallRisk(indicators),
		Indicators:      indicators,
		Recommendations: recommendations(indicators),
		AnomalyCount:    len(indicators),
	}
}

// overallRisk combines indicators into [0,1]. The sum of confidence ×
// impact, capped at 1.0: adding an indicator never lowers the score.
func overallRisk(indicators []model.RiskIndicator) float64 {
	var sum float64
	for _, indicator := range indicators {
		sum += indicator.Confidence * indicator.Impact
	}
	if sum > 1 {
		return 1
	}
	return sum
}

// recommendationByType maps each deception pattern to its follow-up
// action.
var recommendationByType = map[model.RiskType]string{
	model.RiskSharedAccount:           "verify account ownership through direct contact before trusting this identity",
	model.RiskTimezoneManipulation:    "cross-check the subject's claimed location against independent signals",
	model.RiskIdentityFragmentation:   "treat per-platform personas separately; do not assume a single operator",
	model.RiskProfileSpoofing:         "confirm the profile through the platform's official verification channel",
	model.RiskActivityAnomaly:         "review raw activity timestamps for automation before drawing conclusions",
	model.RiskHardwareSpoofing:        "discard device fingerprints from this subject as unreliable",
	model.RiskBehavioralInconsistency: "weight self-declared profile fields lower than third-party evidence",
}

func recommendations(indicators []model.RiskIndicator) []string {
	var recs []string
	for _, indicator := range indicators {
		if rec, ok := recommendationByType[indicator.Type]; ok {
			recs = append(recs, rec)
		}
	}
	if len(indicators) >= 3 {
		recs = append(recs, "multiple deception signals present; escalate to manual review")
	}
	return recs
}
