package resource

import "time"

// Tier names a discrete resource level.
type Tier int

const (
	// TierCritical means the host can barely spare resources: one task at
	// a time with the shortest timeout.
	TierCritical Tier = iota

	// TierLow means limited resources.
	TierLow

	// TierMedium means normal resources.
	TierMedium

	// TierHigh means good resources.
	TierHigh

	// TierExcellent means abundant resources: full concurrency and the most
	// generous timeouts.
	TierExcellent
)

// String returns a human-readable representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	case TierExcellent:
		return "excellent"
	default:
		return "unknown"
	}
}

// Quality selects how much optional enrichment the pipeline performs.
type Quality int

const (
	// QualityBasic skips optional analyzers to save resources.
	QualityBasic Quality = iota

	// QualityStandard runs the default analyzer set.
	QualityStandard

	// QualityComprehensive runs every analyzer including the expensive ones.
	QualityComprehensive
)

// String returns a human-readable representation of the quality level.
func (q Quality) String() string {
	switch q {
	case QualityBasic:
		return "basic"
	case QualityStandard:
		return "standard"
	case QualityComprehensive:
		return "comprehensive"
	default:
		return "unknown"
	}
}

// Strategy is the read-only bundle of execution settings for one tier.
// The orchestrator and health monitor consume it; nothing mutates it.
type Strategy struct {
	// Tier is the resource level this strategy belongs to.
	Tier Tier

	// MaxConcurrentTasks bounds concurrent source calls within a category.
	MaxConcurrentTasks int

	// CallTimeout is the per-source-call budget.
	CallTimeout time.Duration

	// Quality selects the analyzer depth.
	Quality Quality
}

// tierTable fixes the settings per tier. The shape (five tiers, scaling
// concurrency and timeout together) is structural; the numbers are tuning
// defaults.
var tierTable = map[Tier]Strategy{
	TierCritical:  {Tier: TierCritical, MaxConcurrentTasks: 1, CallTimeout: 10 * time.Second, Quality: QualityBasic},
	TierLow:       {Tier: TierLow, MaxConcurrentTasks: 2, CallTimeout: 15 * time.Second, Quality: QualityBasic},
	TierMedium:    {Tier: TierMedium, MaxConcurrentTasks: 4, CallTimeout: 20 * time.Second, Quality: QualityStandard},
	TierHigh:      {Tier: TierHigh, MaxConcurrentTasks: 6, CallTimeout: 25 * time.Second, Quality: QualityComprehensive},
	TierExcellent: {Tier: TierExcellent, MaxConcurrentTasks: 8, CallTimeout: 30 * time.Second, Quality: QualityComprehensive},
}

// Tier score boundaries.
const (
	lowBoundary       = 20.0
	mediumBoundary    = 40.0
	highBoundary      = 60.0
	excellentBoundary = 80.0
)

// TierForScore maps an aggregate resource score (0-100) to a tier.
// The mapping is monotone: a higher score never yields a lower tier.
func TierForScore(score float64) Tier {
	switch {
	case score >= excellentBoundary:
		return TierExcellent
	case score >= highBoundary:
		return TierHigh
	case score >= mediumBoundary:
		return TierMedium
	case score >= lowBoundary:
		return TierLow
	default:
		return TierCritical
	}
}

// StrategyForScore returns the full strategy for an aggregate score.
func StrategyForScore(score float64) Strategy {
	return tierTable[TierForScore(score)]
}
