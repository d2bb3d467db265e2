package orchestrator

import (
	"context"

	"github.com/FJ-cyberzilla/mailzilla/internal/correlate"
	"github.com/FJ-cyberzilla/mailzilla/internal/risk"
)

// correlationPhase delegates to the correlator and then scores deception
// risk over the merged identity. Risk runs here so the decision and
// oversight phases see the assessed identity, and so the risk penalty is
// applied exactly once.
type correlationPhase struct {
	correlator *correlate.Correlator
	scorer     *risk.Scorer
}

func (p *correlationPhase) Name() string { return "correlation" }

func (p *correlationPhase) Do(ctx context.Context, lk *lookup) error {
	lk.identity = p.correlator.Merge(lk.query, lk.observations)
	lk.identity.Attempted = lk.attempted
	lk.identity.Partial = lk.partial

	lk.assessment = p.scorer.Assess(ctx, &lk.identity)
	p.correlator.PenalizeRisk(&lk.identity, lk.assessment.OverallRisk)
	return nil
}
