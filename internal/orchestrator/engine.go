package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/correlate"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
	"github.com/FJ-cyberzilla/mailzilla/internal/resource"
	"github.com/FJ-cyberzilla/mailzilla/internal/risk"
	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

// StrategyProvider yields the execution strategy a lookup runs under.
// Satisfied by resource.Controller.
type StrategyProvider interface {
	Strategy() resource.Strategy
}

// Engine is the lookup entry point. It owns the pipeline phases and is
// safe for concurrent lookups: per-query state lives in the lookup
// struct, and the analyzer metrics inside the analysis phase are the
// only cross-query state, guarded there.
type Engine struct {
	cfg      *config.Config
	strategy StrategyProvider
	logger   *slog.Logger

	collection  *collectionPhase
	analysis    *analysisPhase
	validation  *validationPhase
	correlation *correlationPhase
	decision    *decisionPhase
	oversight   *oversightPhase
}

// Option configures an Engine.
type Option func(*Engine)

// WithAnalyzers replaces the default analyzer set. Used by tests.
func WithAnalyzers(analyzers []Analyzer) Option {
	return func(e *Engine) {
		e.analysis = newAnalysisPhase(analyzers, e.logger, time.Now)
	}
}

// WithReviewers replaces the default oversight reviewer set.
func WithReviewers(reviewers []Reviewer) Option {
	return func(e *Engine) {
		e.oversight.reviewers = reviewers
	}
}

// New wires the engine from its collaborators.
func New(cfg *config.Config, registry *source.Registry, strategy StrategyProvider,
	correlator *correlate.Correlator, scorer *risk.Scorer, logger *slog.Logger, opts ...Option) *Engine {

	reliability := func(sourceID string) float64 {
		snap, err := registry.Get(sourceID)
		if err != nil {
			return 0.5
		}
		return snap.Reliability
	}

	e := &Engine{
		cfg:         cfg,
		strategy:    strategy,
		logger:      logger,
		collection:  newCollectionPhase(registry, cfg, logger),
		analysis:    newAnalysisPhase(defaultAnalyzers(reliability), logger, time.Now),
		validation:  &validationPhase{logger: logger},
		correlation: &correlationPhase{correlator: correlator, scorer: scorer},
		oversight:   &oversightPhase{reviewers: defaultReviewers(), logger: logger},
	}
	e.decision = &decisionPhase{analysis: e.analysis, logger: logger}

	for _, opt := range opts {
		opt(e)
	}
	// Rebind in case an option swapped the analysis phase.
	e.decision.analysis = e.analysis
	return e
}

// phases returns the pipeline in execution order.
func (e *Engine) phases() []Phase {
	return []Phase{
		e.collection,
		e.analysis,
		e.validation,
		e.correlation,
		e.decision,
		e.oversight,
	}
}

// Correlate runs one query through the full pipeline and returns the
// merged identity and its risk assessment. Invalid input is the only
// error; everything else degrades to a partial or empty result.
func (e *Engine) Correlate(ctx context.Context, query model.Query) (model.CorrelatedIdentity, model.RiskAssessment, error) {
	if err := query.Validate(); err != nil {
		return model.CorrelatedIdentity{}, model.RiskAssessment{}, err
	}

	strategy := e.strategy.Strategy()
	e.logger.Info("lookup started",
		"kind", query.Kind.String(),
		"tier", strategy.Tier.String(),
		"max_concurrent", strategy.MaxConcurrentTasks)

	ctx, cancel := context.WithTimeout(ctx, e.cfg.QueryDeadline)
	defer cancel()

	lk := &lookup{query: query, strategy: strategy}
	for _, phase := range e.phases() {
		start := time.Now()
		phaseCtx, phaseCancel := context.WithTimeout(ctx, e.cfg.PhaseDeadline)
		err := phase.Do(phaseCtx, lk)
		expired := phaseCtx.Err() != nil
		phaseCancel()

		if err != nil {
			// Phases reserve errors for critical failures; record and move
			// on so the caller still gets the best available result.
			e.logger.Error("phase failed", "phase", phase.Name(), "error", err)
		}
		if expired {
			lk.partial = true
		}
		e.logger.Debug("phase finished",
			"phase", phase.Name(),
			"duration", time.Since(start),
			"partial", lk.partial)
	}

	lk.identity.Partial = lk.partial
	e.logger.Info("lookup finished",
		"sources", len(lk.identity.Sources),
		"evidence", len(lk.identity.Evidence),
		"confidence", lk.identity.Confidence,
		"risk", lk.assessment.OverallRisk,
		"partial", lk.identity.Partial)

	return lk.identity, lk.assessment, nil
}
