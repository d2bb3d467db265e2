package orchestrator

import (
	"context"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
	"github.com/FJ-cyberzilla/mailzilla/internal/resource"
)

// Phase is one stage of the lookup pipeline. Phases run in a fixed
// order, each reading and extending the shared lookup state.
//
// A phase returns an error only for critical failures; recoverable
// problems (a source timing out, an analyzer erroring) are recorded in
// the state and return nil so later phases still run.
type Phase interface {
	// Do executes the phase against the accumulated lookup state.
	Do(ctx context.Context, lk *lookup) error

	// Name returns the phase name for logging.
	Name() string
}

// lookup is the state threaded through the pipeline for one query.
// Each phase owns the fields it writes; nothing is written concurrently
// across phases.
type lookup struct {
	query    model.Query
	strategy resource.Strategy

	// Collection output.
	attempted    []string
	observations []model.Observation

	// Analysis output, in analyzer registration order. Failed analyzers
	// leave no finding.
	findings []finding

	// Validation output.
	conflicts          []string
	validationScore    float64
	validationComplete bool

	// Correlation output.
	identity model.CorrelatedIdentity

	// Decision output.
	decisionConfidence float64

	// Risk output, computed between correlation and decision so the
	// oversight phase can see it.
	assessment model.RiskAssessment

	// partial is set whenever a deadline cut work short.
	partial bool
}
