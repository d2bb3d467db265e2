package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// minOversightFactor bounds the combined reviewer down-weighting: the
// oversight phase may halve the confidence but never erase it, and it
// may never invalidate the decision itself.
const minOversightFactor = 0.5

// Reviewer inspects the finished lookup and may apply one bounded
// correction. Every review is recorded on the identity, applied or not.
type Reviewer interface {
	// Name returns the reviewer's id.
	Name() string

	// Review returns the reviewer's note and the confidence factor it
	// wants applied (1.0 for no adjustment).
	Review(lk *lookup) (note string, factor float64)
}

// oversightPhase runs every reviewer in order and applies their combined
// bounded correction to the identity confidence.
type oversightPhase struct {
	reviewers []Reviewer
	logger    *slog.Logger
}

func (p *oversightPhase) Name() string { return "oversight" }

func (p *oversightPhase) Do(_ context.Context, lk *lookup) error {
	combined := 1.0
	for _, r := range p.reviewers {
		note, factor := r.Review(lk)
		if factor > 1 {
			factor = 1 // reviewers only down-weight
		}
		applied := factor < 1
		if applied {
			combined *= factor
		}
		lk.identity.Reviews = append(lk.identity.Reviews, model.Review{
			Reviewer: r.Name(),
			Note:     note,
			Applied:  applied,
			Factor:   factor,
		})
	}

	if combined < minOversightFactor {
		combined = minOversightFactor
	}
	if combined < 1 {
		lk.identity.Confidence *= combined
		p.logger.Debug("oversight correction applied",
			"factor", combined, "confidence", lk.identity.Confidence)
	}
	return nil
}

// partialReviewer penalizes results cut short by a deadline: the
// evidence set may be missing entire categories.
type partialReviewer struct{}

func (partialReviewer) Name() string { return "partial_result" }

func (partialReviewer) Review(lk *lookup) (string, float64) {
	if !lk.identity.Partial {
		return "search completed within its deadlines", 1.0
	}
	return "search was cut short by a deadline; confidence down-weighted", 0.9
}

// consensusReviewer penalizes weak analyzer consensus.
type consensusReviewer struct{}

func (consensusReviewer) Name() string { return "consensus" }

func (consensusReviewer) Review(lk *lookup) (string, float64) {
	if len(lk.findings) == 0 {
		return "no analyzer findings to review", 1.0
	}
	if lk.decisionConfidence >= 0.5 {
		return fmt.Sprintf("consensus confidence %.2f", lk.decisionConfidence), 1.0
	}
	return fmt.Sprintf("weak consensus (%.2f); confidence down-weighted", lk.decisionConfidence), 0.9
}

// conflictReviewer penalizes unresolved validation conflicts.
type conflictReviewer struct{}

func (conflictReviewer) Name() string { return "validation_conflicts" }

func (conflictReviewer) Review(lk *lookup) (string, float64) {
	if len(lk.conflicts) == 0 {
		return "no validation conflicts", 1.0
	}
	return fmt.Sprintf("%d unresolved validation conflicts", len(lk.conflicts)), 0.95
}

// defaultReviewers returns the standard oversight set.
func defaultReviewers() []Reviewer {
	return []Reviewer{partialReviewer{}, consensusReviewer{}, conflictReviewer{}}
}
