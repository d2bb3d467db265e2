package orchestrator

import (
	"context"
	"log/slog"

	"github.com/FJ-cyberzilla/mailzilla/internal/correlate"
)

// decisionPhase settles analyzer disagreement by weighted consensus.
// Findings proposing structurally equal candidates form a group; each
// group's weight is the sum of its analyzers' rolling success rates. The
// group with the strictly greatest total weight wins, and the decision
// confidence is winning weight over total weight. Ties go to the group
// containing the earliest-registered analyzer.
type decisionPhase struct {
	analysis *analysisPhase
	logger   *slog.Logger
}

func (p *decisionPhase) Name() string { return "decision" }

// candidateKey normalizes a candidate for structural grouping so that
// casing and spacing differences don't split a group.
func candidateKey(c Candidate) Candidate {
	return Candidate{
		FullName: correlate.NormalizeName(c.FullName),
		Location: correlate.NormalizeName(c.Location),
		Company:  correlate.NormalizeName(c.Company),
		JobTitle: correlate.NormalizeName(c.JobTitle),
	}
}

func (p *decisionPhase) Do(_ context.Context, lk *lookup) error {
	if len(lk.findings) == 0 {
		return nil
	}

	type group struct {
		candidate  Candidate // first proposal, original casing
		weight     float64
		firstOrder int // earliest registration index in the group
	}

	groups := make(map[Candidate]*group)
	var total float64
	for _, f := range lk.findings {
		weight := p.analysis.weight(f.analyzer)
		order := p.analysis.order(f.analyzer)
		total += weight

		key := candidateKey(f.candidate)
		g, ok := groups[key]
		if !ok {
			groups[key] = &group{candidate: f.candidate, weight: weight, firstOrder: order}
			continue
		}
		g.weight += weight
		if order < g.firstOrder {
			g.firstOrder = order
		}
	}

	var winner *group
	for _, g := range groups {
		switch {
		case winner == nil:
			winner = g
		case g.weight > winner.weight:
			winner = g
		case g.weight == winner.weight && g.firstOrder < winner.firstOrder:
			winner = g
		}
	}

	if total > 0 {
		lk.decisionConfidence = winner.weight / total
	}

	// The consensus candidate overrides the correlator's first-non-empty
	// field merge when the two disagree; consensus carries more analyzers'
	// weight than a single best observation.
	if winner.candidate.FullName != "" {
		lk.identity.FullName = winner.candidate.FullName
	}
	if winner.candidate.Location != "" {
		lk.identity.Location = winner.candidate.Location
	}
	if winner.candidate.Company != "" {
		lk.identity.Company = winner.candidate.Company
	}
	if winner.candidate.JobTitle != "" {
		lk.identity.JobTitle = winner.candidate.JobTitle
	}

	p.logger.Debug("decision consensus",
		"groups", len(groups),
		"confidence", lk.decisionConfidence)
	return nil
}
