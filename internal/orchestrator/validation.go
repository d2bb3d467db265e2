package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FJ-cyberzilla/mailzilla/internal/correlate"
)

// validationPhase cross-checks the analyzers' findings for consistency:
// analyzers proposing different headline fields are flagged as conflicts,
// and the agreement ratio becomes the validation score.
type validationPhase struct {
	logger *slog.Logger
}

func (p *validationPhase) Name() string { return "validation" }

func (p *validationPhase) Do(_ context.Context, lk *lookup) error {
	lk.validationComplete = true
	if len(lk.findings) == 0 {
		return nil
	}

	lk.conflicts = append(lk.conflicts,
		fieldConflicts("full name", lk.findings, func(c Candidate) string { return c.FullName })...)
	lk.conflicts = append(lk.conflicts,
		fieldConflicts("location", lk.findings, func(c Candidate) string { return c.Location })...)
	lk.conflicts = append(lk.conflicts,
		fieldConflicts("company", lk.findings, func(c Candidate) string { return c.Company })...)

	// Agreement over the three checked fields.
	checked := 3.0
	lk.validationScore = (checked - float64(len(lk.conflicts))) / checked
	if lk.validationScore < 0 {
		lk.validationScore = 0
	}

	for _, conflict := range lk.conflicts {
		p.logger.Debug("validation conflict", "query", lk.query.Value, "conflict", conflict)
	}
	return nil
}

// fieldConflicts returns a conflict entry when analyzers disagree on a
// field's normalized value. Empty proposals don't count as disagreement.
func fieldConflicts(label string, findings []finding, field func(Candidate) string) []string {
	values := make(map[string][]string)
	for _, f := range findings {
		if v := correlate.NormalizeName(field(f.candidate)); v != "" {
			values[v] = append(values[v], f.analyzer)
		}
	}
	if len(values) <= 1 {
		return nil
	}
	return []string{fmt.Sprintf("analyzers disagree on %s (%d variants)", label, len(values))}
}
