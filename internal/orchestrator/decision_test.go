package orchestrator

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// fakeAnalyzer proposes a fixed candidate.
type fakeAnalyzer struct {
	name      string
	candidate Candidate
}

func (a fakeAnalyzer) Name() string { return a.name }
func (a fakeAnalyzer) Analyze(context.Context, []model.Observation) (finding, error) {
	return finding{analyzer: a.name, candidate: a.candidate}, nil
}

// runDecision executes analysis then decision over one observation so
// analyzer weights are populated the same way a real lookup populates
// them.
func runDecision(t *testing.T, analyzers []Analyzer) *lookup {
	t.Helper()

	analysis := newAnalysisPhase(analyzers, discardLogger(), time.Now)
	decision := &decisionPhase{analysis: analysis, logger: discardLogger()}

	lk := &lookup{
		query:        model.NewEmailQuery("john@example.com"),
		strategy:     testStrategy().Strategy(),
		observations: []model.Observation{{SourceID: "github", FullName: "John Smith"}},
	}
	if err := analysis.Do(context.Background(), lk); err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if err := decision.Do(context.Background(), lk); err != nil {
		t.Fatalf("decision: %v", err)
	}
	return lk
}

// TestDecisionMajorityWins tests that the heaviest candidate group wins.
func TestDecisionMajorityWins(t *testing.T) {
	t.Parallel()

	smith := Candidate{FullName: "John Smith"}
	doe := Candidate{FullName: "Jane Doe"}
	lk := runDecision(t, []Analyzer{
		fakeAnalyzer{name: "a", candidate: smith},
		fakeAnalyzer{name: "b", candidate: doe},
		fakeAnalyzer{name: "c", candidate: smith},
	})

	if lk.identity.FullName != "John Smith" {
		t.Errorf("expected the two-analyzer group to win, got %q", lk.identity.FullName)
	}
	if math.Abs(lk.decisionConfidence-2.0/3.0) > 1e-9 {
		t.Errorf("expected decision confidence 2/3, got %f", lk.decisionConfidence)
	}
}

// TestDecisionTieBreak tests that ties go to the earliest-registered
// analyzer's group.
func TestDecisionTieBreak(t *testing.T) {
	t.Parallel()

	lk := runDecision(t, []Analyzer{
		fakeAnalyzer{name: "first", candidate: Candidate{FullName: "John Smith"}},
		fakeAnalyzer{name: "second", candidate: Candidate{FullName: "Jane Doe"}},
	})

	if lk.identity.FullName != "John Smith" {
		t.Errorf("tie must resolve to the earliest-registered analyzer, got %q", lk.identity.FullName)
	}
	if lk.decisionConfidence != 0.5 {
		t.Errorf("expected decision confidence 0.5, got %f", lk.decisionConfidence)
	}
}

// TestDecisionGroupsNormalizedCandidates tests that casing differences do
// not split a consensus group.
func TestDecisionGroupsNormalizedCandidates(t *testing.T) {
	t.Parallel()

	lk := runDecision(t, []Analyzer{
		fakeAnalyzer{name: "a", candidate: Candidate{FullName: "John Smith"}},
		fakeAnalyzer{name: "b", candidate: Candidate{FullName: "JOHN  SMITH"}},
		fakeAnalyzer{name: "c", candidate: Candidate{FullName: "Jane Doe"}},
	})

	if lk.identity.FullName != "John Smith" {
		t.Errorf("normalized duplicates must form one group, got %q", lk.identity.FullName)
	}
}

// TestOversightBoundedCorrection tests that reviewer corrections are
// recorded and bounded.
func TestOversightBoundedCorrection(t *testing.T) {
	t.Parallel()

	phase := &oversightPhase{reviewers: defaultReviewers(), logger: discardLogger()}
	lk := &lookup{
		identity: model.CorrelatedIdentity{Confidence: 0.8, Partial: true},
		findings: []finding{{analyzer: "majority"}},
		// weak consensus and conflicts, stacking penalties
		decisionConfidence: 0.2,
		conflicts:          []string{"analyzers disagree on full name (2 variants)"},
	}

	if err := phase.Do(context.Background(), lk); err != nil {
		t.Fatal(err)
	}

	if len(lk.identity.Reviews) != 3 {
		t.Fatalf("expected every reviewer recorded, got %d", len(lk.identity.Reviews))
	}
	applied := 0
	for _, review := range lk.identity.Reviews {
		if review.Applied {
			applied++
		}
		if review.Note == "" {
			t.Error("every review must carry a note")
		}
	}
	if applied != 3 {
		t.Errorf("expected 3 applied corrections, got %d", applied)
	}

	want := 0.8 * 0.9 * 0.9 * 0.95
	if math.Abs(lk.identity.Confidence-want) > 1e-9 {
		t.Errorf("expected confidence %f, got %f", want, lk.identity.Confidence)
	}
}

// TestOversightNeverInvalidates tests the lower bound on combined
// corrections.
func TestOversightNeverInvalidates(t *testing.T) {
	t.Parallel()

	harsh := []Reviewer{
		reviewerFunc{name: "r1", factor: 0.5},
		reviewerFunc{name: "r2", factor: 0.5},
		reviewerFunc{name: "r3", factor: 0.5},
	}
	phase := &oversightPhase{reviewers: harsh, logger: discardLogger()}
	lk := &lookup{identity: model.CorrelatedIdentity{Confidence: 0.8}}

	if err := phase.Do(context.Background(), lk); err != nil {
		t.Fatal(err)
	}
	if want := 0.8 * minOversightFactor; math.Abs(lk.identity.Confidence-want) > 1e-9 {
		t.Errorf("combined correction must be bounded at %f, got confidence %f", minOversightFactor, lk.identity.Confidence)
	}
}

// reviewerFunc is a fixed-output reviewer for tests.
type reviewerFunc struct {
	name   string
	factor float64
}

func (r reviewerFunc) Name() string { return r.name }
func (r reviewerFunc) Review(*lookup) (string, float64) {
	return "scripted review", r.factor
}
