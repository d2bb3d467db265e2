package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/correlate"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
	"github.com/FJ-cyberzilla/mailzilla/internal/resource"
	"github.com/FJ-cyberzilla/mailzilla/internal/risk"
	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedStrategy satisfies StrategyProvider with a constant strategy.
type fixedStrategy struct {
	strategy resource.Strategy
}

func (f fixedStrategy) Strategy() resource.Strategy { return f.strategy }

func testStrategy() fixedStrategy {
	return fixedStrategy{strategy: resource.Strategy{
		Tier:               resource.TierHigh,
		MaxConcurrentTasks: 4,
		CallTimeout:        time.Second,
		Quality:            resource.QualityComprehensive,
	}}
}

// scriptedSource returns canned observations or errors per call.
type scriptedSource struct {
	id           string
	platform     string
	observations []model.Observation
	errs         []error // consumed per call; nil entry means success
	delay        time.Duration
	calls        int
}

func (s *scriptedSource) ID() string       { return s.id }
func (s *scriptedSource) Platform() string { return s.platform }
func (s *scriptedSource) Close() error     { return nil }

func (s *scriptedSource) Query(ctx context.Context, _ model.Query, _ time.Duration) ([]model.Observation, error) {
	call := s.calls
	s.calls++

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if call < len(s.errs) && s.errs[call] != nil {
		return nil, s.errs[call]
	}
	return s.observations, nil
}

// testEnv bundles the engine wiring for tests.
type testEnv struct {
	cfg      *config.Config
	registry *source.Registry
	engine   *Engine
	sources  map[string]*scriptedSource
}

// newTestEnv builds an engine over scripted sources. Each entry maps a
// platform to its scripted source; all land in the code category with
// email capability.
func newTestEnv(t *testing.T, sources map[string]*scriptedSource) *testEnv {
	t.Helper()

	f := source.NewFactory()
	var entries []config.SourceEntry
	for platform, src := range sources {
		src.id, src.platform = platform, platform
		f.Register(platform, func(cfg source.BuilderConfig) (source.Source, error) {
			return sources[cfg.Platform], nil
		})
		entries = append(entries, config.SourceEntry{
			Platform:    platform,
			Category:    "code",
			Reliability: 0.8,
			EmailSearch: true,
		})
	}

	registry, err := source.NewRegistry(entries, f)
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	cfg := config.NewConfig()
	cfg.QueryDeadline = 5 * time.Second
	cfg.PhaseDeadline = 2 * time.Second
	cfg.MaxRetries = 2
	cfg.RetryBaseDelay = time.Millisecond
	cfg.RetryMaxDelay = 5 * time.Millisecond

	logger := discardLogger()
	reliability := func(id string) float64 {
		snap, err := registry.Get(id)
		if err != nil {
			return 0.5
		}
		return snap.Reliability
	}
	correlator := correlate.New(config.DefaultWeights(), reliability)
	scorer := risk.NewScorer(config.DefaultThresholds(), logger)
	engine := New(cfg, registry, testStrategy(), correlator, scorer, logger)

	return &testEnv{cfg: cfg, registry: registry, engine: engine, sources: sources}
}

// TestCorrelateHappyPath tests a lookup over two agreeing sources.
func TestCorrelateHappyPath(t *testing.T) {
	t.Parallel()

	obs := func(sourceID string) model.Observation {
		return model.Observation{
			SourceID: sourceID, Platform: sourceID, Category: model.CategoryCode,
			ProfileURL: "https://" + sourceID + ".com/jsmith",
			Username:   "jsmith", FullName: "John Smith",
			CollectedAt: time.Now(),
		}
	}
	env := newTestEnv(t, map[string]*scriptedSource{
		"github": {observations: []model.Observation{obs("github")}},
		"gitlab": {observations: []model.Observation{obs("gitlab")}},
	})

	identity, assessment, err := env.engine.Correlate(context.Background(), model.NewEmailQuery("john@example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if identity.FullName != "John Smith" {
		t.Errorf("expected merged full name, got %q", identity.FullName)
	}
	if identity.Confidence <= 0 || identity.Confidence > 1 {
		t.Errorf("confidence out of range: %f", identity.Confidence)
	}
	if identity.Partial {
		t.Error("completed lookup must not be partial")
	}
	if len(identity.Attempted) != 2 {
		t.Errorf("expected 2 attempted sources, got %v", identity.Attempted)
	}
	if len(identity.Reviews) == 0 {
		t.Error("expected oversight reviews on the identity")
	}
	if assessment.OverallRisk < 0 || assessment.OverallRisk > 1 {
		t.Errorf("risk out of range: %f", assessment.OverallRisk)
	}

	// Sources must be a subset of the dispatched set.
	attempted := make(map[string]bool)
	for _, id := range identity.Attempted {
		attempted[id] = true
	}
	for _, id := range identity.Sources {
		if !attempted[id] {
			t.Errorf("source %s not in attempted set %v", id, identity.Attempted)
		}
	}
}

// TestCorrelateNoMatches tests the empty, complete result.
func TestCorrelateNoMatches(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, map[string]*scriptedSource{
		"github": {errs: []error{source.ErrNotFound, source.ErrNotFound, source.ErrNotFound}},
		"gitlab": {errs: []error{source.ErrNotFound, source.ErrNotFound, source.ErrNotFound}},
	})

	identity, _, err := env.engine.Correlate(context.Background(), model.NewEmailQuery("user@mail.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(identity.Evidence) != 0 {
		t.Errorf("expected empty evidence, got %d", len(identity.Evidence))
	}
	if identity.Confidence != 0 {
		t.Errorf("expected confidence 0, got %f", identity.Confidence)
	}
	if identity.Partial {
		t.Error("a complete search with no matches is not partial")
	}
}

// TestCorrelateDeadline tests that a deadline below the required time
// yields a partial result instead of an error.
func TestCorrelateDeadline(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, map[string]*scriptedSource{
		"github": {delay: 10 * time.Second},
	})
	env.cfg.QueryDeadline = 50 * time.Millisecond
	env.cfg.PhaseDeadline = 30 * time.Millisecond

	identity, _, err := env.engine.Correlate(context.Background(), model.NewEmailQuery("john@example.com"))
	if err != nil {
		t.Fatalf("deadline exhaustion must not error, got %v", err)
	}
	if !identity.Partial {
		t.Error("expected partial=true when the deadline cut collection short")
	}
}

// TestCorrelateRetriesTransientFailures tests retry with backoff on
// retryable error kinds.
func TestCorrelateRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	obs := model.Observation{
		SourceID: "github", Platform: "github", Category: model.CategoryCode,
		ProfileURL: "https://github.com/jsmith", Username: "jsmith",
		CollectedAt: time.Now(),
	}
	env := newTestEnv(t, map[string]*scriptedSource{
		"github": {
			errs:         []error{source.ErrRateLimited, source.ErrRateLimited, nil},
			observations: []model.Observation{obs},
		},
	})

	identity, _, err := env.engine.Correlate(context.Background(), model.NewEmailQuery("john@example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(identity.Evidence) != 1 {
		t.Fatalf("expected the retried call to deliver evidence, got %d", len(identity.Evidence))
	}
	if env.sources["github"].calls != 3 {
		t.Errorf("expected 3 calls (2 failures + success), got %d", env.sources["github"].calls)
	}

	snap, err := env.registry.Get("github")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Metrics.FailedRequests != 2 || snap.Metrics.SuccessfulRequests != 1 {
		t.Errorf("unexpected metrics: %+v", snap.Metrics)
	}
}

// TestCorrelateAuthFailureNotRetried tests that permanent failures stop
// immediately.
func TestCorrelateAuthFailureNotRetried(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, map[string]*scriptedSource{
		"github": {errs: []error{source.ErrAuthFailure, nil, nil}},
	})

	if _, _, err := env.engine.Correlate(context.Background(), model.NewEmailQuery("john@example.com")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.sources["github"].calls != 1 {
		t.Errorf("auth failures must not be retried, got %d calls", env.sources["github"].calls)
	}
}

// TestAnalysisQualityTiers tests that each quality tier runs a distinct
// analyzer cut.
func TestAnalysisQualityTiers(t *testing.T) {
	t.Parallel()

	reliability := func(string) float64 { return 0.8 }
	observations := []model.Observation{{
		SourceID: "github", Platform: "github", Category: model.CategoryCode,
		ProfileURL: "https://github.com/jsmith",
		Username:   "jsmith", FullName: "John Smith",
		CollectedAt: time.Now(),
	}}

	tests := []struct {
		quality resource.Quality
		want    int
	}{
		{resource.QualityBasic, 1},
		{resource.QualityStandard, 2},
		{resource.QualityComprehensive, 3},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.quality.String(), func(t *testing.T) {
			t.Parallel()

			p := newAnalysisPhase(defaultAnalyzers(reliability), discardLogger(), time.Now)
			lk := &lookup{
				observations: observations,
				strategy:     resource.Strategy{Quality: tt.quality},
			}
			if err := p.Do(context.Background(), lk); err != nil {
				t.Fatalf("analysis failed: %v", err)
			}
			if len(lk.findings) != tt.want {
				t.Errorf("expected %d findings at %s quality, got %d", tt.want, tt.quality, len(lk.findings))
			}
		})
	}
}

// TestCorrelateInvalidQuery tests the only hard-error path.
func TestCorrelateInvalidQuery(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, map[string]*scriptedSource{"github": {}})

	if _, _, err := env.engine.Correlate(context.Background(), model.NewEmailQuery("not-an-email")); !errors.Is(err, model.ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
}
