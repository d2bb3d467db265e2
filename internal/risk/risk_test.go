package risk

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestShannonEntropy tests the entropy helper.
func TestShannonEntropy(t *testing.T) {
	t.Parallel()

	if got := ShannonEntropy(""); got != 0 {
		t.Errorf("empty string entropy = %f, want 0", got)
	}
	if got := ShannonEntropy("aaaa"); got != 0 {
		t.Errorf("uniform string entropy = %f, want 0", got)
	}
	if got := ShannonEntropy("ab"); got != 1 {
		t.Errorf("two-symbol entropy = %f, want 1", got)
	}
	if ShannonEntropy("info") >= ShannonEntropy("x7Kp9qRz") {
		t.Error("expected a random handle to carry more entropy than a generic one")
	}
}

// TestSharedAccountDetector tests the office-handle heuristics.
func TestSharedAccountDetector(t *testing.T) {
	t.Parallel()

	d := &sharedAccountDetector{thresholds: config.DefaultThresholds()}

	t.Run("generic handle set emits an indicator", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Evidence: []model.Observation{
				{SourceID: "a", Username: "team2024"},
				{SourceID: "b", Username: "j.smith_99"},
				{SourceID: "c", Username: "infoteam"},
			},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator == nil {
			t.Fatal("expected a shared-account indicator")
		}
		if indicator.Type != model.RiskSharedAccount {
			t.Errorf("unexpected type %s", indicator.Type)
		}
		if len(indicator.Evidence) == 0 {
			t.Error("emitted indicator must carry evidence")
		}
		if indicator.Confidence <= 0.5 || indicator.Confidence > 1 {
			t.Errorf("confidence out of expected range: %f", indicator.Confidence)
		}
	})

	t.Run("personal handles stay quiet", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Evidence: []model.Observation{
				{SourceID: "a", Username: "jsmith"},
				{SourceID: "b", Username: "john.smith.dev"},
			},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator != nil {
			t.Errorf("expected no indicator, got %+v", indicator)
		}
	})

	t.Run("a single username is never judged", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Evidence: []model.Observation{{SourceID: "a", Username: "team2024"}},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator != nil {
			t.Error("one handle is not enough evidence for a shared account")
		}
	})
}

// TestTimezoneDetector tests timezone mismatch detection.
func TestTimezoneDetector(t *testing.T) {
	t.Parallel()

	d := &timezoneDetector{thresholds: config.DefaultThresholds()}

	t.Run("system and network mismatch emits", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Query: model.Query{Context: map[string]string{
				ContextTimezoneSystem:  "Europe/Berlin",
				ContextTimezoneNetwork: "Asia/Manila",
			}},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator == nil {
			t.Fatal("expected a timezone indicator")
		}
		if indicator.Type != model.RiskTimezoneManipulation || len(indicator.Evidence) == 0 {
			t.Errorf("unexpected indicator: %+v", indicator)
		}
	})

	t.Run("agreeing timezones stay quiet", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Query: model.Query{Context: map[string]string{
				ContextTimezoneSystem:  "Europe/Berlin",
				ContextTimezoneNetwork: "Europe/Berlin",
				ContextTimezoneBrowser: "Europe/Berlin",
			}},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator != nil {
			t.Errorf("expected no indicator, got %+v", indicator)
		}
	})

	t.Run("nocturnal activity alone stays below the bar", func(t *testing.T) {
		t.Parallel()

		night := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
		identity := &model.CorrelatedIdentity{
			Query: model.Query{Context: map[string]string{ContextTimezoneSystem: "UTC"}},
			Evidence: []model.Observation{
				{LastActivity: night},
				{LastActivity: night.Add(30 * time.Minute)},
				{LastActivity: night.Add(time.Hour)},
			},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator != nil {
			t.Errorf("0.4 confidence must not cross the 0.5 threshold, got %+v", indicator)
		}
	})
}

// TestFragmentationDetector tests name-variant detection.
func TestFragmentationDetector(t *testing.T) {
	t.Parallel()

	d := &fragmentationDetector{thresholds: config.DefaultThresholds()}

	t.Run("many name variants emit", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Evidence: []model.Observation{
				{FullName: "John Smith", Category: model.CategoryProfessional},
				{FullName: "J. Smith", Category: model.CategoryCode},
				{FullName: "Johnny S.", Category: model.CategorySocialMedia},
				{FullName: "JS Consulting", Category: model.CategoryMessaging},
			},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator == nil {
			t.Fatal("expected a fragmentation indicator")
		}
		if indicator.Type != model.RiskIdentityFragmentation || len(indicator.Evidence) == 0 {
			t.Errorf("unexpected indicator: %+v", indicator)
		}
	})

	t.Run("consistent naming stays quiet", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Evidence: []model.Observation{
				{FullName: "John Smith", Username: "jsmith", Bio: "engineer", Location: "Berlin", Company: "Acme", JobTitle: "Dev", PictureURL: "https://p"},
				{FullName: "john smith", Username: "jsmith", Bio: "engineer", Location: "Berlin", Company: "Acme", JobTitle: "Dev", PictureURL: "https://p"},
			},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator != nil {
			t.Errorf("expected no indicator, got %+v", indicator)
		}
	})
}

// TestHardwareSpoofingDetector tests fingerprint digest comparison.
func TestHardwareSpoofingDetector(t *testing.T) {
	t.Parallel()

	d := &hardwareSpoofingDetector{thresholds: config.DefaultThresholds()}

	t.Run("changing canvas fingerprint emits", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Query: model.Query{Context: map[string]string{
				"fingerprint.canvas.1": "payload-one",
				"fingerprint.canvas.2": "payload-two",
				"fingerprint.audio.1":  "stable",
				"fingerprint.audio.2":  "stable",
			}},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator == nil {
			t.Fatal("expected a hardware spoofing indicator")
		}
		if len(indicator.Evidence) != 1 || !strings.Contains(indicator.Evidence[0], "canvas") {
			t.Errorf("expected canvas evidence only, got %v", indicator.Evidence)
		}
	})

	t.Run("stable fingerprints stay quiet", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Query: model.Query{Context: map[string]string{
				"fingerprint.canvas.1": "stable",
				"fingerprint.canvas.2": "stable",
			}},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator != nil {
			t.Errorf("expected no indicator, got %+v", indicator)
		}
	})

	t.Run("no fingerprint context stays quiet", func(t *testing.T) {
		t.Parallel()

		indicator, err := d.Detect(context.Background(), &model.CorrelatedIdentity{})
		if err != nil {
			t.Fatal(err)
		}
		if indicator != nil {
			t.Errorf("expected no indicator, got %+v", indicator)
		}
	})
}

// TestActivityAnomalyDetector tests synchronized-activity detection.
func TestActivityAnomalyDetector(t *testing.T) {
	t.Parallel()

	d := &activityAnomalyDetector{thresholds: config.DefaultThresholds()}
	base := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)

	t.Run("synchronized activity across many platforms emits", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Evidence: []model.Observation{
				{LastActivity: base},
				{LastActivity: base.Add(2 * time.Minute)},
				{LastActivity: base.Add(5 * time.Minute)},
				{LastActivity: base.Add(9 * time.Minute)},
				{LastActivity: base.Add(12 * time.Minute)},
			},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator == nil {
			t.Fatal("expected an activity anomaly indicator")
		}
		if indicator.Type != model.RiskActivityAnomaly || len(indicator.Evidence) == 0 {
			t.Errorf("unexpected indicator: %+v", indicator)
		}
	})

	t.Run("spread-out activity stays quiet", func(t *testing.T) {
		t.Parallel()

		identity := &model.CorrelatedIdentity{
			Evidence: []model.Observation{
				{LastActivity: base},
				{LastActivity: base.Add(-30 * 24 * time.Hour)},
				{LastActivity: base.Add(-200 * 24 * time.Hour)},
			},
		}

		indicator, err := d.Detect(context.Background(), identity)
		if err != nil {
			t.Fatal(err)
		}
		if indicator != nil {
			t.Errorf("expected no indicator, got %+v", indicator)
		}
	})
}

// TestBehavioralDetector tests cross-platform contradiction detection.
func TestBehavioralDetector(t *testing.T) {
	t.Parallel()

	d := &behavioralDetector{thresholds: config.DefaultThresholds()}

	identity := &model.CorrelatedIdentity{
		Evidence: []model.Observation{
			{Company: "Acme", Location: "Berlin", JobTitle: "Engineer"},
			{Company: "Globex", Location: "Manila", JobTitle: "Designer"},
			{Company: "Acme", Location: "Lagos", JobTitle: "Founder"},
		},
	}

	indicator, err := d.Detect(context.Background(), identity)
	if err != nil {
		t.Fatal(err)
	}
	if indicator == nil {
		t.Fatal("expected a behavioral inconsistency indicator")
	}
	if indicator.Confidence <= 0.5 {
		t.Errorf("expected confidence above threshold, got %f", indicator.Confidence)
	}
}

// failingDetector always errors, for isolation tests.
type failingDetector struct{}

func (failingDetector) Name() string { return "failing" }
func (failingDetector) Detect(context.Context, *model.CorrelatedIdentity) (*model.RiskIndicator, error) {
	return nil, errors.New("detector exploded")
}

// constantDetector always emits a fixed indicator.
type constantDetector struct {
	indicator model.RiskIndicator
}

func (constantDetector) Name() string { return "constant" }
func (d constantDetector) Detect(context.Context, *model.CorrelatedIdentity) (*model.RiskIndicator, error) {
	indicator := d.indicator
	return &indicator, nil
}

// TestScorerIsolatesFailures tests that one broken detector never blocks
// the others.
func TestScorerIsolatesFailures(t *testing.T) {
	t.Parallel()

	emitted := model.RiskIndicator{
		Type: model.RiskSharedAccount, Confidence: 0.8,
		Evidence: []string{"e"}, Severity: model.SeverityHigh, Impact: 0.8,
	}
	s := NewScorerWithDetectors([]Detector{failingDetector{}, constantDetector{indicator: emitted}}, discardLogger())

	assessment := s.Assess(context.Background(), &model.CorrelatedIdentity{})
	if assessment.AnomalyCount != 1 {
		t.Fatalf("expected 1 indicator despite the failing detector, got %d", assessment.AnomalyCount)
	}
	if math.Abs(assessment.OverallRisk-0.8*0.8) > 1e-9 {
		t.Errorf("unexpected overall risk %f", assessment.OverallRisk)
	}
	if len(assessment.Recommendations) == 0 {
		t.Error("expected a recommendation for the emitted indicator")
	}
}

// TestScorerOverallRiskCapped tests the bounded monotone combination.
func TestScorerOverallRiskCapped(t *testing.T) {
	t.Parallel()

	strong := model.RiskIndicator{Type: model.RiskSharedAccount, Confidence: 0.9, Evidence: []string{"e"}, Impact: 0.8}
	var detectors []Detector
	for i := 0; i < 5; i++ {
		detectors = append(detectors, constantDetector{indicator: strong})
	}
	s := NewScorerWithDetectors(detectors, discardLogger())

	assessment := s.Assess(context.Background(), &model.CorrelatedIdentity{})
	if assessment.OverallRisk != 1.0 {
		t.Errorf("expected risk capped at 1.0, got %f", assessment.OverallRisk)
	}
	if assessment.AnomalyCount != 5 {
		t.Errorf("expected 5 indicators, got %d", assessment.AnomalyCount)
	}
	if len(assessment.Recommendations) == 0 {
		t.Error("expected escalation recommendation for multiple indicators")
	}
}

// TestScorerCleanIdentity tests the zero-risk path.
func TestScorerCleanIdentity(t *testing.T) {
	t.Parallel()

	s := NewScorer(config.DefaultThresholds(), discardLogger())
	identity := &model.CorrelatedIdentity{
		Evidence: []model.Observation{
			{SourceID: "linkedin", Username: "jsmith", FullName: "John Smith", Company: "Acme"},
		},
	}

	assessment := s.Assess(context.Background(), identity)
	if assessment.OverallRisk != 0 {
		t.Errorf("expected zero risk, got %f", assessment.OverallRisk)
	}
	if assessment.AnomalyCount != 0 {
		t.Errorf("expected no indicators, got %d", assessment.AnomalyCount)
	}
}
