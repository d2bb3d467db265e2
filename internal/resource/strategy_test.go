package resource

import (
	"testing"
	"time"
)

// TestTierForScore tests the boundary mapping.
func TestTierForScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		score float64
		want  Tier
	}{
		{"zero", 0, TierCritical},
		{"just below low", 19.9, TierCritical},
		{"low boundary", 20, TierLow},
		{"medium boundary", 40, TierMedium},
		{"high boundary", 60, TierHigh},
		{"excellent boundary", 80, TierExcellent},
		{"full", 100, TierExcellent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := TierForScore(tt.score); got != tt.want {
				t.Errorf("TierForScore(%f) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

// TestTierMonotone tests that a higher score never yields a lower tier and
// that strategy settings scale with the tier.
func TestTierMonotone(t *testing.T) {
	t.Parallel()

	prevTier := TierCritical
	prevTasks := 0
	var prevTimeout time.Duration
	for score := 0.0; score <= 100; score += 0.5 {
		s := StrategyForScore(score)
		if s.Tier < prevTier {
			t.Fatalf("tier decreased at score %f: %v after %v", score, s.Tier, prevTier)
		}
		if s.MaxConcurrentTasks < prevTasks {
			t.Fatalf("concurrency decreased at score %f", score)
		}
		if s.CallTimeout < prevTimeout {
			t.Fatalf("timeout decreased at score %f", score)
		}
		prevTier, prevTasks, prevTimeout = s.Tier, s.MaxConcurrentTasks, s.CallTimeout
	}
}

// TestSnapshotScore tests the weighted aggregate.
func TestSnapshotScore(t *testing.T) {
	t.Parallel()

	t.Run("idle well-connected host scores full", func(t *testing.T) {
		t.Parallel()

		s := Snapshot{MemoryUsedPercent: 0, CPUPercent: 0, NetworkMbps: 100, BatteryPercent: 100}
		if got := s.Score(); got != 100 {
			t.Errorf("expected score 100, got %f", got)
		}
	})

	t.Run("exhausted host scores zero", func(t *testing.T) {
		t.Parallel()

		s := Snapshot{MemoryUsedPercent: 100, CPUPercent: 100, NetworkMbps: 0, BatteryPercent: 0}
		if got := s.Score(); got != 0 {
			t.Errorf("expected score 0, got %f", got)
		}
	})

	t.Run("network score saturates at 50 Mbps", func(t *testing.T) {
		t.Parallel()

		at50 := Snapshot{NetworkMbps: 50}.Score()
		at500 := Snapshot{NetworkMbps: 500}.Score()
		if at50 != at500 {
			t.Errorf("expected saturation, got %f vs %f", at50, at500)
		}
	})

	t.Run("improving any dimension never lowers the score", func(t *testing.T) {
		t.Parallel()

		base := Snapshot{MemoryUsedPercent: 60, CPUPercent: 50, NetworkMbps: 10, BatteryPercent: 40}
		better := []Snapshot{
			{MemoryUsedPercent: 30, CPUPercent: 50, NetworkMbps: 10, BatteryPercent: 40},
			{MemoryUsedPercent: 60, CPUPercent: 20, NetworkMbps: 10, BatteryPercent: 40},
			{MemoryUsedPercent: 60, CPUPercent: 50, NetworkMbps: 40, BatteryPercent: 40},
			{MemoryUsedPercent: 60, CPUPercent: 50, NetworkMbps: 10, BatteryPercent: 90},
		}
		for i, b := range better {
			if b.Score() < base.Score() {
				t.Errorf("case %d: improved snapshot scored lower (%f < %f)", i, b.Score(), base.Score())
			}
		}
	})
}
