package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
	"github.com/FJ-cyberzilla/mailzilla/internal/resource"
	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

// Detection thresholds. A source trips the hard criteria when its rolling
// success rate collapses, its error rate climbs, its average latency
// exceeds the current per-call budget, or it has taken traffic for an
// hour without a single success.
const (
	minSuccessRate      = 0.7
	maxErrorRate        = 0.3
	staleSuccessWindow  = time.Hour
	degradedSuccessRate = 0.85
)

// StrategyProvider yields the current execution strategy. The monitor
// reads the per-call timeout from it as the latency ceiling.
type StrategyProvider interface {
	Strategy() resource.Strategy
}

// Monitor runs periodic health checks over the source registry.
type Monitor struct {
	registry *source.Registry
	strategy StrategyProvider
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor builds a monitor over the given registry.
func NewMonitor(registry *source.Registry, strategy StrategyProvider, logger *slog.Logger, interval time.Duration, opts ...Option) *Monitor {
	m := &Monitor{
		registry: registry,
		strategy: strategy,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Cycle evaluates every source once, applying state transitions and
// replacing sources that have reached the failing state. A source that
// trips the hard criteria is marked failing and replaced within the
// same cycle, whatever state it was in, so a collapsed source never
// serves another cycle of traffic. The soft path is two-step: early
// degradation only demotes to degraded, and the source is reset via
// replacement once it recovers.
func (m *Monitor) Cycle(ctx context.Context) {
	now := m.now()
	ceiling := m.strategy.Strategy().CallTimeout

	for _, snap := range m.registry.Snapshots() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch snap.Health {
		case model.HealthHealthy, model.HealthDegraded:
			switch {
			case m.tripsHard(snap, ceiling, now):
				m.demote(snap, model.HealthFailing, ceiling, now)
				m.replace(snap)
			case m.tripsSoft(snap):
				if snap.Health == model.HealthHealthy {
					m.demote(snap, model.HealthDegraded, ceiling, now)
				}
			case snap.Health == model.HealthDegraded:
				// Recovered on its own; reset via replacement so the new
				// instance starts from clean metrics.
				m.replace(snap)
			}
		case model.HealthFailing:
			m.replace(snap)
		case model.HealthOffline:
			// Offline sources stay down until the next replacement attempt.
			m.replace(snap)
		}
	}
}

// tripsHard reports whether the snapshot meets the failing criteria.
func (m *Monitor) tripsHard(snap source.Snapshot, ceiling time.Duration, now time.Time) bool {
	metrics := snap.Metrics
	if metrics.TotalRequests == 0 {
		return false
	}
	if metrics.SuccessRate() < minSuccessRate {
		return true
	}
	if metrics.ErrorRate() > maxErrorRate {
		return true
	}
	if ceiling > 0 && metrics.AvgLatency > ceiling {
		return true
	}
	if metrics.LastSuccess.IsZero() && now.Sub(snap.CreatedAt) > staleSuccessWindow {
		return true
	}
	if !metrics.LastSuccess.IsZero() && now.Sub(metrics.LastSuccess) > staleSuccessWindow {
		return true
	}
	return false
}

// tripsSoft reports whether the snapshot shows early degradation.
func (m *Monitor) tripsSoft(snap source.Snapshot) bool {
	metrics := snap.Metrics
	if metrics.TotalRequests == 0 {
		return false
	}
	return metrics.SuccessRate() < degradedSuccessRate
}

func (m *Monitor) demote(snap source.Snapshot, next model.HealthState, ceiling time.Duration, now time.Time) {
	if err := m.registry.SetHealth(snap.ID, next); err != nil {
		m.logger.Warn("health transition rejected",
			"source", snap.ID, "from", snap.Health.String(), "to", next.String(), "error", err)
		return
	}
	m.logger.Warn("source health degraded",
		"source", snap.ID,
		"state", next.String(),
		"success_rate", snap.Metrics.SuccessRate(),
		"error_rate", snap.Metrics.ErrorRate(),
		"avg_latency", snap.Metrics.AvgLatency,
		"latency_ceiling", ceiling)
}

func (m *Monitor) replace(snap source.Snapshot) {
	if err := m.registry.Replace(snap.ID); err != nil {
		m.logger.Error("source replacement failed", "source", snap.ID, "error", err)
		return
	}
	m.logger.Info("source replaced",
		"source", snap.ID, "generation", snap.Generation+1)
}

// Run performs an immediate cycle and then one per interval tick until
// the context ends.
func (m *Monitor) Run(ctx context.Context) {
	m.Cycle(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Cycle(ctx)
		}
	}
}
