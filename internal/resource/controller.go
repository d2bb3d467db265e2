package resource

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// networkProbeTTL is how long a network throughput measurement stays
// fresh. Probing is the one expensive sample, so the cached value is
// reused across refresh cycles until it ages out.
const networkProbeTTL = 5 * time.Minute

// historyCap bounds the retained sample history.
const historyCap = 100

// trendWindow is how many recent samples the report averages over.
const trendWindow = 10

// Trend describes how the resource score has moved recently.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Report summarizes recent resource state for operators.
type Report struct {
	// Current is the latest sample.
	Current Snapshot

	// Score is the latest aggregate score.
	Score float64

	// Strategy is the active execution strategy.
	Strategy Strategy

	// AvgScore averages the aggregate score over the trend window.
	AvgScore float64

	// AvgMemoryUsedPercent and AvgCPUPercent average the raw sub-samples
	// over the trend window.
	AvgMemoryUsedPercent float64
	AvgCPUPercent        float64

	// Trend classifies the recent score movement.
	Trend Trend

	// Recommendations lists operator hints derived from the current sample.
	Recommendations []string

	// Samples is how many samples the controller has taken so far.
	Samples int
}

// Controller periodically samples the host and publishes the current
// execution strategy. Readers only ever see a complete strategy; there
// is no partially-updated state.
type Controller struct {
	sampler  Sampler
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	current  Snapshot
	strategy Strategy
	history  []Snapshot

	// Network probe cache. Only Refresh writes it.
	cachedMbps  float64
	probedAt    time.Time
	everSampled bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerClock overrides the time source for tests.
func WithControllerClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// NewController builds a controller. Until the first refresh completes it
// reports the medium-tier strategy, a conservative default that neither
// starves nor overloads the host.
func NewController(sampler Sampler, logger *slog.Logger, interval time.Duration, opts ...ControllerOption) *Controller {
	c := &Controller{
		sampler:  sampler,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		strategy: tierTable[TierMedium],
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Strategy returns the active execution strategy.
func (c *Controller) Strategy() Strategy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.strategy
}

// Current returns the latest sample.
func (c *Controller) Current() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Refresh takes one sample and recomputes the strategy. Individual sample
// failures degrade to the previous (or zero) value for that dimension
// rather than failing the refresh; a monitoring cycle that cannot read
// one gauge should still adapt on the others.
func (c *Controller) Refresh(ctx context.Context) Strategy {
	now := c.now()
	snap := Snapshot{SampledAt: now, BatteryPercent: c.sampler.Battery()}

	usedPercent, available, err := c.sampler.Memory(ctx)
	if err != nil {
		c.logger.Warn("memory sample failed", "error", err)
	} else {
		snap.MemoryUsedPercent = usedPercent
		snap.MemoryAvailable = available
	}

	cpuPercent, err := c.sampler.CPU(ctx)
	if err != nil {
		c.logger.Warn("cpu sample failed", "error", err)
	} else {
		snap.CPUPercent = cpuPercent
	}

	snap.NetworkMbps = c.networkMbps(ctx, now)

	score := snap.Score()
	strategy := StrategyForScore(score)

	c.mu.Lock()
	prevTier := c.strategy.Tier
	c.current = snap
	c.strategy = strategy
	c.history = append(c.history, snap)
	if len(c.history) > historyCap {
		c.history = c.history[len(c.history)-historyCap:]
	}
	first := !c.everSampled
	c.everSampled = true
	c.mu.Unlock()

	if first || strategy.Tier != prevTier {
		c.logger.Info("resource strategy updated",
			"tier", strategy.Tier.String(),
			"score", score,
			"max_concurrent", strategy.MaxConcurrentTasks,
			"call_timeout", strategy.CallTimeout,
			"quality", strategy.Quality.String())
	} else {
		c.logger.Debug("resource sample",
			"tier", strategy.Tier.String(), "score", score)
	}
	return strategy
}

// networkMbps returns the cached throughput estimate, re-probing only
// when the cache has expired.
func (c *Controller) networkMbps(ctx context.Context, now time.Time) float64 {
	c.mu.RLock()
	cached := c.cachedMbps
	fresh := !c.probedAt.IsZero() && now.Sub(c.probedAt) < networkProbeTTL
	c.mu.RUnlock()

	if fresh {
		return cached
	}

	mbps, err := c.sampler.NetworkMbps(ctx)
	if err != nil {
		c.logger.Warn("network probe failed", "error", err)
		return cached
	}

	c.mu.Lock()
	c.cachedMbps = mbps
	c.probedAt = now
	c.mu.Unlock()
	return mbps
}

// Run refreshes immediately and then on every interval tick until the
// context ends.
func (c *Controller) Run(ctx context.Context) {
	c.Refresh(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh(ctx)
		}
	}
}

// Report builds an operator summary from the sample history.
func (c *Controller) Report() Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r := Report{
		Current:  c.current,
		Score:    c.current.Score(),
		Strategy: c.strategy,
		Samples:  len(c.history),
		Trend:    TrendStable,
	}

	window := c.history
	if len(window) > trendWindow {
		window = window[len(window)-trendWindow:]
	}
	if len(window) > 0 {
		var score, mem, cpuSum float64
		for _, s := range window {
			score += s.Score()
			mem += s.MemoryUsedPercent
			cpuSum += s.CPUPercent
		}
		n := float64(len(window))
		r.AvgScore = score / n
		r.AvgMemoryUsedPercent = mem / n
		r.AvgCPUPercent = cpuSum / n
	}

	r.Trend = scoreTrend(window)
	r.Recommendations = recommendations(c.current)
	return r
}

// trendDelta is the minimum score movement between the window's halves
// that counts as a trend rather than noise.
const trendDelta = 5.0

func scoreTrend(window []Snapshot) Trend {
	if len(window) < 4 {
		return TrendStable
	}

	mid := len(window) / 2
	var older, newer float64
	for _, s := range window[:mid] {
		older += s.Score()
	}
	for _, s := range window[mid:] {
		newer += s.Score()
	}
	older /= float64(mid)
	newer /= float64(len(window) - mid)

	switch {
	case newer-older > trendDelta:
		return TrendIncreasing
	case older-newer > trendDelta:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Recommendation thresholds.
const (
	memoryPressurePercent = 80.0
	cpuPressurePercent    = 75.0
	slowNetworkMbps       = 5.0
	lowBatteryPercent     = 20.0
)

func recommendations(s Snapshot) []string {
	var recs []string
	if s.MemoryUsedPercent > memoryPressurePercent {
		recs = append(recs, "memory pressure is high; close other applications or lower concurrency")
	}
	if s.CPUPercent > cpuPressurePercent {
		recs = append(recs, "CPU utilization is high; expect longer lookups")
	}
	if s.NetworkMbps > 0 && s.NetworkMbps < slowNetworkMbps {
		recs = append(recs, "network throughput is low; remote sources may time out")
	}
	if s.BatteryPercent < lowBatteryPercent {
		recs = append(recs, "battery is low; connect to power before long lookups")
	}
	return recs
}
