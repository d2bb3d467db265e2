package source

import "time"

// PerformanceMetrics tracks the rolling performance of one source
// instance. The struct itself carries no locking: it is owned by the
// registry's descriptor and mutated only through the health monitor,
// which serializes updates. Everything else reads value copies.
type PerformanceMetrics struct {
	// TotalRequests counts every completed call, success or failure.
	TotalRequests int64

	// SuccessfulRequests counts calls that returned observations or a
	// definitive not-found.
	SuccessfulRequests int64

	// FailedRequests counts calls that failed with any other kind.
	FailedRequests int64

	// AvgLatency is the rolling average call latency.
	AvgLatency time.Duration

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int

	// LastSuccess is when the source last succeeded. Zero before the
	// first success.
	LastSuccess time.Time

	// LastRequest is when the source was last invoked.
	LastRequest time.Time
}

// OptimisticMetrics returns the reset prior given to a freshly built
// replacement instance: one synthetic success so the success rate starts
// at 1.0, matching the supervisor's optimistic reset.
func OptimisticMetrics(now time.Time) PerformanceMetrics {
	return PerformanceMetrics{
		TotalRequests:      1,
		SuccessfulRequests: 1,
		LastSuccess:        now,
		LastRequest:        now,
	}
}

// RecordSuccess folds a successful call into the metrics.
func (m *PerformanceMetrics) RecordSuccess(latency time.Duration, now time.Time) {
	m.TotalRequests++
	m.SuccessfulRequests++
	m.ConsecutiveFailures = 0
	m.LastSuccess = now
	m.LastRequest = now
	m.updateLatency(latency)
}

// RecordFailure folds a failed call into the metrics.
func (m *PerformanceMetrics) RecordFailure(latency time.Duration, now time.Time) {
	m.TotalRequests++
	m.FailedRequests++
	m.ConsecutiveFailures++
	m.LastRequest = now
	m.updateLatency(latency)
}

// updateLatency maintains the rolling average incrementally so the
// metrics never need the full latency history.
func (m *PerformanceMetrics) updateLatency(latency time.Duration) {
	if m.TotalRequests <= 1 {
		m.AvgLatency = latency
		return
	}
	n := m.TotalRequests
	m.AvgLatency += (latency - m.AvgLatency) / time.Duration(n)
}

// SuccessRate returns successes over total, or 1.0 before any traffic so
// untested sources are not judged as failing.
func (m PerformanceMetrics) SuccessRate() float64 {
	if m.TotalRequests == 0 {
		return 1.0
	}
	return float64(m.SuccessfulRequests) / float64(m.TotalRequests)
}

// ErrorRate returns failures over total, or 0 before any traffic.
func (m PerformanceMetrics) ErrorRate() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.FailedRequests) / float64(m.TotalRequests)
}
