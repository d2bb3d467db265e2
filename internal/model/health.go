package model

// HealthState is the supervised status of a source.
//
// States only move forward: Healthy → Degraded → Failing → Offline.
// The single exception is the explicit reset that happens when the
// supervisor replaces a failing source with a fresh instance, which
// starts over at Healthy. CanTransition encodes this rule so the
// health monitor never needs to special-case it.
type HealthState int

const (
	// HealthHealthy means the source is performing within thresholds.
	HealthHealthy HealthState = iota

	// HealthDegraded means the source shows elevated failures or latency
	// but is still dispatched.
	HealthDegraded

	// HealthFailing means the source breached a health threshold and is
	// replaced by the supervisor within the cycle that detected it.
	HealthFailing

	// HealthOffline means the source could not be replaced and is excluded
	// from dispatch until a replacement succeeds.
	HealthOffline
)

// String returns a human-readable representation of the health state.
func (h HealthState) String() string {
	switch h {
	case HealthHealthy:
		return "healthy"
	case HealthDegraded:
		return "degraded"
	case HealthFailing:
		return "failing"
	case HealthOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// CanTransition reports whether a state change from h to next is legal.
// Forward transitions (including skipping intermediate states) are allowed;
// backward transitions are only allowed as a reset to Healthy, which the
// supervisor performs when it installs a replacement instance.
func (h HealthState) CanTransition(next HealthState) bool {
	if next == HealthHealthy {
		return true // replacement reset
	}
	return next >= h
}
