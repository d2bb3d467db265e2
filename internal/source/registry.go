package source

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// Registry errors.
var (
	// ErrUnknownSource is returned for operations on an id the registry
	// does not hold.
	ErrUnknownSource = errors.New("unknown source id")

	// ErrIllegalTransition is returned when a health state change violates
	// the forward-only rule.
	ErrIllegalTransition = errors.New("illegal health state transition")

	// ErrDuplicateSource is returned when the inventory lists the same
	// platform twice.
	ErrDuplicateSource = errors.New("duplicate source platform")
)

// Snapshot is a read-only copy of a descriptor's state, safe to hand to
// any component.
type Snapshot struct {
	ID          string
	Platform    string
	Category    model.Category
	Reliability float64
	EmailSearch bool
	PhoneSearch bool
	Health      model.HealthState
	Generation  int
	Metrics     PerformanceMetrics
	CreatedAt   time.Time
}

// Dispatchable pairs a descriptor snapshot with the live Source instance
// the orchestrator should call.
type Dispatchable struct {
	Snapshot
	Source Source
}

// descriptor is the registry's internal record for one platform source.
// The id is the platform id and stays stable across replacements; the
// generation counter tracks how many instances have served it.
type descriptor struct {
	id          string
	platform    string
	category    model.Category
	reliability float64
	emailSearch bool
	phoneSearch bool
	options     map[string]string

	health     model.HealthState
	generation int
	metrics    PerformanceMetrics
	createdAt  time.Time
	instance   Source
}

// Registry owns every SourceDescriptor, grouped by platform category.
// All mutation goes through registry methods; the health monitor is the
// only caller of the mutating ones. Reads return value copies.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]*descriptor
	factory *Factory
	now     func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock overrides the registry's time source. Used by tests.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry builds descriptors and initial Source instances for every
// inventory entry.
func NewRegistry(entries []config.SourceEntry, factory *Factory, opts ...RegistryOption) (*Registry, error) {
	r := &Registry{
		byID:    make(map[string]*descriptor, len(entries)),
		factory: factory,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, entry := range entries {
		category, ok := entry.ParsedCategory()
		if !ok {
			return nil, fmt.Errorf("source %s: unknown category %q", entry.Platform, entry.Category)
		}
		if _, exists := r.byID[entry.Platform]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSource, entry.Platform)
		}

		d := &descriptor{
			id:          entry.Platform,
			platform:    entry.Platform,
			category:    category,
			reliability: entry.Reliability,
			emailSearch: entry.EmailSearch,
			phoneSearch: entry.PhoneSearch,
			options:     entry.Options,
			health:      model.HealthHealthy,
			generation:  1,
			createdAt:   r.now(),
		}

		instance, err := factory.New(r.builderConfig(d))
		if err != nil {
			return nil, err
		}
		d.instance = instance
		r.byID[d.id] = d
	}

	return r, nil
}

// builderConfig derives the factory configuration from a descriptor.
func (r *Registry) builderConfig(d *descriptor) BuilderConfig {
	return BuilderConfig{
		ID:          d.id,
		Platform:    d.platform,
		Category:    d.category,
		Reliability: d.reliability,
		EmailSearch: d.emailSearch,
		PhoneSearch: d.phoneSearch,
		Options:     d.options,
	}
}

// snapshotLocked copies a descriptor. Callers hold at least a read lock.
func (d *descriptor) snapshot() Snapshot {
	return Snapshot{
		ID:          d.id,
		Platform:    d.platform,
		Category:    d.category,
		Reliability: d.reliability,
		EmailSearch: d.emailSearch,
		PhoneSearch: d.phoneSearch,
		Health:      d.health,
		Generation:  d.generation,
		Metrics:     d.metrics,
		CreatedAt:   d.createdAt,
	}
}

// Eligible returns the dispatchable sources for one category and query
// kind, ordered by descending reliability prior. Failing and offline
// sources are excluded; degraded ones still run.
func (r *Registry) Eligible(category model.Category, kind model.QueryKind) []Dispatchable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Dispatchable
	for _, d := range r.byID {
		if d.category != category {
			continue
		}
		if d.health == model.HealthFailing || d.health == model.HealthOffline {
			continue
		}
		if kind == model.QueryEmail && !d.emailSearch {
			continue
		}
		if kind == model.QueryPhone && !d.phoneSearch {
			continue
		}
		out = append(out, Dispatchable{Snapshot: d.snapshot(), Source: d.instance})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Reliability != out[j].Reliability {
			return out[i].Reliability > out[j].Reliability
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Snapshots returns a copy of every descriptor, ordered by category then id.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d.snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns the snapshot for one id.
func (r *Registry) Get(id string) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	return d.snapshot(), nil
}

// RecordOutcome folds one call outcome into a source's metrics.
// Called by the health monitor after every invocation; not-found counts
// as success because the source answered definitively.
func (r *Registry) RecordOutcome(id string, kind Kind, latency time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}

	switch kind {
	case KindNone, KindNotFound:
		d.metrics.RecordSuccess(latency, r.now())
	default:
		d.metrics.RecordFailure(latency, r.now())
	}
	return nil
}

// SetHealth transitions a source's health state, enforcing the
// forward-only rule.
func (r *Registry) SetHealth(id string, next model.HealthState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}
	if !d.health.CanTransition(next) {
		return fmt.Errorf("%w: %s %v -> %v", ErrIllegalTransition, id, d.health, next)
	}
	d.health = next
	return nil
}

// Replace builds a fresh instance for the source with the same
// configuration, discards the old instance best-effort, resets metrics to
// the optimistic prior, and returns the source to Healthy.
func (r *Registry) Replace(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSource, id)
	}

	fresh, err := r.factory.New(r.builderConfig(d))
	if err != nil {
		// Replacement failure: the source goes offline and is retried on
		// the next monitoring cycle.
		d.health = model.HealthOffline
		return fmt.Errorf("replacing %s: %w", id, err)
	}

	if d.instance != nil {
		_ = d.instance.Close() //nolint:errcheck // best-effort cleanup of the discarded instance
	}

	d.instance = fresh
	d.generation++
	d.metrics = OptimisticMetrics(r.now())
	d.health = model.HealthHealthy
	d.createdAt = r.now()
	return nil
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
