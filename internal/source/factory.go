package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// BuilderConfig is the plain configuration a builder receives.
// Sources are constructed from data, never synthesized at runtime.
type BuilderConfig struct {
	// ID is the descriptor id the new instance will serve.
	ID string

	// Platform is the platform id.
	Platform string

	// Category is the platform category.
	Category model.Category

	// Reliability is the static reliability prior.
	Reliability float64

	// EmailSearch and PhoneSearch are the capability flags.
	EmailSearch bool
	PhoneSearch bool

	// Options carries connector-specific settings from the inventory file.
	Options map[string]string
}

// Builder constructs a Source for one platform.
type Builder func(cfg BuilderConfig) (Source, error)

// Factory builds Source instances from configuration, keyed by platform
// id. Platform connectors register their builders here, the way
// database/sql drivers register themselves; platforms without a registered
// connector get a source that reports itself unavailable, so an engine
// built from a full inventory still degrades gracefully instead of
// failing construction.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewFactory creates an empty Factory.
func NewFactory() *Factory {
	return &Factory{builders: make(map[string]Builder)}
}

// Register installs the builder for a platform, replacing any previous one.
func (f *Factory) Register(platform string, b Builder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[platform] = b
}

// Registered reports whether a connector is registered for the platform.
func (f *Factory) Registered(platform string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.builders[platform]
	return ok
}

// New builds a Source for the given configuration.
func (f *Factory) New(cfg BuilderConfig) (Source, error) {
	f.mu.RLock()
	b, ok := f.builders[cfg.Platform]
	f.mu.RUnlock()

	if !ok {
		return &unavailableSource{id: cfg.ID, platform: cfg.Platform}, nil
	}

	src, err := b(cfg)
	if err != nil {
		return nil, fmt.Errorf("building source for %s: %w", cfg.Platform, err)
	}
	return src, nil
}

// unavailableSource stands in for a platform whose connector is not
// linked into this build. Every query fails with ErrUnavailable, which the
// engine records and recovers from like any other source outage.
type unavailableSource struct {
	id       string
	platform string
}

// ID implements Source.
func (s *unavailableSource) ID() string { return s.id }

// Platform implements Source.
func (s *unavailableSource) Platform() string { return s.platform }

// Query implements Source.
func (s *unavailableSource) Query(_ context.Context, _ model.Query, _ time.Duration) ([]model.Observation, error) {
	return nil, fmt.Errorf("no connector for %s: %w", s.platform, ErrUnavailable)
}

// Close implements Source.
func (s *unavailableSource) Close() error { return nil }
