package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FJ-cyberzilla/mailzilla/internal/config"
	"github.com/FJ-cyberzilla/mailzilla/internal/model"
	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

// collectionPhase fans out to eligible sources. Categories run in
// priority order so higher-reliability tiers get the resource budget
// first; within a category, calls run concurrently bounded by the
// strategy's task limit.
type collectionPhase struct {
	registry *source.Registry
	cfg      *config.Config
	logger   *slog.Logger

	// sleep is the backoff delay hook, replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func newCollectionPhase(registry *source.Registry, cfg *config.Config, logger *slog.Logger) *collectionPhase {
	return &collectionPhase{
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		sleep:    sleepContext,
	}
}

func (p *collectionPhase) Name() string { return "collection" }

func (p *collectionPhase) Do(ctx context.Context, lk *lookup) error {
	var mu sync.Mutex

	for _, category := range model.AllCategories {
		if ctx.Err() != nil {
			lk.partial = true
			return nil
		}

		dispatchables := p.registry.Eligible(category, lk.query.Kind)
		if len(dispatchables) == 0 {
			continue
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(lk.strategy.MaxConcurrentTasks)

		for _, d := range dispatchables {
			mu.Lock()
			lk.attempted = append(lk.attempted, d.ID)
			mu.Unlock()

			d := d
			g.Go(func() error {
				observations := p.callWithRetry(gctx, d, lk.query, lk.strategy.CallTimeout)
				if len(observations) == 0 {
					return nil
				}
				mu.Lock()
				lk.observations = append(lk.observations, observations...)
				mu.Unlock()
				return nil
			})
		}

		// Worker errors are swallowed inside the workers; Wait only
		// surfaces context cancellation.
		if err := g.Wait(); err != nil {
			lk.partial = true
			return nil
		}
	}

	if ctx.Err() != nil {
		lk.partial = true
	}
	return nil
}

// callWithRetry invokes one source with the per-call budget, retrying
// transient failures with exponential backoff. Every attempt's outcome is
// folded into the source's metrics. A miss (not found, exhausted retries,
// deadline) returns nil; collection treats it as absence, not an error.
func (p *collectionPhase) callWithRetry(ctx context.Context, d source.Dispatchable, query model.Query, callTimeout time.Duration) []model.Observation {
	delay := p.cfg.RetryBaseDelay
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, delay); err != nil {
				return nil
			}
			delay *= 2
			if delay > p.cfg.RetryMaxDelay {
				delay = p.cfg.RetryMaxDelay
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		start := time.Now()
		observations, err := d.Source.Query(callCtx, query, callTimeout)
		latency := time.Since(start)
		cancel()

		kind := source.Classify(err)
		if recordErr := p.registry.RecordOutcome(d.ID, kind, latency); recordErr != nil {
			p.logger.Warn("recording source outcome failed", "source", d.ID, "error", recordErr)
		}

		switch {
		case err == nil:
			return observations
		case kind == source.KindNotFound:
			// Definitive answer; nothing to retry.
			return nil
		case !kind.Retryable() || ctx.Err() != nil:
			p.logger.Debug("source call failed",
				"source", d.ID, "kind", kind.String(), "attempt", attempt, "error", err)
			return nil
		default:
			p.logger.Debug("source call failed, retrying",
				"source", d.ID, "kind", kind.String(), "attempt", attempt, "error", err)
		}
	}
	return nil
}

// sleepContext waits for d or until the context ends.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
