package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FJ-cyberzilla/mailzilla/internal/resource"
	"github.com/FJ-cyberzilla/mailzilla/internal/source"
)

// analyzerTrack pairs a registered analyzer with its rolling performance
// record. The decision phase reads the success rate as the analyzer's
// consensus weight; registration order is the tie-break.
type analyzerTrack struct {
	analyzer Analyzer
	order    int
	metrics  source.PerformanceMetrics
}

// analysisPhase runs every analyzer concurrently over the collection
// output. Analyzer failures are folded into that analyzer's metrics
// (lowering its future consensus weight) and never block the others.
type analysisPhase struct {
	tracks []*analyzerTrack
	logger *slog.Logger
	now    func() time.Time

	// mu guards the tracks' metrics; analysis is the only writer.
	mu sync.Mutex
}

func newAnalysisPhase(analyzers []Analyzer, logger *slog.Logger, now func() time.Time) *analysisPhase {
	tracks := make([]*analyzerTrack, 0, len(analyzers))
	for i, a := range analyzers {
		tracks = append(tracks, &analyzerTrack{analyzer: a, order: i})
	}
	return &analysisPhase{tracks: tracks, logger: logger, now: now}
}

func (p *analysisPhase) Name() string { return "analysis" }

func (p *analysisPhase) Do(ctx context.Context, lk *lookup) error {
	tracks := p.tracks[:p.analyzerCount(lk.strategy.Quality)]

	results := make([]*finding, len(tracks))

	g, gctx := errgroup.WithContext(ctx)
	for i, track := range tracks {
		i, track := i, track
		g.Go(func() error {
			start := p.now()
			f, err := track.analyzer.Analyze(gctx, lk.observations)
			latency := p.now().Sub(start)

			p.mu.Lock()
			defer p.mu.Unlock()
			switch {
			case err == nil:
				track.metrics.RecordSuccess(latency, p.now())
				results[i] = &f
			case errors.Is(err, errNoSignal):
				// Nothing to analyze is not an analyzer defect.
			default:
				track.metrics.RecordFailure(latency, p.now())
				p.logger.Warn("analyzer failed",
					"analyzer", track.analyzer.Name(), "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		lk.partial = true
	}

	for _, f := range results {
		if f != nil {
			lk.findings = append(lk.findings, *f)
		}
	}
	return nil
}

// analyzerCount maps the quality tier to how many registered analyzers
// run: the basic tier keeps only the primary analyzer, the standard tier
// stops before the comprehensive-only extras, and the comprehensive tier
// runs them all.
func (p *analysisPhase) analyzerCount(quality resource.Quality) int {
	n := len(p.tracks)
	switch quality {
	case resource.QualityBasic:
		if n > 1 {
			n = 1
		}
	case resource.QualityStandard:
		if n > standardAnalyzerCount {
			n = standardAnalyzerCount
		}
	}
	return n
}

// weight returns an analyzer's current consensus weight: its rolling
// success rate, optimistic before any traffic.
func (p *analysisPhase) weight(name string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, track := range p.tracks {
		if track.analyzer.Name() == name {
			return track.metrics.SuccessRate()
		}
	}
	return 0
}

// order returns an analyzer's registration index, or the track count for
// unknown names so they always lose tie-breaks.
func (p *analysisPhase) order(name string) int {
	for _, track := range p.tracks {
		if track.analyzer.Name() == name {
			return track.order
		}
	}
	return len(p.tracks)
}
