package health

import (
	"fmt"
	"sort"
	"time"

	"github.com/FJ-cyberzilla/mailzilla/internal/model"
)

// SourceStatus is one source's line in the performance report.
type SourceStatus struct {
	ID          string
	Platform    string
	Category    model.Category
	Health      model.HealthState
	Generation  int
	SuccessRate float64
	ErrorRate   float64
	AvgLatency  time.Duration
	Requests    int64
}

// Report is a point-in-time summary of the source fleet.
type Report struct {
	GeneratedAt time.Time

	// Counts per health state.
	Healthy  int
	Degraded int
	Failing  int
	Offline  int

	// AvgSuccessRate averages the rolling success rate over sources that
	// have taken traffic.
	AvgSuccessRate float64

	// Sources lists per-source status, ordered by ID.
	Sources []SourceStatus

	// Recommendations lists operator hints for unhealthy sources.
	Recommendations []string
}

// Total returns the number of sources in the report.
func (r Report) Total() int {
	return r.Healthy + r.Degraded + r.Failing + r.Offline
}

// Report builds the current fleet summary.
func (m *Monitor) Report() Report {
	snaps := m.registry.Snapshots()
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })

	r := Report{GeneratedAt: m.now()}

	var rateSum float64
	var rated int
	for _, snap := range snaps {
		status := SourceStatus{
			ID:          snap.ID,
			Platform:    snap.Platform,
			Category:    snap.Category,
			Health:      snap.Health,
			Generation:  snap.Generation,
			SuccessRate: snap.Metrics.SuccessRate(),
			ErrorRate:   snap.Metrics.ErrorRate(),
			AvgLatency:  snap.Metrics.AvgLatency,
			Requests:    snap.Metrics.TotalRequests,
		}
		r.Sources = append(r.Sources, status)

		switch snap.Health {
		case model.HealthHealthy:
			r.Healthy++
		case model.HealthDegraded:
			r.Degraded++
		case model.HealthFailing:
			r.Failing++
		case model.HealthOffline:
			r.Offline++
		}

		if snap.Metrics.TotalRequests > 0 {
			rateSum += snap.Metrics.SuccessRate()
			rated++
		}

		switch {
		case snap.Health == model.HealthOffline:
			r.Recommendations = append(r.Recommendations,
				fmt.Sprintf("%s is offline; check connector credentials and platform availability", snap.ID))
		case snap.Health == model.HealthFailing:
			r.Recommendations = append(r.Recommendations,
				fmt.Sprintf("%s is failing and pending replacement", snap.ID))
		case snap.Health == model.HealthDegraded && snap.Generation > 1:
			r.Recommendations = append(r.Recommendations,
				fmt.Sprintf("%s keeps degrading after %d replacements; consider removing it from the inventory", snap.ID, snap.Generation-1))
		}
	}

	if rated > 0 {
		r.AvgSuccessRate = rateSum / float64(rated)
	} else {
		r.AvgSuccessRate = 1.0
	}
	return r
}
