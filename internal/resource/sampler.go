package resource

import (
	"context"
	"time"

	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	gopsnet "github.com/shirou/gopsutil/v4/net"
)

// Snapshot is one sample of host resource state.
type Snapshot struct {
	// MemoryUsedPercent is the used share of physical memory.
	MemoryUsedPercent float64

	// MemoryAvailable is free memory in bytes.
	MemoryAvailable uint64

	// CPUPercent is the recent CPU utilization across all cores.
	CPUPercent float64

	// NetworkMbps is the estimated network throughput in megabits per
	// second. Cached between probes.
	NetworkMbps float64

	// BatteryPercent is the battery charge level, 100 on hosts without a
	// battery.
	BatteryPercent float64

	// SampledAt is when the sample was taken.
	SampledAt time.Time
}

// Sub-score weights. The four sub-scores are normalized to 0-100 before
// weighting; network capacity matters as much as memory and CPU because
// every source call is network-bound, while battery only nudges the total.
const (
	memoryWeight  = 0.3
	cpuWeight     = 0.3
	networkWeight = 0.3
	batteryWeight = 0.1

	// mbpsPerScorePoint scales throughput to a 0-100 score: 50 Mbps and
	// above count as a full score.
	mbpsPerScorePoint = 2.0
)

// Score combines the sample into the weighted aggregate in [0,100].
// Each sub-score is monotone in its input, which makes the derived tier
// monotone as well.
func (s Snapshot) Score() float64 {
	memoryScore := clampScore(100 - s.MemoryUsedPercent)
	cpuScore := clampScore(100 - s.CPUPercent)
	networkScore := clampScore(s.NetworkMbps * mbpsPerScorePoint)
	batteryScore := clampScore(s.BatteryPercent)

	return memoryScore*memoryWeight +
		cpuScore*cpuWeight +
		networkScore*networkWeight +
		batteryScore*batteryWeight
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Sampler abstracts host resource measurement so the controller can be
// tested with synthetic samples.
type Sampler interface {
	// Memory returns the used percentage and available bytes.
	Memory(ctx context.Context) (usedPercent float64, available uint64, err error)

	// CPU returns the recent utilization percentage.
	CPU(ctx context.Context) (float64, error)

	// NetworkMbps estimates current network throughput. This is the
	// expensive probe; the controller caches its result.
	NetworkMbps(ctx context.Context) (float64, error)

	// Battery returns the charge percentage, or 100 when no battery exists.
	Battery() float64
}

// cpuSampleWindow is how long the CPU sampler observes utilization, and
// netProbeWindow how long the network probe watches interface counters.
// Short enough not to stall a monitoring cycle, long enough to smooth
// scheduler noise.
const (
	cpuSampleWindow = 500 * time.Millisecond
	netProbeWindow  = 500 * time.Millisecond
)

// SystemSampler measures the real host via gopsutil and the battery
// library.
type SystemSampler struct{}

// NewSystemSampler returns a Sampler backed by host measurements.
func NewSystemSampler() *SystemSampler {
	return &SystemSampler{}
}

// Memory implements Sampler.
func (s *SystemSampler) Memory(ctx context.Context) (float64, uint64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	return vm.UsedPercent, vm.Available, nil
}

// CPU implements Sampler.
func (s *SystemSampler) CPU(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, cpuSampleWindow, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}

// NetworkMbps implements Sampler. It estimates throughput passively from
// interface counters over a short window rather than generating probe
// traffic against an external endpoint.
func (s *SystemSampler) NetworkMbps(ctx context.Context) (float64, error) {
	before, err := gopsnet.IOCountersWithContext(ctx, false)
	if err != nil || len(before) == 0 {
		return 0, err
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(netProbeWindow):
	}

	after, err := gopsnet.IOCountersWithContext(ctx, false)
	if err != nil || len(after) == 0 {
		return 0, err
	}

	deltaBytes := float64(after[0].BytesRecv + after[0].BytesSent -
		before[0].BytesRecv - before[0].BytesSent)
	seconds := netProbeWindow.Seconds()
	return deltaBytes * 8 / 1_000_000 / seconds, nil
}

// Battery implements Sampler. Hosts without a battery (servers, desktops)
// report 100 so the battery sub-score never penalizes them.
func (s *SystemSampler) Battery() float64 {
	batteries, err := battery.GetAll()
	if err != nil || len(batteries) == 0 {
		return 100
	}

	var current, full float64
	for _, b := range batteries {
		current += b.Current
		full += b.Full
	}
	if full == 0 {
		return 100
	}
	return current / full * 100
}
