package arena

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Used returns the offset of the next free byte, alignment padding included.
func (a *Arena) Used() int {
	return a.used
}

// Capacity returns the fixed size of the arena in bytes.
func (a *Arena) Capacity() int {
	return a.capacity
}

// RemainingCapacity returns the bytes not yet handed out. An allocation of
// that many bytes may still fail if it needs alignment padding.
func (a *Arena) RemainingCapacity() int {
	return a.capacity - a.used
}

// Peak returns the highest value Used has reached. Rollback and Reset do
// not lower it.
func (a *Arena) Peak() int {
	return a.peak
}

// OpenRegions returns the number of temporary regions not yet closed.
func (a *Arena) OpenRegions() int {
	return len(a.regions)
}

// Name returns the name given with WithName.
func (a *Arena) Name() string {
	return a.name
}

// ZeroPolicy returns the zeroing behaviour of the arena.
func (a *Arena) ZeroPolicy() ZeroPolicy {
	return a.zero
}

// Utilization returns the ratio of bytes in use to capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	if a.capacity == 0 {
		return 0
	}
	return float64(a.used) / float64(a.capacity)
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		Used:              a.used,
		Capacity:          a.capacity,
		Remaining:         a.RemainingCapacity(),
		Peak:              a.peak,
		OpenRegions:       len(a.regions),
		Utilization:       a.Utilization(),
		Allocations:       a.stats.allocations,
		FailedAllocations: a.stats.failedAllocations,
		Commits:           a.stats.commits,
		Rollbacks:         a.stats.rollbacks,
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	Used              int     // Bytes handed out, padding included
	Capacity          int     // Fixed capacity in bytes
	Remaining         int     // Capacity - Used
	Peak              int     // High watermark of Used
	OpenRegions       int     // Temporary regions not yet closed
	Utilization       float64 // Ratio of used to capacity (0.0-1.0)
	Allocations       uint64  // Successful allocations
	FailedAllocations uint64  // Allocations refused for lack of space
	Commits           uint64  // Temporary regions committed
	Rollbacks         uint64  // Temporary regions rolled back
}

func (m ArenaMetrics) String() string {
	return fmt.Sprintf("used=%s capacity=%s peak=%s utilization=%.1f%% regions=%d allocs=%d failed=%d commits=%d rollbacks=%d",
		humanize.IBytes(uint64(m.Used)), humanize.IBytes(uint64(m.Capacity)), humanize.IBytes(uint64(m.Peak)),
		m.Utilization*100, m.OpenRegions, m.Allocations, m.FailedAllocations, m.Commits, m.Rollbacks)
}

// Metrics holds Prometheus instruments shared by arenas, labelled by arena
// name. Instruments are updated by the goroutine that owns each arena and
// may be scraped concurrently.
type Metrics struct {
	usedBytes     *prometheus.GaugeVec
	capacityBytes *prometheus.GaugeVec
	peakBytes     *prometheus.GaugeVec
	openRegions   *prometheus.GaugeVec

	allocationsTotal *prometheus.CounterVec
	failuresTotal    *prometheus.CounterVec
	commitsTotal     *prometheus.CounterVec
	rollbacksTotal   *prometheus.CounterVec
}

// NewMetrics creates the arena instruments and registers them with reg.
// A nil reg creates unregistered instruments.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	labels := []string{"arena"}
	return &Metrics{
		usedBytes: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "arena_used_bytes",
			Help: "Bytes currently handed out by the arena, alignment padding included.",
		}, labels),
		capacityBytes: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "arena_capacity_bytes",
			Help: "Fixed capacity of the arena in bytes.",
		}, labels),
		peakBytes: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "arena_peak_bytes",
			Help: "Highest number of bytes the arena has had in use.",
		}, labels),
		openRegions: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "arena_open_regions",
			Help: "Temporary regions currently open on the arena.",
		}, labels),
		allocationsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "arena_allocations_total",
			Help: "Total number of successful allocations.",
		}, labels),
		failuresTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "arena_allocation_failures_total",
			Help: "Total number of allocations refused because the arena was out of memory.",
		}, labels),
		commitsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "arena_region_commits_total",
			Help: "Total number of temporary regions committed.",
		}, labels),
		rollbacksTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "arena_region_rollbacks_total",
			Help: "Total number of temporary regions rolled back.",
		}, labels),
	}
}

// instruments are the label-bound children used by a single arena.
type instruments struct {
	used        prometheus.Gauge
	peak        prometheus.Gauge
	capacity    prometheus.Gauge
	openRegions prometheus.Gauge
	allocations prometheus.Counter
	failures    prometheus.Counter
	commits     prometheus.Counter
	rollbacks   prometheus.Counter
}

func (m *Metrics) forArena(name string, capacity int) *instruments {
	inst := &instruments{
		used:        m.usedBytes.WithLabelValues(name),
		peak:        m.peakBytes.WithLabelValues(name),
		capacity:    m.capacityBytes.WithLabelValues(name),
		openRegions: m.openRegions.WithLabelValues(name),
		allocations: m.allocationsTotal.WithLabelValues(name),
		failures:    m.failuresTotal.WithLabelValues(name),
		commits:     m.commitsTotal.WithLabelValues(name),
		rollbacks:   m.rollbacksTotal.WithLabelValues(name),
	}
	inst.capacity.Set(float64(capacity))
	inst.used.Set(0)
	inst.openRegions.Set(0)
	return inst
}

// observe publishes the arena's gauges.
func (a *Arena) observe() {
	if a.inst == nil {
		return
	}
	a.inst.used.Set(float64(a.used))
	a.inst.peak.Set(float64(a.peak))
	a.inst.capacity.Set(float64(a.capacity))
	a.inst.openRegions.Set(float64(len(a.regions)))
}
