package region

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	pathSmall   = "small"
	pathLarge   = "large"
	pathAligned = "aligned"
)

// Metrics holds Prometheus instrumentation shared by any number of pools.
// All methods are safe on a nil *Metrics.
type Metrics struct {
	Allocations    *prometheus.CounterVec
	AllocatedBytes *prometheus.CounterVec
	BlocksAcquired prometheus.Counter
	LargeFrees     prometheus.Counter
	CleanupsRun    *prometheus.CounterVec
	Failures       *prometheus.CounterVec
	Resets         prometheus.Counter
	Destroys       prometheus.Counter
}

// NewMetrics registers the pool metrics with reg under namespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Allocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_allocations_total",
			Help:      "Number of pool allocations by path",
		}, []string{"path"}),
		AllocatedBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_allocated_bytes_total",
			Help:      "Bytes handed out by pools by path",
		}, []string{"path"}),
		BlocksAcquired: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_blocks_acquired_total",
			Help:      "Blocks acquired from the system allocator",
		}),
		LargeFrees: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_large_frees_total",
			Help:      "Large allocations released individually",
		}),
		CleanupsRun: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_cleanups_run_total",
			Help:      "Cleanup handler invocations by handler kind",
		}, []string{"handler"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_failures_total",
			Help:      "Failed pool operations",
		}, []string{"op"}),
		Resets: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_resets_total",
			Help:      "Pool resets",
		}),
		Destroys: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_destroys_total",
			Help:      "Pool destructions",
		}),
	}
}

func (m *Metrics) allocated(path string, n int) {
	if m == nil {
		return
	}
	m.Allocations.WithLabelValues(path).Inc()
	m.AllocatedBytes.WithLabelValues(path).Add(float64(n))
}

func (m *Metrics) blockAcquired() {
	if m == nil {
		return
	}
	m.BlocksAcquired.Inc()
}

func (m *Metrics) largeFreed() {
	if m == nil {
		return
	}
	m.LargeFrees.Inc()
}

func (m *Metrics) cleanupRun(kind string) {
	if m == nil {
		return
	}
	m.CleanupsRun.WithLabelValues(kind).Inc()
}

func (m *Metrics) failure(op string) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(op).Inc()
}

func (m *Metrics) reset() {
	if m == nil {
		return
	}
	m.Resets.Inc()
}

func (m *Metrics) destroyed() {
	if m == nil {
		return
	}
	m.Destroys.Inc()
}
