package pak

import (
	"sync/atomic"
)

// MetricsCollector defines an interface for collecting container metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    growCounter   prometheus.Counter
//	    cleanupCounter prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordGrow(from, to int) {
//	    p.growCounter.Inc()
//	}
//
// A collector may be shared by many containers, so implementations must be
// safe for concurrent use.
type MetricsCollector interface {
	// RecordGrow is called after capacity increased from -> to.
	RecordGrow(from, to int)

	// RecordShrink is called after capacity decreased from -> to.
	RecordShrink(from, to int)

	// RecordCleanup is called with the number of elements handed to a
	// cleanup hook by one operation.
	RecordCleanup(n int)

	// RecordAllocFailure is called when an allocation was refused or failed.
	RecordAllocFailure(err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordGrow(int, int)      {}
func (NoopMetricsCollector) RecordShrink(int, int)    {}
func (NoopMetricsCollector) RecordCleanup(int)        {}
func (NoopMetricsCollector) RecordAllocFailure(error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	GrowCount     atomic.Int64
	ShrinkCount   atomic.Int64
	SlotsGrown    atomic.Int64
	SlotsShrunk   atomic.Int64
	CleanupCount  atomic.Int64
	AllocFailures atomic.Int64
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(from, to int) {
	b.GrowCount.Add(1)
	b.SlotsGrown.Add(int64(to - from))
}

// RecordShrink implements MetricsCollector.
func (b *BasicMetricsCollector) RecordShrink(from, to int) {
	b.ShrinkCount.Add(1)
	b.SlotsShrunk.Add(int64(from - to))
}

// RecordCleanup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCleanup(n int) {
	b.CleanupCount.Add(int64(n))
}

// RecordAllocFailure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocFailure(error) {
	b.AllocFailures.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		GrowCount:     b.GrowCount.Load(),
		ShrinkCount:   b.ShrinkCount.Load(),
		SlotsGrown:    b.SlotsGrown.Load(),
		SlotsShrunk:   b.SlotsShrunk.Load(),
		CleanupCount:  b.CleanupCount.Load(),
		AllocFailures: b.AllocFailures.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	GrowCount     int64
	ShrinkCount   int64
	SlotsGrown    int64
	SlotsShrunk   int64
	CleanupCount  int64
	AllocFailures int64
}
