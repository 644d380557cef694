package seqidx

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Implementations are called on the query path and must be cheap and safe
// for concurrent use.
type MetricsCollector interface {
	// RecordOpen is called after each Open.
	RecordOpen(duration time.Duration, err error)

	// RecordFind is called after each Range.Find. rows is the size of the
	// resulting range.
	RecordFind(patternLen int, rows uint64, duration time.Duration)

	// RecordLocate is called after each checkpoint walk with the number of
	// LF steps taken.
	RecordLocate(steps int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)       {}
func (NoopMetricsCollector) RecordFind(int, uint64, time.Duration) {}
func (NoopMetricsCollector) RecordLocate(int)                      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	OpenCount      atomic.Int64
	OpenErrors     atomic.Int64
	FindCount      atomic.Int64
	FindEmpty      atomic.Int64
	FindTotalNanos atomic.Int64
	FindSymbols    atomic.Int64
	LocateCount    atomic.Int64
	LocateSteps    atomic.Int64
	LocateMaxSteps atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(_ time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordFind implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFind(patternLen int, rows uint64, duration time.Duration) {
	b.FindCount.Add(1)
	b.FindSymbols.Add(int64(patternLen))
	b.FindTotalNanos.Add(duration.Nanoseconds())
	if rows == 0 {
		b.FindEmpty.Add(1)
	}
}

// RecordLocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLocate(steps int) {
	b.LocateCount.Add(1)
	b.LocateSteps.Add(int64(steps))
	for {
		cur := b.LocateMaxSteps.Load()
		if int64(steps) <= cur || b.LocateMaxSteps.CompareAndSwap(cur, int64(steps)) {
			return
		}
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:      b.OpenCount.Load(),
		OpenErrors:     b.OpenErrors.Load(),
		FindCount:      b.FindCount.Load(),
		FindEmpty:      b.FindEmpty.Load(),
		FindAvgNanos:   avg(b.FindTotalNanos.Load(), b.FindCount.Load()),
		LocateCount:    b.LocateCount.Load(),
		LocateAvgSteps: avg(b.LocateSteps.Load(), b.LocateCount.Load()),
		LocateMaxSteps: b.LocateMaxSteps.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount      int64
	OpenErrors     int64
	FindCount      int64
	FindEmpty      int64
	FindAvgNanos   int64
	LocateCount    int64
	LocateAvgSteps int64
	LocateMaxSteps int64
}
