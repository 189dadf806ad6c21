package sketchdex

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSearch is called after each Search.
	// results is the number of matches returned, err is nil if successful.
	RecordSearch(databases, results int, duration time.Duration, err error)

	// RecordGather is called after each Gather with the number of rounds
	// that produced a match.
	RecordGather(matches int, duration time.Duration, err error)

	// RecordOpen is called after a database is opened.
	RecordOpen(items int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordGather(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordOpen(int, time.Duration, error)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchResults    atomic.Int64
	SearchTotalNanos atomic.Int64
	GatherCount      atomic.Int64
	GatherErrors     atomic.Int64
	GatherMatches    atomic.Int64
	GatherTotalNanos atomic.Int64
	OpenCount        atomic.Int64
	OpenErrors       atomic.Int64
	OpenItems        atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_, results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchResults.Add(int64(results))
}

// RecordGather implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGather(matches int, duration time.Duration, err error) {
	b.GatherCount.Add(1)
	b.GatherTotalNanos.Add(duration.Nanoseconds())
	b.GatherMatches.Add(int64(matches))
	if err != nil {
		b.GatherErrors.Add(1)
	}
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(items int, _ time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
		return
	}
	b.OpenItems.Add(int64(items))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:    b.SearchCount.Load(),
		SearchErrors:   b.SearchErrors.Load(),
		SearchResults:  b.SearchResults.Load(),
		SearchAvgNanos: avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		GatherCount:    b.GatherCount.Load(),
		GatherErrors:   b.GatherErrors.Load(),
		GatherMatches:  b.GatherMatches.Load(),
		GatherAvgNanos: avg(b.GatherTotalNanos.Load(), b.GatherCount.Load()),
		OpenCount:      b.OpenCount.Load(),
		OpenErrors:     b.OpenErrors.Load(),
		OpenItems:      b.OpenItems.Load(),
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
	SearchCount    int64
	SearchErrors   int64
	SearchResults  int64
	SearchAvgNanos int64
	GatherCount    int64
	GatherErrors   int64
	GatherMatches  int64
	GatherAvgNanos int64
	OpenCount      int64
	OpenErrors     int64
	OpenItems      int64
}
