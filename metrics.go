package hashwork

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordHash is called after a synchronous hash operation.
	// n is the number of input bytes consumed; err is nil on success.
	RecordHash(algorithm string, n int64, duration time.Duration, err error)

	// RecordOffload is called after an offloaded task settles (or fails to
	// dispatch). duration covers dispatch through settlement.
	RecordOffload(method string, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordHash(string, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordOffload(string, time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	HashCount         atomic.Int64
	HashErrors        atomic.Int64
	HashBytes         atomic.Int64
	HashTotalNanos    atomic.Int64
	OffloadCount      atomic.Int64
	OffloadErrors     atomic.Int64
	OffloadTotalNanos atomic.Int64
}

func (c *BasicMetricsCollector) RecordHash(_ string, n int64, d time.Duration, err error) {
	c.HashCount.Add(1)
	c.HashBytes.Add(n)
	c.HashTotalNanos.Add(int64(d))
	if err != nil {
		c.HashErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordOffload(_ string, d time.Duration, err error) {
	c.OffloadCount.Add(1)
	c.OffloadTotalNanos.Add(int64(d))
	if err != nil {
		c.OffloadErrors.Add(1)
	}
}
