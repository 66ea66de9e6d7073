package goChat

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	// MetricRoomJoin counts successful join operations, idempotent repeats
	// included.
	MetricRoomJoin MetricID = iota
	// MetricRoomLeave counts successful leave operations.
	MetricRoomLeave
	// MetricRoomBusy counts membership operations that failed to acquire the
	// room lock within the configured wait.
	MetricRoomBusy
	// MetricLockAcquired counts granted room locks.
	MetricLockAcquired
	// MetricLockReleased counts room lock releases that actually cleared the
	// lease (stale releases excluded).
	MetricLockReleased
	// MetricLoginFailureRecorded counts recorded failed login attempts.
	MetricLoginFailureRecorded
	// MetricLoginThrottled counts throttle checks that denied a login.
	MetricLoginThrottled
	// MetricLoginFailuresCleared counts counter resets after successful
	// authentication.
	MetricLoginFailuresCleared
	// MetricReplyDispatched counts replies handed to the transport.
	MetricReplyDispatched
	// MetricReplySessionExpired counts replies refused for an expired
	// session.
	MetricReplySessionExpired
	// MetricReplyUnresolved counts replies refused for an unresolvable
	// destination.
	MetricReplyUnresolved
	// MetricLockWaitLatency is the room lock wait histogram.
	MetricLockWaitLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the engine's in-process counters. Counters are padded to a
// cache line so concurrent flows do not false-share.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a Metrics set honoring cfg toggles.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLockWaitHistogram,
	}
}

// Enabled reports whether counters are collected at all.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the lock wait histogram is collected.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments a counter. No-op when disabled.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records one lock wait duration into the histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricLockWaitLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and histogram for export.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricLockWaitLatency].buckets[i])
		}
		s.Histograms[MetricLockWaitLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
