package internaldefs

import (
	goChat "github.com/MrEthical07/goChat"
)

// CounterDef binds a [goChat.MetricID] to its exported name and help text.
type CounterDef struct {
	ID   goChat.MetricID
	Name string
	Help string
}

// HistogramDef binds a histogram metric to its exported name and help text.
type HistogramDef struct {
	ID   goChat.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in catalog order.
var CounterDefs = []CounterDef{
	{ID: goChat.MetricRoomJoin, Name: "gochat_room_join_total", Help: "Successful room join operations."},
	{ID: goChat.MetricRoomLeave, Name: "gochat_room_leave_total", Help: "Successful room leave operations."},
	{ID: goChat.MetricRoomBusy, Name: "gochat_room_busy_total", Help: "Membership operations that timed out waiting for the room lock."},
	{ID: goChat.MetricLockAcquired, Name: "gochat_lock_acquired_total", Help: "Granted room locks."},
	{ID: goChat.MetricLockReleased, Name: "gochat_lock_released_total", Help: "Room lock releases that cleared a live lease."},
	{ID: goChat.MetricLoginFailureRecorded, Name: "gochat_login_failure_recorded_total", Help: "Recorded failed login attempts."},
	{ID: goChat.MetricLoginThrottled, Name: "gochat_login_throttled_total", Help: "Throttle checks that denied a login."},
	{ID: goChat.MetricLoginFailuresCleared, Name: "gochat_login_failures_cleared_total", Help: "Failure counter resets after successful authentication."},
	{ID: goChat.MetricReplyDispatched, Name: "gochat_reply_dispatched_total", Help: "Replies handed to the transport."},
	{ID: goChat.MetricReplySessionExpired, Name: "gochat_reply_session_expired_total", Help: "Replies refused for an expired session."},
	{ID: goChat.MetricReplyUnresolved, Name: "gochat_reply_unresolved_total", Help: "Replies refused for an unresolvable destination."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goChat.MetricLockWaitLatency, Name: "gochat_lock_wait_seconds", Help: "Room lock wait histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the bound labels usable in instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts to the cumulative form
// Prometheus and OTel both expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
