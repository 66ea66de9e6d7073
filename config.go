package goChat

import (
	"errors"
	"strings"
	"time"
)

// Config holds every tunable of the coordination core. Configure it before
// [Builder.Build]; the engine treats it as immutable afterwards.
type Config struct {
	Lock       LockConfig
	Membership MembershipConfig
	Security   SecurityConfig
	Reply      ReplyConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
LOCK CONFIG
====================================
*/

// LockConfig tunes the distributed lock manager. The lock key namespace must
// stay disjoint from the failure-counter and membership namespaces.
type LockConfig struct {
	RedisPrefix   string
	MinLease      time.Duration
	MaxLease      time.Duration
	RetryInterval time.Duration
}

/*
====================================
MEMBERSHIP CONFIG
====================================
*/

// MembershipConfig tunes the room membership coordinator. LockLease bounds
// how long a crashed holder can stall a room; LockWait bounds how long a
// caller blocks before the operation fails with [ErrRoomBusy].
type MembershipConfig struct {
	RedisPrefix string
	LockLease   time.Duration
	LockWait    time.Duration
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig tunes login failure throttling. MaxLoginFailures is the
// threshold applied by [Engine.EnforceLoginThrottle]; the counter primitives
// themselves carry no policy.
type SecurityConfig struct {
	RedisPrefix      string
	EnableIPThrottle bool
	MaxLoginFailures int
	FailureWindow    time.Duration
}

/*
====================================
REPLY CONFIG
====================================
*/

// ReplyConfig tunes reply dispatch for persistent connections.
type ReplyConfig struct {
	// DefaultDestinationTemplate is used when an envelope does not declare
	// its own template. The {sessionId} placeholder is substituted with the
	// live connection's session identifier at dispatch time.
	DefaultDestinationTemplate string
	// CorrelationMetadataKey is the transport metadata key carrying the
	// client-supplied correlation id.
	CorrelationMetadataKey string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig tunes the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events under backpressure instead of blocking the
	// emitting operation. Dropped counts are observable via
	// [Engine.AuditDropped].
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig tunes the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLockWaitHistogram bool
}

func defaultConfig() Config {
	return Config{
		Lock: LockConfig{
			RedisPrefix:   "lk",
			MinLease:      250 * time.Millisecond,
			MaxLease:      30 * time.Second,
			RetryInterval: 50 * time.Millisecond,
		},
		Membership: MembershipConfig{
			RedisPrefix: "rm",
			LockLease:   5 * time.Second,
			LockWait:    2 * time.Second,
		},
		Security: SecurityConfig{
			RedisPrefix:      "lf",
			EnableIPThrottle: false,
			MaxLoginFailures: 5,
			FailureWindow:    15 * time.Minute,
		},
		Reply: ReplyConfig{
			DefaultDestinationTemplate: "/queue/session/{sessionId}/reply",
			CorrelationMetadataKey:     "correlation-id",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All sections are value types with no reference fields today; the copy
	// exists so later additions cannot alias caller-owned memory.
	return cfg
}

// Validate checks cross-field consistency. Build calls it; callers holding a
// hand-assembled Config may call it earlier for better error locality.
func (c Config) Validate() error {
	if c.Lock.RedisPrefix == "" {
		return errors.New("Lock.RedisPrefix must not be empty")
	}
	if c.Security.RedisPrefix == "" {
		return errors.New("Security.RedisPrefix must not be empty")
	}
	if c.Membership.RedisPrefix == "" {
		return errors.New("Membership.RedisPrefix must not be empty")
	}
	if c.Lock.RedisPrefix == c.Security.RedisPrefix ||
		c.Lock.RedisPrefix == c.Membership.RedisPrefix ||
		c.Security.RedisPrefix == c.Membership.RedisPrefix {
		return errors.New("Lock, Membership, and Security redis prefixes must be disjoint")
	}
	if c.Lock.MinLease <= 0 || c.Lock.MaxLease <= 0 {
		return errors.New("lock lease bounds must be positive")
	}
	if c.Lock.MinLease > c.Lock.MaxLease {
		return errors.New("Lock.MinLease must not exceed Lock.MaxLease")
	}
	if c.Lock.RetryInterval <= 0 {
		return errors.New("Lock.RetryInterval must be positive")
	}
	if c.Membership.LockLease <= 0 {
		return errors.New("Membership.LockLease must be positive")
	}
	if c.Membership.LockLease > c.Lock.MaxLease {
		return errors.New("Membership.LockLease must not exceed Lock.MaxLease")
	}
	if c.Membership.LockWait <= 0 {
		return errors.New("Membership.LockWait must be positive")
	}
	if c.Security.MaxLoginFailures <= 0 {
		return errors.New("Security.MaxLoginFailures must be positive")
	}
	if c.Security.FailureWindow <= 0 {
		return errors.New("Security.FailureWindow must be positive")
	}
	if strings.TrimSpace(c.Reply.DefaultDestinationTemplate) == "" {
		return errors.New("Reply.DefaultDestinationTemplate must not be empty")
	}
	if c.Reply.CorrelationMetadataKey == "" {
		return errors.New("Reply.CorrelationMetadataKey must not be empty")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}
	return nil
}
