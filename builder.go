package goChat

import (
	"errors"

	"github.com/MrEthical07/goChat/lock"
	"github.com/MrEthical07/goChat/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Configure it with the With* chain and call
// Build once; a Builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	members      MembershipStore
	transport    ReplyTransport
	tokenManager *token.Manager
	auditSink    AuditSink

	built bool
}

// New creates a Builder carrying the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the expiring key-value store backing locks, failure
// counters, and the default membership store. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithMembershipStore replaces the default Redis-set membership store with a
// caller-owned implementation.
func (b *Builder) WithMembershipStore(store MembershipStore) *Builder {
	b.members = store
	return b
}

// WithTransport supplies the outbound send primitive used by reply dispatch.
// Optional; without it [Engine.DispatchReply] fails with
// [ErrTransportNotConfigured].
func (b *Builder) WithTransport(transport ReplyTransport) *Builder {
	b.transport = transport
	return b
}

// WithTokenManager supplies the connection token manager used by
// [Engine.AuthenticateConnection]. Optional.
func (b *Builder) WithTokenManager(tm *token.Manager) *Builder {
	b.tokenManager = tm
	return b
}

// WithAuditSink supplies the audit event consumer. Events are dispatched
// asynchronously; enable audit via [AuditConfig].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the stores, and returns the
// Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	members := b.members
	if members == nil {
		members = NewRedisMembershipStore(b.redis, cfg.Membership.RedisPrefix)
	}

	engine := &Engine{
		config:  cfg,
		members: members,
		locks: lock.New(b.redis, lock.Config{
			Prefix:        cfg.Lock.RedisPrefix,
			MinLease:      cfg.Lock.MinLease,
			MaxLease:      cfg.Lock.MaxLease,
			RetryInterval: cfg.Lock.RetryInterval,
		}),
		failures:     newFailureCounterStore(b.redis, cfg.Security.RedisPrefix),
		transport:    b.transport,
		tokenManager: b.tokenManager,
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:      NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}
