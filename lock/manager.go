package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotAcquired is the single-attempt contention outcome: at least one
	// key is held under a live lease. Normal, retriable, not a fault.
	ErrNotAcquired = errors.New("lock not acquired")
	// ErrAcquireTimeout is returned when the bounded wait elapses before the
	// keys become free.
	ErrAcquireTimeout = errors.New("lock acquisition timed out")
	// ErrBackendUnavailable wraps Redis failures. It must never be read as a
	// statement about lock ownership.
	ErrBackendUnavailable = errors.New("lock backend unavailable")
	// ErrNoKeys is returned when Acquire is called with an empty key set.
	ErrNoKeys = errors.New("no lock keys given")
)

// The claim is all-or-nothing: if any key exists under a live lease the
// script touches nothing. Redis evaluates scripts atomically, so there is no
// claim-then-rollback window.
const acquireScript = `
for i = 1, #KEYS do
  if redis.call("EXISTS", KEYS[i]) == 1 then
    return 0
  end
end
for i = 1, #KEYS do
  redis.call("SET", KEYS[i], ARGV[1], "PX", ARGV[2])
end
return 1
`

var acquireLua = redis.NewScript(acquireScript)

// Compare-and-delete per key: only entries still holding our lock id are
// cleared, so a lease that expired and was re-acquired is left alone.
const releaseScript = `
local released = 0
for i = 1, #KEYS do
  if redis.call("GET", KEYS[i]) == ARGV[1] then
    redis.call("DEL", KEYS[i])
    released = released + 1
  end
end
return released
`

var releaseLua = redis.NewScript(releaseScript)

// Config holds lock manager tuning parameters.
type Config struct {
	// Prefix namespaces lock keys in Redis. Must be disjoint from every
	// other subsystem sharing the store.
	Prefix string
	// MinLease and MaxLease clamp caller-supplied lease durations.
	MinLease time.Duration
	MaxLease time.Duration
	// RetryInterval is the poll interval while waiting out contention.
	RetryInterval time.Duration
}

// Manager issues and releases leased exclusive locks. Safe for concurrent
// use; each operation is stateless given the external store.
type Manager struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a lock [Manager] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Manager {
	if cfg.Prefix == "" {
		cfg.Prefix = "lk"
	}
	if cfg.MinLease <= 0 {
		cfg.MinLease = 250 * time.Millisecond
	}
	if cfg.MaxLease <= 0 {
		cfg.MaxLease = 30 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 50 * time.Millisecond
	}
	return &Manager{
		redis:  redisClient,
		config: cfg,
	}
}

func (m *Manager) key(k string) string {
	return m.config.Prefix + ":" + k
}

// Acquire claims every key atomically, retrying contention until ctx expires.
// The bounded wait is the caller's responsibility: pass a context with a
// deadline. Contention exhausting the wait yields [ErrAcquireTimeout]; Redis
// failure yields [ErrBackendUnavailable] immediately.
func (m *Manager) Acquire(ctx context.Context, keys []string, lease time.Duration) (*Token, error) {
	token, err := m.AcquireOnce(ctx, keys, lease)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, ErrNotAcquired) {
		return nil, err
	}

	ticker := time.NewTicker(m.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrAcquireTimeout, ctx.Err())
		case <-ticker.C:
			token, err := m.AcquireOnce(ctx, keys, lease)
			if err == nil {
				return token, nil
			}
			if !errors.Is(err, ErrNotAcquired) {
				return nil, err
			}
		}
	}
}

// AcquireOnce makes a single claim attempt with no retry loop.
func (m *Manager) AcquireOnce(ctx context.Context, keys []string, lease time.Duration) (*Token, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	lease = m.clampLease(lease)

	storeKeys := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			return nil, ErrNoKeys
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		storeKeys = append(storeKeys, m.key(k))
	}

	lockID := uuid.NewString()
	// Stamped before the claim, so ExpiresAt never runs past the lease in
	// Redis and Token.Expired errs on the side of "lapsed".
	expiresAt := time.Now().Add(lease)

	claimed, err := acquireLua.Run(ctx, m.redis, storeKeys, lockID, lease.Milliseconds()).Int64()
	if err != nil {
		// A claim cut short by the caller's deadline is an exhausted wait,
		// not a store fault.
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrAcquireTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if claimed != 1 {
		return nil, ErrNotAcquired
	}

	return &Token{
		Keys:      append([]string(nil), keys...),
		LockID:    lockID,
		ExpiresAt: expiresAt,
	}, nil
}

// Release clears each key of the token that still holds its lock id and
// reports whether any key was actually released. A stale or mismatched token
// is an expected race, not an error: the result is (false, nil).
func (m *Manager) Release(ctx context.Context, token *Token) (bool, error) {
	if token == nil || len(token.Keys) == 0 {
		return false, nil
	}

	storeKeys := make([]string, 0, len(token.Keys))
	for _, k := range token.Keys {
		storeKeys = append(storeKeys, m.key(k))
	}

	released, err := releaseLua.Run(ctx, m.redis, storeKeys, token.LockID).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return released > 0, nil
}

func (m *Manager) clampLease(lease time.Duration) time.Duration {
	if lease < m.config.MinLease {
		return m.config.MinLease
	}
	if lease > m.config.MaxLease {
		return m.config.MaxLease
	}
	return lease
}
