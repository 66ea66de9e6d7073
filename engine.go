package goChat

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goChat/lock"
	"github.com/MrEthical07/goChat/token"
)

// Engine is the coordination core of the chat service. Build one through
// [Builder.Build]; after that every method is safe for concurrent use. The
// Engine holds no in-process mutable chat state — each operation is stateless
// given the external Redis store.
type Engine struct {
	config       Config
	locks        *lock.Manager
	members      MembershipStore
	failures     *failureCounterStore
	transport    ReplyTransport
	tokenManager *token.Manager
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close flushes the audit dispatcher. Redis and transport lifetimes belong to
// the caller that supplied them.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded under
// backpressure since the engine was built.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine's counters for export.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

// AuthenticateConnection validates a raw connection token and returns the
// session auth context for the connection. Tokens carrying a session id bind
// the principal to a persistent connection; the claim expiry becomes the
// context's independent expiry.
func (e *Engine) AuthenticateConnection(ctx context.Context, rawToken string) (SessionAuthInfo, error) {
	if e == nil {
		return SessionAuthInfo{}, ErrEngineNotReady
	}
	if e.tokenManager == nil {
		return SessionAuthInfo{}, ErrTokenManagerNotConfigured
	}

	claims, err := e.tokenManager.Parse(rawToken)
	if err != nil {
		return SessionAuthInfo{}, fmt.Errorf("%w: %v", ErrConnectionTokenInvalid, err)
	}

	auth := SessionAuthInfo{
		UserID:    claims.UID,
		SessionID: claims.SID,
	}
	// Only persistent connections expire independently of the credential.
	if claims.SID != "" && claims.ExpiresAt != nil {
		auth.ExpiresAtEpochMs = claims.ExpiresAt.Time.UnixMilli()
	}

	return auth, nil
}
