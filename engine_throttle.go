package goChat

import (
	"context"
	"fmt"
)

func loginIPKey(ip string) string {
	return "ip:" + ip
}

// LoginFailures returns the current failed-attempt count for the identifier.
// Unknown identifiers return 0 without revealing whether they exist.
func (e *Engine) LoginFailures(ctx context.Context, identifier string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}

	record, err := e.failures.FindByKey(ctx, identifier)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}
	return record.Count, nil
}

// RecordLoginFailure counts one failed attempt against the identifier and,
// when per-IP throttling is enabled and the context carries a client IP,
// against the source address as well. Each write refreshes the failure
// window TTL. Returns the identifier's new count.
//
// The read-modify-write is deliberately non-atomic: a rare concurrent
// failure may undercount by one, which does not compromise coarse-grained
// brute-force deterrence.
func (e *Engine) RecordLoginFailure(ctx context.Context, identifier string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}

	record, err := e.failures.FindByKey(ctx, identifier)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}
	record.Count++
	if _, err := e.failures.Save(ctx, record, e.config.Security.FailureWindow); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}

	if e.config.Security.EnableIPThrottle {
		if ip := clientIPFromContext(ctx); ip != "" {
			if _, err := e.failures.Increment(ctx, loginIPKey(ip), e.config.Security.FailureWindow); err != nil {
				return 0, fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
			}
		}
	}

	e.metricInc(MetricLoginFailureRecorded)
	e.emitAudit(ctx, auditEventLoginFailure, true, "", "", "", nil, func() map[string]string {
		return map[string]string{"identifier": identifier}
	})

	return record.Count, nil
}

// ClearLoginFailures resets the identifier's counter (and its IP counter if
// one is being tracked). Called after successful authentication.
func (e *Engine) ClearLoginFailures(ctx context.Context, identifier string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if err := e.failures.DeleteByKey(ctx, identifier); err != nil {
		return fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}
	if e.config.Security.EnableIPThrottle {
		if ip := clientIPFromContext(ctx); ip != "" {
			if err := e.failures.DeleteByKey(ctx, loginIPKey(ip)); err != nil {
				return fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
			}
		}
	}

	e.metricInc(MetricLoginFailuresCleared)
	e.emitAudit(ctx, auditEventLoginCleared, true, "", "", "", nil, func() map[string]string {
		return map[string]string{"identifier": identifier}
	})

	return nil
}

// EnforceLoginThrottle applies the configured MaxLoginFailures threshold to
// the identifier and, when enabled, to the context's client IP. It only
// reads; recording failures stays with [Engine.RecordLoginFailure] so the
// caller decides what counts as a failed attempt.
func (e *Engine) EnforceLoginThrottle(ctx context.Context, identifier string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if err := e.enforceFailureKey(ctx, identifier); err != nil {
		return err
	}

	if e.config.Security.EnableIPThrottle {
		if ip := clientIPFromContext(ctx); ip != "" {
			if err := e.enforceFailureKey(ctx, loginIPKey(ip)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Engine) enforceFailureKey(ctx context.Context, key string) error {
	record, err := e.failures.FindByKey(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrThrottleUnavailable, err)
	}
	if record.Count >= e.config.Security.MaxLoginFailures {
		e.metricInc(MetricLoginThrottled)
		e.emitAudit(ctx, auditEventLoginThrottled, false, "", "", "", ErrLoginThrottled, func() map[string]string {
			return map[string]string{"key": key}
		})
		return ErrLoginThrottled
	}
	return nil
}
