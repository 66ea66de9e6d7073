package goChat

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const sessionPlaceholder = "{sessionId}"

// DispatchReply routes an asynchronous reply back to the connection that
// triggered it.
//
// The session's liveness is validated first: an auth context whose expiry
// has passed is refused with [ErrSessionExpired] and nothing is sent. The
// destination is then resolved from the envelope's template (or the
// configured default) by substituting the live connection's session id for
// the {sessionId} placeholder; a template without the placeholder passes
// through unchanged. A non-empty correlation id is attached as transport
// metadata so the client can match the reply to its request. The envelope's
// RequestDestination is recorded in audit only and never routes.
func (e *Engine) DispatchReply(ctx context.Context, auth SessionAuthInfo, envelope ReplyEnvelope) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.transport == nil {
		return ErrTransportNotConfigured
	}

	if auth.Expired(time.Now()) {
		e.metricInc(MetricReplySessionExpired)
		e.emitReplyRejected(ctx, auth, envelope, ErrSessionExpired)
		return ErrSessionExpired
	}

	template := envelope.DestinationTemplate
	if template == "" {
		template = e.config.Reply.DefaultDestinationTemplate
	}

	destination, err := resolveDestination(template, auth.SessionID)
	if err != nil {
		e.metricInc(MetricReplyUnresolved)
		e.emitReplyRejected(ctx, auth, envelope, err)
		return err
	}

	var metadata map[string]string
	if envelope.CorrelationID != "" {
		metadata = map[string]string{
			e.config.Reply.CorrelationMetadataKey: envelope.CorrelationID,
		}
	}

	if err := e.transport.Send(ctx, destination, envelope.Payload, metadata); err != nil {
		e.emitReplyRejected(ctx, auth, envelope, err)
		return fmt.Errorf("reply send to %s: %w", destination, err)
	}

	e.metricInc(MetricReplyDispatched)
	e.emitAudit(ctx, auditEventReplyDispatched, true, auth.UserID, "", auth.SessionID, nil, func() map[string]string {
		md := map[string]string{"destination": destination}
		if envelope.RequestDestination != "" {
			md["request_destination"] = envelope.RequestDestination
		}
		if envelope.CorrelationID != "" {
			md["correlation_id"] = envelope.CorrelationID
		}
		return md
	})

	return nil
}

// resolveDestination substitutes the session id into the template. Templates
// carrying the placeholder require a session-bound connection; resolution
// failing loudly here is what keeps replies from being silently dropped.
func resolveDestination(template, sessionID string) (string, error) {
	if !strings.Contains(template, sessionPlaceholder) {
		return template, nil
	}
	if sessionID == "" {
		return "", fmt.Errorf("%w: template %q needs a session-bound connection", ErrDestinationUnresolved, template)
	}
	return strings.ReplaceAll(template, sessionPlaceholder, sessionID), nil
}

func (e *Engine) emitReplyRejected(ctx context.Context, auth SessionAuthInfo, envelope ReplyEnvelope, err error) {
	e.emitAudit(ctx, auditEventReplyRejected, false, auth.UserID, "", auth.SessionID, err, func() map[string]string {
		md := map[string]string{}
		if envelope.RequestDestination != "" {
			md["request_destination"] = envelope.RequestDestination
		}
		if envelope.CorrelationID != "" {
			md["correlation_id"] = envelope.CorrelationID
		}
		return md
	})
}
