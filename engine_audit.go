package goChat

import (
	"context"
	"time"
)

const (
	auditEventRoomJoin        = "room_join"
	auditEventRoomLeave       = "room_leave"
	auditEventRoomBusy        = "room_busy"
	auditEventLoginFailure    = "login_failure_recorded"
	auditEventLoginThrottled  = "login_throttled"
	auditEventLoginCleared    = "login_failures_cleared"
	auditEventReplyDispatched = "reply_dispatched"
	auditEventReplyRejected   = "reply_rejected"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	chatRoomID string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}
	if auth, ok := sessionAuthFromContext(ctx); ok {
		if userID == "" {
			userID = auth.UserID
		}
		if sessionID == "" {
			sessionID = auth.SessionID
		}
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		UserID:     userID,
		ChatRoomID: chatRoomID,
		SessionID:  sessionID,
		IP:         clientIPFromContext(ctx),
		Success:    success,
		Metadata:   metadata,
	}
	if err != nil {
		if desc, ok := Describe(err); ok {
			event.Error = desc.Code
			if event.Metadata == nil {
				event.Metadata = map[string]string{}
			}
			event.Metadata["classification"] = desc.Class.String()
		} else {
			event.Error = err.Error()
		}
	}

	e.audit.Emit(ctx, event)
}
