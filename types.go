package goChat

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/MrEthical07/goChat/internal/audit"
)

// JoinCommand is the internal intent value for adding a user to a chat room.
// It carries no derived state; conversion from the inbound request shape is a
// pure field mapping.
type JoinCommand struct {
	ChatRoomID string
	UserID     string
}

// LeaveCommand is the internal intent value for removing a user from a chat
// room.
type LeaveCommand struct {
	ChatRoomID string
	UserID     string
}

// JoinRoomRequest is the inbound boundary shape for a join. Handlers convert
// it with [JoinRoomRequest.Command]; no validation happens at the boundary.
type JoinRoomRequest struct {
	ChatRoomID string `json:"chat_room_id"`
	UserID     string `json:"user_id"`
}

// Command maps the request to its internal command value.
func (r JoinRoomRequest) Command() JoinCommand {
	return JoinCommand{ChatRoomID: r.ChatRoomID, UserID: r.UserID}
}

// LeaveRoomRequest is the inbound boundary shape for a leave.
type LeaveRoomRequest struct {
	ChatRoomID string `json:"chat_room_id"`
	UserID     string `json:"user_id"`
}

// Command maps the request to its internal command value.
func (r LeaveRoomRequest) Command() LeaveCommand {
	return LeaveCommand{ChatRoomID: r.ChatRoomID, UserID: r.UserID}
}

// SessionAuthInfo is the identity of a connection-bound principal.
//
// SessionID is set only for persistent (streaming) connections; one-shot
// request/response interactions leave it empty. ExpiresAtEpochMs is set only
// for persistent connections; zero means the context does not expire
// independently of the upstream credential.
type SessionAuthInfo struct {
	UserID           string
	SessionID        string
	ExpiresAtEpochMs int64
}

// Persistent reports whether the context is bound to a streaming connection.
func (s SessionAuthInfo) Persistent() bool {
	return s.SessionID != ""
}

// Expired reports whether the context carries an expiry that has passed.
// A zero ExpiresAtEpochMs never expires by itself.
func (s SessionAuthInfo) Expired(now time.Time) bool {
	return s.ExpiresAtEpochMs > 0 && now.UnixMilli() >= s.ExpiresAtEpochMs
}

// ReplyEnvelope is constructed by a handler and consumed exactly once by
// [Engine.DispatchReply].
//
// RequestDestination is the inbound path that triggered the reply; it flows
// to audit only and never participates in routing. DestinationTemplate
// overrides the configured default when non-empty.
type ReplyEnvelope struct {
	Payload             []byte
	CorrelationID       string
	RequestDestination  string
	DestinationTemplate string
}

// ReplyTransport is the outbound send primitive supplied by the surrounding
// connection framework. Metadata carries transport-level headers such as the
// correlation id.
type ReplyTransport interface {
	Send(ctx context.Context, destination string, payload []byte, metadata map[string]string) error
}

// MembershipStore persists the member set of each chat room. The Engine
// serializes same-room mutations externally; implementations only need to be
// individually safe for concurrent use.
//
// Add must be a no-op for an existing member and Remove a no-op for a
// non-member so the coordinator's idempotency guarantees hold.
type MembershipStore interface {
	IsMember(ctx context.Context, chatRoomID, userID string) (bool, error)
	Add(ctx context.Context, chatRoomID, userID string) error
	Remove(ctx context.Context, chatRoomID, userID string) error
	Members(ctx context.Context, chatRoomID string) ([]string, error)
}

// FailureRecord is the per-key brute-force counter. A key absent from the
// store is equivalent to Count == 0.
type FailureRecord struct {
	Key   string
	Count int
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
