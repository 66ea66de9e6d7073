package goChat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type sentReply struct {
	destination string
	payload     []byte
	metadata    map[string]string
}

// fakeTransport records outbound sends; fail makes every send error.
type fakeTransport struct {
	mu   sync.Mutex
	sent []sentReply
	fail error
}

func (t *fakeTransport) Send(ctx context.Context, destination string, payload []byte, metadata map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fail != nil {
		return t.fail
	}
	t.sent = append(t.sent, sentReply{
		destination: destination,
		payload:     payload,
		metadata:    metadata,
	})
	return nil
}

func (t *fakeTransport) replies() []sentReply {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]sentReply(nil), t.sent...)
}

func newReplyTestEngine(t *testing.T, cfg Config) (*Engine, *fakeTransport) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	transport := &fakeTransport{}
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithTransport(transport).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return engine, transport
}

func TestDispatchReplyResolvesSessionDestination(t *testing.T) {
	engine, transport := newReplyTestEngine(t, defaultConfig())

	auth := SessionAuthInfo{
		UserID:           "alice",
		SessionID:        "abc123",
		ExpiresAtEpochMs: time.Now().Add(time.Hour).UnixMilli(),
	}
	envelope := ReplyEnvelope{
		Payload:       []byte(`{"ok":true}`),
		CorrelationID: "req-42",
	}

	if err := engine.DispatchReply(context.Background(), auth, envelope); err != nil {
		t.Fatalf("DispatchReply failed: %v", err)
	}

	sent := transport.replies()
	if len(sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sent))
	}
	if sent[0].destination != "/queue/session/abc123/reply" {
		t.Fatalf("unexpected destination %q", sent[0].destination)
	}
	if string(sent[0].payload) != `{"ok":true}` {
		t.Fatalf("unexpected payload %q", sent[0].payload)
	}
	if sent[0].metadata["correlation-id"] != "req-42" {
		t.Fatalf("expected correlation metadata, got %v", sent[0].metadata)
	}

	if engine.MetricsSnapshot().Counters[MetricReplyDispatched] != 1 {
		t.Fatal("expected one dispatched reply counted")
	}
}

func TestDispatchReplyOmitsEmptyCorrelation(t *testing.T) {
	engine, transport := newReplyTestEngine(t, defaultConfig())

	auth := SessionAuthInfo{UserID: "alice", SessionID: "abc123"}
	if err := engine.DispatchReply(context.Background(), auth, ReplyEnvelope{Payload: []byte("x")}); err != nil {
		t.Fatalf("DispatchReply failed: %v", err)
	}

	sent := transport.replies()
	if len(sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sent))
	}
	if sent[0].metadata != nil {
		t.Fatalf("expected no metadata without a correlation id, got %v", sent[0].metadata)
	}
}

func TestDispatchReplyRefusesExpiredSession(t *testing.T) {
	engine, transport := newReplyTestEngine(t, defaultConfig())

	auth := SessionAuthInfo{
		UserID:           "alice",
		SessionID:        "abc123",
		ExpiresAtEpochMs: time.Now().Add(-time.Second).UnixMilli(),
	}

	err := engine.DispatchReply(context.Background(), auth, ReplyEnvelope{Payload: []byte("x")})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if len(transport.replies()) != 0 {
		t.Fatal("nothing may be sent for an expired session")
	}

	desc, ok := Describe(err)
	if !ok || desc.Code != "AUTH_002" || desc.Class != ClassAuth {
		t.Fatalf("unexpected descriptor %+v ok=%v", desc, ok)
	}
	if engine.MetricsSnapshot().Counters[MetricReplySessionExpired] != 1 {
		t.Fatal("expected one expired-session refusal counted")
	}
}

func TestDispatchReplyRequiresSessionForPlaceholder(t *testing.T) {
	engine, transport := newReplyTestEngine(t, defaultConfig())

	// One-shot auth context: no session id to substitute.
	auth := SessionAuthInfo{UserID: "alice"}

	err := engine.DispatchReply(context.Background(), auth, ReplyEnvelope{Payload: []byte("x")})
	if !errors.Is(err, ErrDestinationUnresolved) {
		t.Fatalf("expected ErrDestinationUnresolved, got %v", err)
	}
	if len(transport.replies()) != 0 {
		t.Fatal("nothing may be sent when the destination is unresolved")
	}
	if engine.MetricsSnapshot().Counters[MetricReplyUnresolved] != 1 {
		t.Fatal("expected one unresolved refusal counted")
	}
}

func TestDispatchReplyPlaceholderFreeTemplatePassesThrough(t *testing.T) {
	engine, transport := newReplyTestEngine(t, defaultConfig())

	auth := SessionAuthInfo{UserID: "alice"}
	envelope := ReplyEnvelope{
		Payload:             []byte("x"),
		DestinationTemplate: "/topic/broadcast",
	}

	if err := engine.DispatchReply(context.Background(), auth, envelope); err != nil {
		t.Fatalf("DispatchReply failed: %v", err)
	}

	sent := transport.replies()
	if len(sent) != 1 || sent[0].destination != "/topic/broadcast" {
		t.Fatalf("expected pass-through destination, got %v", sent)
	}
}

func TestDispatchReplyEnvelopeTemplateOverridesDefault(t *testing.T) {
	engine, transport := newReplyTestEngine(t, defaultConfig())

	auth := SessionAuthInfo{UserID: "alice", SessionID: "s-9"}
	envelope := ReplyEnvelope{
		Payload:             []byte("x"),
		DestinationTemplate: "/user/{sessionId}/events",
	}

	if err := engine.DispatchReply(context.Background(), auth, envelope); err != nil {
		t.Fatalf("DispatchReply failed: %v", err)
	}

	sent := transport.replies()
	if len(sent) != 1 || sent[0].destination != "/user/s-9/events" {
		t.Fatalf("expected envelope template to win, got %v", sent)
	}
}

func TestDispatchReplyWithoutTransport(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()
	engine := newTestEngine(t, rdb, defaultConfig())

	auth := SessionAuthInfo{UserID: "alice", SessionID: "abc123"}
	err := engine.DispatchReply(context.Background(), auth, ReplyEnvelope{Payload: []byte("x")})
	if !errors.Is(err, ErrTransportNotConfigured) {
		t.Fatalf("expected ErrTransportNotConfigured, got %v", err)
	}
}

func TestDispatchReplySendFailureSurfaces(t *testing.T) {
	engine, transport := newReplyTestEngine(t, defaultConfig())
	transportErr := errors.New("broker unreachable")
	transport.fail = transportErr

	auth := SessionAuthInfo{UserID: "alice", SessionID: "abc123"}
	err := engine.DispatchReply(context.Background(), auth, ReplyEnvelope{Payload: []byte("x")})
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected the transport error to surface, got %v", err)
	}
	if engine.MetricsSnapshot().Counters[MetricReplyDispatched] != 0 {
		t.Fatal("a failed send must not count as dispatched")
	}
}

func TestResolveDestination(t *testing.T) {
	got, err := resolveDestination("/queue/session/{sessionId}/reply", "abc123")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != "/queue/session/abc123/reply" {
		t.Fatalf("unexpected destination %q", got)
	}

	if _, err := resolveDestination("/queue/session/{sessionId}/reply", ""); !errors.Is(err, ErrDestinationUnresolved) {
		t.Fatalf("expected ErrDestinationUnresolved, got %v", err)
	}

	got, err = resolveDestination("/topic/plain", "")
	if err != nil || got != "/topic/plain" {
		t.Fatalf("expected pass-through, got %q %v", got, err)
	}
}

func TestSessionAuthInfoExpiry(t *testing.T) {
	now := time.Now()

	var auth SessionAuthInfo
	if auth.Expired(now) {
		t.Fatal("zero expiry must never expire")
	}
	if auth.Persistent() {
		t.Fatal("empty session id is not persistent")
	}

	auth = SessionAuthInfo{SessionID: "s", ExpiresAtEpochMs: now.Add(time.Minute).UnixMilli()}
	if auth.Expired(now) {
		t.Fatal("future expiry must not report expired")
	}
	if !auth.Expired(now.Add(2 * time.Minute)) {
		t.Fatal("past expiry must report expired")
	}
	if !auth.Persistent() {
		t.Fatal("session-bound context is persistent")
	}
}
