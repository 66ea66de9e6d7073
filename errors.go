package goChat

import "errors"

var (
	// ErrInvalidCommand is returned when a membership command is missing a
	// room or user identifier.
	ErrInvalidCommand = errors.New("invalid membership command")
	// ErrRoomBusy is returned when the per-room lock could not be acquired
	// within the configured wait. Callers may retry.
	ErrRoomBusy = errors.New("chat room busy")
	// ErrMembershipUnavailable is returned when the membership store failed
	// after the room lock was granted. The lock is always released first.
	ErrMembershipUnavailable = errors.New("membership store unavailable")
	// ErrLoginThrottled is returned when an identifier or source address has
	// exceeded the configured failed-login budget.
	ErrLoginThrottled = errors.New("login throttled")
	// ErrThrottleUnavailable is returned when the failure counter backend is
	// unreachable. It is never conflated with a throttle decision.
	ErrThrottleUnavailable = errors.New("failure counter backend unavailable")
	// ErrSessionExpired is returned by reply dispatch when the session auth
	// context carries an expiry that has passed. Nothing is sent.
	ErrSessionExpired = errors.New("session expired")
	// ErrDestinationUnresolved is returned when a destination template
	// requires a session identifier the auth context does not carry.
	ErrDestinationUnresolved = errors.New("reply destination unresolved")
	// ErrTransportNotConfigured is returned by reply dispatch when the engine
	// was built without a [ReplyTransport].
	ErrTransportNotConfigured = errors.New("reply transport not configured")
	// ErrTokenManagerNotConfigured is returned by connection authentication
	// when the engine was built without a token manager.
	ErrTokenManagerNotConfigured = errors.New("token manager not configured")
	// ErrConnectionTokenInvalid is returned when a connection token fails
	// signature or claim validation.
	ErrConnectionTokenInvalid = errors.New("invalid connection token")
	// ErrEngineNotReady is returned when an Engine method is invoked on a nil
	// or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// Classification buckets an error for the surrounding reporting pipeline.
type Classification uint8

const (
	// ClassRecoverable marks contention outcomes the caller may retry.
	ClassRecoverable Classification = iota
	// ClassAuth marks conditions visible to the authenticated connection.
	ClassAuth
	// ClassConfig marks programming or configuration errors that fail loudly.
	ClassConfig
	// ClassInfrastructure marks backing-store and transport faults.
	ClassInfrastructure
)

// String returns the classification label used in audit metadata.
func (c Classification) String() string {
	switch c {
	case ClassRecoverable:
		return "recoverable"
	case ClassAuth:
		return "auth"
	case ClassConfig:
		return "config"
	case ClassInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// ErrorDescriptor is the (code, message, classification) triple surfaced to
// the error-reporting pipeline for each engine condition.
type ErrorDescriptor struct {
	Code    string
	Message string
	Class   Classification
}

// The member set is closed: every engine condition maps to exactly one
// descriptor, so the catalog is a constant table rather than dynamic dispatch.
var errorCatalog = []struct {
	err  error
	desc ErrorDescriptor
}{
	{ErrRoomBusy, ErrorDescriptor{Code: "ROOM_001", Message: "Chat room busy", Class: ClassRecoverable}},
	{ErrInvalidCommand, ErrorDescriptor{Code: "ROOM_002", Message: "Invalid membership command", Class: ClassConfig}},
	{ErrMembershipUnavailable, ErrorDescriptor{Code: "INFRA_001", Message: "Membership store unavailable", Class: ClassInfrastructure}},
	{ErrThrottleUnavailable, ErrorDescriptor{Code: "INFRA_002", Message: "Failure counter backend unavailable", Class: ClassInfrastructure}},
	{ErrLoginThrottled, ErrorDescriptor{Code: "AUTH_001", Message: "Too many failed login attempts", Class: ClassAuth}},
	{ErrSessionExpired, ErrorDescriptor{Code: "AUTH_002", Message: "Session expired", Class: ClassAuth}},
	{ErrConnectionTokenInvalid, ErrorDescriptor{Code: "AUTH_003", Message: "Invalid connection token", Class: ClassAuth}},
	{ErrDestinationUnresolved, ErrorDescriptor{Code: "REPLY_001", Message: "Reply destination unresolved", Class: ClassConfig}},
	{ErrTransportNotConfigured, ErrorDescriptor{Code: "REPLY_002", Message: "Reply transport not configured", Class: ClassConfig}},
	{ErrTokenManagerNotConfigured, ErrorDescriptor{Code: "AUTH_004", Message: "Token manager not configured", Class: ClassConfig}},
	{ErrEngineNotReady, ErrorDescriptor{Code: "CORE_001", Message: "Engine not initialized", Class: ClassConfig}},
}

// Describe maps err to its catalog descriptor. Wrapped errors match through
// errors.Is. The second return is false for errors outside the catalog
// (including raw backend errors surfaced from the lock manager).
func Describe(err error) (ErrorDescriptor, bool) {
	if err == nil {
		return ErrorDescriptor{}, false
	}
	for _, entry := range errorCatalog {
		if errors.Is(err, entry.err) {
			return entry.desc, true
		}
	}
	return ErrorDescriptor{}, false
}
