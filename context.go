package goChat

import "context"

type clientIPContextKey struct{}
type sessionAuthContextKey struct{}

// WithClientIP attaches the caller's source address to ctx. The Engine uses
// it for per-IP login throttling and audit records.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithSessionAuth attaches the connection's [SessionAuthInfo] to ctx so audit
// records emitted deeper in a flow carry the acting principal.
func WithSessionAuth(ctx context.Context, auth SessionAuthInfo) context.Context {
	return context.WithValue(ctx, sessionAuthContextKey{}, auth)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func sessionAuthFromContext(ctx context.Context) (SessionAuthInfo, bool) {
	if ctx == nil {
		return SessionAuthInfo{}, false
	}

	auth, ok := ctx.Value(sessionAuthContextKey{}).(SessionAuthInfo)
	return auth, ok
}
