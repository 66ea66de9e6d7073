package lock

import "time"

// Token proves ownership of a granted lock. The LockID is required to
// release; the keys record what the lease covers.
type Token struct {
	Keys      []string
	LockID    string
	ExpiresAt time.Time
}

// Expired reports whether the lease has lapsed. Pure time comparison; it
// never contacts storage. A lock is valid iff now < ExpiresAt.
func (t *Token) Expired() bool {
	return t.ExpiredAt(time.Now())
}

// ExpiredAt is Expired against an explicit clock, for callers that batch
// checks under one reading of time.Now.
func (t *Token) ExpiredAt(now time.Time) bool {
	return t == nil || !now.Before(t.ExpiresAt)
}
