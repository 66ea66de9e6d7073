// Package lock provides leased, multi-key exclusive locks backed by an
// expiring Redis key space.
//
// # Ownership model
//
// A granted lock is a [Token]: the covered keys, a random ownership id, and
// an absolute expiry. Mutual exclusion holds only while the lease does;
// validity must be re-checked with [Token.Expired] before trusting ownership,
// never cached. Passive lease expiry is the backstop against holders that
// crash without releasing.
//
// # Atomicity
//
// Acquisition and release are single Lua scripts, so a multi-key claim is
// all-or-nothing (no orphaned entries on partial contention) and release is
// compare-and-delete (a stale token never clears a lease re-acquired by
// someone else).
//
// # What this package must NOT do
//
//   - Import goChat (the root package depends on lock, never the reverse).
//   - Retry past the caller's context deadline.
//   - Report backend unavailability as "not acquired" or vice versa.
package lock
