// Package goChat provides the coordination core of a real-time chat service:
// Redis-leased distributed locks, linearized chat-room membership changes,
// TTL-based login failure throttling, and session-aware reply dispatch for
// persistent client connections.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goChat is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (JoinCommand, SessionAuthInfo, ReplyEnvelope, MetricsSnapshot).
// Transport plumbing, message persistence, and user profiles stay outside the
// module: the Engine talks to them only through the [MembershipStore] and
// [ReplyTransport] interfaces supplied at build time.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or lock key layouts in its
//     public API.
//   - Parse or serialize wire-level chat protocol frames.
//   - Store chat message history or user profile data.
//
// # Concurrency contract
//
// The only shared mutable resource is the external Redis store. Two
// membership mutations for the same room never run their state-changing
// section concurrently; mutations on different rooms are independent.
// Failure-counter updates are a deliberate read-modify-write approximation
// and carry no exclusivity guarantee.
package goChat
