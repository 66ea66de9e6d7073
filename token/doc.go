// Package token issues and validates the signed connection tokens a client
// presents when opening a persistent chat connection.
//
// A token binds a user id and, for streaming connections, a session id.
// Parsing a token yields [ConnectionClaims]; the root package maps those to
// its session auth context.
//
// # What this package must NOT do
//
//   - Import goChat (the root package depends on token, never the reverse).
//   - Contact Redis or any other store; validation is purely cryptographic.
package token
