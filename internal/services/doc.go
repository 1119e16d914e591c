// Package services is the authenticated gateway to the Spotify Web API.
//
// # Components
//
//   - [TokenManager] keeps the session's access token valid, refreshing it with
//     golang.org/x/oauth2 when it is missing or within [DefaultExpiryMargin] of expiry.
//   - [Executor] sends one JSON request with bounded timeouts and optional
//     golang.org/x/time/rate pacing. It never retries.
//   - [SpotifyClient] exposes the domain operations. Reads go through the
//     cache gateway under the current user's namespace, writes dedupe ids and
//     skip the request entirely for empty input.
//   - [Chunk] and [FetchAllPages] split bulk id lists and walk paginated listings.
//
// # Sessions
//
// Credentials and the resolved user id live behind the [Session] interface.
// [MemorySession] serves tests and single-process use; the repositories package
// provides a SQLite-backed session for the CLI.
//
// # Errors
//
// Every upstream failure is an [*Error]. Use errors.Is with [ErrUnauthorized]
// for missing or rejected credentials and [ErrGateway] for the rest.
// [IsInsufficientScope] detects consent that predates newly required scopes.
//
// Error messages prefer the provider's error_description, then error.message,
// then the HTTP status text.
package services
