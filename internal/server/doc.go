// Package server runs the local HTTP endpoint used by the Spotify login flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// [Logging] and [Recover] are the middleware the login server installs.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the authorization code callback. It validates the state parameter,
// hands the code to an [Exchanger] (the token manager, which stores the credentials in the session),
// and publishes the result through a channel. Only the first callback is processed.
//
// # Login Flow
//
// `spotilytics auth login` binds a [CallbackServer] on the configured host and port, opens the
// consent URL in a browser and blocks in [CallbackServer.Wait] until the callback arrives or
// [DefaultCallbackTimeout] passes.
package server
