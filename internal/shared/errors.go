package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionNotFound  = fmt.Errorf("session not found")
	ErrScopeRequired    = fmt.Errorf("additional Spotify permissions required")
	ErrTimeout          = fmt.Errorf("operation timed out")
	ErrInvalidState     = fmt.Errorf("invalid state parameter")
	ErrAuthFailed       = fmt.Errorf("authorization failed")

	// Playlist errors
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrNotOwner         = fmt.Errorf("playlist is not owned by the current user")
	ErrNoTracks         = fmt.Errorf("no tracks available")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
