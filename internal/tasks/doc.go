// Package tasks composes gateway reads and the exclusion overlay into the views the CLI renders.
//
// # Views
//
// [Dashboard] exposes one method per view:
//
//  1. [Dashboard.Overview] : top artists, visible top tracks, genre chart, followed artists,
//     new releases and saved podcasts, fetched concurrently
//  2. [Dashboard.TopTracks] : visible and hidden top tracks for every time range
//  3. [Dashboard.TopArtists] : top artists for every time range with follow state
//  4. [Dashboard.Library] : every playlist the user has
//
// # Gateway Failures
//
// Unauthorized failures are always returned so the caller can prompt for login.
// Other gateway failures degrade a view to empty sections with a Notice set, the way
// the dashboard pages render a flash message instead of an error page.
//
// # Progress Reporting
//
// Long operations accept an optional progress channel. Sends never block: updates are
// dropped when the channel is full.
//
// # Writes
//
// Playlist creation and the rename/describe/collaborative operations check ownership
// against [services.Spotify.CurrentUserID] and clear the user's cached reads afterwards.
package tasks
