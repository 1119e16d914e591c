package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/shared"
)

// Playlist naming.
const (
	TopTracksPlaylistSize  = 10
	RecommendationsDesc    = "Auto-created from Spotilytics • Your Recommendations"
	recommendationsName    = "Spotilytics Recommendations - %s"
	recommendationsDateFmt = "Jan 02, 2006"
	topTracksPlaylistName  = "Your Top Tracks - %s"
	topTracksPlaylistDesc  = "Auto-created from Spotilytics • %s"
	trackURIPrefix         = "spotify:track:"
)

// PlaylistResult describes a playlist created from a track list.
type PlaylistResult struct {
	Playlist   models.Playlist `json:"playlist"`
	TrackCount int             `json:"track_count"`
}

// TrackURI converts a track id to a Spotify URI.
func TrackURI(id string) string { return trackURIPrefix + id }

// CreateTopTracksPlaylist saves the user's top 10 tracks for tr into a new private playlist
// named after the range label.
func (d *Dashboard) CreateTopTracksPlaylist(ctx context.Context, tr models.TimeRange, progress chan<- ProgressUpdate) (*PlaylistResult, error) {
	if !tr.Valid() {
		return nil, fmt.Errorf("%w: invalid time range %q", shared.ErrInvalidArgument, tr)
	}

	userID, err := d.userID(ctx)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, sectionUpdate(FetchTopTracks, 1, 3, "Fetching top tracks..."))
	tracks, err := d.spotify.TopTracks(ctx, tr, TopTracksPlaylistSize)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w for %s", shared.ErrNoTracks, tr.Label())
	}

	uris := make([]string, 0, len(tracks))
	for _, t := range tracks {
		uris = append(uris, TrackURI(t.ID))
	}

	return d.createWithTracks(ctx, progress, userID,
		fmt.Sprintf(topTracksPlaylistName, tr.Label()),
		fmt.Sprintf(topTracksPlaylistDesc, tr.Label()),
		uris,
	)
}

// CreatePlaylistFromURIs creates a private playlist holding uris.
//
// Blank uris are dropped. A blank name or description falls back to the dated
// recommendations defaults.
func (d *Dashboard) CreatePlaylistFromURIs(ctx context.Context, name, description string, uris []string, progress chan<- ProgressUpdate) (*PlaylistResult, error) {
	cleaned := make([]string, 0, len(uris))
	for _, u := range uris {
		if u = strings.TrimSpace(u); u != "" {
			cleaned = append(cleaned, u)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: no tracks to add to playlist", shared.ErrNoTracks)
	}

	userID, err := d.userID(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf(recommendationsName, d.now().Format(recommendationsDateFmt))
	}
	if strings.TrimSpace(description) == "" {
		description = RecommendationsDesc
	}
	return d.createWithTracks(ctx, progress, userID, name, description, cleaned)
}

func (d *Dashboard) createWithTracks(ctx context.Context, progress chan<- ProgressUpdate, userID, name, description string, uris []string) (*PlaylistResult, error) {
	pl, err := d.spotify.CreatePlaylist(ctx, userID, name, description, false)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, createPlaylistUpdate(2, 3, pl))

	sendProgress(progress, addTracksUpdate(3, 3, len(uris)))
	if err := d.spotify.AddTracksToPlaylist(ctx, pl.ID, uris); err != nil {
		return nil, err
	}

	d.logger.Info("playlist created", "id", pl.ID, "name", pl.Name, "tracks", len(uris))
	return &PlaylistResult{Playlist: pl, TrackCount: len(uris)}, nil
}

// LibraryView lists the user's playlists.
type LibraryView struct {
	Playlists []models.Playlist `json:"playlists"`
	Notice    string            `json:"notice,omitempty"`
}

// Library lists every playlist the user has. refresh bypasses the cached listing.
func (d *Dashboard) Library(ctx context.Context, refresh bool, progress chan<- ProgressUpdate) (*LibraryView, error) {
	sendProgress(progress, sectionUpdate(FetchPlaylists, 1, 1, "Fetching playlists..."))
	playlists, err := d.spotify.UserPlaylistsAll(ctx, refresh)
	if err != nil {
		if degrade(err) {
			d.logger.Warn("failed to fetch Spotify playlists", "error", err)
			return &LibraryView{Playlists: []models.Playlist{}, Notice: NoticePlaylists}, nil
		}
		return nil, err
	}
	return &LibraryView{Playlists: nonNil(playlists)}, nil
}

// ownedPlaylist finds playlistID in the user's library and checks the user owns it.
func (d *Dashboard) ownedPlaylist(ctx context.Context, playlistID string) (models.Playlist, error) {
	if strings.TrimSpace(playlistID) == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	userID, err := d.userID(ctx)
	if err != nil {
		return models.Playlist{}, err
	}

	playlists, err := d.spotify.UserPlaylistsAll(ctx, false)
	if err != nil {
		return models.Playlist{}, err
	}
	for _, pl := range playlists {
		if pl.ID != playlistID {
			continue
		}
		if !pl.OwnedBy(userID) {
			return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrNotOwner, pl.Name)
		}
		return pl, nil
	}
	return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
}

// afterWrite drops the user's cached reads so the change is visible immediately.
func (d *Dashboard) afterWrite(ctx context.Context) {
	if _, err := d.spotify.ClearUserCache(ctx); err != nil {
		d.logger.Warn("failed to clear cache after playlist update", "error", err)
	}
}

// RenamePlaylist renames a playlist the user owns. The name must not be blank.
func (d *Dashboard) RenamePlaylist(ctx context.Context, playlistID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: playlist name cannot be blank", shared.ErrInvalidInput)
	}
	if _, err := d.ownedPlaylist(ctx, playlistID); err != nil {
		return err
	}
	if err := d.spotify.UpdatePlaylistName(ctx, playlistID, name); err != nil {
		return err
	}
	d.afterWrite(ctx)
	return nil
}

// UpdatePlaylistDescription replaces the description of a playlist the user owns.
// An empty description clears it.
func (d *Dashboard) UpdatePlaylistDescription(ctx context.Context, playlistID, description string) error {
	if _, err := d.ownedPlaylist(ctx, playlistID); err != nil {
		return err
	}
	if err := d.spotify.UpdatePlaylistDescription(ctx, playlistID, strings.TrimSpace(description)); err != nil {
		return err
	}
	d.afterWrite(ctx)
	return nil
}

// UpdatePlaylistCollaborative toggles collaboration on a playlist the user owns.
// Collaborative playlists are made private.
func (d *Dashboard) UpdatePlaylistCollaborative(ctx context.Context, playlistID string, collaborative bool) error {
	pl, err := d.ownedPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}
	if pl.Collaborative == collaborative {
		return nil
	}
	if err := d.spotify.UpdatePlaylistCollaborative(ctx, playlistID, collaborative); err != nil {
		return err
	}
	d.afterWrite(ctx)
	return nil
}
