package services

import (
	"context"

	"github.com/desertthunder/spotilytics/internal/models"
)

// Spotify is the gateway surface consumed by the task layer. [SpotifyClient] implements it.
type Spotify interface {
	CurrentUserID(ctx context.Context) (string, error)
	Profile(ctx context.Context) (models.Profile, error)

	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
	NewReleases(ctx context.Context, limit int) ([]models.Album, error)
	FollowedArtists(ctx context.Context, limit int) ([]models.Artist, error)
	TopArtists(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Artist, error)
	TopTracks(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Track, error)

	SavedShows(ctx context.Context, limit, offset int) (models.Page[models.Show], error)
	SavedEpisodes(ctx context.Context, limit, offset int) (models.Page[models.Episode], error)
	SearchShows(ctx context.Context, query string, limit, offset int) (models.Page[models.Show], error)
	SearchEpisodes(ctx context.Context, query string, limit, offset int) (models.Page[models.Episode], error)
	Show(ctx context.Context, id string) (models.Show, error)
	Episode(ctx context.Context, id string) (models.Episode, error)
	SaveShows(ctx context.Context, ids []string) error
	RemoveShows(ctx context.Context, ids []string) error
	SaveEpisodes(ctx context.Context, ids []string) error
	RemoveEpisodes(ctx context.Context, ids []string) error

	FollowedArtistIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	FollowArtists(ctx context.Context, ids []string) error
	UnfollowArtists(ctx context.Context, ids []string) error

	UserPlaylists(ctx context.Context, limit, offset int) (models.Page[models.Playlist], error)
	UserPlaylistsAll(ctx context.Context, skipCache bool) ([]models.Playlist, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (models.Playlist, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error
	UpdatePlaylistName(ctx context.Context, playlistID, name string) error
	UpdatePlaylistDescription(ctx context.Context, playlistID, description string) error
	UpdatePlaylistCollaborative(ctx context.Context, playlistID string, collaborative bool) error

	ClearUserCache(ctx context.Context) (int, error)
}

var _ Spotify = (*SpotifyClient)(nil)
