package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotilytics/internal/cache"
	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/shared"
	"golang.org/x/oauth2"
)

const (
	SpotifyAuthURL  = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"
	SpotifyAPIURL   = "https://api.spotify.com/v1"

	containsChunkSize    = 50
	libraryChunkSize     = 50
	playlistAddChunkSize = 100
	playlistPageSize     = 50
)

// Scopes requested at login.
var Scopes = []string{
	"user-read-email",
	"user-read-private",
	"user-top-read",
	"user-follow-read",
	"user-follow-modify",
	"user-library-read",
	"user-library-modify",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-private",
	"playlist-modify-public",
}

// Options configures a [SpotifyClient]. Zero values select production endpoints and defaults.
type Options struct {
	APIURL     string
	AuthURL    string
	TokenURL   string
	HTTPClient *http.Client
	RateLimit  float64
	Cache      *cache.Gateway
	CacheTTL   time.Duration
	Logger     *log.Logger
}

// OAuthConfig builds the OAuth2 configuration for creds. Client authentication uses HTTP Basic.
func OAuthConfig(creds shared.SpotifyConfig, authURL, tokenURL string) *oauth2.Config {
	if authURL == "" {
		authURL = SpotifyAuthURL
	}
	if tokenURL == "" {
		tokenURL = SpotifyTokenURL
	}
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// SpotifyClient is the per-session gateway to the Web API. Reads are cached per user.
type SpotifyClient struct {
	session Session
	tokens  *TokenManager
	exec    *Executor
	cache   *cache.Gateway
	ttl     time.Duration
	logger  *log.Logger
}

// NewSpotifyClient wires a token manager, executor and cache for session.
func NewSpotifyClient(creds shared.SpotifyConfig, session Session, opts Options) (*SpotifyClient, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: session is required", shared.ErrInvalidInput)
	}

	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = SpotifyAPIURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(5*time.Second, 5*time.Second)
	}

	config := OAuthConfig(creds, opts.AuthURL, opts.TokenURL)
	return &SpotifyClient{
		session: session,
		tokens:  NewTokenManager(config, session, httpClient, opts.Logger),
		exec:    NewExecutor(apiURL, httpClient, NewLimiter(opts.RateLimit), opts.Logger),
		cache:   opts.Cache,
		ttl:     opts.CacheTTL,
		logger:  shared.ComponentLogger(opts.Logger, "spotify"),
	}, nil
}

// Tokens exposes the token manager for the login flow.
func (c *SpotifyClient) Tokens() *TokenManager { return c.tokens }

// Session returns the session the client operates on.
func (c *SpotifyClient) Session() Session { return c.session }

func (c *SpotifyClient) call(ctx context.Context, req Request) ([]byte, error) {
	token, err := c.tokens.EnsureValidToken(ctx)
	if err != nil {
		return nil, err
	}
	req.Token = token
	return c.exec.Do(ctx, req)
}

func fetchJSON[T any](ctx context.Context, c *SpotifyClient, req Request) (T, error) {
	raw, err := c.call(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](raw)
}

// cached runs produce through the cache under the current user's namespace.
func cached[T any](ctx context.Context, c *SpotifyClient, parts []any, produce func(context.Context) (T, error)) (T, error) {
	userID, err := c.cacheUserID(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return cache.Fetch(ctx, c.cache, userID, parts, c.ttl, produce)
}

// cacheUserID resolves the cache namespace. Auth and context failures are returned so the
// read does not repeat them; any other failure yields "" and the read bypasses the cache.
func (c *SpotifyClient) cacheUserID(ctx context.Context) (string, error) {
	if c.cache == nil {
		return "", nil
	}
	id, err := c.CurrentUserID(ctx)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, ErrUnauthorized), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "", err
	}
	c.logger.Debug("bypassing cache without user id", "err", err)
	return "", nil
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	return q
}

// CurrentUserID returns the session's user id, resolving it through /me on first use.
func (c *SpotifyClient) CurrentUserID(ctx context.Context) (string, error) {
	if id := c.session.UserID(); id != "" {
		return id, nil
	}

	me, err := fetchJSON[models.Profile](ctx, c, Request{Path: "/me"})
	if err != nil {
		return "", err
	}
	if me.ID == "" {
		return "", gatewayError(0, "could not determine Spotify user id", nil)
	}
	if err := c.session.SetUserID(me.ID); err != nil {
		c.logger.Warn("failed to remember user id", "err", err)
	}
	return me.ID, nil
}

// Profile returns the current user's account.
func (c *SpotifyClient) Profile(ctx context.Context) (models.Profile, error) {
	return cached(ctx, c, []any{"profile"}, func(ctx context.Context) (models.Profile, error) {
		return fetchJSON[models.Profile](ctx, c, Request{Path: "/me"})
	})
}

// SearchTracks searches the catalogue. A blank query returns no results without a request.
func (c *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Track{}, nil
	}

	return cached(ctx, c, []any{"search_tracks", strings.ToLower(query), limit}, func(ctx context.Context) ([]models.Track, error) {
		q := pageQuery(limit, 0)
		q.Set("q", query)
		q.Set("type", "track")

		res, err := fetchJSON[struct {
			Tracks models.Page[models.Track] `json:"tracks"`
		}](ctx, c, Request{Path: "/search", Query: q})
		return nonNil(res.Tracks.Items), err
	})
}

// NewReleases lists recently released albums.
func (c *SpotifyClient) NewReleases(ctx context.Context, limit int) ([]models.Album, error) {
	return cached(ctx, c, []any{"new_releases", limit}, func(ctx context.Context) ([]models.Album, error) {
		res, err := fetchJSON[struct {
			Albums models.Page[models.Album] `json:"albums"`
		}](ctx, c, Request{Path: "/browse/new-releases", Query: pageQuery(limit, 0)})
		return nonNil(res.Albums.Items), err
	})
}

// FollowedArtists lists artists the user follows.
func (c *SpotifyClient) FollowedArtists(ctx context.Context, limit int) ([]models.Artist, error) {
	return cached(ctx, c, []any{"followed_artists", limit}, func(ctx context.Context) ([]models.Artist, error) {
		q := pageQuery(limit, 0)
		q.Set("type", "artist")

		res, err := fetchJSON[struct {
			Artists models.Page[models.Artist] `json:"artists"`
		}](ctx, c, Request{Path: "/me/following", Query: q})
		return nonNil(res.Artists.Items), err
	})
}

// TopArtists returns the user's top artists for timeRange.
func (c *SpotifyClient) TopArtists(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Artist, error) {
	return cached(ctx, c, []any{"top_artists", timeRange, limit}, func(ctx context.Context) ([]models.Artist, error) {
		q := pageQuery(limit, 0)
		q.Set("time_range", string(timeRange))

		res, err := fetchJSON[models.Page[models.Artist]](ctx, c, Request{Path: "/me/top/artists", Query: q})
		return nonNil(res.Items), err
	})
}

// TopTracks returns the user's top tracks for timeRange.
func (c *SpotifyClient) TopTracks(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Track, error) {
	return cached(ctx, c, []any{"top_tracks", timeRange, limit}, func(ctx context.Context) ([]models.Track, error) {
		q := pageQuery(limit, 0)
		q.Set("time_range", string(timeRange))

		res, err := fetchJSON[models.Page[models.Track]](ctx, c, Request{Path: "/me/top/tracks", Query: q})
		return nonNil(res.Items), err
	})
}

// SavedShows returns one page of the user's saved podcasts.
func (c *SpotifyClient) SavedShows(ctx context.Context, limit, offset int) (models.Page[models.Show], error) {
	return cached(ctx, c, []any{"saved_shows", limit, offset}, func(ctx context.Context) (models.Page[models.Show], error) {
		res, err := fetchJSON[models.Page[struct {
			Show models.Show `json:"show"`
		}]](ctx, c, Request{Path: "/me/shows", Query: pageQuery(limit, offset)})
		if err != nil {
			return models.Page[models.Show]{}, err
		}

		page := models.Page[models.Show]{Items: make([]models.Show, 0, len(res.Items)), Total: res.Total, Limit: limit, Offset: offset}
		for _, it := range res.Items {
			page.Items = append(page.Items, it.Show)
		}
		return page, nil
	})
}

// SavedEpisodes returns one page of the user's saved episodes.
func (c *SpotifyClient) SavedEpisodes(ctx context.Context, limit, offset int) (models.Page[models.Episode], error) {
	return cached(ctx, c, []any{"saved_episodes", limit, offset}, func(ctx context.Context) (models.Page[models.Episode], error) {
		res, err := fetchJSON[models.Page[struct {
			Episode models.Episode `json:"episode"`
		}]](ctx, c, Request{Path: "/me/episodes", Query: pageQuery(limit, offset)})
		if err != nil {
			return models.Page[models.Episode]{}, err
		}

		page := models.Page[models.Episode]{Items: make([]models.Episode, 0, len(res.Items)), Total: res.Total, Limit: limit, Offset: offset}
		for _, it := range res.Items {
			page.Items = append(page.Items, it.Episode)
		}
		return page, nil
	})
}

// SearchShows searches podcasts.
func (c *SpotifyClient) SearchShows(ctx context.Context, query string, limit, offset int) (models.Page[models.Show], error) {
	return cached(ctx, c, []any{"search_shows", query, limit, offset}, func(ctx context.Context) (models.Page[models.Show], error) {
		q := pageQuery(limit, offset)
		q.Set("q", query)
		q.Set("type", "show")

		res, err := fetchJSON[struct {
			Shows models.Page[models.Show] `json:"shows"`
		}](ctx, c, Request{Path: "/search", Query: q})
		res.Shows.Items = nonNil(res.Shows.Items)
		return res.Shows, err
	})
}

// SearchEpisodes searches podcast episodes.
func (c *SpotifyClient) SearchEpisodes(ctx context.Context, query string, limit, offset int) (models.Page[models.Episode], error) {
	return cached(ctx, c, []any{"search_episodes", query, limit, offset}, func(ctx context.Context) (models.Page[models.Episode], error) {
		q := pageQuery(limit, offset)
		q.Set("q", query)
		q.Set("type", "episode")

		res, err := fetchJSON[struct {
			Episodes models.Page[models.Episode] `json:"episodes"`
		}](ctx, c, Request{Path: "/search", Query: q})
		res.Episodes.Items = nonNil(res.Episodes.Items)
		return res.Episodes, err
	})
}

// Show fetches one podcast.
func (c *SpotifyClient) Show(ctx context.Context, id string) (models.Show, error) {
	return cached(ctx, c, []any{"get_show", id}, func(ctx context.Context) (models.Show, error) {
		return fetchJSON[models.Show](ctx, c, Request{Path: "/shows/" + url.PathEscape(id)})
	})
}

// Episode fetches one podcast episode.
func (c *SpotifyClient) Episode(ctx context.Context, id string) (models.Episode, error) {
	return cached(ctx, c, []any{"get_episode", id}, func(ctx context.Context) (models.Episode, error) {
		return fetchJSON[models.Episode](ctx, c, Request{Path: "/episodes/" + url.PathEscape(id)})
	})
}

func (c *SpotifyClient) playlistsPage(ctx context.Context, offset, limit int) (models.Page[models.Playlist], error) {
	page, err := fetchJSON[models.Page[models.Playlist]](ctx, c, Request{Path: "/me/playlists", Query: pageQuery(limit, offset)})
	page.Items = nonNil(page.Items)
	return page, err
}

// UserPlaylists returns one page of the user's playlists.
func (c *SpotifyClient) UserPlaylists(ctx context.Context, limit, offset int) (models.Page[models.Playlist], error) {
	return cached(ctx, c, []any{"user_playlists", limit, offset}, func(ctx context.Context) (models.Page[models.Playlist], error) {
		return c.playlistsPage(ctx, offset, limit)
	})
}

// UserPlaylistsAll walks every page of the user's playlists. skipCache drops the stored listing first.
func (c *SpotifyClient) UserPlaylistsAll(ctx context.Context, skipCache bool) ([]models.Playlist, error) {
	if skipCache && c.cache != nil {
		uid, err := c.cacheUserID(ctx)
		if err != nil {
			return nil, err
		}
		if uid != "" {
			if err := c.cache.Invalidate(ctx, uid, "user_playlists_all"); err != nil {
				c.logger.Warn("failed to drop cached playlists", "err", err)
			}
		}
	}

	return cached(ctx, c, []any{"user_playlists_all"}, func(ctx context.Context) ([]models.Playlist, error) {
		return FetchAllPages(ctx, playlistPageSize, c.playlistsPage)
	})
}

// FollowedArtistIDs returns the subset of ids the user follows. Results are not cached.
func (c *SpotifyClient) FollowedArtistIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	ids = shared.UniqueStrings(ids)
	followed := make(map[string]struct{})
	if len(ids) == 0 {
		return followed, nil
	}

	for _, chunk := range Chunk(ids, containsChunkSize) {
		q := url.Values{}
		q.Set("type", "artist")
		q.Set("ids", strings.Join(chunk, ","))

		statuses, err := fetchJSON[[]bool](ctx, c, Request{Path: "/me/following/contains", Query: q})
		if err != nil {
			return nil, err
		}
		for i, id := range chunk {
			if i < len(statuses) && statuses[i] {
				followed[id] = struct{}{}
			}
		}
	}
	return followed, nil
}

// followRequest sends ids in the JSON body, as the following endpoints expect.
func (c *SpotifyClient) followRequest(ctx context.Context, method string, ids []string) error {
	for _, chunk := range Chunk(shared.UniqueStrings(ids), libraryChunkSize) {
		q := url.Values{}
		q.Set("type", "artist")
		if _, err := c.call(ctx, Request{Method: method, Path: "/me/following", Query: q, Body: map[string][]string{"ids": chunk}}); err != nil {
			return err
		}
	}
	return nil
}

// FollowArtists follows every id. An empty list succeeds without a request.
func (c *SpotifyClient) FollowArtists(ctx context.Context, ids []string) error {
	return c.followRequest(ctx, http.MethodPut, ids)
}

// UnfollowArtists unfollows every id. An empty list succeeds without a request.
func (c *SpotifyClient) UnfollowArtists(ctx context.Context, ids []string) error {
	return c.followRequest(ctx, http.MethodDelete, ids)
}

// libraryRequest sends ids as a comma-separated query parameter.
func (c *SpotifyClient) libraryRequest(ctx context.Context, method, path string, ids []string) error {
	for _, chunk := range Chunk(shared.UniqueStrings(ids), libraryChunkSize) {
		q := url.Values{}
		q.Set("ids", strings.Join(chunk, ","))
		if _, err := c.call(ctx, Request{Method: method, Path: path, Query: q}); err != nil {
			return err
		}
	}
	return nil
}

func (c *SpotifyClient) SaveShows(ctx context.Context, ids []string) error {
	return c.libraryRequest(ctx, http.MethodPut, "/me/shows", ids)
}

func (c *SpotifyClient) RemoveShows(ctx context.Context, ids []string) error {
	return c.libraryRequest(ctx, http.MethodDelete, "/me/shows", ids)
}

func (c *SpotifyClient) SaveEpisodes(ctx context.Context, ids []string) error {
	return c.libraryRequest(ctx, http.MethodPut, "/me/episodes", ids)
}

func (c *SpotifyClient) RemoveEpisodes(ctx context.Context, ids []string) error {
	return c.libraryRequest(ctx, http.MethodDelete, "/me/episodes", ids)
}

// CreatePlaylist creates a playlist owned by userID.
func (c *SpotifyClient) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (models.Playlist, error) {
	if userID == "" || strings.TrimSpace(name) == "" {
		return models.Playlist{}, fmt.Errorf("%w: user id and playlist name are required", shared.ErrInvalidInput)
	}

	body := map[string]any{"name": name, "description": description, "public": public}
	p, err := fetchJSON[models.Playlist](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/users/" + url.PathEscape(userID) + "/playlists",
		Body:   body,
	})
	if err != nil {
		return models.Playlist{}, err
	}
	if p.ID == "" {
		return models.Playlist{}, gatewayError(0, "failed to create playlist", nil)
	}
	return p, nil
}

// AddTracksToPlaylist appends uris to a playlist in batches of 100.
func (c *SpotifyClient) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrInvalidInput)
	}
	for _, chunk := range Chunk(shared.UniqueStrings(uris), playlistAddChunkSize) {
		_, err := c.call(ctx, Request{
			Method: http.MethodPost,
			Path:   "/playlists/" + url.PathEscape(playlistID) + "/tracks",
			Body:   map[string][]string{"uris": chunk},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *SpotifyClient) updatePlaylist(ctx context.Context, playlistID string, body map[string]any) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id is required", shared.ErrInvalidInput)
	}
	_, err := c.call(ctx, Request{Method: http.MethodPut, Path: "/playlists/" + url.PathEscape(playlistID), Body: body})
	return err
}

func (c *SpotifyClient) UpdatePlaylistName(ctx context.Context, playlistID, name string) error {
	return c.updatePlaylist(ctx, playlistID, map[string]any{"name": name})
}

func (c *SpotifyClient) UpdatePlaylistDescription(ctx context.Context, playlistID, description string) error {
	return c.updatePlaylist(ctx, playlistID, map[string]any{"description": description})
}

// UpdatePlaylistCollaborative toggles collaboration. Collaborative playlists must be private.
func (c *SpotifyClient) UpdatePlaylistCollaborative(ctx context.Context, playlistID string, collaborative bool) error {
	body := map[string]any{"collaborative": collaborative}
	if collaborative {
		body["public"] = false
	}
	return c.updatePlaylist(ctx, playlistID, body)
}

// ClearUserCache drops every cached response for the current user.
func (c *SpotifyClient) ClearUserCache(ctx context.Context) (int, error) {
	if c.cache == nil {
		return 0, nil
	}
	uid, err := c.CurrentUserID(ctx)
	if err != nil {
		return 0, err
	}
	return c.cache.ClearUser(ctx, uid)
}

// Logout forgets the session's credentials.
func (c *SpotifyClient) Logout() error {
	if err := c.session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// IsUnauthorized reports whether err requires the user to log in again.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || IsInsufficientScope(err)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
