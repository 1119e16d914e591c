// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/services"
)

// MockSpotify is a test double for [services.Spotify].
//
// Listings are served from the exported fields. Errs maps an operation name
// (e.g. "TopTracks") to the error it returns. Every call is recorded in order.
type MockSpotify struct {
	mu sync.Mutex

	UserID        string
	ProfileData   models.Profile
	Tracks        map[models.TimeRange][]models.Track
	Artists       map[models.TimeRange][]models.Artist
	Followed      []models.Artist
	FollowedIDs   map[string]struct{}
	Releases      []models.Album
	Shows         []models.Show
	Episodes      []models.Episode
	Playlists     []models.Playlist
	SearchResults []models.Track
	Errs          map[string]error

	Calls   []string
	Created []models.Playlist
	Added   map[string][]string
	Updates map[string]map[string]any
	Cleared int
}

func NewMockSpotify(userID string) *MockSpotify {
	return &MockSpotify{
		UserID:      userID,
		Tracks:      map[models.TimeRange][]models.Track{},
		Artists:     map[models.TimeRange][]models.Artist{},
		FollowedIDs: map[string]struct{}{},
		Errs:        map[string]error{},
		Added:       map[string][]string{},
		Updates:     map[string]map[string]any{},
	}
}

func (m *MockSpotify) record(op string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := op
	if len(args) > 0 {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		call += "(" + strings.Join(parts, ",") + ")"
	}
	m.Calls = append(m.Calls, call)
	return m.Errs[op]
}

// Called reports how many recorded calls start with prefix.
func (m *MockSpotify) Called(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (m *MockSpotify) CurrentUserID(ctx context.Context) (string, error) {
	if err := m.record("CurrentUserID"); err != nil {
		return "", err
	}
	return m.UserID, nil
}

func (m *MockSpotify) Profile(ctx context.Context) (models.Profile, error) {
	if err := m.record("Profile"); err != nil {
		return models.Profile{}, err
	}
	return m.ProfileData, nil
}

func (m *MockSpotify) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if err := m.record("SearchTracks", query, limit); err != nil {
		return nil, err
	}
	return head(m.SearchResults, limit), nil
}

func (m *MockSpotify) NewReleases(ctx context.Context, limit int) ([]models.Album, error) {
	if err := m.record("NewReleases", limit); err != nil {
		return nil, err
	}
	return head(m.Releases, limit), nil
}

func (m *MockSpotify) FollowedArtists(ctx context.Context, limit int) ([]models.Artist, error) {
	if err := m.record("FollowedArtists", limit); err != nil {
		return nil, err
	}
	return head(m.Followed, limit), nil
}

func (m *MockSpotify) TopArtists(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Artist, error) {
	if err := m.record("TopArtists", timeRange, limit); err != nil {
		return nil, err
	}
	return head(m.Artists[timeRange], limit), nil
}

func (m *MockSpotify) TopTracks(ctx context.Context, timeRange models.TimeRange, limit int) ([]models.Track, error) {
	if err := m.record("TopTracks", timeRange, limit); err != nil {
		return nil, err
	}
	return head(m.Tracks[timeRange], limit), nil
}

func (m *MockSpotify) SavedShows(ctx context.Context, limit, offset int) (models.Page[models.Show], error) {
	if err := m.record("SavedShows", limit, offset); err != nil {
		return models.Page[models.Show]{}, err
	}
	return page(m.Shows, limit, offset), nil
}

func (m *MockSpotify) SavedEpisodes(ctx context.Context, limit, offset int) (models.Page[models.Episode], error) {
	if err := m.record("SavedEpisodes", limit, offset); err != nil {
		return models.Page[models.Episode]{}, err
	}
	return page(m.Episodes, limit, offset), nil
}

func (m *MockSpotify) SearchShows(ctx context.Context, query string, limit, offset int) (models.Page[models.Show], error) {
	if err := m.record("SearchShows", query, limit, offset); err != nil {
		return models.Page[models.Show]{}, err
	}
	return page(m.Shows, limit, offset), nil
}

func (m *MockSpotify) SearchEpisodes(ctx context.Context, query string, limit, offset int) (models.Page[models.Episode], error) {
	if err := m.record("SearchEpisodes", query, limit, offset); err != nil {
		return models.Page[models.Episode]{}, err
	}
	return page(m.Episodes, limit, offset), nil
}

func (m *MockSpotify) Show(ctx context.Context, id string) (models.Show, error) {
	if err := m.record("Show", id); err != nil {
		return models.Show{}, err
	}
	for _, s := range m.Shows {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Show{ID: id}, nil
}

func (m *MockSpotify) Episode(ctx context.Context, id string) (models.Episode, error) {
	if err := m.record("Episode", id); err != nil {
		return models.Episode{}, err
	}
	for _, e := range m.Episodes {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Episode{ID: id}, nil
}

func (m *MockSpotify) SaveShows(ctx context.Context, ids []string) error {
	return m.record("SaveShows", strings.Join(ids, " "))
}

func (m *MockSpotify) RemoveShows(ctx context.Context, ids []string) error {
	return m.record("RemoveShows", strings.Join(ids, " "))
}

func (m *MockSpotify) SaveEpisodes(ctx context.Context, ids []string) error {
	return m.record("SaveEpisodes", strings.Join(ids, " "))
}

func (m *MockSpotify) RemoveEpisodes(ctx context.Context, ids []string) error {
	return m.record("RemoveEpisodes", strings.Join(ids, " "))
}

func (m *MockSpotify) FollowedArtistIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if err := m.record("FollowedArtistIDs", strings.Join(ids, " ")); err != nil {
		return nil, err
	}
	out := map[string]struct{}{}
	for _, id := range ids {
		if _, ok := m.FollowedIDs[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (m *MockSpotify) FollowArtists(ctx context.Context, ids []string) error {
	return m.record("FollowArtists", strings.Join(ids, " "))
}

func (m *MockSpotify) UnfollowArtists(ctx context.Context, ids []string) error {
	return m.record("UnfollowArtists", strings.Join(ids, " "))
}

func (m *MockSpotify) UserPlaylists(ctx context.Context, limit, offset int) (models.Page[models.Playlist], error) {
	if err := m.record("UserPlaylists", limit, offset); err != nil {
		return models.Page[models.Playlist]{}, err
	}
	return page(m.Playlists, limit, offset), nil
}

func (m *MockSpotify) UserPlaylistsAll(ctx context.Context, skipCache bool) ([]models.Playlist, error) {
	if err := m.record("UserPlaylistsAll", skipCache); err != nil {
		return nil, err
	}
	return append([]models.Playlist{}, m.Playlists...), nil
}

func (m *MockSpotify) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (models.Playlist, error) {
	if err := m.record("CreatePlaylist", userID, name, public); err != nil {
		return models.Playlist{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	pl := models.Playlist{
		ID:          fmt.Sprintf("pl%d", len(m.Created)+1),
		Name:        name,
		Description: description,
		Public:      public,
		Owner:       models.Owner{ID: userID},
	}
	m.Created = append(m.Created, pl)
	return pl, nil
}

func (m *MockSpotify) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	if err := m.record("AddTracksToPlaylist", playlistID, len(uris)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Added[playlistID] = append(m.Added[playlistID], uris...)
	return nil
}

func (m *MockSpotify) update(op, playlistID, field string, value any) error {
	if err := m.record(op, playlistID, value); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Updates[playlistID] == nil {
		m.Updates[playlistID] = map[string]any{}
	}
	m.Updates[playlistID][field] = value
	return nil
}

func (m *MockSpotify) UpdatePlaylistName(ctx context.Context, playlistID, name string) error {
	return m.update("UpdatePlaylistName", playlistID, "name", name)
}

func (m *MockSpotify) UpdatePlaylistDescription(ctx context.Context, playlistID, description string) error {
	return m.update("UpdatePlaylistDescription", playlistID, "description", description)
}

func (m *MockSpotify) UpdatePlaylistCollaborative(ctx context.Context, playlistID string, collaborative bool) error {
	return m.update("UpdatePlaylistCollaborative", playlistID, "collaborative", collaborative)
}

func (m *MockSpotify) ClearUserCache(ctx context.Context) (int, error) {
	if err := m.record("ClearUserCache"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cleared++
	return 1, nil
}

var _ services.Spotify = (*MockSpotify)(nil)

func head[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}
	return append([]T{}, items...)
}

func page[T any](items []T, limit, offset int) models.Page[T] {
	p := models.Page[T]{Items: []T{}, Total: len(items), Limit: limit, Offset: offset}
	if offset < len(items) {
		p.Items = head(items[offset:], limit)
	}
	return p
}

// MemorySession is a [services.Session] whose Clear can be observed.
type MemorySession struct {
	*services.MemorySession
	Clears int
}

func NewMemorySession(userID string, creds services.Credentials) *MemorySession {
	s := &MemorySession{MemorySession: services.NewMemorySession(creds)}
	s.SetUserID(userID)
	return s
}

func (s *MemorySession) Clear() error {
	s.Clears++
	return s.MemorySession.Clear()
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MustReadFile returns the contents of path or fails the test.
func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
