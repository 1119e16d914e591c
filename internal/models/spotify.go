package models

import "strings"

// Image is an artwork rendition.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// Followers carries a follower count.
type Followers struct {
	Total int `json:"total"`
}

// Artist is a Spotify artist. Genres and Followers are only present on full objects.
type Artist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Genres     []string  `json:"genres,omitempty"`
	Images     []Image   `json:"images,omitempty"`
	Popularity int       `json:"popularity,omitempty"`
	Followers  Followers `json:"followers"`
	URI        string    `json:"uri,omitempty"`
}

func (a Artist) ItemID() string { return a.ID }

// Album is a Spotify album or single.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AlbumType   string   `json:"album_type,omitempty"`
	Artists     []Artist `json:"artists,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	TotalTracks int      `json:"total_tracks,omitempty"`
	Images      []Image  `json:"images,omitempty"`
	URI         string   `json:"uri,omitempty"`
}

func (a Album) ItemID() string { return a.ID }

// Track is a Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists,omitempty"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit,omitempty"`
	Popularity int      `json:"popularity,omitempty"`
	PreviewURL string   `json:"preview_url,omitempty"`
	URI        string   `json:"uri,omitempty"`
}

func (t Track) ItemID() string { return t.ID }

// ArtistNames joins the credited artist names with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Show is a podcast.
type Show struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Publisher     string  `json:"publisher,omitempty"`
	Description   string  `json:"description,omitempty"`
	TotalEpisodes int     `json:"total_episodes,omitempty"`
	Images        []Image `json:"images,omitempty"`
	URI           string  `json:"uri,omitempty"`
}

func (s Show) ItemID() string { return s.ID }

// Episode is a podcast episode.
type Episode struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	DurationMS  int     `json:"duration_ms"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Show        Show    `json:"show"`
	Images      []Image `json:"images,omitempty"`
	URI         string  `json:"uri,omitempty"`
}

func (e Episode) ItemID() string { return e.ID }

// Owner identifies the account owning a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

// PlaylistTracks is the track summary embedded in playlist listings.
type PlaylistTracks struct {
	Total int `json:"total"`
}

// Playlist is a user playlist as listed by /me/playlists or returned on creation.
type Playlist struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Owner         Owner          `json:"owner"`
	Public        bool           `json:"public"`
	Collaborative bool           `json:"collaborative"`
	Tracks        PlaylistTracks `json:"tracks"`
	Images        []Image        `json:"images,omitempty"`
	URI           string         `json:"uri,omitempty"`
}

func (p Playlist) ItemID() string { return p.ID }

// OwnedBy reports whether userID owns the playlist.
func (p Playlist) OwnedBy(userID string) bool {
	return userID != "" && p.Owner.ID == userID
}

// Profile is the current user's account.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	Country     string    `json:"country,omitempty"`
	Product     string    `json:"product,omitempty"`
	Followers   Followers `json:"followers"`
	Images      []Image   `json:"images,omitempty"`
}

// Page is one page of a paginated listing. Total is the provider's reported total, or zero if absent.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}
