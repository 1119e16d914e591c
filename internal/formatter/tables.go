package formatter

import (
	"strconv"
	"strings"

	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/shared"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// TrackTable lists tracks with rank, id, title, artists, album and duration.
func TrackTable(title string, tracks []models.Track) Table {
	t := Table{Title: title, Headers: []string{"#", "ID", "Title", "Artist", "Album", "Duration"}}
	for i, tr := range tracks {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1), tr.ID, tr.Name, tr.ArtistNames(), tr.Album.Name, shared.FormatDuration(tr.DurationMS),
		})
	}
	return t
}

// ArtistTable lists artists. followed may be nil, in which case the column is omitted.
func ArtistTable(title string, artists []models.Artist, followed func(id string) bool) Table {
	t := Table{Title: title, Headers: []string{"#", "ID", "Name", "Followers", "Genres"}}
	if followed != nil {
		t.Headers = append(t.Headers, "Following")
	}
	for i, a := range artists {
		row := []string{strconv.Itoa(i + 1), a.ID, a.Name, strconv.Itoa(a.Followers.Total), strings.Join(a.Genres, ", ")}
		if followed != nil {
			row = append(row, yesNo(followed(a.ID)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// AlbumTable lists albums with their artists and release date.
func AlbumTable(title string, albums []models.Album) Table {
	t := Table{Title: title, Headers: []string{"ID", "Name", "Artist", "Type", "Released"}}
	for _, a := range albums {
		names := models.Track{Artists: a.Artists}.ArtistNames()
		t.Rows = append(t.Rows, []string{a.ID, a.Name, names, a.AlbumType, a.ReleaseDate})
	}
	return t
}

// PlaylistTable lists playlists with owner, track count and visibility.
func PlaylistTable(title string, playlists []models.Playlist) Table {
	t := Table{Title: title, Headers: []string{"ID", "Name", "Owner", "Tracks", "Visibility", "Collaborative"}}
	for _, p := range playlists {
		owner := p.Owner.DisplayName
		if owner == "" {
			owner = p.Owner.ID
		}
		t.Rows = append(t.Rows, []string{
			p.ID, p.Name, owner, strconv.Itoa(p.Tracks.Total), shared.VisibilityString(p.Public), yesNo(p.Collaborative),
		})
	}
	return t
}

// ShowTable lists podcasts.
func ShowTable(title string, shows []models.Show) Table {
	t := Table{Title: title, Headers: []string{"ID", "Name", "Publisher", "Episodes"}}
	for _, s := range shows {
		t.Rows = append(t.Rows, []string{s.ID, s.Name, s.Publisher, strconv.Itoa(s.TotalEpisodes)})
	}
	return t
}

// EpisodeTable lists podcast episodes.
func EpisodeTable(title string, episodes []models.Episode) Table {
	t := Table{Title: title, Headers: []string{"ID", "Name", "Show", "Released", "Duration"}}
	for _, e := range episodes {
		t.Rows = append(t.Rows, []string{e.ID, e.Name, e.Show.Name, e.ReleaseDate, shared.FormatDuration(e.DurationMS)})
	}
	return t
}

// CountTable lists parallel label/count slices, e.g. a genre chart.
func CountTable(title string, labels []string, counts []int) Table {
	t := Table{Title: title, Headers: []string{"Label", "Count"}}
	for i, l := range labels {
		if i >= len(counts) {
			break
		}
		t.Rows = append(t.Rows, []string{l, strconv.Itoa(counts[i])})
	}
	return t
}

// ProfileTable renders the account as key/value rows.
func ProfileTable(p models.Profile) Table {
	return Table{
		Title:   "Profile",
		Headers: []string{"Field", "Value"},
		Rows: [][]string{
			{"ID", p.ID},
			{"Name", p.DisplayName},
			{"Email", p.Email},
			{"Country", p.Country},
			{"Product", p.Product},
			{"Followers", strconv.Itoa(p.Followers.Total)},
		},
	}
}
