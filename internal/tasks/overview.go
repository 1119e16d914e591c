package tasks

import (
	"context"
	"sync"

	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/overlay"
)

// Dashboard section sizes.
const (
	overviewArtists  = 10
	overviewTracks   = 10
	overviewFollowed = 20
	overviewReleases = 2
	overviewSaved    = 8
)

// Overview is the landing dashboard.
type Overview struct {
	TopArtists    []models.Artist  `json:"top_artists"`
	PrimaryArtist *models.Artist   `json:"primary_artist,omitempty"`
	TopTracks     []models.Track   `json:"top_tracks"`
	PrimaryTrack  *models.Track    `json:"primary_track,omitempty"`
	Genres        *GenreChart      `json:"genre_chart,omitempty"`
	Followed      []models.Artist  `json:"followed_artists"`
	NewReleases   []models.Album   `json:"new_releases"`
	SavedShows    []models.Show    `json:"saved_shows"`
	SavedEpisodes []models.Episode `json:"saved_episodes"`
	Notice        string           `json:"notice,omitempty"`
}

func emptyOverview() *Overview {
	return &Overview{
		TopArtists:    []models.Artist{},
		TopTracks:     []models.Track{},
		Followed:      []models.Artist{},
		NewReleases:   []models.Album{},
		SavedShows:    []models.Show{},
		SavedEpisodes: []models.Episode{},
	}
}

// section is one independently fetched part of the overview. Optional sections degrade to empty on any error.
type section struct {
	phase    Phase
	message  string
	optional bool
	fetch    func(ctx context.Context) error
}

// Overview fetches every dashboard section concurrently.
//
// Top tracks exclude the user's hidden long_term ids. Saved shows and episodes fall back
// to empty lists on failure. Any other gateway failure empties the whole overview and sets Notice.
func (d *Dashboard) Overview(ctx context.Context, progress chan<- ProgressUpdate) (*Overview, error) {
	out := emptyOverview()

	sections := []section{
		{phase: FetchTopArtists, message: "Fetching top artists...", fetch: func(ctx context.Context) error {
			artists, err := d.spotify.TopArtists(ctx, models.LongTerm, overviewArtists)
			out.TopArtists = nonNil(artists)
			return err
		}},
		{phase: FetchTopTracks, message: "Fetching top tracks...", fetch: func(ctx context.Context) error {
			tracks, err := d.spotify.TopTracks(ctx, models.LongTerm, overviewTracks)
			if err != nil {
				return err
			}
			out.TopTracks = nonNil(overlay.Filter(tracks, d.overviewHidden(ctx)))
			return nil
		}},
		{phase: FetchFollowed, message: "Fetching followed artists...", fetch: func(ctx context.Context) error {
			artists, err := d.spotify.FollowedArtists(ctx, overviewFollowed)
			out.Followed = nonNil(artists)
			return err
		}},
		{phase: FetchReleases, message: "Fetching new releases...", fetch: func(ctx context.Context) error {
			albums, err := d.spotify.NewReleases(ctx, overviewReleases)
			out.NewReleases = nonNil(albums)
			return err
		}},
		{phase: FetchShows, message: "Fetching saved shows...", optional: true, fetch: func(ctx context.Context) error {
			page, err := d.spotify.SavedShows(ctx, overviewSaved, 0)
			out.SavedShows = nonNil(page.Items)
			return err
		}},
		{phase: FetchEpisodes, message: "Fetching saved episodes...", optional: true, fetch: func(ctx context.Context) error {
			page, err := d.spotify.SavedEpisodes(ctx, overviewSaved, 0)
			out.SavedEpisodes = nonNil(page.Items)
			return err
		}},
	}

	errs := make([]error, len(sections))
	var wg sync.WaitGroup
	for i, s := range sections {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sendProgress(progress, sectionUpdate(s.phase, i+1, len(sections), s.message))
			if err := s.fetch(ctx); err != nil {
				if s.optional {
					d.logger.Warn("dashboard section unavailable", "section", s.phase, "error", err)
					return
				}
				errs[i] = err
			}
		}()
	}
	wg.Wait()

	var degraded error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !degrade(err) {
			return nil, err
		}
		degraded = err
	}
	if degraded != nil {
		d.logger.Warn("failed to fetch Spotify data for dashboard", "error", degraded)
		empty := emptyOverview()
		empty.Notice = NoticeDashboard
		return empty, nil
	}

	if len(out.TopArtists) > 0 {
		out.PrimaryArtist = &out.TopArtists[0]
	}
	if len(out.TopTracks) > 0 {
		out.PrimaryTrack = &out.TopTracks[0]
	}
	out.Genres = BuildGenreChart(out.TopArtists)
	return out, nil
}

// overviewHidden resolves the user id from the session and reads the long_term set.
// Failures mean nothing is filtered.
func (d *Dashboard) overviewHidden(ctx context.Context) []string {
	if d.overlay == nil {
		return nil
	}
	userID, err := d.userID(ctx)
	if err != nil {
		d.logger.Debug("skipping hidden track filter", "error", err)
		return nil
	}
	return d.hiddenIDs(ctx, userID, models.LongTerm)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
