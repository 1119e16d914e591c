package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/overlay"
	"github.com/desertthunder/spotilytics/internal/services"
	"github.com/desertthunder/spotilytics/internal/shared"
)

// Limits maps each time range to a requested list size. Missing or unsupported
// values normalize to [DefaultLimit].
type Limits map[models.TimeRange]int

func (l Limits) normalized() Limits {
	out := Limits{}
	for _, tr := range models.TimeRanges {
		out[tr] = NormalizeLimit(l[tr])
	}
	return out
}

// TrackRange is one time range of the top tracks view.
type TrackRange struct {
	Range   models.TimeRange `json:"time_range"`
	Label   string           `json:"label"`
	Limit   int              `json:"limit"`
	Visible []models.Track   `json:"tracks"`
	Hidden  []models.Track   `json:"hidden"`
}

// TopTracksView lists visible and hidden top tracks for every time range.
type TopTracksView struct {
	Ranges []TrackRange `json:"ranges"`
	// Missing holds hidden ids that fell outside the candidate window.
	Missing []string `json:"missing,omitempty"`
	Notice  string   `json:"notice,omitempty"`
}

// Range returns the entry for tr.
func (v *TopTracksView) Range(tr models.TimeRange) TrackRange {
	for _, r := range v.Ranges {
		if r.Range == tr {
			return r
		}
	}
	return TrackRange{Range: tr, Label: tr.Label(), Visible: []models.Track{}, Hidden: []models.Track{}}
}

func emptyTrackRanges(limits Limits) []TrackRange {
	out := make([]TrackRange, 0, len(models.TimeRanges))
	for _, tr := range models.TimeRanges {
		out = append(out, TrackRange{Range: tr, Label: tr.Label(), Limit: limits[tr], Visible: []models.Track{}, Hidden: []models.Track{}})
	}
	return out
}

// TopTracks fetches the top tracks for every time range and applies the user's exclusions.
//
// Hidden tracks are resolved from one candidate window per range. Ids outside the window
// are reported in Missing. When a window cannot be fetched every Hidden list is left
// empty and the visible lists are still returned.
func (d *Dashboard) TopTracks(ctx context.Context, limits Limits, progress chan<- ProgressUpdate) (*TopTracksView, error) {
	limits = limits.normalized()
	view := &TopTracksView{Ranges: emptyTrackRanges(limits), Missing: []string{}}

	total := len(models.TimeRanges)
	for i, tr := range models.TimeRanges {
		sendProgress(progress, sectionUpdate(FetchTopTracks, i+1, total, "Fetching top tracks ("+tr.Label()+")..."))
		tracks, err := d.spotify.TopTracks(ctx, tr, limits[tr])
		if err != nil {
			if degrade(err) {
				d.logger.Error("spotify error", "error", err)
				return &TopTracksView{Ranges: emptyTrackRanges(limits), Missing: []string{}, Notice: NoticeTopTracks}, nil
			}
			return nil, err
		}
		view.Ranges[i].Visible = nonNil(tracks)
	}

	userID, err := d.userID(ctx)
	if err != nil {
		d.logger.Debug("skipping hidden tracks", "error", err)
		return view, nil
	}

	var failed bool
	for i, tr := range models.TimeRanges {
		sendProgress(progress, sectionUpdate(FetchHidden, i+1, total, "Resolving hidden tracks ("+tr.Label()+")..."))
		ids := d.hiddenIDs(ctx, userID, tr)
		view.Ranges[i].Visible = overlay.Filter(view.Ranges[i].Visible, ids)
		if failed {
			continue
		}

		m := overlay.MaterializeHidden(ctx, ids, func(ctx context.Context, size int) ([]models.Track, error) {
			return d.spotify.TopTracks(ctx, tr, size)
		})
		if m.Err != nil {
			if services.IsUnauthorized(m.Err) {
				return nil, m.Err
			}
			d.logger.Error("failed to load hidden track details", "error", m.Err)
			failed = true
			continue
		}
		view.Ranges[i].Hidden = m.Hidden
		view.Missing = append(view.Missing, m.Missing...)
	}

	if failed {
		for i := range view.Ranges {
			view.Ranges[i].Hidden = []models.Track{}
		}
		view.Missing = []string{}
	}
	if len(view.Missing) > 0 {
		d.logger.Info("hidden track ids not found in top tracks (may be outside top 50)", "ids", view.Missing)
	}
	return view, nil
}

// ArtistRange is one time range of the top artists view.
type ArtistRange struct {
	Range   models.TimeRange `json:"time_range"`
	Label   string           `json:"label"`
	Limit   int              `json:"limit"`
	Artists []models.Artist  `json:"artists"`
}

// TopArtistsView lists top artists for every time range with the user's follow state.
type TopArtistsView struct {
	Ranges   []ArtistRange       `json:"ranges"`
	Followed map[string]struct{} `json:"-"`
	Notice   string              `json:"notice,omitempty"`
}

// IsFollowed reports whether the user follows artistID.
func (v *TopArtistsView) IsFollowed(artistID string) bool {
	_, ok := v.Followed[artistID]
	return ok
}

func emptyArtistRanges(limits Limits) []ArtistRange {
	out := make([]ArtistRange, 0, len(models.TimeRanges))
	for _, tr := range models.TimeRanges {
		out = append(out, ArtistRange{Range: tr, Label: tr.Label(), Limit: limits[tr], Artists: []models.Artist{}})
	}
	return out
}

// TopArtists fetches the top artists for every time range, then checks follow state
// for the union of their ids in one batched lookup.
//
// When Spotify reports the follow scope is missing the session is cleared and
// [shared.ErrScopeRequired] is returned so the caller can log in again.
func (d *Dashboard) TopArtists(ctx context.Context, limits Limits) (*TopArtistsView, error) {
	limits = limits.normalized()
	view := &TopArtistsView{Ranges: emptyArtistRanges(limits), Followed: map[string]struct{}{}}

	var ids []string
	seen := map[string]struct{}{}
	for i, tr := range models.TimeRanges {
		artists, err := d.spotify.TopArtists(ctx, tr, limits[tr])
		if err != nil {
			return d.topArtistsFailed(err)
		}
		view.Ranges[i].Artists = nonNil(artists)
		for _, a := range artists {
			if a.ID == "" {
				continue
			}
			if _, dup := seen[a.ID]; !dup {
				seen[a.ID] = struct{}{}
				ids = append(ids, a.ID)
			}
		}
	}

	if len(ids) == 0 {
		return view, nil
	}
	followed, err := d.spotify.FollowedArtistIDs(ctx, ids)
	if err != nil {
		return d.topArtistsFailed(err)
	}
	view.Followed = followed
	return view, nil
}

func (d *Dashboard) topArtistsFailed(err error) (*TopArtistsView, error) {
	if services.IsInsufficientScope(err) {
		if d.session != nil {
			if clearErr := d.session.Clear(); clearErr != nil {
				d.logger.Warn("failed to reset session", "error", clearErr)
			}
		}
		return nil, fmt.Errorf("%w: Spotify now needs permission to manage your follows. Please sign in again", shared.ErrScopeRequired)
	}
	if !degrade(err) {
		return nil, err
	}
	d.logger.Warn("failed to fetch Spotify top artists", "error", err)
	limits := Limits{}.normalized()
	return &TopArtistsView{Ranges: emptyArtistRanges(limits), Followed: map[string]struct{}{}, Notice: NoticeTopArtists}, nil
}
