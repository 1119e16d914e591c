package tasks

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/overlay"
	"github.com/desertthunder/spotilytics/internal/services"
	"github.com/desertthunder/spotilytics/internal/shared"
	tu "github.com/desertthunder/spotilytics/internal/testing"
)

var (
	errGateway      = &services.Error{Kind: services.KindGateway, Status: 500, Message: "boom"}
	errUnauthorized = &services.Error{Kind: services.KindUnauthorized, Message: "expired"}
	errScope        = &services.Error{Kind: services.KindGateway, Status: 403, Message: "Insufficient client scope"}
)

func tracks(ids ...string) []models.Track {
	out := make([]models.Track, len(ids))
	for i, id := range ids {
		out[i] = models.Track{ID: id, Name: "Track " + id}
	}
	return out
}

func trackIDs(ts []models.Track) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func newDashboard(t *testing.T, mock *tu.MockSpotify) (*Dashboard, *overlay.Overlay, *tu.MemorySession) {
	t.Helper()
	logger := shared.NewLogger(io.Discard)
	o := overlay.New(overlay.NewMemoryStore(), logger)
	session := tu.NewMemorySession(mock.UserID, services.Credentials{AccessToken: "a"})
	return NewDashboard(mock, o, session, logger), o, session
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{10, 10}, {25, 25}, {50, 50},
		{0, 10}, {-1, 10}, {20, 10}, {100, 10},
	}
	for _, tt := range tests {
		if got := NormalizeLimit(tt.in); got != tt.want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBuildGenreChart(t *testing.T) {
	t.Run("No Genres", func(t *testing.T) {
		if chart := BuildGenreChart([]models.Artist{{ID: "a"}}); chart != nil {
			t.Errorf("expected nil chart, got %+v", chart)
		}
	})

	t.Run("Counts Artists Per Genre", func(t *testing.T) {
		artists := []models.Artist{
			{Genres: []string{"Indie Rock", "dream pop"}},
			{Genres: []string{" indie rock ", "shoegaze"}},
			{Genres: []string{"dream pop", "indie rock", ""}},
		}
		chart := BuildGenreChart(artists)
		if chart == nil {
			t.Fatal("expected chart")
		}
		wantLabels := []string{"Indie Rock", "Dream Pop", "Shoegaze"}
		if !slices.Equal(chart.Labels, wantLabels) {
			t.Errorf("labels = %v, want %v", chart.Labels, wantLabels)
		}
		if !slices.Equal(chart.Data, []int{3, 2, 1}) {
			t.Errorf("data = %v", chart.Data)
		}
		if chart.Label != GenreChartLabel {
			t.Errorf("label = %q", chart.Label)
		}
	})

	t.Run("Folds Tail Into Other", func(t *testing.T) {
		var artists []models.Artist
		for _, g := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
			artists = append(artists, models.Artist{Genres: []string{g}})
		}
		artists = append(artists, models.Artist{Genres: []string{"j"}})

		chart := BuildGenreChart(artists)
		if len(chart.Labels) != GenreChartTop+1 {
			t.Fatalf("expected %d labels, got %v", GenreChartTop+1, chart.Labels)
		}
		if chart.Labels[0] != "J" || chart.Data[0] != 2 {
			t.Errorf("expected J first with 2, got %s %d", chart.Labels[0], chart.Data[0])
		}
		last := len(chart.Labels) - 1
		if chart.Labels[last] != GenreChartOther || chart.Data[last] != 2 {
			t.Errorf("expected Other=2, got %s=%d", chart.Labels[last], chart.Data[last])
		}
	})
}

func TestDashboardOverview(t *testing.T) {
	ctx := context.Background()

	seed := func() *tu.MockSpotify {
		mock := tu.NewMockSpotify("alice")
		mock.Artists[models.LongTerm] = []models.Artist{
			{ID: "ar1", Name: "One", Genres: []string{"pop"}},
			{ID: "ar2", Name: "Two", Genres: []string{"pop", "rock"}},
		}
		mock.Tracks[models.LongTerm] = tracks("t1", "t2", "t3")
		mock.Followed = []models.Artist{{ID: "f1"}}
		mock.Releases = []models.Album{{ID: "al1"}, {ID: "al2"}, {ID: "al3"}}
		mock.Shows = []models.Show{{ID: "s1"}}
		mock.Episodes = []models.Episode{{ID: "e1"}}
		return mock
	}

	t.Run("All Sections", func(t *testing.T) {
		mock := seed()
		d, o, _ := newDashboard(t, mock)
		o.Hide(ctx, "alice", models.LongTerm, "t2")

		progress := make(chan ProgressUpdate, 10)
		ov, err := d.Overview(ctx, progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !slices.Equal(trackIDs(ov.TopTracks), []string{"t1", "t3"}) {
			t.Errorf("hidden long_term track should be filtered, got %v", trackIDs(ov.TopTracks))
		}
		if ov.PrimaryArtist == nil || ov.PrimaryArtist.ID != "ar1" {
			t.Errorf("unexpected primary artist %+v", ov.PrimaryArtist)
		}
		if ov.PrimaryTrack == nil || ov.PrimaryTrack.ID != "t1" {
			t.Errorf("unexpected primary track %+v", ov.PrimaryTrack)
		}
		if len(ov.NewReleases) != 2 {
			t.Errorf("expected 2 new releases, got %d", len(ov.NewReleases))
		}
		if ov.Genres == nil || ov.Genres.Labels[0] != "Pop" {
			t.Errorf("unexpected genre chart %+v", ov.Genres)
		}
		if len(ov.SavedShows) != 1 || len(ov.SavedEpisodes) != 1 || ov.Notice != "" {
			t.Errorf("unexpected overview %+v", ov)
		}

		for _, call := range []string{"TopArtists(long_term,10)", "TopTracks(long_term,10)", "FollowedArtists(20)", "NewReleases(2)", "SavedShows(8,0)", "SavedEpisodes(8,0)"} {
			if mock.Called(call) != 1 {
				t.Errorf("expected one %s call, calls: %v", call, mock.Calls)
			}
		}
		if len(progress) != 6 {
			t.Errorf("expected 6 progress updates, got %d", len(progress))
		}
	})

	t.Run("Saved Podcasts Degrade", func(t *testing.T) {
		mock := seed()
		mock.Errs["SavedShows"] = errGateway
		mock.Errs["SavedEpisodes"] = errUnauthorized
		d, _, _ := newDashboard(t, mock)

		ov, err := d.Overview(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ov.SavedShows) != 0 || len(ov.SavedEpisodes) != 0 {
			t.Error("saved podcasts should be empty")
		}
		if len(ov.TopArtists) != 2 || ov.Notice != "" {
			t.Errorf("other sections should load, got %+v", ov)
		}
	})

	t.Run("Gateway Failure Empties Overview", func(t *testing.T) {
		mock := seed()
		mock.Errs["NewReleases"] = errGateway
		d, _, _ := newDashboard(t, mock)

		ov, err := d.Overview(ctx, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ov.Notice != NoticeDashboard {
			t.Errorf("expected notice, got %q", ov.Notice)
		}
		if len(ov.TopArtists) != 0 || ov.PrimaryArtist != nil || ov.Genres != nil {
			t.Errorf("expected empty overview, got %+v", ov)
		}
	})

	t.Run("Unauthorized Wins", func(t *testing.T) {
		mock := seed()
		mock.Errs["NewReleases"] = errGateway
		mock.Errs["FollowedArtists"] = errUnauthorized
		d, _, _ := newDashboard(t, mock)

		if _, err := d.Overview(ctx, nil); !errors.Is(err, services.ErrUnauthorized) {
			t.Errorf("expected unauthorized, got %v", err)
		}
	})
}

func TestDashboardTopTracks(t *testing.T) {
	ctx := context.Background()

	seed := func() *tu.MockSpotify {
		mock := tu.NewMockSpotify("alice")
		window := tracks("a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l")
		for _, tr := range models.TimeRanges {
			mock.Tracks[tr] = window
		}
		return mock
	}

	t.Run("Reports Fetch And Hidden Phases", func(t *testing.T) {
		d, o, _ := newDashboard(t, seed())
		o.Hide(ctx, "alice", models.LongTerm, "b")
		progress := make(chan ProgressUpdate, 10)

		if _, err := d.TopTracks(ctx, nil, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}
		want := []Phase{FetchTopTracks, FetchTopTracks, FetchTopTracks, FetchHidden, FetchHidden, FetchHidden}
		if !slices.Equal(phases, want) {
			t.Errorf("expected %v, got %v", want, phases)
		}
	})

	t.Run("Visible And Hidden", func(t *testing.T) {
		mock := seed()
		d, o, _ := newDashboard(t, mock)
		o.Hide(ctx, "alice", models.ShortTerm, "c")
		o.Hide(ctx, "alice", models.ShortTerm, "a")
		o.Hide(ctx, "alice", models.ShortTerm, "zzz")

		view, err := d.TopTracks(ctx, Limits{models.ShortTerm: 10, models.MediumTerm: 7}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		short := view.Range(models.ShortTerm)
		if short.Limit != 10 || len(short.Visible) != 8 {
			t.Errorf("expected 8 visible of 10, got %d (limit %d)", len(short.Visible), short.Limit)
		}
		if slices.Contains(trackIDs(short.Visible), "a") || slices.Contains(trackIDs(short.Visible), "c") {
			t.Error("hidden tracks should not be visible")
		}
		if !slices.Equal(trackIDs(short.Hidden), []string{"c", "a"}) {
			t.Errorf("hidden should keep exclusion order, got %v", trackIDs(short.Hidden))
		}
		if !slices.Equal(view.Missing, []string{"zzz"}) {
			t.Errorf("expected zzz missing, got %v", view.Missing)
		}

		medium := view.Range(models.MediumTerm)
		if medium.Limit != DefaultLimit || len(medium.Hidden) != 0 {
			t.Errorf("unexpected medium range %+v", medium)
		}
		if mock.Called("TopTracks(short_term,50)") != 1 {
			t.Errorf("expected one candidate window fetch, calls: %v", mock.Calls)
		}
		if mock.Called("TopTracks(medium_term,50)") != 0 {
			t.Error("ranges without hidden ids must not fetch a window")
		}
	})

	t.Run("Gateway Failure", func(t *testing.T) {
		mock := seed()
		mock.Errs["TopTracks"] = errGateway
		d, _, _ := newDashboard(t, mock)

		view, err := d.TopTracks(ctx, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if view.Notice != NoticeTopTracks || len(view.Ranges) != 3 {
			t.Errorf("unexpected view %+v", view)
		}
		for _, r := range view.Ranges {
			if len(r.Visible) != 0 {
				t.Errorf("expected empty ranges, got %v", r.Visible)
			}
		}
	})

	t.Run("Unauthorized", func(t *testing.T) {
		mock := seed()
		mock.Errs["TopTracks"] = errUnauthorized
		d, _, _ := newDashboard(t, mock)

		if _, err := d.TopTracks(ctx, nil, nil); !services.IsUnauthorized(err) {
			t.Errorf("expected unauthorized, got %v", err)
		}
	})

	t.Run("Unknown User Skips Overlay", func(t *testing.T) {
		mock := seed()
		mock.UserID = ""
		d, _, _ := newDashboard(t, mock)

		view, err := d.TopTracks(ctx, nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(view.Range(models.LongTerm).Visible) != 10 {
			t.Error("all tracks should be visible")
		}
	})
}

func TestDashboardTopArtists(t *testing.T) {
	ctx := context.Background()

	seed := func() *tu.MockSpotify {
		mock := tu.NewMockSpotify("alice")
		mock.Artists[models.ShortTerm] = []models.Artist{{ID: "a1"}, {ID: "a2"}}
		mock.Artists[models.MediumTerm] = []models.Artist{{ID: "a2"}, {ID: "a3"}}
		mock.Artists[models.LongTerm] = []models.Artist{{ID: "a1"}}
		mock.FollowedIDs["a3"] = struct{}{}
		return mock
	}

	t.Run("Follow State Over Union", func(t *testing.T) {
		mock := seed()
		d, _, _ := newDashboard(t, mock)

		view, err := d.TopArtists(ctx, Limits{models.LongTerm: 25})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mock.Called("FollowedArtistIDs(a1 a2 a3)") != 1 {
			t.Errorf("expected one deduplicated lookup, calls: %v", mock.Calls)
		}
		if mock.Called("TopArtists(long_term,25)") != 1 {
			t.Errorf("expected long_term limit 25, calls: %v", mock.Calls)
		}
		if !view.IsFollowed("a3") || view.IsFollowed("a1") {
			t.Errorf("unexpected follow state %v", view.Followed)
		}
	})

	t.Run("No Artists", func(t *testing.T) {
		mock := tu.NewMockSpotify("alice")
		d, _, _ := newDashboard(t, mock)

		if _, err := d.TopArtists(ctx, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mock.Called("FollowedArtistIDs") != 0 {
			t.Error("empty id set should not be looked up")
		}
	})

	t.Run("Insufficient Scope Resets Session", func(t *testing.T) {
		mock := seed()
		mock.Errs["FollowedArtistIDs"] = errScope
		d, _, session := newDashboard(t, mock)

		_, err := d.TopArtists(ctx, nil)
		if !errors.Is(err, shared.ErrScopeRequired) {
			t.Fatalf("expected ErrScopeRequired, got %v", err)
		}
		if session.Clears != 1 || session.Credentials().AccessToken != "" {
			t.Error("session should be cleared")
		}
	})

	t.Run("Gateway Failure", func(t *testing.T) {
		mock := seed()
		mock.Errs["TopArtists"] = errGateway
		d, _, _ := newDashboard(t, mock)

		view, err := d.TopArtists(ctx, Limits{models.ShortTerm: 50})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if view.Notice != NoticeTopArtists {
			t.Errorf("expected notice, got %q", view.Notice)
		}
		for _, r := range view.Ranges {
			if r.Limit != DefaultLimit || len(r.Artists) != 0 {
				t.Errorf("unexpected range %+v", r)
			}
		}
	})
}

func TestDashboardHide(t *testing.T) {
	ctx := context.Background()

	t.Run("Hide Unhide", func(t *testing.T) {
		mock := tu.NewMockSpotify("alice")
		d, o, _ := newDashboard(t, mock)

		ok, err := d.Hide(ctx, models.MediumTerm, "t1")
		if err != nil || !ok {
			t.Fatalf("hide failed: %v %v", ok, err)
		}
		ids, _ := o.Hidden(ctx, "alice", models.MediumTerm)
		if !slices.Equal(ids, []string{"t1"}) {
			t.Errorf("unexpected ids %v", ids)
		}

		ok, err = d.Unhide(ctx, models.MediumTerm, "t1")
		if err != nil || !ok {
			t.Fatalf("unhide failed: %v %v", ok, err)
		}
		ids, _ = o.Hidden(ctx, "alice", models.MediumTerm)
		if len(ids) != 0 {
			t.Errorf("expected empty set, got %v", ids)
		}
	})

	t.Run("Cap", func(t *testing.T) {
		d, _, _ := newDashboard(t, tu.NewMockSpotify("alice"))
		for _, id := range []string{"1", "2", "3", "4", "5"} {
			d.Hide(ctx, models.ShortTerm, id)
		}
		if ok, _ := d.Hide(ctx, models.ShortTerm, "6"); ok {
			t.Error("sixth hide should be rejected")
		}
	})

	t.Run("Invalid Range", func(t *testing.T) {
		d, _, _ := newDashboard(t, tu.NewMockSpotify("alice"))
		if _, err := d.Hide(ctx, models.TimeRange("forever"), "t1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("No User", func(t *testing.T) {
		d, _, _ := newDashboard(t, tu.NewMockSpotify(""))
		if _, err := d.Hide(ctx, models.ShortTerm, "t1"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestDashboardPlaylists(t *testing.T) {
	ctx := context.Background()

	t.Run("Create Top Tracks Playlist", func(t *testing.T) {
		mock := tu.NewMockSpotify("alice")
		mock.Tracks[models.ShortTerm] = tracks("a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k")
		d, _, _ := newDashboard(t, mock)

		progress := make(chan ProgressUpdate, 10)
		res, err := d.CreateTopTracksPlaylist(ctx, models.ShortTerm, progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Playlist.Name != "Your Top Tracks - Last 4 Weeks" {
			t.Errorf("unexpected name %q", res.Playlist.Name)
		}
		if res.Playlist.Description != "Auto-created from Spotilytics • Last 4 Weeks" {
			t.Errorf("unexpected description %q", res.Playlist.Description)
		}
		if res.Playlist.Public || res.TrackCount != 10 {
			t.Errorf("unexpected result %+v", res)
		}
		added := mock.Added[res.Playlist.ID]
		if len(added) != 10 || added[0] != "spotify:track:a" {
			t.Errorf("unexpected uris %v", added)
		}
		if len(progress) != 3 {
			t.Errorf("expected 3 progress updates, got %d", len(progress))
		}
	})

	t.Run("No Tracks", func(t *testing.T) {
		mock := tu.NewMockSpotify("alice")
		d, _, _ := newDashboard(t, mock)

		_, err := d.CreateTopTracksPlaylist(ctx, models.LongTerm, nil)
		if !errors.Is(err, shared.ErrNoTracks) || !strings.Contains(err.Error(), "Last 1 Year") {
			t.Errorf("expected ErrNoTracks for Last 1 Year, got %v", err)
		}
		if mock.Called("CreatePlaylist") != 0 {
			t.Error("no playlist should be created")
		}
	})

	t.Run("From URIs Defaults", func(t *testing.T) {
		mock := tu.NewMockSpotify("alice")
		d, _, _ := newDashboard(t, mock)
		d.now = func() time.Time { return time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC) }

		res, err := d.CreatePlaylistFromURIs(ctx, " ", "", []string{"spotify:track:x", " ", "spotify:track:y"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Playlist.Name != "Spotilytics Recommendations - Mar 07, 2025" {
			t.Errorf("unexpected name %q", res.Playlist.Name)
		}
		if res.Playlist.Description != RecommendationsDesc || res.TrackCount != 2 {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("From URIs Empty", func(t *testing.T) {
		mock := tu.NewMockSpotify("alice")
		d, _, _ := newDashboard(t, mock)
		if _, err := d.CreatePlaylistFromURIs(ctx, "x", "y", []string{"", " "}, nil); !errors.Is(err, shared.ErrNoTracks) {
			t.Errorf("expected ErrNoTracks, got %v", err)
		}
		if mock.Called("CurrentUserID") != 0 {
			t.Error("validation should happen before any upstream call")
		}
	})

	t.Run("Library", func(t *testing.T) {
		mock := tu.NewMockSpotify("alice")
		mock.Playlists = []models.Playlist{{ID: "p1"}, {ID: "p2"}}
		d, _, _ := newDashboard(t, mock)

		lib, err := d.Library(ctx, true, nil)
		if err != nil || len(lib.Playlists) != 2 {
			t.Fatalf("unexpected library %+v %v", lib, err)
		}
		if mock.Called("UserPlaylistsAll(true)") != 1 {
			t.Errorf("refresh should skip cache, calls: %v", mock.Calls)
		}

		mock.Errs["UserPlaylistsAll"] = errGateway
		lib, err = d.Library(ctx, false, nil)
		if err != nil || lib.Notice != NoticePlaylists || len(lib.Playlists) != 0 {
			t.Errorf("expected degraded library, got %+v %v", lib, err)
		}
	})

	t.Run("Library Reports Progress", func(t *testing.T) {
		d, _, _ := newDashboard(t, tu.NewMockSpotify("alice"))
		progress := make(chan ProgressUpdate, 1)

		if _, err := d.Library(ctx, false, progress); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if update := <-progress; update.Phase != FetchPlaylists || update.Total != 1 {
			t.Errorf("unexpected update %+v", update)
		}
	})
}

func TestDashboardPlaylistEdits(t *testing.T) {
	ctx := context.Background()

	seed := func() *tu.MockSpotify {
		mock := tu.NewMockSpotify("alice")
		mock.Playlists = []models.Playlist{
			{ID: "mine", Name: "Mine", Owner: models.Owner{ID: "alice"}},
			{ID: "theirs", Name: "Theirs", Owner: models.Owner{ID: "bob"}},
			{ID: "collab", Name: "Collab", Owner: models.Owner{ID: "alice"}, Collaborative: true},
		}
		return mock
	}

	t.Run("Rename", func(t *testing.T) {
		mock := seed()
		d, _, _ := newDashboard(t, mock)

		if err := d.RenamePlaylist(ctx, "mine", "  New Name "); err != nil {
			t.Fatalf("rename failed: %v", err)
		}
		if mock.Updates["mine"]["name"] != "New Name" {
			t.Errorf("unexpected update %v", mock.Updates["mine"])
		}
		if mock.Cleared != 1 {
			t.Error("cache should be cleared after a write")
		}
	})

	t.Run("Rename Blank", func(t *testing.T) {
		mock := seed()
		d, _, _ := newDashboard(t, mock)
		if err := d.RenamePlaylist(ctx, "mine", "   "); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if mock.Called("UpdatePlaylistName") != 0 {
			t.Error("blank name must not reach Spotify")
		}
	})

	t.Run("Ownership", func(t *testing.T) {
		tests := []struct {
			name string
			id   string
			want error
		}{
			{"not owner", "theirs", shared.ErrNotOwner},
			{"not found", "nope", shared.ErrPlaylistNotFound},
			{"blank id", "", shared.ErrMissingArgument},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mock := seed()
				d, _, _ := newDashboard(t, mock)
				if err := d.UpdatePlaylistDescription(ctx, tt.id, "desc"); !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
				if mock.Cleared != 0 {
					t.Error("cache must not be cleared on failure")
				}
			})
		}
	})

	t.Run("Description", func(t *testing.T) {
		mock := seed()
		d, _, _ := newDashboard(t, mock)
		if err := d.UpdatePlaylistDescription(ctx, "mine", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mock.Updates["mine"]["description"] != "" {
			t.Errorf("unexpected update %v", mock.Updates["mine"])
		}
	})

	t.Run("Collaborative", func(t *testing.T) {
		mock := seed()
		d, _, _ := newDashboard(t, mock)

		if err := d.UpdatePlaylistCollaborative(ctx, "mine", true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mock.Updates["mine"]["collaborative"] != true {
			t.Errorf("unexpected update %v", mock.Updates["mine"])
		}

		if err := d.UpdatePlaylistCollaborative(ctx, "collab", true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mock.Called("UpdatePlaylistCollaborative(collab") != 0 {
			t.Error("unchanged flag should not be sent")
		}
	})

	t.Run("Upstream Failure", func(t *testing.T) {
		mock := seed()
		mock.Errs["UpdatePlaylistName"] = errGateway
		d, _, _ := newDashboard(t, mock)
		if err := d.RenamePlaylist(ctx, "mine", "x"); !errors.Is(err, services.ErrGateway) {
			t.Errorf("expected gateway error, got %v", err)
		}
	})
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	progress := make(chan ProgressUpdate)
	done := make(chan struct{})
	go func() {
		sendProgress(progress, sectionUpdate(FetchTopTracks, 1, 1, "x"))
		sendProgress(nil, sectionUpdate(FetchTopTracks, 1, 1, "x"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sendProgress blocked")
	}

	if FetchTopTracks.String() != "fetch_top_tracks" || Phase(99).String() != "" {
		t.Error("unexpected phase names")
	}
}
