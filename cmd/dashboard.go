package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotilytics/internal/formatter"
	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/overlay"
	"github.com/desertthunder/spotilytics/internal/shared"
	"github.com/desertthunder/spotilytics/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Dashboard prints the landing overview.
func (r *Runner) Dashboard(ctx context.Context, cmd *cli.Command) error {
	progress, stop := r.progress(cmd.Bool("progress") && !cmd.Bool("json"))
	overview, err := r.dashboard.Overview(ctx, progress)
	stop()
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		r.notice(overview.Notice)
	}

	tables := []formatter.Table{
		formatter.ArtistTable("Top Artists", overview.TopArtists, nil),
		formatter.TrackTable("Top Tracks", overview.TopTracks),
	}
	if chart := overview.Genres; chart != nil {
		tables = append(tables, formatter.CountTable(chart.Label, chart.Labels, chart.Data))
	}
	tables = append(tables,
		formatter.ArtistTable("Followed Artists", overview.Followed, nil),
		formatter.AlbumTable("New Releases", overview.NewReleases),
		formatter.ShowTable("Saved Shows", overview.SavedShows),
		formatter.EpisodeTable("Saved Episodes", overview.SavedEpisodes),
	)
	return r.render(cmd, overview, tables...)
}

func limitsFrom(cmd *cli.Command) tasks.Limits {
	return tasks.Limits{
		models.ShortTerm:  cmd.Int("short"),
		models.MediumTerm: cmd.Int("medium"),
		models.LongTerm:   cmd.Int("long"),
	}
}

// TopTracks prints visible and hidden top tracks for every time range.
func (r *Runner) TopTracks(ctx context.Context, cmd *cli.Command) error {
	progress, stop := r.progress(cmd.Bool("progress") && !cmd.Bool("json"))
	view, err := r.dashboard.TopTracks(ctx, limitsFrom(cmd), progress)
	stop()
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		r.notice(view.Notice)
	}

	var tables []formatter.Table
	for _, tr := range view.Ranges {
		tables = append(tables, formatter.TrackTable("Top Tracks - "+tr.Label, tr.Visible))
		if len(tr.Hidden) > 0 {
			hidden := formatter.TrackTable("Hidden - "+tr.Label, tr.Hidden)
			hidden.Note = fmt.Sprintf("Restore with: spotilytics unhide --range %s <track-id>", tr.Range)
			tables = append(tables, hidden)
		}
	}
	if len(view.Missing) > 0 {
		r.logger.Info("some hidden tracks are no longer in your top 50", "ids", strings.Join(view.Missing, ","))
	}
	return r.render(cmd, view, tables...)
}

// TopArtists prints the top artists for every time range with follow state.
func (r *Runner) TopArtists(ctx context.Context, cmd *cli.Command) error {
	view, err := r.dashboard.TopArtists(ctx, limitsFrom(cmd))
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		r.notice(view.Notice)
	}

	var tables []formatter.Table
	for _, ar := range view.Ranges {
		tables = append(tables, formatter.ArtistTable("Top Artists - "+ar.Label, ar.Artists, view.IsFollowed))
	}

	data := struct {
		*tasks.TopArtistsView
		FollowedIDs []string `json:"followed_ids"`
	}{TopArtistsView: view, FollowedIDs: followedIDs(view)}
	return r.render(cmd, data, tables...)
}

// followedIDs lists followed ids in ranking order.
func followedIDs(view *tasks.TopArtistsView) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, ar := range view.Ranges {
		for _, a := range ar.Artists {
			if _, dup := seen[a.ID]; dup || !view.IsFollowed(a.ID) {
				continue
			}
			seen[a.ID] = struct{}{}
			out = append(out, a.ID)
		}
	}
	return out
}

func hideArgs(cmd *cli.Command) (models.TimeRange, string, error) {
	tr, err := models.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	id := strings.TrimSpace(cmd.StringArg("track-id"))
	if id == "" {
		return "", "", fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}
	return tr, id, nil
}

// Hide excludes a track from the top tracks view for one range.
func (r *Runner) Hide(ctx context.Context, cmd *cli.Command) error {
	tr, id, err := hideArgs(cmd)
	if err != nil {
		return err
	}

	ok, err := r.dashboard.Hide(ctx, tr, id)
	if err != nil {
		return err
	}
	if !ok {
		return r.writePlainln("%s You can hide at most %d tracks for %s. Unhide one first.", formatter.Styles.Warn("!"), overlay.MaxHidden, tr.Label())
	}
	return r.writePlainln("%s Hidden %s from %s", formatter.Styles.OK("✓"), id, tr.Label())
}

// Unhide restores a hidden track.
func (r *Runner) Unhide(ctx context.Context, cmd *cli.Command) error {
	tr, id, err := hideArgs(cmd)
	if err != nil {
		return err
	}

	if _, err := r.dashboard.Unhide(ctx, tr, id); err != nil {
		return err
	}
	return r.writePlainln("%s Restored %s to %s", formatter.Styles.OK("✓"), id, tr.Label())
}
