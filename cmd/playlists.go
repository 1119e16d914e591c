package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotilytics/internal/formatter"
	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/shared"
	"github.com/desertthunder/spotilytics/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistsList lists every playlist in the user's library.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	progress, stop := r.progress(cmd.Bool("progress") && !cmd.Bool("json"))
	view, err := r.dashboard.Library(ctx, cmd.Bool("refresh"), progress)
	stop()
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		r.notice(view.Notice)
	}
	return r.render(cmd, view, formatter.PlaylistTable("Playlists", view.Playlists))
}

// PlaylistsCreate saves either the top tracks for --range or the given --uri list
// into a new private playlist.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	rangeName := cmd.String("range")
	uris := cmd.StringSlice("uri")
	if rangeName == "" && len(uris) == 0 {
		return fmt.Errorf("%w: either --range or --uri must be provided", shared.ErrMissingArgument)
	}
	if rangeName != "" && len(uris) > 0 {
		return fmt.Errorf("%w: cannot specify both --range and --uri", shared.ErrInvalidArgument)
	}

	var tr models.TimeRange
	if rangeName != "" {
		var err error
		if tr, err = models.ParseTimeRange(rangeName); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
	}

	progress, stop := r.progress(!cmd.Bool("json"))
	var result *tasks.PlaylistResult
	var err error
	if tr != "" {
		result, err = r.dashboard.CreateTopTracksPlaylist(ctx, tr, progress)
	} else {
		result, err = r.dashboard.CreatePlaylistFromURIs(ctx, cmd.String("name"), cmd.String("description"), uris, progress)
	}
	stop()
	if err != nil {
		return err
	}

	table := formatter.PlaylistTable("Created Playlist", []models.Playlist{result.Playlist})
	table.Note = fmt.Sprintf("%d tracks added", result.TrackCount)
	return r.render(cmd, result, table)
}

func playlistID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	return id, nil
}

// PlaylistsRename renames a playlist the user owns.
func (r *Runner) PlaylistsRename(ctx context.Context, cmd *cli.Command) error {
	id, err := playlistID(cmd)
	if err != nil {
		return err
	}
	name := cmd.StringArg("name")
	if err := r.dashboard.RenamePlaylist(ctx, id, name); err != nil {
		return err
	}
	return r.writePlainln("%s Renamed playlist to %q", formatter.Styles.OK("✓"), strings.TrimSpace(name))
}

// PlaylistsDescribe replaces a playlist description.
func (r *Runner) PlaylistsDescribe(ctx context.Context, cmd *cli.Command) error {
	id, err := playlistID(cmd)
	if err != nil {
		return err
	}
	if err := r.dashboard.UpdatePlaylistDescription(ctx, id, cmd.String("description")); err != nil {
		return err
	}
	return r.writePlainln("%s Updated playlist description", formatter.Styles.OK("✓"))
}

// PlaylistsCollaborative turns collaboration on, or off with --off.
func (r *Runner) PlaylistsCollaborative(ctx context.Context, cmd *cli.Command) error {
	id, err := playlistID(cmd)
	if err != nil {
		return err
	}
	enable := !cmd.Bool("off")
	if err := r.dashboard.UpdatePlaylistCollaborative(ctx, id, enable); err != nil {
		return err
	}

	state := "enabled"
	if !enable {
		state = "disabled"
	}
	return r.writePlainln("%s Collaboration %s", formatter.Styles.OK("✓"), state)
}
