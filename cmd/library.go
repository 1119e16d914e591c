package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotilytics/internal/formatter"
	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/shared"
	"github.com/urfave/cli/v3"
)

func idArgs(cmd *cli.Command) ([]string, error) {
	ids := shared.UniqueStrings(cmd.Args().Slice())
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one id", shared.ErrMissingArgument)
	}
	return ids, nil
}

func queryArg(cmd *cli.Command) (string, error) {
	q := strings.TrimSpace(cmd.StringArg("query"))
	if q == "" {
		return "", fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	return q, nil
}

func pageNote[T any](page models.Page[T]) string {
	return fmt.Sprintf("Showing %d of %d from offset %d", len(page.Items), page.Total, page.Offset)
}

// ShowsSaved lists one page of saved shows.
func (r *Runner) ShowsSaved(ctx context.Context, cmd *cli.Command) error {
	page, err := r.spotify.SavedShows(ctx, cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return err
	}
	table := formatter.ShowTable("Saved Shows", page.Items)
	table.Note = pageNote(page)
	return r.render(cmd, page, table)
}

// ShowsSearch searches the show catalog.
func (r *Runner) ShowsSearch(ctx context.Context, cmd *cli.Command) error {
	query, err := queryArg(cmd)
	if err != nil {
		return err
	}
	page, err := r.spotify.SearchShows(ctx, query, cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return err
	}
	table := formatter.ShowTable(fmt.Sprintf("Shows matching %q", query), page.Items)
	table.Note = pageNote(page)
	return r.render(cmd, page, table)
}

// ShowsSave saves shows to the library.
func (r *Runner) ShowsSave(ctx context.Context, cmd *cli.Command) error {
	ids, err := idArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.spotify.SaveShows(ctx, ids); err != nil {
		return err
	}
	return r.writePlainln("%s Saved %d show(s)", formatter.Styles.OK("✓"), len(ids))
}

// ShowsRemove removes shows from the library.
func (r *Runner) ShowsRemove(ctx context.Context, cmd *cli.Command) error {
	ids, err := idArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.spotify.RemoveShows(ctx, ids); err != nil {
		return err
	}
	return r.writePlainln("%s Removed %d show(s)", formatter.Styles.OK("✓"), len(ids))
}

// EpisodesSaved lists one page of saved episodes.
func (r *Runner) EpisodesSaved(ctx context.Context, cmd *cli.Command) error {
	page, err := r.spotify.SavedEpisodes(ctx, cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return err
	}
	table := formatter.EpisodeTable("Saved Episodes", page.Items)
	table.Note = pageNote(page)
	return r.render(cmd, page, table)
}

// EpisodesSearch searches the episode catalog.
func (r *Runner) EpisodesSearch(ctx context.Context, cmd *cli.Command) error {
	query, err := queryArg(cmd)
	if err != nil {
		return err
	}
	page, err := r.spotify.SearchEpisodes(ctx, query, cmd.Int("limit"), cmd.Int("offset"))
	if err != nil {
		return err
	}
	table := formatter.EpisodeTable(fmt.Sprintf("Episodes matching %q", query), page.Items)
	table.Note = pageNote(page)
	return r.render(cmd, page, table)
}

// EpisodesSave saves episodes to the library.
func (r *Runner) EpisodesSave(ctx context.Context, cmd *cli.Command) error {
	ids, err := idArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.spotify.SaveEpisodes(ctx, ids); err != nil {
		return err
	}
	return r.writePlainln("%s Saved %d episode(s)", formatter.Styles.OK("✓"), len(ids))
}

// EpisodesRemove removes episodes from the library.
func (r *Runner) EpisodesRemove(ctx context.Context, cmd *cli.Command) error {
	ids, err := idArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.spotify.RemoveEpisodes(ctx, ids); err != nil {
		return err
	}
	return r.writePlainln("%s Removed %d episode(s)", formatter.Styles.OK("✓"), len(ids))
}

// SearchTracks searches the track catalog.
func (r *Runner) SearchTracks(ctx context.Context, cmd *cli.Command) error {
	query, err := queryArg(cmd)
	if err != nil {
		return err
	}
	tracks, err := r.spotify.SearchTracks(ctx, query, cmd.Int("limit"))
	if err != nil {
		return err
	}
	return r.render(cmd, tracks, formatter.TrackTable(fmt.Sprintf("Tracks matching %q", query), tracks))
}

// ArtistsFollow follows artists.
func (r *Runner) ArtistsFollow(ctx context.Context, cmd *cli.Command) error {
	ids, err := idArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.spotify.FollowArtists(ctx, ids); err != nil {
		return err
	}
	return r.writePlainln("%s Following %d artist(s)", formatter.Styles.OK("✓"), len(ids))
}

// ArtistsUnfollow unfollows artists.
func (r *Runner) ArtistsUnfollow(ctx context.Context, cmd *cli.Command) error {
	ids, err := idArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.spotify.UnfollowArtists(ctx, ids); err != nil {
		return err
	}
	return r.writePlainln("%s Unfollowed %d artist(s)", formatter.Styles.OK("✓"), len(ids))
}

// CacheClear drops the signed-in user's cached responses.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	n, err := r.spotify.ClearUserCache(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("cache cleared", "entries", n)
	if r.cache != nil {
		swept, err := r.cache.Sweep()
		if err != nil {
			r.logger.Warn("failed to sweep expired entries", "err", err)
		}
		n += swept
	}
	return r.writePlainln("%s Cleared %d cached response(s)", formatter.Styles.OK("✓"), n)
}
