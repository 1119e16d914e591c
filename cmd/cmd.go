package main

import (
	"github.com/desertthunder/spotilytics/internal/server"
	"github.com/desertthunder/spotilytics/internal/tasks"
	"github.com/urfave/cli/v3"
)

// outputFlags are shared by every command that prints a listing.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Table format: text, markdown or csv",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Export the tables to a file instead of printing them",
		},
	}
}

func rangeLimitFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "short", Usage: "Items for the last 4 weeks (10, 25 or 50)", Value: tasks.DefaultLimit},
		&cli.IntFlag{Name: "medium", Usage: "Items for the last 6 months (10, 25 or 50)", Value: tasks.DefaultLimit},
		&cli.IntFlag{Name: "long", Usage: "Items for the last year (10, 25 or 50)", Value: tasks.DefaultLimit},
	}
}

func rangeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "range",
		Aliases: []string{"r"},
		Usage:   "Time range: short, medium or long",
		Value:   "long_term",
	}
}

func pageFlags(limit int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Items per page", Value: limit},
		&cli.IntFlag{Name: "offset", Usage: "Items to skip"},
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file, initialize the database and run migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with Spotify through the browser",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the callback",
						Value: server.DefaultCallbackTimeout,
					},
				},
				Action: r.connected(r.AuthLogin),
			},
			{
				Name:  "logout",
				Usage: "Forget the stored tokens and drop cached responses",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "purge", Usage: "Also delete the stored profile"},
				},
				Action: r.connected(r.AuthLogout),
			},
			{
				Name:   "profiles",
				Usage:  "List locally stored profiles",
				Flags:  outputFlags(),
				Action: r.connected(r.AuthProfiles),
			},
			{
				Name:   "status",
				Usage:  "Show the signed-in account",
				Flags:  outputFlags(),
				Action: r.connected(r.AuthStatus),
			},
		},
	}
}

func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Aliases: []string{"dash"},
		Usage:   "Show top artists, top tracks, genres, follows, new releases and saved podcasts",
		Flags: withFlags(outputFlags(), []cli.Flag{
			&cli.BoolFlag{Name: "progress", Usage: "Print progress while sections load"},
		}),
		Action: r.connected(r.Dashboard),
	}
}

func topCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "top",
		Usage: "Show top items for every time range",
		Commands: []*cli.Command{
			{
				Name:  "tracks",
				Usage: "Top tracks with hidden tracks excluded",
				Flags: withFlags(outputFlags(), rangeLimitFlags(), []cli.Flag{
					&cli.BoolFlag{Name: "progress", Usage: "Print progress while ranges load"},
				}),
				Action: r.connected(r.TopTracks),
			},
			{
				Name:   "artists",
				Usage:  "Top artists and whether you follow them",
				Flags:  withFlags(outputFlags(), rangeLimitFlags()),
				Action: r.connected(r.TopArtists),
			},
		},
	}
}

func hideCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "hide",
		Usage:     "Exclude a track from your top tracks for a time range",
		Arguments: []cli.Argument{&cli.StringArg{Name: "track-id"}},
		Flags:     []cli.Flag{rangeFlag()},
		Action:    r.connected(r.Hide),
	}
}

func unhideCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "unhide",
		Usage:     "Restore a hidden track",
		Arguments: []cli.Argument{&cli.StringArg{Name: "track-id"}},
		Flags:     []cli.Flag{rangeFlag()},
		Action:    r.connected(r.Unhide),
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List, create and edit playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: withFlags(outputFlags(), []cli.Flag{
					&cli.BoolFlag{Name: "refresh", Usage: "Bypass the cached listing"},
					&cli.BoolFlag{Name: "progress", Usage: "Print progress while pages load"},
				}),
				Action: r.connected(r.PlaylistsList),
			},
			{
				Name:  "create",
				Usage: "Create a private playlist from your top tracks or a list of track URIs",
				Flags: withFlags(outputFlags(), []cli.Flag{
					&cli.StringFlag{Name: "range", Aliases: []string{"r"}, Usage: "Save the top 10 tracks for short, medium or long"},
					&cli.StringSliceFlag{Name: "uri", Usage: "Track URI to add (repeatable)"},
					&cli.StringFlag{Name: "name", Usage: "Playlist name"},
					&cli.StringFlag{Name: "description", Usage: "Playlist description"},
				}),
				Action: r.connected(r.PlaylistsCreate),
			},
			{
				Name:  "rename",
				Usage: "Rename a playlist you own",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "name"},
				},
				Action: r.connected(r.PlaylistsRename),
			},
			{
				Name:      "describe",
				Usage:     "Replace the description of a playlist you own",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description; empty clears it"},
				},
				Action: r.connected(r.PlaylistsDescribe),
			},
			{
				Name:      "collaborative",
				Usage:     "Turn collaboration on or off for a playlist you own",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "off", Usage: "Disable collaboration"},
				},
				Action: r.connected(r.PlaylistsCollaborative),
			},
		},
	}
}

func showsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "shows",
		Aliases: []string{"podcasts"},
		Usage:   "Saved and searchable podcasts",
		Commands: []*cli.Command{
			{
				Name:   "saved",
				Usage:  "List saved shows",
				Flags:  withFlags(outputFlags(), pageFlags(20)),
				Action: r.connected(r.ShowsSaved),
			},
			{
				Name:      "search",
				Usage:     "Search for shows",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     withFlags(outputFlags(), pageFlags(20)),
				Action:    r.connected(r.ShowsSearch),
			},
			{
				Name:      "save",
				Usage:     "Save shows by id",
				ArgsUsage: "<id>...",
				Action:    r.connected(r.ShowsSave),
			},
			{
				Name:      "remove",
				Usage:     "Remove saved shows by id",
				ArgsUsage: "<id>...",
				Action:    r.connected(r.ShowsRemove),
			},
		},
	}
}

func episodesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "episodes",
		Usage: "Saved and searchable podcast episodes",
		Commands: []*cli.Command{
			{
				Name:   "saved",
				Usage:  "List saved episodes",
				Flags:  withFlags(outputFlags(), pageFlags(20)),
				Action: r.connected(r.EpisodesSaved),
			},
			{
				Name:      "search",
				Usage:     "Search for episodes",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     withFlags(outputFlags(), pageFlags(20)),
				Action:    r.connected(r.EpisodesSearch),
			},
			{
				Name:      "save",
				Usage:     "Save episodes by id",
				ArgsUsage: "<id>...",
				Action:    r.connected(r.EpisodesSave),
			},
			{
				Name:      "remove",
				Usage:     "Remove saved episodes by id",
				ArgsUsage: "<id>...",
				Action:    r.connected(r.EpisodesRemove),
			},
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the Spotify catalog",
		Commands: []*cli.Command{
			{
				Name:      "tracks",
				Usage:     "Search for tracks",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: withFlags(outputFlags(), []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum results", Value: 20},
				}),
				Action: r.connected(r.SearchTracks),
			},
		},
	}
}

func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "artists",
		Usage: "Follow and unfollow artists",
		Commands: []*cli.Command{
			{
				Name:      "follow",
				Usage:     "Follow artists by id",
				ArgsUsage: "<id>...",
				Action:    r.connected(r.ArtistsFollow),
			},
			{
				Name:      "unfollow",
				Usage:     "Unfollow artists by id",
				ArgsUsage: "<id>...",
				Action:    r.connected(r.ArtistsUnfollow),
			},
		},
	}
}

func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage cached Spotify responses",
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Drop every cached response for the signed-in user",
				Action: r.connected(r.CacheClear),
			},
		},
	}
}
