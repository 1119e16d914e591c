package tasks

import (
	"fmt"

	"github.com/desertthunder/spotilytics/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchTopArtists Phase = iota
	FetchTopTracks
	FetchFollowed
	FetchReleases
	FetchShows
	FetchEpisodes
	FetchHidden
	FetchPlaylists
	CreatePlaylist
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case FetchTopArtists:
		return "fetch_top_artists"
	case FetchTopTracks:
		return "fetch_top_tracks"
	case FetchFollowed:
		return "fetch_followed"
	case FetchReleases:
		return "fetch_releases"
	case FetchShows:
		return "fetch_shows"
	case FetchEpisodes:
		return "fetch_episodes"
	case FetchHidden:
		return "fetch_hidden"
	case FetchPlaylists:
		return "fetch_playlists"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func sectionUpdate(phase Phase, step, total int, message string) ProgressUpdate {
	return ProgressUpdate{Phase: phase, Step: step, Total: total, Message: message}
}

func createPlaylistUpdate(step, total int, pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func addTracksUpdate(step, total, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Adding %d tracks...", count),
	}
}
