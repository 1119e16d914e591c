// package tasks builds dashboard views on top of the Spotify gateway and the exclusion overlay.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/overlay"
	"github.com/desertthunder/spotilytics/internal/services"
	"github.com/desertthunder/spotilytics/internal/shared"
)

// Limits accepted by the ranked views. Anything else normalizes to [DefaultLimit].
const (
	DefaultLimit = 10
	MediumLimit  = 25
	MaxLimit     = 50
)

// Notices shown when a view degrades.
const (
	NoticeDashboard  = "We were unable to load your Spotify data right now. Please try again later."
	NoticeTopTracks  = "Couldn't load your top tracks from Spotify."
	NoticeTopArtists = "We were unable to load your top artists from Spotify. Please try again later."
	NoticePlaylists  = "We were unable to load your playlists from Spotify. Please try again later."
)

// Dashboard composes gateway reads with the exclusion overlay.
type Dashboard struct {
	spotify services.Spotify
	overlay *overlay.Overlay
	session services.Session
	logger  *log.Logger
	now     func() time.Time
}

// NewDashboard wires a dashboard. session may be nil; it is only cleared when
// Spotify reports a missing permission.
func NewDashboard(spotify services.Spotify, o *overlay.Overlay, session services.Session, logger *log.Logger) *Dashboard {
	return &Dashboard{
		spotify: spotify,
		overlay: o,
		session: session,
		logger:  shared.ComponentLogger(logger, "dashboard"),
		now:     time.Now,
	}
}

// NormalizeLimit accepts 10, 25 or 50 and maps everything else to 10.
func NormalizeLimit(n int) int {
	switch n {
	case DefaultLimit, MediumLimit, MaxLimit:
		return n
	}
	return DefaultLimit
}

func (d *Dashboard) userID(ctx context.Context) (string, error) {
	id, err := d.spotify.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", shared.ErrNotAuthenticated
	}
	return id, nil
}

// hiddenIDs returns the user's exclusion set, or nil when it cannot be read.
func (d *Dashboard) hiddenIDs(ctx context.Context, userID string, tr models.TimeRange) []string {
	if d.overlay == nil || userID == "" {
		return nil
	}
	ids, err := d.overlay.Hidden(ctx, userID, tr)
	if err != nil {
		d.logger.Warn("failed to read hidden tracks", "range", tr, "error", err)
		return nil
	}
	return ids
}

// degrade reports whether err should be swallowed into a notice.
// Unauthorized failures, cancellations and local validation errors are returned as-is.
func degrade(err error) bool {
	if err == nil || services.IsUnauthorized(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, services.ErrGateway)
}

// Hide excludes trackID from the user's top tracks for tr.
//
// It returns false when the set for tr is already full.
func (d *Dashboard) Hide(ctx context.Context, tr models.TimeRange, trackID string) (bool, error) {
	if !tr.Valid() {
		return false, fmt.Errorf("%w: invalid time range %q", shared.ErrInvalidArgument, tr)
	}
	userID, err := d.userID(ctx)
	if err != nil {
		return false, err
	}
	return d.overlay.Hide(ctx, userID, tr, trackID)
}

// Unhide removes trackID from the user's exclusion set for tr.
func (d *Dashboard) Unhide(ctx context.Context, tr models.TimeRange, trackID string) (bool, error) {
	if !tr.Valid() {
		return false, fmt.Errorf("%w: invalid time range %q", shared.ErrInvalidArgument, tr)
	}
	userID, err := d.userID(ctx)
	if err != nil {
		return false, err
	}
	return d.overlay.Unhide(ctx, userID, tr, trackID)
}
