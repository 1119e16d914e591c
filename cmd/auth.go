package main

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/desertthunder/spotilytics/internal/formatter"
	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/repositories"
	"github.com/desertthunder/spotilytics/internal/server"
	"github.com/desertthunder/spotilytics/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin runs the authorization code flow: it serves the callback locally, sends the
// user to the consent page and stores the exchanged tokens in the session profile.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.client == nil {
		return fmt.Errorf("%w: Spotify client not initialized", shared.ErrMissingCredentials)
	}
	tokens := r.client.Tokens()

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(tokens, state)

	addr := net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))
	srv, err := server.NewCallbackServer(addr, handler, r.logger)
	if err != nil {
		return err
	}

	authURL := tokens.AuthCodeURL(state)
	if cmd.Bool("no-browser") {
		r.writePlainln("Open this URL to authorize:\n\n  %s\n", authURL)
	} else if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlainln("Open this URL to authorize:\n\n  %s\n", authURL)
	} else {
		r.writePlainln("Opening Spotify authorization in your browser...")
	}
	r.writePlainln("%s", formatter.Styles.Help(fmt.Sprintf("Waiting for the callback on http://%s%s", srv.Addr(), server.CallbackPath)))

	if _, err := srv.Wait(ctx, cmd.Duration("timeout")); err != nil {
		return err
	}

	// A new login may belong to a different account.
	if err := r.session.SetUserID(""); err != nil {
		r.logger.Warn("failed to reset user id", "error", err)
	}
	userID, err := r.spotify.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("signed in", "user", userID)
	return r.writePlainln("%s Signed in as %s", formatter.Styles.OK("✓"), userID)
}

type purger interface {
	Purge() error
}

// AuthLogout clears the user's cached responses, then the session's tokens.
// With --purge the stored profile itself is deleted.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil || r.session.Credentials().AccessToken == "" {
		if cmd.Bool("purge") {
			return r.purgeProfile()
		}
		return r.writePlainln("Not signed in")
	}

	if n, err := r.spotify.ClearUserCache(ctx); err != nil {
		r.logger.Warn("failed to clear cache", "error", err)
	} else {
		r.logger.Debug("cache cleared", "entries", n)
	}

	if err := r.session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if cmd.Bool("purge") {
		return r.purgeProfile()
	}
	return r.writePlainln("%s Signed out", formatter.Styles.OK("✓"))
}

func (r *Runner) purgeProfile() error {
	p, ok := r.session.(purger)
	if !ok {
		return fmt.Errorf("%w: this session is not stored locally", shared.ErrInvalidArgument)
	}
	if err := p.Purge(); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return r.writePlainln("%s Signed out and removed profile", formatter.Styles.OK("✓"))
}

type profileSummary struct {
	Name          string     `json:"name"`
	UserID        string     `json:"user_id,omitempty"`
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Current       bool       `json:"current"`
}

// AuthProfiles lists every locally stored profile.
func (r *Runner) AuthProfiles(ctx context.Context, cmd *cli.Command) error {
	if r.profiles == nil {
		return fmt.Errorf("%w: profiles are only available with a local database", shared.ErrInvalidArgument)
	}
	records, err := r.profiles.List(nil)
	if err != nil {
		return err
	}

	current := r.profile
	if current == "" {
		current = repositories.DefaultProfile
	}

	summaries := make([]profileSummary, 0, len(records))
	table := formatter.Table{Title: "Profiles", Headers: []string{"", "Profile", "User", "Signed In", "Expires"}}
	for _, rec := range records {
		s := profileSummary{
			Name:          rec.Name,
			UserID:        rec.UserID,
			Authenticated: rec.AccessToken != "" || rec.RefreshToken != "",
			ExpiresAt:     rec.ExpiresAt,
			Current:       rec.Name == current,
		}
		summaries = append(summaries, s)

		marker, signedIn, expires := "", "no", ""
		if s.Current {
			marker = "*"
		}
		if s.Authenticated {
			signedIn = "yes"
		}
		if s.ExpiresAt != nil {
			expires = s.ExpiresAt.Local().Format(time.RFC1123)
		}
		table.Rows = append(table.Rows, []string{marker, s.Name, s.UserID, signedIn, expires})
	}
	return r.render(cmd, summaries, table)
}

type authStatus struct {
	Authenticated bool            `json:"authenticated"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	Profile       *models.Profile `json:"profile,omitempty"`
}

// AuthStatus reports whether the profile holds tokens and, if so, whose account it is.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	var status authStatus
	if r.session != nil {
		if creds := r.session.Credentials(); creds.AccessToken != "" || creds.RefreshToken != "" {
			status.Authenticated = true
			if !creds.ExpiresAt.IsZero() {
				status.ExpiresAt = &creds.ExpiresAt
			}
		}
	}

	if !status.Authenticated {
		if cmd.Bool("json") {
			return r.writeJSON(status, cmd.Bool("pretty"))
		}
		return r.writePlainln("Not signed in. Run: spotilytics auth login")
	}

	profile, err := r.spotify.Profile(ctx)
	if err != nil {
		return err
	}
	status.Profile = &profile

	table := formatter.ProfileTable(profile)
	if status.ExpiresAt != nil {
		table.Note = "Token expires " + status.ExpiresAt.Local().Format(time.RFC1123)
	}
	return r.render(cmd, status, table)
}
