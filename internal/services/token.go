package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotilytics/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultExpiryMargin is how long before expiry a token is already treated as stale.
const DefaultExpiryMargin = 30 * time.Second

const defaultTokenLifetime = time.Hour

// TokenManager hands out valid access tokens, refreshing them through the provider when needed.
type TokenManager struct {
	config     *oauth2.Config
	session    Session
	httpClient *http.Client
	margin     time.Duration
	now        func() time.Time
	logger     *log.Logger

	mu sync.Mutex
}

func NewTokenManager(config *oauth2.Config, session Session, httpClient *http.Client, logger *log.Logger) *TokenManager {
	return &TokenManager{
		config:     config,
		session:    session,
		httpClient: httpClient,
		margin:     DefaultExpiryMargin,
		now:        time.Now,
		logger:     shared.ComponentLogger(logger, "token"),
	}
}

// EnsureValidToken returns an access token that stays valid for at least the expiry margin.
func (m *TokenManager) EnsureValidToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds := m.session.Credentials()
	if creds.Fresh(m.now(), m.margin) {
		return creds.AccessToken, nil
	}
	return m.refresh(ctx, creds)
}

func (m *TokenManager) refresh(ctx context.Context, creds Credentials) (string, error) {
	if creds.RefreshToken == "" {
		return "", unauthorized("missing Spotify refresh token", nil)
	}
	if m.config == nil || m.config.ClientID == "" || m.config.ClientSecret == "" {
		return "", unauthorized("missing Spotify client credentials", nil)
	}

	src := m.config.TokenSource(m.clientContext(ctx), &oauth2.Token{RefreshToken: creds.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			if cerr := m.session.Clear(); cerr != nil {
				m.logger.Warn("failed to clear rejected credentials", "err", cerr)
			}
			return "", unauthorized(retrieveMessage(re), err)
		}
		return "", unauthorized(err.Error(), err)
	}

	next := m.store(tok, creds.RefreshToken)
	if err := m.session.SetCredentials(next); err != nil {
		return "", gatewayError(0, "failed to save refreshed credentials", err)
	}
	m.logger.Info("refreshed access token", "expires_at", next.ExpiresAt.Format(time.RFC3339))
	return next.AccessToken, nil
}

// Exchange trades an authorization code for credentials and stores them in the session.
func (m *TokenManager) Exchange(ctx context.Context, code string) (Credentials, error) {
	if code == "" {
		return Credentials{}, unauthorized("missing authorization code", nil)
	}

	tok, err := m.config.Exchange(m.clientContext(ctx), code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return Credentials{}, unauthorized(retrieveMessage(re), err)
		}
		return Credentials{}, unauthorized(err.Error(), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	creds := m.store(tok, "")
	if err := m.session.SetCredentials(creds); err != nil {
		return Credentials{}, gatewayError(0, "failed to save credentials", err)
	}
	return creds, nil
}

// AuthCodeURL returns the provider consent page URL for state.
func (m *TokenManager) AuthCodeURL(state string) string {
	return m.config.AuthCodeURL(state)
}

func (m *TokenManager) store(tok *oauth2.Token, previousRefresh string) Credentials {
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = m.now().Add(defaultTokenLifetime)
	}
	refresh := previousRefresh
	if tok.RefreshToken != "" {
		refresh = tok.RefreshToken
	}
	return Credentials{AccessToken: tok.AccessToken, RefreshToken: refresh, ExpiresAt: expiry}
}

func (m *TokenManager) clientContext(ctx context.Context) context.Context {
	if m.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

// retrieveMessage prefers error_description, then error.message from the body, then the OAuth error code.
func retrieveMessage(re *oauth2.RetrieveError) string {
	if re.ErrorDescription != "" {
		return re.ErrorDescription
	}
	if msg := providerMessage(re.Body); msg != "" {
		return msg
	}
	if re.ErrorCode != "" {
		return re.ErrorCode
	}
	return "unknown error refreshing token"
}

// providerMessage extracts error_description or error.message from a provider error body.
func providerMessage(body []byte) string {
	var payload struct {
		ErrorDescription string          `json:"error_description"`
		Error            json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.ErrorDescription != "" {
		return payload.ErrorDescription
	}

	var nested struct {
		Message string `json:"message"`
	}
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &nested) == nil {
		return nested.Message
	}
	return ""
}
