package services

import (
	"sync"
	"time"
)

// Credentials are the OAuth tokens for one logged-in user.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Fresh reports whether the access token is present and outlives now by more than margin.
// A zero ExpiresAt is never fresh.
func (c Credentials) Fresh(now time.Time, margin time.Duration) bool {
	if c.AccessToken == "" || c.ExpiresAt.IsZero() {
		return false
	}
	return c.ExpiresAt.After(now.Add(margin))
}

// Session holds the credentials and resolved user id for the caller.
type Session interface {
	Credentials() Credentials
	SetCredentials(Credentials) error
	UserID() string
	SetUserID(string) error
	// Clear forgets credentials and user id.
	Clear() error
}

// MemorySession is a [Session] kept in process memory.
type MemorySession struct {
	mu     sync.RWMutex
	creds  Credentials
	userID string
}

func NewMemorySession(creds Credentials) *MemorySession {
	return &MemorySession{creds: creds}
}

func (s *MemorySession) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

func (s *MemorySession) SetCredentials(c Credentials) error {
	s.mu.Lock()
	s.creds = c
	s.mu.Unlock()
	return nil
}

func (s *MemorySession) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *MemorySession) SetUserID(id string) error {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
	return nil
}

func (s *MemorySession) Clear() error {
	s.mu.Lock()
	s.creds = Credentials{}
	s.userID = ""
	s.mu.Unlock()
	return nil
}
