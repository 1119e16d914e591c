package models

import (
	"errors"
	"time"
)

// SessionRecord persists a local profile's OAuth credentials.
type SessionRecord struct {
	RecordID     string
	Name         string
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Created      time.Time
	Updated      time.Time
}

func (s *SessionRecord) ID() string           { return s.RecordID }
func (s *SessionRecord) CreatedAt() time.Time { return s.Created }
func (s *SessionRecord) UpdatedAt() time.Time { return s.Updated }

func (s *SessionRecord) Validate() error {
	if s.RecordID == "" {
		return errors.New("session id is required")
	}
	if s.Name == "" {
		return errors.New("session name is required")
	}
	return nil
}
