package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/services"
	"github.com/desertthunder/spotilytics/internal/shared"
)

// DefaultProfile is the session name used when none is given.
const DefaultProfile = "default"

// SessionRepository implements [models.Repository] for [models.SessionRecord].
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, name, user_id, access_token, refresh_token, expires_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.SessionRecord, error) {
	var (
		s         models.SessionRecord
		expiresAt sql.NullTime
	)
	err := row.Scan(&s.RecordID, &s.Name, &s.UserID, &s.AccessToken, &s.RefreshToken, &expiresAt, &s.Created, &s.Updated)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		s.ExpiresAt = &t
	}
	return &s, nil
}

// Create inserts s, assigning a new id.
func (r *SessionRepository) Create(s *models.SessionRecord) error {
	s.RecordID = newID()
	now := time.Now().UTC()
	s.Created, s.Updated = now, now

	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RecordID, s.Name, s.UserID, s.AccessToken, s.RefreshToken, s.ExpiresAt, s.Created, s.Updated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(id string) (*models.SessionRecord, error) {
	s, err := scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return s, nil
}

// GetByName looks a session up by profile name.
func (r *SessionRepository) GetByName(name string) (*models.SessionRecord, error) {
	s, err := scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) Update(s *models.SessionRecord) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	s.Updated = time.Now().UTC()

	result, err := r.db.Exec(`
		UPDATE sessions
		SET name = ?, user_id = ?, access_token = ?, refresh_token = ?, expires_at = ?, updated_at = ?
		WHERE id = ?
	`, s.Name, s.UserID, s.AccessToken, s.RefreshToken, s.ExpiresAt, s.Updated, s.RecordID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return requireAffected(result, "session", s.RecordID)
}

func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireAffected(result, "session", id)
}

// List returns sessions ordered by name. Supported criteria: "user_id".
func (r *SessionRepository) List(criteria map[string]any) ([]*models.SessionRecord, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	args := []any{}
	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []*models.SessionRecord
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// PersistentSession is a [services.Session] stored as one sessions row.
type PersistentSession struct {
	repo   *SessionRepository
	mu     sync.Mutex
	record *models.SessionRecord
}

// OpenSession loads the named session, creating an empty one on first use.
func OpenSession(repo *SessionRepository, name string) (*PersistentSession, error) {
	if name == "" {
		name = DefaultProfile
	}

	record, err := repo.GetByName(name)
	if errors.Is(err, shared.ErrSessionNotFound) {
		record = &models.SessionRecord{Name: name}
		if err := repo.Create(record); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &PersistentSession{repo: repo, record: record}, nil
}

// Credentials re-reads the row first so tokens refreshed by another process are seen.
func (p *PersistentSession) Credentials() services.Credentials {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fresh, err := p.repo.Get(p.record.RecordID); err == nil {
		p.record = fresh
	}
	c := services.Credentials{AccessToken: p.record.AccessToken, RefreshToken: p.record.RefreshToken}
	if p.record.ExpiresAt != nil {
		c.ExpiresAt = *p.record.ExpiresAt
	}
	return c
}

func (p *PersistentSession) SetCredentials(c services.Credentials) error {
	return p.update(func(r *models.SessionRecord) {
		r.AccessToken = c.AccessToken
		r.RefreshToken = c.RefreshToken
		r.ExpiresAt = nil
		if !c.ExpiresAt.IsZero() {
			t := c.ExpiresAt.UTC()
			r.ExpiresAt = &t
		}
	})
}

func (p *PersistentSession) UserID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.record.UserID
}

func (p *PersistentSession) SetUserID(id string) error {
	return p.update(func(r *models.SessionRecord) { r.UserID = id })
}

func (p *PersistentSession) Clear() error {
	return p.update(func(r *models.SessionRecord) {
		r.AccessToken, r.RefreshToken, r.UserID, r.ExpiresAt = "", "", "", nil
	})
}

// Purge deletes the profile row. The session is empty afterwards and must be reopened to be used again.
func (p *PersistentSession) Purge() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.repo.Delete(p.record.RecordID); err != nil {
		return err
	}
	p.record = &models.SessionRecord{RecordID: p.record.RecordID, Name: p.record.Name}
	return nil
}

// Name returns the profile name.
func (p *PersistentSession) Name() string { return p.record.Name }

func (p *PersistentSession) update(mutate func(*models.SessionRecord)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := *p.record
	mutate(&next)
	if err := p.repo.Update(&next); err != nil {
		return err
	}
	p.record = &next
	return nil
}

var _ services.Session = (*PersistentSession)(nil)
