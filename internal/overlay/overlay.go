package overlay

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/shared"
)

const (
	// MaxHidden is the per-(user, category) cap on exclusion set size.
	MaxHidden = 5
	// MaxWindow is the largest page the provider serves for ranked listings.
	MaxWindow = 50
)

var (
	ErrInvalidCategory = errors.New("invalid exclusion category")
	ErrInvalidInput    = errors.New("user id and item id are required")
)

// Store persists exclusion sets.
//
// Add must be atomic with respect to the limit: it appends itemID only when the set
// holds fewer than limit ids, and reports whether itemID is a member afterwards.
type Store interface {
	Hidden(ctx context.Context, userID, category string) ([]string, error)
	Add(ctx context.Context, userID, category, itemID string, limit int) (bool, error)
	Remove(ctx context.Context, userID, category, itemID string) error
}

// Overlay validates requests and applies the size cap on top of a [Store].
type Overlay struct {
	store  Store
	max    int
	logger *log.Logger
}

func New(store Store, logger *log.Logger) *Overlay {
	return &Overlay{store: store, max: MaxHidden, logger: shared.ComponentLogger(logger, "overlay")}
}

func validate(userID string, category models.TimeRange, itemID string) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if userID == "" || itemID == "" {
		return ErrInvalidInput
	}
	return nil
}

// Hide adds itemID to the user's set for category.
//
// It returns true when the id is present afterwards and false, without mutating anything, when the set is full.
func (o *Overlay) Hide(ctx context.Context, userID string, category models.TimeRange, itemID string) (bool, error) {
	if err := validate(userID, category, itemID); err != nil {
		return false, err
	}

	ok, err := o.store.Add(ctx, userID, string(category), itemID, o.max)
	if err != nil {
		return false, fmt.Errorf("failed to hide %s: %w", itemID, err)
	}
	if !ok {
		o.logger.Info("exclusion set full", "user", userID, "range", category, "limit", o.max)
	}
	return ok, nil
}

// Unhide removes itemID from the set. It succeeds whether or not the id was present.
func (o *Overlay) Unhide(ctx context.Context, userID string, category models.TimeRange, itemID string) (bool, error) {
	if err := validate(userID, category, itemID); err != nil {
		return false, err
	}
	if err := o.store.Remove(ctx, userID, string(category), itemID); err != nil {
		return false, fmt.Errorf("failed to unhide %s: %w", itemID, err)
	}
	return true, nil
}

// Hidden returns the ordered exclusion ids for category.
func (o *Overlay) Hidden(ctx context.Context, userID string, category models.TimeRange) ([]string, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if userID == "" {
		return []string{}, nil
	}
	ids, err := o.store.Hidden(ctx, userID, string(category))
	if err != nil {
		return nil, fmt.Errorf("failed to load hidden items: %w", err)
	}
	return ids, nil
}

// MemoryStore keeps exclusion sets in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	sets map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string][]string)}
}

func memoryKey(userID, category string) string { return userID + "\x00" + category }

func (m *MemoryStore) Hidden(_ context.Context, userID, category string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sets[memoryKey(userID, category)]), nil
}

func (m *MemoryStore) Add(_ context.Context, userID, category, itemID string, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(userID, category)
	ids := m.sets[key]
	if slices.Contains(ids, itemID) {
		return true, nil
	}
	if len(ids) >= limit {
		return false, nil
	}
	m.sets[key] = append(ids, itemID)
	return true, nil
}

func (m *MemoryStore) Remove(_ context.Context, userID, category, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(userID, category)
	m.sets[key] = slices.DeleteFunc(m.sets[key], func(id string) bool { return id == itemID })
	if len(m.sets[key]) == 0 {
		delete(m.sets, key)
	}
	return nil
}
