package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spotilytics/internal/models"
	"github.com/desertthunder/spotilytics/internal/overlay"
)

// HiddenRepository stores exclusion sets in the hidden_items table.
type HiddenRepository struct {
	db *sql.DB
}

func NewHiddenRepository(db *sql.DB) *HiddenRepository {
	return &HiddenRepository{db: db}
}

// Hidden returns the ids for (userID, category) in insertion order.
func (r *HiddenRepository) Hidden(ctx context.Context, userID, category string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_id FROM hidden_items
		WHERE user_id = ? AND category = ?
		ORDER BY position ASC
	`, userID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query hidden items: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan hidden item: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Add inserts itemID when the set holds fewer than limit ids, in one statement.
// It reports whether itemID is a member afterwards.
func (r *HiddenRepository) Add(ctx context.Context, userID, category, itemID string, limit int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO hidden_items (id, user_id, category, item_id, position, created_at)
		SELECT ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM hidden_items WHERE user_id = ? AND category = ?),
			?
		WHERE (SELECT COUNT(*) FROM hidden_items WHERE user_id = ? AND category = ?) < ?
	`, newID(), userID, category, itemID, userID, category, time.Now().UTC(), userID, category, limit)
	if err != nil {
		return false, fmt.Errorf("failed to insert hidden item: %w", err)
	}

	var member bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM hidden_items WHERE user_id = ? AND category = ? AND item_id = ?)
	`, userID, category, itemID).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("failed to check hidden item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit hidden item: %w", err)
	}
	return member, nil
}

// Remove deletes itemID from the set. Absent ids are not an error.
func (r *HiddenRepository) Remove(ctx context.Context, userID, category, itemID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM hidden_items WHERE user_id = ? AND category = ? AND item_id = ?
	`, userID, category, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete hidden item: %w", err)
	}
	return nil
}

var (
	_ overlay.Store                            = (*HiddenRepository)(nil)
	_ models.Repository[*models.SessionRecord] = (*SessionRepository)(nil)
)
