package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/spotilytics/internal/shared"
)

// requireAffected turns a zero-row result into a not-found error for what/id.
func requireAffected(result sql.Result, what, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found: %s", what, id)
	}
	return nil
}

func newID() string { return shared.GenerateID() }
