package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bobarin/clipforge/internal/models"
	"github.com/google/uuid"
)

// GetUser retrieves a user by ID. User rows are written by the main
// backend after Supabase Auth verification; this service only reads them
// for their auto-edit preferences.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, display_name, plan, preferences, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}
	var preferences []byte
	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.Plan,
		&preferences, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := decodeDoc(preferences, &user.Preferences, "preferences"); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserPreferences loads a user's auto-edit preferences. A missing user
// or empty preferences column yields nil, which the editor treats as
// defaults.
func (db *DB) GetUserPreferences(ctx context.Context, id uuid.UUID) (*models.Preferences, error) {
	user, err := db.GetUser(ctx, id)
	if err == nil {
		return user.Preferences, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return nil, err
}
