// Package users persists per-user weather defaults in Postgres.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/weatherbot/core/logger"
	"github.com/m3rciful/weatherbot/internal/domain"
)

// Repository provides access to the users table.
type Repository struct {
	db *sqlx.DB
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Get loads a profile by user ID. Returns (nil, nil) when the user is unknown.
func (r *Repository) Get(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	const q = `SELECT user_id, default_city, default_days, created_at FROM users WHERE user_id = $1`

	var profile domain.UserProfile
	if err := r.db.GetContext(ctx, &profile, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.DB.Error("user select failed",
			slog.String("event", "users.get.fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("users: get %d: %w", userID, err)
	}
	return &profile, nil
}

// Upsert creates the row if missing and updates only the fields provided.
// A nil city or days leaves the stored value untouched; on first insert
// missing days fall back to the default of 3.
func (r *Repository) Upsert(ctx context.Context, userID int64, city *string, days *int) error {
	const q = `
		INSERT INTO users (user_id, default_city, default_days)
		VALUES ($1, $2, COALESCE($3, 3))
		ON CONFLICT (user_id) DO UPDATE SET
			default_city = COALESCE($2, users.default_city),
			default_days = COALESCE($3, users.default_days)`

	if _, err := r.db.ExecContext(ctx, q, userID, city, days); err != nil {
		logger.DB.Error("user upsert failed",
			slog.String("event", "users.upsert.fail"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("users: upsert %d: %w", userID, err)
	}

	attrs := []any{
		slog.String("event", "users.upsert"),
		slog.Int64("user_id", userID),
	}
	if city != nil {
		attrs = append(attrs, slog.String("city", *city))
	}
	if days != nil {
		attrs = append(attrs, slog.Int("days", *days))
	}
	logger.DB.Debug("user upsert", attrs...)
	return nil
}
