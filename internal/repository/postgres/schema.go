package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// EnsureSchema creates the users and exercises tables when they are missing.
// It is idempotent and safe to run on every startup; existing rows are kept.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS exercises (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			duration INTEGER NOT NULL,
			description TEXT NOT NULL,
			date TEXT NOT NULL
		)`,
	}

	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}

	slog.Info("schema ready")
	return nil
}

// Reset drops both tables and recreates them empty. Destructive; intended
// for test fixtures, never called during normal startup.
func Reset(ctx context.Context, db *sql.DB) error {
	for _, statement := range []string{
		`DROP TABLE IF EXISTS exercises`,
		`DROP TABLE IF EXISTS users`,
	} {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to reset schema: %w", err)
		}
	}
	return EnsureSchema(ctx, db)
}
