// Package postgres provides a Postgres-backed blocklist store for
// deployments that already carry a relational database instead of Redis.
// Unlike the Redis store it also exposes the maintenance operations used by
// moderation tooling.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one blocklist row as seen by moderation tooling.
type Entry struct {
	Subject   string
	Reason    string
	CreatedAt time.Time
}

// Store implements blocklist.Store over a `blocklist` table.
type Store struct {
	pool *pgxpool.Pool
}

// New constructs a Postgres-backed blocklist store.
func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}
	return &Store{pool: pool}, nil
}

// Migrate creates the blocklist table if it does not exist. Called once at
// startup before traffic is accepted.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS blocklist (
			subject    TEXT PRIMARY KEY,
			reason     TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("migrate blocklist table: %w", err)
	}
	return nil
}

// Contains reports whether subject is blocked.
func (s *Store) Contains(ctx context.Context, subject string) (bool, error) {
	if subject == "" {
		return false, nil
	}
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM blocklist WHERE subject = $1)`, subject,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check blocklist: %w", err)
	}
	return exists, nil
}

// Add upserts a blocklist entry.
func (s *Store) Add(ctx context.Context, subject, reason string) error {
	if subject == "" {
		return fmt.Errorf("subject is required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO blocklist (subject, reason)
		VALUES ($1, $2)
		ON CONFLICT (subject) DO UPDATE SET reason = EXCLUDED.reason`,
		subject, reason)
	if err != nil {
		return fmt.Errorf("add blocklist entry: %w", err)
	}
	return nil
}

// Remove deletes a blocklist entry.
func (s *Store) Remove(ctx context.Context, subject string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM blocklist WHERE subject = $1`, subject)
	if err != nil {
		return fmt.Errorf("remove blocklist entry: %w", err)
	}
	return nil
}

// List returns all entries ordered by creation time.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT subject, reason, created_at FROM blocklist ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list blocklist entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Subject, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blocklist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Health verifies the backing connection.
func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
