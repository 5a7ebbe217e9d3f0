package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// migrations contains the slot schema migrations in order.
var migrations = []struct {
	Version string
	SQL     string
}{
	{
		Version: "000001_create_vault_slots",
		SQL: `
			CREATE TABLE IF NOT EXISTS vault_slots (
				name       VARCHAR(64) PRIMARY KEY,
				payload    BYTEA       NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
}

// PostgresSlot persists the record set as one row in a keyed slot table.
type PostgresSlot struct {
	pool *pgxpool.Pool
	name string
}

// NewPostgresSlot connects to databaseURL, runs slot migrations, and
// returns a slot bound to the given slot name.
func NewPostgresSlot(ctx context.Context, databaseURL, name string) (*PostgresSlot, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresSlot{pool: pool, name: name}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	slog.Info("connected to database", "slot", name)
	return s, nil
}

func (s *PostgresSlot) runMigrations(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		err := s.pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)",
			m.Version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status for %s: %w", m.Version, err)
		}
		if exists {
			continue
		}

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", m.Version, err)
		}

		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to execute migration %s: %w", m.Version, err)
		}

		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version); err != nil {
			tx.Rollback(ctx)
			return fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Version, err)
		}

		slog.Info("applied migration", "version", m.Version)
	}

	return nil
}

func (s *PostgresSlot) Load(ctx context.Context) ([]byte, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		"SELECT payload FROM vault_slots WHERE name = $1", s.name,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load slot %s: %w", s.name, err)
	}
	return payload, true, nil
}

func (s *PostgresSlot) Save(ctx context.Context, data []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO vault_slots (name, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = NOW()
	`, s.name, data)
	if err != nil {
		return fmt.Errorf("failed to save slot %s: %w", s.name, err)
	}
	return nil
}

func (s *PostgresSlot) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (s *PostgresSlot) Close() {
	s.pool.Close()
}
