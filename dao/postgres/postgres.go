package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore holds the pgx connection pool shared by the DAOs.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// New creates a new connection pool for the given DSN.
func New(dsn string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return &PostgresStore{Pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.Pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// EnsureSchema creates the tables and indexes if they do not exist. The
// partial unique index on open visits is what makes entry de-duplication
// atomic under concurrent writers.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS venues (
			id BIGSERIAL PRIMARY KEY,
			place_id VARCHAR(50) UNIQUE NOT NULL,
			name VARCHAR(200) NOT NULL,
			address VARCHAR(500),
			latitude DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL,
			category VARCHAR(50),
			phone VARCHAR(20),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS congestion_patterns (
			id BIGSERIAL PRIMARY KEY,
			place_id VARCHAR(50) UNIQUE NOT NULL,
			venue_name VARCHAR(200),
			cluster INT,
			avg_pop_all DOUBLE PRECISION,
			max_pop DOUBLE PRECISION,
			avg_lunch DOUBLE PRECISION,
			avg_dinner DOUBLE PRECISION,
			avg_weekday DOUBLE PRECISION,
			avg_weekend DOUBLE PRECISION,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS visit_intentions (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(50) NOT NULL,
			venue_id BIGINT NOT NULL REFERENCES venues(id),
			intended_time TIMESTAMPTZ NOT NULL,
			intended_people INT NOT NULL,
			intention_timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_visit_intentions_venue_time
			ON visit_intentions (venue_id, intended_time)`,
		`CREATE TABLE IF NOT EXISTS actual_visits (
			id BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(50) NOT NULL,
			venue_id BIGINT NOT NULL REFERENCES venues(id),
			actual_entry_time TIMESTAMPTZ NOT NULL,
			actual_exit_time TIMESTAMPTZ,
			intended_people INT,
			is_valid_visit BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_actual_visits_open
			ON actual_visits (user_id, venue_id)
			WHERE actual_exit_time IS NULL`,
	}

	for _, stmt := range stmts {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
