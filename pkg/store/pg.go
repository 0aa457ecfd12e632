// Package store provides the PostgreSQL-backed account directory. It
// implements auth.Directory so deployments can choose between the in-memory
// store and a shared database without touching the handlers.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rinexis/authreview/pkg/auth"
)

// PGDirectory handles account persistence using PostgreSQL
type PGDirectory struct {
	pool *pgxpool.Pool
}

var _ auth.Directory = (*PGDirectory)(nil)

// NewPGDirectory creates a new PostgreSQL-backed account directory
func NewPGDirectory(ctx context.Context, databaseURL string) (*PGDirectory, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pooling configuration
	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	d := &PGDirectory{pool: pool}

	// Create tables if they don't exist
	if err := d.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return d, nil
}

// Ping checks database connectivity
func (d *PGDirectory) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Close closes the database connection pool
func (d *PGDirectory) Close() error {
	d.pool.Close()
	return nil
}
