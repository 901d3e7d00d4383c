package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS counsel_cache (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`

// PostgresCache keeps entries in the counsel_cache table.
type PostgresCache struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

func NewPostgresCache(ctx context.Context, dbURL string, ttl time.Duration) (*PostgresCache, error) {
	pool, err := OpenPool(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, cacheSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create counsel_cache: %w", err)
	}
	return &PostgresCache{pool: pool, ttl: ttl}, nil
}

func (c *PostgresCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	var data []byte
	err := c.pool.QueryRow(ctx,
		`SELECT value FROM counsel_cache WHERE key = $1 AND expires_at > NOW()`, key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		recordLookup("postgres", false, nil)
		return false, nil
	}
	if err != nil {
		recordLookup("postgres", false, err)
		return false, fmt.Errorf("failed to query cache: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		recordLookup("postgres", false, err)
		return false, fmt.Errorf("failed to unmarshal db cached data: %w", err)
	}
	recordLookup("postgres", true, nil)
	return true, nil
}

func (c *PostgresCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	_, err = c.pool.Exec(ctx, `
		INSERT INTO counsel_cache (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, data, time.Now().Add(c.ttl),
	)
	if err != nil {
		return fmt.Errorf("failed to save to db cache: %w", err)
	}
	return nil
}

func (c *PostgresCache) Close() error {
	c.pool.Close()
	return nil
}
