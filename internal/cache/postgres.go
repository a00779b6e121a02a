package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Store backed by a single Postgres table, for deployments
// that already run Postgres and want a durable shared cache without adding
// Redis. Expired rows are ignored on read and overwritten on write.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and ensures the cache table exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS term_cache (
			cache_key  text PRIMARY KEY,
			value      bytea NOT NULL,
			expires_at timestamptz NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure term_cache table: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := p.pool.QueryRow(ctx,
		"SELECT value FROM term_cache WHERE cache_key = $1 AND expires_at > now()",
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO term_cache (cache_key, value, expires_at)
		VALUES ($1, $2, now() + $3)
		ON CONFLICT (cache_key)
		DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, ttl,
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (p *Postgres) Len(ctx context.Context) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx,
		"SELECT count(*) FROM term_cache WHERE expires_at > now()",
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("cache len: %w", err)
	}
	return n, nil
}

func (p *Postgres) Purge(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, "DELETE FROM term_cache"); err != nil {
		return fmt.Errorf("cache purge: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
