package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresOpTimeout = 5 * time.Second

// PostgresStore keeps entries in a single safetrack_kv table.
type PostgresStore struct {
	pool *pgxpool.Pool
	ctx  context.Context
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	ddl := `CREATE TABLE IF NOT EXISTS safetrack_kv (
		key         TEXT NOT NULL PRIMARY KEY,
		value       TEXT NOT NULL,
		modified_on timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP);`

	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create safetrack_kv: %w", err)
	}

	return &PostgresStore{pool: pool, ctx: context.Background()}, nil
}

func (p *PostgresStore) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(p.ctx, postgresOpTimeout)
	defer cancel()

	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM safetrack_kv WHERE key=@key`, pgx.NamedArgs{"key": key}).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresStore) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(p.ctx, postgresOpTimeout)
	defer cancel()

	upsert := `INSERT INTO safetrack_kv (key, value) VALUES (@key, @value)
			   ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, modified_on=NOW();`

	if _, err := p.pool.Exec(ctx, upsert, pgx.NamedArgs{"key": key, "value": value}); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Remove(key string) error {
	ctx, cancel := context.WithTimeout(p.ctx, postgresOpTimeout)
	defer cancel()

	if _, err := p.pool.Exec(ctx, `DELETE FROM safetrack_kv WHERE key=@key`, pgx.NamedArgs{"key": key}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Close() {
	p.pool.Close()
}
