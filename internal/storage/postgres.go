package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresKV keeps values in a single kv_store table keyed by device and
// key, so devices sharing a database never see each other's state.
type PostgresKV struct {
	db     *sql.DB
	device string
}

func NewPostgresKV(db *sql.DB, device string) *PostgresKV {
	return &PostgresKV{db: db, device: DeviceName(device)}
}

// OpenPostgres opens a database/sql handle through the pgx driver.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("database url is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := withTimeout(ctx, pingTimeout, db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

func (s *PostgresKV) EnsureSchema(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS kv_store (
				device     TEXT NOT NULL,
				key        TEXT NOT NULL,
				value      TEXT NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (device, key)
			)
		`)
		return err
	})
}

func (s *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE device = $1 AND key = $2`, s.device, key).Scan(&v)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *PostgresKV) Set(ctx context.Context, key, value string) error {
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO kv_store (device, key, value, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (device, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		`, s.device, key, value)
		return err
	})
	if err != nil {
		return fmt.Errorf("postgres set %q: %w", key, err)
	}
	return nil
}

func (s *PostgresKV) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, s.db.PingContext)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
