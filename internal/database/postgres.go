package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ DB = (*pgxpool.Pool)(nil)

type Config struct {
	URL           string
	MaxConns      int32
	MinConns      int32
	MaxConnLife   time.Duration
	MaxConnIdle   time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

func NewConfig(url string) *Config {
	return &Config{
		URL:           url,
		MaxConns:      10,
		MinConns:      1,
		MaxConnLife:   30 * time.Minute,
		MaxConnIdle:   5 * time.Minute,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
}

// Connect opens a pool and pings it, retrying up to MaxRetries times.
func Connect(ctx context.Context, config *Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}
	poolConfig.MaxConns = config.MaxConns
	poolConfig.MinConns = config.MinConns
	poolConfig.MaxConnLifetime = config.MaxConnLife
	poolConfig.MaxConnIdleTime = config.MaxConnIdle

	var lastErr error
	for i := 0; i <= config.MaxRetries; i++ {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			lastErr = fmt.Errorf("failed to create pool: %w", err)
		} else if err := pool.Ping(ctx); err != nil {
			pool.Close()
			lastErr = fmt.Errorf("failed to ping database: %w", err)
		} else {
			return pool, nil
		}

		log.Warn().Err(lastErr).Int("attempt", i+1).Msg("Postgres connection failed")
		if i < config.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(config.RetryInterval):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d retries: %w", config.MaxRetries, lastErr)
}
