package client

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresApplicationName = "vocal_service"

// PostgresOptions tunes the session store pool. Zero values keep the defaults.
type PostgresOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
}

// PostgresClient wraps the pgxpool.Pool used by the session store.
type PostgresClient struct {
	Pool *pgxpool.Pool
}

// NewPostgresClient connects and pings the session database.
func NewPostgresClient(ctx context.Context, connectionString string, opts PostgresOptions) (*PostgresClient, error) {
	config, err := poolConfig(connectionString, opts)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresClient{Pool: pool}, nil
}

// poolConfig parses the DSN and applies opts. An application_name in the DSN wins.
func poolConfig(connectionString string, opts PostgresOptions) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	config.MaxConns = 10
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = min(opts.MinConns, config.MaxConns)
	}
	config.MaxConnIdleTime = 5 * time.Minute
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	if config.ConnConfig.RuntimeParams == nil {
		config.ConnConfig.RuntimeParams = make(map[string]string)
	}
	if _, ok := config.ConnConfig.RuntimeParams["application_name"]; !ok {
		config.ConnConfig.RuntimeParams["application_name"] = postgresApplicationName
	}

	return config, nil
}

// Ping checks database connectivity.
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.Pool.Ping(ctx)
}

// Close closes the database connection pool.
func (c *PostgresClient) Close() {
	c.Pool.Close()
}
