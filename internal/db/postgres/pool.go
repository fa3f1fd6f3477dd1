// Package postgres connects to the externally owned listing and location tables.
// Sessions are read-only: this service never writes to them.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/jobscout/internal/db"
)

// readOnlySession is run on every new pool connection.
const readOnlySession = "SET SESSION CHARACTERISTICS AS TRANSACTION READ ONLY"

// Config holds pool parameters.
type Config struct {
	DSN      string
	MaxConns int32
	MinConns int32
}

// DB owns the pgx pool.
type DB struct {
	pool *pgxpool.Pool
}

// Compile-time check: DB implements db.Pinger.
var _ db.Pinger = (*DB)(nil)

// poolConfig parses the DSN and applies pool sizing and the read-only session hook.
func poolConfig(cfg Config) (*pgxpool.Config, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is required")
	}
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, readOnlySession)
		return err //nolint:wrapcheck // reported by pgxpool
	}
	return pc, nil
}

// Connect creates the pool. It does not wait for the server; see WaitForReady.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: err}
	}
	return &DB{pool: pool}, nil
}

// Pool exposes the pool to repositories.
func (d *DB) Pool() *pgxpool.Pool { return d.pool }

// Ping checks connectivity.
func (d *DB) Ping(ctx context.Context) error {
	if err := d.pool.Ping(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases every pool connection.
func (d *DB) Close() {
	d.pool.Close()
}

// WaitForReady polls Ping until the server responds or timeout expires.
func (d *DB) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for postgres: %w", ctx.Err())
		case <-ticker.C:
			if err := d.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}
