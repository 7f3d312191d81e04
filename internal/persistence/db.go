// Package persistence implements the MySQL-backed repositories for the
// Resume record, the append-only search audit log, and schema migration.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// DB wraps a pooled MySQL connection and exposes the two repositories the
// pipeline needs. Mirrors the teacher's PostgresDB shape: one struct owning
// the pool, repositories constructed once against it.
type DB struct {
	conn    *sql.DB
	Resumes ResumeRepository
	Search  SearchRepository
}

// PoolConfig configures the bounded connection pool (spec §5: "5 base + 5
// overflow, 30s checkout timeout, pre-ping, 1h recycle").
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig returns the spec's documented pool sizing.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour}
}

// Open connects to MySQL at dsn, applies pool sizing, and pre-pings.
func Open(dsn string, pool PoolConfig) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening mysql connection: %w", err)
	}
	conn.SetMaxOpenConns(pool.MaxOpenConns)
	conn.SetMaxIdleConns(pool.MaxIdleConns)
	conn.SetConnMaxLifetime(pool.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging mysql: %w", err)
	}

	return &DB{
		conn:    conn,
		Resumes: &mysqlResumeRepo{db: conn},
		Search:  &mysqlSearchRepo{db: conn},
	}, nil
}

func (d *DB) Close() error { return d.conn.Close() }

func (d *DB) Ping(ctx context.Context) error { return d.conn.PingContext(ctx) }
