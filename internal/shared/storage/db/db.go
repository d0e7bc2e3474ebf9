// Package db opens the Postgres pool that backs user profiles.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"resume-matcher/internal/shared/telemetry"
)

// Options controls database pool and connectivity behavior.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// ErrNoDatabaseURL is returned when no connection string is configured.
var ErrNoDatabaseURL = errors.New("DATABASE_URL is empty")

var openDB = sql.Open

// DefaultServerOptions returns defaults for the API process. Only profile
// upserts hit the database, so the pool stays small.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	}
}

// DefaultMigrateOptions returns defaults for short-lived CLI migrations.
func DefaultMigrateOptions() Options {
	opts := DefaultServerOptions()
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1
	return opts
}

// OptionsFromEnv overrides defaults with DB_* env vars if present.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	for key, dst := range map[string]*int{
		"DB_MAX_OPEN_CONNS": &opts.MaxOpenConns,
		"DB_MAX_IDLE_CONNS": &opts.MaxIdleConns,
	} {
		if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil {
				*dst = v
			} else {
				telemetry.Warn("db.env_invalid", map[string]any{"key": key, "err": err})
			}
		}
	}
	for key, dst := range map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME":  &opts.ConnMaxLifetime,
		"DB_CONN_MAX_IDLE_TIME": &opts.ConnMaxIdleTime,
		"DB_PING_TIMEOUT":       &opts.PingTimeout,
	} {
		if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
			if v, err := time.ParseDuration(raw); err == nil {
				*dst = v
			} else {
				telemetry.Warn("db.env_invalid", map[string]any{"key": key, "err": err})
			}
		}
	}
	return opts
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 4
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = 2
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = time.Hour
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
	return o
}

// Connect opens a pgx-backed *sql.DB and verifies connectivity.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}
	opts = opts.withDefaults()

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := db.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return db, nil
}

// pool holds the process-wide connection. Concurrent callers wait for the
// in-flight attempt; a failed attempt is retried by the next caller.
type pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	db       *sql.DB
	inflight bool
}

func newPool() *pool {
	p := &pool{}
	p.cond = sync.NewCond(&p.mu)
	return p
}

var shared = newPool()

func (p *pool) get(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	p.mu.Lock()
	for p.db == nil && p.inflight {
		p.cond.Wait()
	}
	if p.db != nil {
		db := p.db
		p.mu.Unlock()
		return db, nil
	}
	p.inflight = true
	p.mu.Unlock()

	db, err := Connect(ctx, databaseURL, opts)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inflight = false
	if err == nil {
		p.db = db
	}
	p.cond.Broadcast()
	return p.db, err
}

// GetSingleton returns the process-wide *sql.DB, connecting on first use.
func GetSingleton(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	return shared.get(ctx, databaseURL, opts)
}
