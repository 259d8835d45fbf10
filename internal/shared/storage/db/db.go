package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"studymate-backend/internal/shared/telemetry"
)

// Profile names the kind of process opening the database.
type Profile string

const (
	ProfileServer  Profile = "server"
	ProfileCLI     Profile = "cli"
	ProfileMigrate Profile = "migrate"
)

// Options size the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

var profiles = map[Profile]Options{
	ProfileServer:  {MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour, PingTimeout: 5 * time.Second},
	ProfileCLI:     {MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: 15 * time.Minute, PingTimeout: 3 * time.Second},
	ProfileMigrate: {MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: 15 * time.Minute, PingTimeout: 10 * time.Second},
}

var openDB = sql.Open

var shared struct {
	mu sync.Mutex
	db *sql.DB
}

// OptionsFor returns the pool defaults for p with DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_PING_TIMEOUT applied on top. Unknown profiles use the server
// defaults. Idle connections never exceed open connections.
func OptionsFor(p Profile) Options {
	opts, ok := profiles[p]
	if !ok {
		opts = profiles[ProfileServer]
	}
	envInt("DB_MAX_OPEN_CONNS", &opts.MaxOpenConns)
	envInt("DB_MAX_IDLE_CONNS", &opts.MaxIdleConns)
	envDuration("DB_CONN_MAX_LIFETIME", &opts.ConnMaxLifetime)
	envDuration("DB_PING_TIMEOUT", &opts.PingTimeout)
	if opts.MaxIdleConns > opts.MaxOpenConns {
		opts.MaxIdleConns = opts.MaxOpenConns
	}
	return opts
}

// Connect opens a pgx-backed pool for databaseURL and pings it within opts.PingTimeout.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if opts == (Options{}) {
		opts = profiles[ProfileServer]
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.pool.open", map[string]any{
		"max_open": opts.MaxOpenConns,
		"max_idle": opts.MaxIdleConns,
		"lifetime": opts.ConnMaxLifetime.String(),
	})
	return db, nil
}

// Shared returns the process-wide pool, connecting on first use. A failed connect is not
// remembered, so the next call tries again.
func Shared(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.db != nil {
		telemetry.Info("db.shared.reuse", nil)
		return shared.db, nil
	}
	db, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	shared.db = db
	return db, nil
}

// CloseShared closes the process-wide pool. A later Shared call opens a new one.
func CloseShared() error {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.db == nil {
		return nil
	}
	err := shared.db.Close()
	shared.db = nil
	return err
}

func envInt(key string, dst *int) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "value": raw})
		return
	}
	*dst = v
}

func envDuration(key string, dst *time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "value": raw})
		return
	}
	*dst = v
}
