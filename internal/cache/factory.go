package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"           // Postgres driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/ppiankov/wastewise/internal/common"
	"github.com/ppiankov/wastewise/internal/model"
)

// Open builds the persistence substrate named by cfg.Backend. The returned
// close function releases connections and is never nil.
func Open(ctx context.Context, cfg model.LedgerConfig) (Cache, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(cfg.Backend) {
	case "memory":
		return NewMemoryCache(NoExpiration, 10*time.Minute), noop, nil

	case "", "disk":
		return NewDiskCache(ExpandHome(cfg.Path), NoExpiration), noop, nil

	case "redis":
		c, err := NewRedisCacheFromURL(cfg.RedisURL, NoExpiration)
		if err != nil {
			return nil, noop, err
		}
		return NewLayeredCache(time.Minute, c), c.Close, nil

	case "sqlite", "sqlite3":
		path := ExpandHome(cfg.Path)
		if cfg.DSN != "" {
			path = cfg.DSN
		}
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, noop, fmt.Errorf("create database directory: %w", err)
		}
		db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		return openSQL(ctx, db, DialectSQLite)

	case "postgres", "postgresql":
		if cfg.DSN == "" {
			return nil, noop, fmt.Errorf("%w: ledger.dsn is required for postgres", common.ErrInvalidConfig)
		}
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		return openSQL(ctx, db, DialectPostgres)

	case "s3":
		c, err := NewS3CacheFromConfig(ctx, cfg.Bucket, cfg.Prefix, cfg.Region, NoExpiration)
		if err != nil {
			return nil, noop, err
		}
		return NewLayeredCache(time.Minute, c), noop, nil
	}

	return nil, noop, fmt.Errorf("%w: unknown ledger backend %q (supported: memory, disk, redis, sqlite, postgres, s3)",
		common.ErrInvalidConfig, cfg.Backend)
}

func openSQL(ctx context.Context, db *sql.DB, dialect Dialect) (Cache, func() error, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, func() error { return nil }, fmt.Errorf("ping %s: %w", dialect, err)
	}
	c := NewSQLCache(db, dialect, NoExpiration)
	if err := c.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, func() error { return nil }, err
	}
	return c, c.Close, nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
