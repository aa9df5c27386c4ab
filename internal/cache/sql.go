package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect selects SQL syntax differences between drivers
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// SQLCache stores values in a single key-value table
type SQLCache struct {
	db        *sql.DB
	dialect   Dialect
	ttl       time.Duration
	opTimeout time.Duration
	now       func() time.Time
}

// NewSQLCache wraps an open database. Call Migrate before first use.
func NewSQLCache(db *sql.DB, dialect Dialect, ttl time.Duration) *SQLCache {
	return &SQLCache{
		db:        db,
		dialect:   dialect,
		ttl:       ttl,
		opTimeout: 5 * time.Second,
		now:       time.Now,
	}
}

// Migrate creates the key-value table if it does not exist
func (c *SQLCache) Migrate(ctx context.Context) error {
	valueType := "BLOB"
	if c.dialect == DialectPostgres {
		valueType = "BYTEA"
	}

	stmt := `CREATE TABLE IF NOT EXISTS kv_store (
	cache_key TEXT PRIMARY KEY,
	value ` + valueType + ` NOT NULL,
	expires_at BIGINT NOT NULL DEFAULT 0
)`
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create kv_store: %w", err)
	}
	return nil
}

// Get retrieves a value
func (c *SQLCache) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	var value []byte
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		c.rebind("SELECT value, expires_at FROM kv_store WHERE cache_key = ?"), key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select kv_store: %w", err)
	}

	if expiresAt > 0 && c.now().UnixNano() > expiresAt {
		_ = c.Delete(key)
		return nil, false, nil
	}

	return value, true, nil
}

// Set upserts a value
func (c *SQLCache) Set(key string, value []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	if ttl == 0 {
		ttl = c.ttl
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixNano()
	}

	_, err := c.db.ExecContext(ctx, c.rebind(
		`INSERT INTO kv_store (cache_key, value, expires_at) VALUES (?, ?, ?)
ON CONFLICT (cache_key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`),
		key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("upsert kv_store: %w", err)
	}
	return nil
}

// Delete removes a key
func (c *SQLCache) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, c.rebind("DELETE FROM kv_store WHERE cache_key = ?"), key); err != nil {
		return fmt.Errorf("delete kv_store: %w", err)
	}
	return nil
}

// Clear removes every key
func (c *SQLCache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.opTimeout)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, "DELETE FROM kv_store"); err != nil {
		return fmt.Errorf("clear kv_store: %w", err)
	}
	return nil
}

// Close closes the database
func (c *SQLCache) Close() error {
	return c.db.Close()
}

// rebind converts ? placeholders to $n for postgres
func (c *SQLCache) rebind(query string) string {
	if c.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
