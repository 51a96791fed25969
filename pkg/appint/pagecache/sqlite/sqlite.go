package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/internalerr"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/pagecache"
)

// sqliteCache implements pagecache.Cache using SQLite
type sqliteCache struct {
	db     *sql.DB
	closed atomic.Bool
}

// Open opens a SQLite page cache with WAL mode enabled.
func Open(ctx context.Context, path string) (pagecache.Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Concurrent fetch workers share one connection
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteCache{db: db}, nil
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS pages (
	url TEXT PRIMARY KEY,
	status INTEGER NOT NULL,
	content TEXT NOT NULL,
	fetched_at TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection
func (c *sqliteCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.db.Close()
}

func (c *sqliteCache) Get(ctx context.Context, url string) (pagecache.Page, bool, error) {
	if c.closed.Load() {
		return pagecache.Page{}, false, internalerr.ErrCacheClosed
	}

	p := pagecache.Page{URL: url}
	var fetchedAt string
	err := c.db.QueryRowContext(ctx,
		`SELECT status, content, fetched_at FROM pages WHERE url = ?`, url,
	).Scan(&p.StatusCode, &p.Content, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return pagecache.Page{}, false, nil
	}
	if err != nil {
		return pagecache.Page{}, false, err
	}
	if p.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
		return pagecache.Page{}, false, err
	}
	return p, true, nil
}

func (c *sqliteCache) Put(ctx context.Context, p pagecache.Page) error {
	if c.closed.Load() {
		return internalerr.ErrCacheClosed
	}
	if p.URL == "" {
		return nil
	}

	const stmt = `
INSERT INTO pages (url, status, content, fetched_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	status=excluded.status,
	content=excluded.content,
	fetched_at=excluded.fetched_at;
`
	_, err := c.db.ExecContext(ctx, stmt,
		p.URL,
		p.StatusCode,
		p.Content,
		p.FetchedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (c *sqliteCache) Delete(ctx context.Context, url string) error {
	if c.closed.Load() {
		return internalerr.ErrCacheClosed
	}
	_, err := c.db.ExecContext(ctx, `DELETE FROM pages WHERE url = ?`, url)
	return err
}
