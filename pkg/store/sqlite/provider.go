// Package sqlite provides a store.Provider backed by an embedded SQLite
// database. Every document is one row keyed by its path.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultFileName is the database file created inside a data directory.
const DefaultFileName = "mockhost.db"

const (
	secureFileMode = 0600
	secureDirMode  = 0700
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	path       TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Provider keeps documents in a SQLite database.
type Provider struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path.
// Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string) (*Provider, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), secureDirMode); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		if err := ensureSecureFile(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Provider{db: db, now: time.Now}, nil
}

// OpenDir opens DefaultFileName inside dir.
func OpenDir(ctx context.Context, dir string) (*Provider, error) {
	return Open(ctx, filepath.Join(dir, DefaultFileName))
}

// Close closes the database.
func (p *Provider) Close() error {
	return p.db.Close()
}

// Read implements store.Provider.
func (p *Provider) Read(ctx context.Context, path string) ([]byte, bool, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE path = ?`, path).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read document: %w", err)
	}
	return body, true, nil
}

// Write implements store.Provider. The upsert replaces the row in one statement.
func (p *Provider) Write(ctx context.Context, path string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO documents (path, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		path, data, p.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Paths lists stored document paths in lexical order.
func (p *Provider) Paths(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT path FROM documents ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// ensureSecureFile creates the database file with owner-only permissions
// before the driver opens it.
func ensureSecureFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, secureFileMode)
		if err != nil {
			return fmt.Errorf("failed to create database file: %w", err)
		}
		return f.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to stat database file: %w", err)
	}
	if info.Mode().Perm() != secureFileMode {
		if err := os.Chmod(path, secureFileMode); err != nil {
			return fmt.Errorf("failed to set secure permissions: %w", err)
		}
	}
	return nil
}
