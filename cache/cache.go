// Package cache stores parsed nom programs in SQLite, keyed by a
// fingerprint of the source text, so unchanged files are not re-parsed.
package cache

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/zeebo/xxh3"
	_ "modernc.org/sqlite"

	"github.com/nanalan/nom/compiler"
	"github.com/nanalan/nom/compiler/hash"
	"github.com/nanalan/nom/compiler/wire"
)

// formatVersion changes whenever the stored payload can no longer be
// decoded by this build. Rows with another version are treated as misses.
const formatVersion = 1

var log = commonlog.GetLogger("nom.cache")

// Entry is one cached parse.
type Entry struct {
	Statements []compiler.Stmt
	Hash       string // hex SHA-256 of the normalized AST
}

// Cache is a SQLite-backed parse cache. It is safe for concurrent use.
type Cache struct {
	db   *sql.DB
	path string
	mu   sync.Mutex

	hits   int
	misses int
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS parses (
		key      TEXT PRIMARY KEY,
		version  INTEGER NOT NULL,
		ast      BLOB NOT NULL,
		ast_hash TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened parse cache %s", path)
	return &Cache{db: db, path: path}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Key returns the cache key for a source text.
func Key(source string) string {
	b := xxh3.HashString128(source).Bytes()
	return hex.EncodeToString(b[:])
}

// Get looks up the parse of source. A miss returns nil and no error.
func (c *Cache) Get(ctx context.Context, source string) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := Key(source)
	var (
		version int
		blob    []byte
		astHash string
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT version, ast, ast_hash FROM parses WHERE key = ?", key,
	).Scan(&version, &blob, &astHash)
	if errors.Is(err, sql.ErrNoRows) {
		c.misses++
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying parse %s: %w", key, err)
	}
	if version != formatVersion {
		c.misses++
		log.Debugf("stale cache row %s (version %d)", key, version)
		return nil, nil
	}

	stmts, err := wire.UnmarshalCBOR(blob)
	if err != nil {
		// A corrupt row is a miss; the next Put overwrites it.
		c.misses++
		log.Warningf("dropping unreadable cache row %s: %s", key, err)
		return nil, nil
	}
	c.hits++
	return &Entry{Statements: stmts, Hash: astHash}, nil
}

// Put stores the parse of source.
func (c *Cache) Put(ctx context.Context, source string, stmts []compiler.Stmt) (*Entry, error) {
	blob, err := wire.MarshalCBOR(stmts)
	if err != nil {
		return nil, fmt.Errorf("encoding parse: %w", err)
	}
	entry := &Entry{Statements: stmts, Hash: hash.Hex(hash.HashProgram(stmts))}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO parses (key, version, ast, ast_hash) VALUES (?, ?, ?, ?)",
		Key(source), formatVersion, blob, entry.Hash,
	)
	if err != nil {
		return nil, fmt.Errorf("saving parse: %w", err)
	}
	return entry, nil
}

// Parse returns the cached parse of source, parsing and storing it on a
// miss. Parse failures are returned as-is and never cached.
func (c *Cache) Parse(ctx context.Context, source string) (*Entry, error) {
	entry, err := c.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return entry, nil
	}

	stmts, err := compiler.ParseStatements(source)
	if err != nil {
		return nil, err
	}
	return c.Put(ctx, source, stmts)
}

// Stats reports lookups since Open.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of stored parses.
func (c *Cache) Len(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parses").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting parses: %w", err)
	}
	return n, nil
}

// Clear removes every stored parse.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.ExecContext(ctx, "DELETE FROM parses"); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
