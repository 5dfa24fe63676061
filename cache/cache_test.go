package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nanalan/nom/compiler"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "sub", "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestKey(t *testing.T) {
	require.Equal(t, Key("print 1"), Key("print 1"))
	require.NotEqual(t, Key("print 1"), Key("print 2"))
	require.Len(t, Key(""), 32)
}

func TestParseMissThenHit(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	src := "square (x) { x * x }\nprint square 4"

	first, err := c.Parse(ctx, src)
	require.NoError(t, err)

	want, err := compiler.ParseStatements(src)
	require.NoError(t, err)
	require.Equal(t, want, first.Statements)
	require.Len(t, first.Hash, 64)

	second, err := c.Parse(ctx, src)
	require.NoError(t, err)
	require.Equal(t, first.Statements, second.Statements)
	require.Equal(t, first.Hash, second.Hash)

	hits, misses := c.Stats()
	require.Equal(t, 1, hits)
	require.Equal(t, 1, misses)

	n, err := c.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestParseErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	_, err := c.Parse(ctx, "foo }")
	var synErr *compiler.SyntaxError
	require.True(t, errors.As(err, &synErr))
	require.Equal(t, 4, synErr.Offset)

	n, err := c.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestGetMiss(t *testing.T) {
	c := openTemp(t)
	entry, err := c.Get(context.Background(), "nothing here")
	require.NoError(t, err)
	require.Nil(t, entry)
}

func TestEmptyProgram(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	_, err := c.Parse(ctx, "")
	require.NoError(t, err)

	entry, err := c.Get(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Empty(t, entry.Statements)
}

func TestCorruptRowIsMiss(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	src := "print 1"

	_, err := c.db.Exec(
		"INSERT INTO parses (key, version, ast, ast_hash) VALUES (?, ?, ?, ?)",
		Key(src), formatVersion, []byte{0xff, 0x00}, "x",
	)
	require.NoError(t, err)

	entry, err := c.Get(ctx, src)
	require.NoError(t, err)
	require.Nil(t, entry)

	entry, err = c.Parse(ctx, src)
	require.NoError(t, err)
	require.NotEqual(t, "x", entry.Hash)
}

func TestStaleVersionIsMiss(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	src := "print 1"

	_, err := c.Parse(ctx, src)
	require.NoError(t, err)
	_, err = c.db.Exec("UPDATE parses SET version = ?", formatVersion+1)
	require.NoError(t, err)

	entry, err := c.Get(ctx, src)
	require.NoError(t, err)
	require.Nil(t, entry)
}

func TestReopenKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := Open(path)
	require.NoError(t, err)
	_, err = c.Parse(ctx, "baz 1, 2")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()

	entry, err := c.Get(ctx, "baz 1, 2")
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, path, c.Path())

	require.NoError(t, c.Clear(ctx))
	n, err := c.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
