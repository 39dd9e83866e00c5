package main

import (
	"bytes"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// hydrusFixture describes a tiny Hydrus catalog written to t.TempDir().
type hydrusFixture struct {
	tags []Tag
	// files maps tag id to the hash ids carrying it.
	files map[int64][]int64
	// counts overrides current_count per tag; a negative value omits the row.
	counts map[int64]int64
}

// write creates client.master.db and client.caches.db and returns a config pointing at them.
func (f hydrusFixture) write(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()

	master := openFixtureDB(t, filepath.Join(dir, "client.master.db"))
	execScript(t, master, `
CREATE TABLE namespaces (namespace_id INTEGER PRIMARY KEY, namespace TEXT UNIQUE);
CREATE TABLE subtags (subtag_id INTEGER PRIMARY KEY, subtag TEXT UNIQUE);
CREATE TABLE tags (tag_id INTEGER PRIMARY KEY, namespace_id INTEGER, subtag_id INTEGER);
INSERT INTO namespaces (namespace_id, namespace) VALUES (1, '');
`)
	for _, tag := range f.tags {
		exec(t, master, `INSERT OR IGNORE INTO namespaces (namespace) VALUES (?)`, tag.Namespace)
		exec(t, master, `INSERT OR IGNORE INTO subtags (subtag) VALUES (?)`, tag.Subtag)
		exec(t, master, `
INSERT INTO tags (tag_id, namespace_id, subtag_id)
VALUES (?, (SELECT namespace_id FROM namespaces WHERE namespace = ?), (SELECT subtag_id FROM subtags WHERE subtag = ?))`,
			tag.ID, tag.Namespace, tag.Subtag)
	}
	require.NoError(t, master.Close())

	caches := openFixtureDB(t, filepath.Join(dir, "client.caches.db"))
	execScript(t, caches, `
CREATE TABLE combined_files_ac_cache_5 (tag_id INTEGER PRIMARY KEY, current_count INTEGER, pending_count INTEGER);
CREATE TABLE specific_current_mappings_cache_1_5 (hash_id INTEGER, tag_id INTEGER, PRIMARY KEY (hash_id, tag_id));
`)
	for _, tag := range f.tags {
		hashes := f.files[tag.ID]
		for _, h := range hashes {
			exec(t, caches, `INSERT INTO specific_current_mappings_cache_1_5 (hash_id, tag_id) VALUES (?, ?)`, h, tag.ID)
		}
		count := int64(len(hashes))
		if c, ok := f.counts[tag.ID]; ok {
			count = c
		}
		if count >= 0 {
			exec(t, caches, `INSERT INTO combined_files_ac_cache_5 (tag_id, current_count, pending_count) VALUES (?, ?, 0)`, tag.ID, count)
		}
	}
	require.NoError(t, caches.Close())

	cfg := DefaultConfig()
	cfg.DBDir = dir
	cfg.Output = filepath.Join(dir, "out.db")
	return cfg
}

func openFixtureDB(t *testing.T, path string) *sqlite.Conn {
	t.Helper()
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite)
	require.NoError(t, err)
	return conn
}

func exec(t *testing.T, conn *sqlite.Conn, query string, args ...any) {
	t.Helper()
	require.NoError(t, sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}), query)
}

func execScript(t *testing.T, conn *sqlite.Conn, script string) {
	t.Helper()
	require.NoError(t, sqlitex.ExecuteScript(conn, script, nil))
}

// hashRange returns hash ids lo..hi inclusive.
func hashRange(lo, hi int64) []int64 {
	out := make([]int64, 0, hi-lo+1)
	for h := lo; h <= hi; h++ {
		out = append(out, h)
	}
	return out
}

func concat(parts ...[]int64) []int64 {
	var out []int64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// readResults loads every row of table from an exported results file.
func readResults(t *testing.T, path, table string) []ResultRow {
	t.Helper()
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadOnly)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	float := func(stmt *sqlite.Stmt, col int) float64 {
		if stmt.ColumnType(col) == sqlite.TypeNull {
			return math.NaN()
		}
		return stmt.ColumnFloat(col)
	}

	var rows []ResultRow
	err = sqlitex.Execute(conn, `SELECT x, y, Px, Py, Pxy, CPxy, CPyx, MIxy, test_metric_1, test_metric_2 FROM `+quoteIdent(table), &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			rows = append(rows, ResultRow{
				X:       stmt.ColumnText(0),
				Y:       stmt.ColumnText(1),
				Px:      stmt.ColumnInt64(2),
				Py:      stmt.ColumnInt64(3),
				Pxy:     stmt.ColumnInt64(4),
				CPxy:    float(stmt, 5),
				CPyx:    float(stmt, 6),
				MIxy:    float(stmt, 7),
				Metric1: float(stmt, 8),
				Metric2: float(stmt, 9),
			})
			return nil
		},
	})
	require.NoError(t, err)
	return rows
}

func quietProgress() *Progress { return NewProgress(io.Discard, false) }

func bufferProgress() (*Progress, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewProgress(&buf, true), &buf
}
