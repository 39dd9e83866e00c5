package main

import (
	"fmt"
	"iter"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Catalog reads a Hydrus client catalog. It owns a single in-memory SQLite
// connection with client.master.db attached as "master" and client.caches.db
// as "caches", both read-only. The main schema of that connection is free for
// the results table (see ResultStore).
type Catalog struct {
	conn *sqlite.Conn

	queryAll    string // every partner
	queryHigher string // partners with a higher tag id only
}

// OpenCatalog opens the working connection and attaches both Hydrus databases.
func OpenCatalog(cfg *Config, prog *Progress) (*Catalog, error) {
	for _, path := range []string{cfg.MasterDB(), cfg.CachesDB()} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
	}

	conn, err := sqlite.OpenConn(":memory:", sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenURI)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrSourceUnavailable, err)
	}

	if err := sqlitex.ExecuteTransient(conn, "PRAGMA temp_store = MEMORY", nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	for _, a := range []struct{ path, schema string }{
		{cfg.MasterDB(), "master"},
		{cfg.CachesDB(), "caches"},
	} {
		uri, err := readOnlyURI(a.path)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		if err := sqlitex.ExecuteTransient(conn, "ATTACH DATABASE ? AS "+a.schema, &sqlitex.ExecOptions{
			Args: []any{uri},
		}); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("%w: attach %s: %v", ErrSourceUnavailable, a.path, err)
		}
		prog.Verbose("Attached %s as %s", a.path, a.schema)
	}

	c := &Catalog{
		conn:        conn,
		queryAll:    coOccurrenceQuery(cfg.FilesTable, cfg.MappingsTable, false),
		queryHigher: coOccurrenceQuery(cfg.FilesTable, cfg.MappingsTable, true),
	}
	return c, nil
}

// Conn returns the working connection shared with the result store.
func (c *Catalog) Conn() *sqlite.Conn { return c.conn }

// Close closes the working connection. Anything not exported is lost.
func (c *Catalog) Close() error { return c.conn.Close() }

// TagIDs lists the whole tag universe in ascending id order.
func (c *Catalog) TagIDs() ([]int64, error) {
	var ids []int64
	err := sqlitex.Execute(c.conn, "SELECT tag_id FROM master.tags ORDER BY tag_id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			ids = append(ids, stmt.ColumnInt64(0))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return ids, nil
}

// ResolveTag looks up a tag's namespace and subtag. It returns ErrTagNotFound
// if the dictionary has no such id.
func (c *Catalog) ResolveTag(id int64) (Tag, error) {
	tag := Tag{ID: id}
	found := false
	err := sqlitex.Execute(c.conn, queryResolveTag, &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			tag.Namespace = stmt.ColumnText(0)
			tag.Subtag = stmt.ColumnText(1)
			found = true
			return nil
		},
	})
	if err != nil {
		return Tag{}, fmt.Errorf("resolve tag %d: %w", id, err)
	}
	if !found {
		return Tag{}, fmt.Errorf("tag %d: %w", id, ErrTagNotFound)
	}
	return tag, nil
}

// CoOccurrences streams one record per partner tag sharing at least one file
// with target. With onlyHigherPartner set, partners are restricted to ids
// greater than target so an all-tags scan reports each unordered pair once.
//
// Rows are read off the statement as the caller ranges; the sequence can be
// consumed once. Partner order is whatever SQLite produces.
func (c *Catalog) CoOccurrences(target int64, onlyHigherPartner bool) iter.Seq2[CoOccurrence, error] {
	return func(yield func(CoOccurrence, error) bool) {
		x, err := c.ResolveTag(target)
		if err != nil {
			yield(CoOccurrence{}, err)
			return
		}

		query := c.queryAll
		if onlyHigherPartner {
			query = c.queryHigher
		}
		stmt, err := c.conn.Prepare(query)
		if err != nil {
			yield(CoOccurrence{}, fmt.Errorf("prepare co-occurrence query: %w", err))
			return
		}
		defer func() { _ = stmt.Reset() }()
		stmt.BindInt64(1, target)

		for {
			hasRow, err := stmt.Step()
			if err != nil {
				yield(CoOccurrence{}, fmt.Errorf("co-occurrences of tag %d: %w", target, err))
				return
			}
			if !hasRow {
				return
			}
			rec := CoOccurrence{
				X: x,
				Y: Tag{
					ID:        stmt.ColumnInt64(0),
					Namespace: stmt.ColumnText(1),
					Subtag:    stmt.ColumnText(2),
				},
				Px:  stmt.ColumnInt64(3),
				Py:  stmt.ColumnInt64(4),
				Pxy: stmt.ColumnInt64(5),
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

const queryResolveTag = `
SELECT COALESCE(n.namespace, ''), COALESCE(s.subtag, '')
FROM master.tags t
LEFT JOIN master.namespaces n ON n.namespace_id = t.namespace_id
LEFT JOIN master.subtags s ON s.subtag_id = t.subtag_id
WHERE t.tag_id = ?`

// coOccurrenceQuery builds the per-target query over the given cache tables.
// The only parameter is the target tag id.
func coOccurrenceQuery(filesTable, mappingsTable string, onlyHigherPartner bool) string {
	files := "caches." + quoteIdent(filesTable)
	mappings := "caches." + quoteIdent(mappingsTable)
	pair := ""
	if onlyHigherPartner {
		pair = " AND b.tag_id > a.tag_id"
	}
	return `
SELECT
    b.tag_id,
    COALESCE(n.namespace, ''),
    COALESCE(s.subtag, ''),
    COALESCE((SELECT current_count FROM ` + files + ` WHERE tag_id = a.tag_id), 0),
    COALESCE((SELECT current_count FROM ` + files + ` WHERE tag_id = b.tag_id), 0),
    count(*)
FROM ` + mappings + ` a
JOIN ` + mappings + ` b ON b.hash_id = a.hash_id AND b.tag_id != a.tag_id` + pair + `
LEFT JOIN master.tags t ON t.tag_id = b.tag_id
LEFT JOIN master.namespaces n ON n.namespace_id = t.namespace_id
LEFT JOIN master.subtags s ON s.subtag_id = t.subtag_id
WHERE a.tag_id = ?
GROUP BY b.tag_id`
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// readOnlyURI turns a filesystem path into a "file:///abs/path?mode=ro" URI.
// Relative paths would otherwise have their first element read as the URI authority.
func readOnlyURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // C:/hydrus/db
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "mode=ro"}
	return u.String(), nil
}
