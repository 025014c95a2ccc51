// Package cache implements AnalysisCache: a content-addressed cache of a
// resolved module set, keyed by a modcut.Digest (the CLI's key covers every
// archive of one run; spec.md §3's ScannerOutput is deterministic and
// content-addressed, which is exactly the precondition that makes this
// cache sound rather than a source of staleness bugs). Grounded on
// indexer/layerscanner.go's store.LayerScanned/SetLayerScanned dedup and on
// datastore/postgres/store_metrics.go's promauto query instrumentation, but
// backed by an embedded modernc.org/sqlite database rather than the
// teacher's server-backed Postgres store: this cache lives alongside a
// single CLI invocation's state, not a shared service.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/doug-martin/goqu/v8"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/modcut/modcut"
)

const table = "analysis_cache"

const schema = `CREATE TABLE IF NOT EXISTS ` + table + ` (
	digest    TEXT PRIMARY KEY,
	modules   TEXT NOT NULL,
	cached_at INTEGER NOT NULL
);`

// Cache is an on-disk, content-addressed cache of analysis results. The
// zero value is not usable; construct one with Open.
type Cache struct {
	db      *sql.DB
	dialect goqu.DialectWrapper
}

// Open opens (creating if necessary) a sqlite database at path and ensures
// its schema exists. The returned Cache must have Close called when done.
func Open(path string) (*Cache, error) {
	dsn := url.URL{
		Scheme: "file",
		Opaque: path,
		RawQuery: url.Values{
			"_pragma": {"journal_mode(WAL)", "foreign_keys(1)"},
		}.Encode(),
	}
	db, err := sql.Open("sqlite", dsn.String())
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: ping %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate %s: %w", path, err)
	}
	// goqu has no dedicated sqlite dialect package in this module's
	// dependency set; the default (ANSI-ish) dialect's generated SQL is
	// plain enough for this schema's single-table CRUD.
	return &Cache{db: db, dialect: goqu.Dialect("default")}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Lookup returns the cached module set for digest, or (nil, false, nil) on
// a cache miss.
func (c *Cache) Lookup(ctx context.Context, digest modcut.Digest) (modcut.ModuleSet, bool, error) {
	defer timer("lookup")()

	query, _, err := c.dialect.From(table).
		Select("modules").
		Where(goqu.Ex{"digest": digest.String()}).
		ToSQL()
	if err != nil {
		return nil, false, fmt.Errorf("cache: build lookup query: %w", err)
	}

	var raw string
	err = c.db.QueryRowContext(ctx, query).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		cacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("cache: lookup %s: %w", digest, err)
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, false, fmt.Errorf("cache: decode entry for %s: %w", digest, err)
	}
	mods := modcut.NewModuleSet()
	for _, n := range names {
		mods.Add(modcut.ModuleName(n))
	}
	cacheLookups.WithLabelValues("hit").Inc()
	return mods, true, nil
}

// Store records mods as the analysis result for digest, overwriting any
// existing entry.
func (c *Cache) Store(ctx context.Context, digest modcut.Digest, mods modcut.ModuleSet) error {
	defer timer("store")()

	names := mods.Sorted()
	strs := make([]string, len(names))
	for i, n := range names {
		strs[i] = string(n)
	}
	raw, err := json.Marshal(strs)
	if err != nil {
		return fmt.Errorf("cache: encode entry for %s: %w", digest, err)
	}

	now := time.Now().Unix()
	record := goqu.Record{"digest": digest.String(), "modules": string(raw), "cached_at": now}
	query, _, err := c.dialect.Insert(table).
		Rows(record).
		OnConflict(goqu.DoUpdate("digest", record)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("cache: build store query: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("cache: store %s: %w", digest, err)
	}
	return nil
}

// Clear deletes every cached entry.
func (c *Cache) Clear(ctx context.Context) error {
	defer timer("clear")()

	query, _, err := c.dialect.Delete(table).ToSQL()
	if err != nil {
		return fmt.Errorf("cache: build clear query: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return nil
}

// Count returns the number of entries currently cached.
func (c *Cache) Count(ctx context.Context) (int, error) {
	query, _, err := c.dialect.From(table).Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("cache: build count query: %w", err)
	}
	var n int
	if err := c.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}
