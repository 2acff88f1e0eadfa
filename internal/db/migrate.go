package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Migrate applies migrations and seed files. It creates a `schema_migrations`
// table to track applied migrations and applies any SQL file under
// `migrations/` of migrationFS that has not yet been recorded. Document
// schemas found under `seed/schemas/` of seedFS are upserted on every run.
func Migrate(ctx context.Context, d *DB, migrationFS fs.FS, seedFS fs.FS) error {
	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	files, err := sqlFiles(migrationFS, "migrations")
	if err != nil {
		return err
	}

	for _, fname := range files {
		// filename without extension is the version key
		version := strings.TrimSuffix(fname, path.Ext(fname))

		var count int
		if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version).Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			continue
		}

		b, err := fs.ReadFile(migrationFS, path.Join("migrations", fname))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		if _, err := d.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec migration %s: %w", fname, err)
		}

		if _, err := d.Exec(ctx, `INSERT INTO schema_migrations (version, applied) VALUES (?, strftime('%s','now'))`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", fname, err)
		}
	}

	if seedFS == nil {
		return nil
	}
	return seedSchemas(ctx, d, seedFS)
}

func sqlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	return files, nil
}

// seedSchemas upserts every seed/schemas/<name>.json into document_schemas.
// A missing directory is not an error.
func seedSchemas(ctx context.Context, d *DB, seedFS fs.FS) error {
	dir := path.Join("seed", "schemas")
	entries, err := fs.ReadDir(seedFS, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read seed dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		b, err := fs.ReadFile(seedFS, path.Join(dir, e.Name()))
		if err != nil {
			return fmt.Errorf("read seed schema %s: %w", name, err)
		}
		q := `INSERT INTO document_schemas (name, schema_json, created, updated) VALUES (?, ?, strftime('%s','now'), strftime('%s','now'))
			ON CONFLICT(name) DO UPDATE SET schema_json = excluded.schema_json, updated = excluded.updated`
		if _, err := d.Exec(ctx, q, name, string(b)); err != nil {
			return fmt.Errorf("seed schema %s: %w", name, err)
		}
	}

	return nil
}
