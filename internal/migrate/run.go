// Package migrate applies the versioned SQL files that define the document catalog schema.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
)

//go:embed migrations/*.sql
var catalogFS embed.FS

// DefaultDir is the directory read from Options.FS when Dir is empty.
const DefaultDir = "migrations"

// Options configures Run. A nil FS selects the embedded catalog migrations.
type Options struct {
	FS     fs.FS
	Dir    string
	Logger *slog.Logger
}

// Migration is one SQL file named <version>_<label>.sql.
type Migration struct {
	Version string
	Label   string
	File    string
}

// Load returns the migrations found in dir, ordered by version.
// Files without a .sql suffix are ignored; malformed names and repeated
// versions are errors.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	out := make([]Migration, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		m, parseErr := parseName(e.Name())
		if parseErr != nil {
			return nil, parseErr
		}
		if prev, dup := seen[m.Version]; dup {
			return nil, fmt.Errorf("migration version %s used by %s and %s", m.Version, prev, m.File)
		}
		seen[m.Version] = m.File
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Migration) int { return strings.Compare(a.Version, b.Version) })
	return out, nil
}

func parseName(file string) (Migration, error) {
	stem := strings.TrimSuffix(file, ".sql")
	version, label, ok := strings.Cut(stem, "_")
	if !ok || version == "" || label == "" || strings.Trim(version, "0123456789") != "" {
		return Migration{}, fmt.Errorf("migration %s: name must look like 0001_label.sql", file)
	}
	return Migration{Version: version, Label: label, File: file}, nil
}

// Run applies every migration not yet recorded in schema_migrations, each in
// its own transaction, and returns the versions it applied. Calling it again
// applies nothing.
func Run(ctx context.Context, db *sql.DB, opts Options) ([]string, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = catalogFS
	}
	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "migrations")

	migrations, err := Load(fsys, dir)
	if err != nil {
		return nil, err
	}

	if _, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}
	if _, err = db.ExecContext(ctx,
		`ALTER TABLE schema_migrations ADD COLUMN IF NOT EXISTS label TEXT NOT NULL DEFAULT ''`); err != nil {
		return nil, fmt.Errorf("add schema_migrations label: %w", err)
	}

	done, err := appliedVersions(ctx, db)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		body, readErr := fs.ReadFile(fsys, path.Join(dir, m.File))
		if readErr != nil {
			return applied, fmt.Errorf("read migration %s: %w", m.File, readErr)
		}
		logger.InfoContext(ctx, "applying migration", "version", m.Version, "label", m.Label)
		if applyErr := apply(ctx, db, m, string(body), logger); applyErr != nil {
			return applied, applyErr
		}
		applied = append(applied, m.Version)
	}
	return applied, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		done[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return done, nil
}

func apply(ctx context.Context, db *sql.DB, m Migration, body string, logger *slog.Logger) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.File, err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.ErrorContext(ctx, "migration rollback failed", "version", m.Version, "error", rbErr)
		}
	}()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("exec migration %s: %w", m.File, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, label) VALUES ($1, $2)`, m.Version, m.Label); err != nil {
		return fmt.Errorf("record migration %s: %w", m.File, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.File, err)
	}
	return nil
}
