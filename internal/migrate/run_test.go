package migrate_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heiraid/heiraid-api/internal/migrate"
	"github.com/heiraid/heiraid-api/internal/testutil"
)

func TestLoad_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0010_indexes.sql":   {Data: []byte("SELECT 1")},
		"sql/0002_seed.sql":      {Data: []byte("SELECT 1")},
		"sql/0001_documents.sql": {Data: []byte("SELECT 1")},
		"sql/README.md":          {Data: []byte("notes")},
		"sql/archive/0003_x.sql": {Data: []byte("SELECT 1")},
	}

	got, err := migrate.Load(fsys, "sql")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, migrate.Migration{Version: "0001", Label: "documents", File: "0001_documents.sql"}, got[0])
	assert.Equal(t, "0002", got[1].Version)
	assert.Equal(t, "0010", got[2].Version)
}

func TestLoad_RejectsBadNames(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"no label":      {"m/0001.sql": {}},
		"not numeric":   {"m/v1_documents.sql": {}},
		"empty version": {"m/_documents.sql": {}},
		"duplicate":     {"m/0001_a.sql": {}, "m/0001_b.sql": {}},
	}
	for name, fsys := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := migrate.Load(fsys, "m")
			require.Error(t, err)
		})
	}

	_, err := migrate.Load(fstest.MapFS{}, "missing")
	require.Error(t, err)
}

func TestRun_CatalogIsIdempotent(t *testing.T) {
	testutil.WithEphemeralDB(t, func(db *sql.DB) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// The ephemeral schema is already migrated.
		applied, err := migrate.Run(ctx, db, migrate.Options{})
		require.NoError(t, err)
		assert.Empty(t, applied)

		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&n))
		assert.Equal(t, 2, n)
	})
}

func TestRun_AppliesExtraMigrations(t *testing.T) {
	testutil.WithEphemeralDB(t, func(db *sql.DB) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		extra := fstest.MapFS{
			"m/0001_documents.sql": {Data: []byte("SELECT 1")},
			"m/0100_notes.sql":     {Data: []byte("CREATE TABLE notes (id TEXT PRIMARY KEY)")},
		}
		applied, err := migrate.Run(ctx, db, migrate.Options{FS: extra, Dir: "m"})
		require.NoError(t, err)
		assert.Equal(t, []string{"0100"}, applied)

		var label string
		require.NoError(t, db.QueryRowContext(ctx,
			`SELECT label FROM schema_migrations WHERE version = '0100'`).Scan(&label))
		assert.Equal(t, "notes", label)
	})
}

func TestRun_FailedMigrationIsNotRecorded(t *testing.T) {
	testutil.WithEphemeralDB(t, func(db *sql.DB) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		broken := fstest.MapFS{"m/0200_broken.sql": {Data: []byte("CREATE TABLE")}}
		applied, err := migrate.Run(ctx, db, migrate.Options{FS: broken, Dir: "m"})
		require.ErrorContains(t, err, "0200_broken.sql")
		assert.Empty(t, applied)

		var n int
		require.NoError(t, db.QueryRowContext(ctx,
			`SELECT count(*) FROM schema_migrations WHERE version = '0200'`).Scan(&n))
		assert.Zero(t, n)
	})
}
