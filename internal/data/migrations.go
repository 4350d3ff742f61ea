package data

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/heiraid/heiraid-api/internal/migrate"
)

// RunMigrations brings the document catalog schema up to date and returns the
// versions applied by this call.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) ([]string, error) {
	return migrate.Run(ctx, db, migrate.Options{Logger: logger})
}
