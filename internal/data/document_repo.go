package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/heiraid/heiraid-api/internal/data/database"
	"github.com/heiraid/heiraid-api/internal/data/pgxutil"
	"github.com/heiraid/heiraid-api/internal/domain/document"
	apperrors "github.com/heiraid/heiraid-api/internal/errors"
	"github.com/heiraid/heiraid-api/internal/ports"
)

// catalogDateLayout is the display format of doc_date.
const catalogDateLayout = "2006-01-02"

// ErrDocumentIDRequired is returned when upserting a document without an id.
var ErrDocumentIDRequired = errors.New("document id is required")

// DocumentRepo is the Postgres-backed document catalog.
type DocumentRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ ports.DocumentCatalog = (*DocumentRepo)(nil)

// NewDocumentRepo creates a new DocumentRepo with real time provider.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewDocumentRepoWithTimeProvider creates a new DocumentRepo with a custom time provider (useful for tests).
func NewDocumentRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *DocumentRepo {
	return &DocumentRepo{DB: db, timeProvider: tp}
}

// documentListQuery builds the catalog query for opts.
func documentListQuery(opts ports.CatalogListOptions) (string, []any) {
	conds := []database.Condition{}
	if term := strings.TrimSpace(opts.Term); term != "" {
		conds = append(conds, database.WhereRawCond(
			"(title ILIKE $1 OR case_id ILIKE $1)", "%"+escapeLike(term)+"%",
		))
	}
	if role := strings.TrimSpace(opts.Role); role != "" {
		conds = append(conds, database.WhereRawCond(
			"(cardinality(allowed_roles) = 0 OR $1 = ANY(allowed_roles) OR 'public' = ANY(allowed_roles))", role,
		))
	}

	qopts := []database.ListQueryOption{
		database.WithColumns("id", "title", "case_id", "summary", "doc_type", "doc_date", "allowed_roles", "updated_at"),
		database.WithConditions(conds...),
		database.WithOrderBy("doc_date", "DESC"),
	}
	if opts.Limit > 0 {
		qopts = append(qopts, database.WithLimit(opts.Limit))
	}
	return database.BuildListQuery(database.NewListQueryOptions("documents", qopts...))
}

// escapeLike escapes LIKE wildcards so the term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// List returns catalog documents visible to opts.Role whose title or case id contains opts.Term.
func (r *DocumentRepo) List(ctx context.Context, opts ports.CatalogListOptions) ([]document.CaseDocument, error) {
	query, args := documentListQuery(opts)

	out := []document.CaseDocument{}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			d, scanErr := scanCaseDocument(rows)
			if scanErr != nil {
				return scanErr
			}
			out = append(out, d)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

func scanCaseDocument(row pgx.Row) (document.CaseDocument, error) {
	var (
		d       document.CaseDocument
		docDate *time.Time
	)
	if err := row.Scan(&d.ID, &d.Title, &d.CaseID, &d.Summary, &d.Type, &docDate, &d.AllowedRoles, &d.UpdatedAt); err != nil {
		return d, err
	}
	if docDate != nil {
		d.Date = docDate.Format(catalogDateLayout)
	}
	return d, nil
}

// Upsert inserts doc or replaces the stored row with the same id.
func (r *DocumentRepo) Upsert(ctx context.Context, doc document.CaseDocument) error {
	if strings.TrimSpace(doc.ID) == "" {
		return ErrDocumentIDRequired
	}

	var docDate *time.Time
	if doc.Date != "" {
		t, err := time.Parse(catalogDateLayout, doc.Date)
		if err != nil {
			return apperrors.ValidationField("date", "Date must be formatted as YYYY-MM-DD.")
		}
		docDate = &t
	}
	roles := doc.AllowedRoles
	if roles == nil {
		roles = []string{}
	}
	docType := doc.Type
	if docType == "" {
		docType = "general"
	}
	now := r.timeProvider.Now().UTC()

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO documents (id, title, case_id, summary, doc_type, doc_date, allowed_roles, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				case_id = EXCLUDED.case_id,
				summary = EXCLUDED.summary,
				doc_type = EXCLUDED.doc_type,
				doc_date = EXCLUDED.doc_date,
				allowed_roles = EXCLUDED.allowed_roles,
				updated_at = EXCLUDED.updated_at
		`, doc.ID, strings.TrimSpace(doc.Title), doc.CaseID, doc.Summary, docType, docDate, roles, now)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, apperrors.MapDBError(err))
	}
	return nil
}
