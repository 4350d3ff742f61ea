package ports

import (
	"context"

	"github.com/heiraid/heiraid-api/internal/domain/document"
)

// CatalogListOptions filters the document catalog.
type CatalogListOptions struct {
	Term  string // case-insensitive match on title or case id
	Role  string // only documents visible to this role
	Limit int
}

// DocumentCatalog is the persistent list of case documents shown in the documents grid.
type DocumentCatalog interface {
	List(ctx context.Context, opts CatalogListOptions) ([]document.CaseDocument, error)
	Upsert(ctx context.Context, doc document.CaseDocument) error
}
