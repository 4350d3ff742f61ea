package ports

import (
	"context"

	"github.com/heiraid/heiraid-api/internal/domain/document"
)

// SearchIndex is the full-text document index backing the assistant and search routes.
type SearchIndex interface {
	Search(ctx context.Context, q document.Query) ([]document.Document, error)
	// Upload merges or inserts documents by ID.
	Upload(ctx context.Context, docs []document.Document) error
}
