package service

import (
	"context"
	"fmt"
	"log/slog"

	domainauth "github.com/heiraid/heiraid-api/internal/domain/auth"
	"github.com/heiraid/heiraid-api/internal/domain/document"
	apperrors "github.com/heiraid/heiraid-api/internal/errors"
	"github.com/heiraid/heiraid-api/internal/ports"
)

// DocumentServiceOptions groups dependencies for DocumentService.
type DocumentServiceOptions struct {
	Catalog ports.DocumentCatalog // optional; built-in case documents are served when nil
	Limit   int
	Logger  *slog.Logger
}

// DocumentService serves the documents grid.
type DocumentService struct {
	catalog ports.DocumentCatalog
	limit   int
	logger  *slog.Logger
}

// DefaultDocumentLimit caps a documents grid page.
const DefaultDocumentLimit = 100

// NewDocumentService constructs a DocumentService.
func NewDocumentService(opts DocumentServiceOptions) *DocumentService {
	s := &DocumentService{catalog: opts.Catalog, limit: opts.Limit, logger: opts.Logger}
	if s.limit <= 0 {
		s.limit = DefaultDocumentLimit
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// List returns the case documents visible to role whose title or case id matches term.
// A catalog that has not been migrated yet falls back to the built-in documents.
func (s *DocumentService) List(ctx context.Context, term string, role domainauth.Role) ([]document.CaseDocument, error) {
	if role == "" {
		role = domainauth.RolePublic
	}
	if s.catalog != nil {
		docs, err := s.catalog.List(ctx, ports.CatalogListOptions{Term: term, Role: string(role), Limit: s.limit})
		switch {
		case err == nil:
			if docs == nil {
				docs = []document.CaseDocument{}
			}
			return docs, nil
		case apperrors.IsUnavailable(err):
			s.logger.WarnContext(ctx, "document catalog unavailable, serving built-in documents", "error", err)
		default:
			return nil, fmt.Errorf("list documents: %w", err)
		}
	}
	return s.builtin(term, role), nil
}

func (s *DocumentService) builtin(term string, role domainauth.Role) []document.CaseDocument {
	matches := document.FilterCases(document.SeedCases(), term)
	out := make([]document.CaseDocument, 0, len(matches))
	for _, d := range matches {
		if d.VisibleTo(string(role)) {
			out = append(out, d)
		}
		if len(out) == s.limit {
			break
		}
	}
	return out
}
