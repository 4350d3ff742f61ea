package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heiraid/heiraid-api/internal/domain/document"
	apperrors "github.com/heiraid/heiraid-api/internal/errors"
	"github.com/heiraid/heiraid-api/internal/ports"
)

// Messages returned to callers for rejected search input.
const (
	MsgQueryRequired = "Query must be a non-empty string."
	MsgTopOutOfRange = "Top must be an integer between 1 and 50."
)

// Search result bounds.
const (
	DefaultSearchTop   = 10
	MaxSearchTop       = 50
	AssistantSearchTop = 3
	ValidationTop      = 5
)

// validationFields restricts the document validation search.
var validationFields = []string{"title", "section"} //nolint:gochecknoglobals // read-only lookup

// SearchServiceOptions groups dependencies for SearchService.
type SearchServiceOptions struct {
	Index  ports.SearchIndex
	Logger *slog.Logger
}

// SearchService forwards document searches to the configured index.
type SearchService struct {
	index  ports.SearchIndex
	logger *slog.Logger
}

// NewSearchService constructs a SearchService.
func NewSearchService(opts SearchServiceOptions) *SearchService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{index: opts.Index, logger: logger}
}

// SearchInput is a free search request. A nil Top selects DefaultSearchTop.
type SearchInput struct {
	Query string
	Top   *int
}

// SearchResult holds the hits of a free search.
type SearchResult struct {
	Results []document.Document `json:"results"`
	Count   int                 `json:"count"`
}

// ValidateQuery rejects empty or whitespace-only queries.
func ValidateQuery(q string) error {
	if strings.TrimSpace(q) == "" {
		return apperrors.ValidationField("query", MsgQueryRequired)
	}
	return nil
}

// Search runs a free search over every searchable field.
func (s *SearchService) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	if err := ValidateQuery(in.Query); err != nil {
		return nil, err
	}
	top := DefaultSearchTop
	if in.Top != nil {
		top = *in.Top
	}
	if top < 1 || top > MaxSearchTop {
		return nil, apperrors.ValidationField("top", MsgTopOutOfRange)
	}

	docs, err := s.search(ctx, document.Query{Text: in.Query, Top: top})
	if err != nil {
		return nil, err
	}
	return &SearchResult{Results: docs, Count: len(docs)}, nil
}

// ValidateDocuments looks up documents by title and section.
func (s *SearchService) ValidateDocuments(ctx context.Context, query string) ([]document.Document, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}
	return s.search(ctx, document.Query{Text: query, Top: ValidationTop, SearchFields: validationFields})
}

// Retrieve returns the passages used to ground an assistant answer.
func (s *SearchService) Retrieve(ctx context.Context, query string) ([]document.Document, error) {
	return s.search(ctx, document.Query{Text: query, Top: AssistantSearchTop})
}

func (s *SearchService) search(ctx context.Context, q document.Query) ([]document.Document, error) {
	if s.index == nil {
		return nil, apperrors.Unavailable("Search is not configured.")
	}
	docs, err := s.index.Search(ctx, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "search failed", "top", q.Top, "fields", q.SearchFields, "error", err)
		return nil, fmt.Errorf("search index: %w", err)
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return docs, nil
}
