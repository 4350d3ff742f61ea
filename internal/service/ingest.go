package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/heiraid/heiraid-api/internal/domain/document"
	"github.com/heiraid/heiraid-api/internal/ports"
	"golang.org/x/sync/errgroup"
)

// IngestServiceOptions groups dependencies for IngestService.
type IngestServiceOptions struct {
	Store       ports.BlobStore
	Index       ports.SearchIndex
	Catalog     ports.DocumentCatalog // optional
	Concurrency int
	// MaxBlobBytes skips blobs larger than this size. Zero means no limit.
	MaxBlobBytes int64
	Logger       *slog.Logger
}

// IngestService copies documents from storage into the search index and the catalog.
type IngestService struct {
	store       ports.BlobStore
	index       ports.SearchIndex
	catalog     ports.DocumentCatalog
	concurrency int
	maxBytes    int64
	logger      *slog.Logger
}

const (
	defaultIngestConcurrency = 4
	uploadBatchSize          = 100
)

// NewIngestService constructs an IngestService.
func NewIngestService(opts IngestServiceOptions) (*IngestService, error) {
	if opts.Store == nil {
		return nil, errors.New("blob store is required")
	}
	if opts.Index == nil {
		return nil, errors.New("search index is required")
	}
	s := &IngestService{
		store:       opts.Store,
		index:       opts.Index,
		catalog:     opts.Catalog,
		concurrency: opts.Concurrency,
		maxBytes:    opts.MaxBlobBytes,
		logger:      opts.Logger,
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultIngestConcurrency
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// IngestFailure records a blob that could not be ingested.
type IngestFailure struct {
	Container string `json:"container"`
	Name      string `json:"name"`
	Error     string `json:"error"`
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	RunID      string          `json:"runId"`
	Containers []string        `json:"containers"`
	Indexed    int             `json:"indexed"`
	Cataloged  int             `json:"cataloged"`
	Skipped    []string        `json:"skipped"`
	Failed     []IngestFailure `json:"failed"`
}

type ingestItem struct {
	container string
	blob      ports.BlobInfo
}

// Run ingests every accepted blob of the given containers, or of all containers
// when none are named. Per-blob failures are reported, not returned; listing or
// index upload failures abort the run.
func (s *IngestService) Run(ctx context.Context, containers []string) (*IngestReport, error) {
	report := &IngestReport{RunID: uuid.NewString()}
	log := s.logger.With("run_id", report.RunID)

	if len(containers) == 0 {
		names, err := s.store.ListContainers(ctx)
		if err != nil {
			return report, fmt.Errorf("list containers: %w", err)
		}
		containers = names
	}
	report.Containers = containers
	log.InfoContext(ctx, "starting ingestion", "containers", containers, "workers", s.concurrency)

	var items []ingestItem
	for _, c := range containers {
		blobs, err := s.store.ListBlobs(ctx, c)
		if err != nil {
			return report, fmt.Errorf("list blobs in %s: %w", c, err)
		}
		for _, b := range blobs {
			switch {
			case !document.Accepted(b.Name):
				log.WarnContext(ctx, "skipping unsupported file type", "container", c, "blob", b.Name)
				report.Skipped = append(report.Skipped, c+"/"+b.Name)
			case strings.EqualFold(path.Ext(b.Name), ".pdf"):
				log.WarnContext(ctx, "skipping pdf, text extraction needs an OCR service", "container", c, "blob", b.Name)
				report.Skipped = append(report.Skipped, c+"/"+b.Name)
			case s.maxBytes > 0 && b.Size > s.maxBytes:
				log.WarnContext(ctx, "skipping oversized blob", "container", c, "blob", b.Name, "size", b.Size)
				report.Skipped = append(report.Skipped, c+"/"+b.Name)
			default:
				items = append(items, ingestItem{container: c, blob: b})
			}
		}
	}

	docs, cases := s.extractAll(ctx, log, items, report)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for start := 0; start < len(docs); start += uploadBatchSize {
		end := min(start+uploadBatchSize, len(docs))
		if err := s.index.Upload(ctx, docs[start:end]); err != nil {
			return report, fmt.Errorf("upload documents: %w", err)
		}
		report.Indexed += end - start
	}

	if s.catalog != nil {
		for _, cd := range cases {
			if err := s.catalog.Upsert(ctx, cd); err != nil {
				log.ErrorContext(ctx, "catalog upsert failed", "document_id", cd.ID, "error", err)
				report.Failed = append(report.Failed, IngestFailure{Name: cd.ID, Error: err.Error()})
				continue
			}
			report.Cataloged++
		}
	}

	log.InfoContext(ctx, "ingestion completed",
		"indexed", report.Indexed, "cataloged", report.Cataloged,
		"skipped", len(report.Skipped), "failed", len(report.Failed))
	return report, nil
}

func (s *IngestService) extractAll(
	ctx context.Context,
	log *slog.Logger,
	items []ingestItem,
	report *IngestReport,
) ([]document.Document, []document.CaseDocument) {
	var (
		mu    sync.Mutex
		docs  []document.Document
		cases []document.CaseDocument
	)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for _, it := range items {
		group.Go(func() error {
			doc, err := s.extractOne(gctx, it)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.WarnContext(gctx, "blob not ingested", "container", it.container, "blob", it.blob.Name, "error", err)
				report.Failed = append(report.Failed, IngestFailure{Container: it.container, Name: it.blob.Name, Error: err.Error()})
				return nil
			}
			docs = append(docs, doc)
			cases = append(cases, caseFromDocument(doc, it.blob))
			return nil
		})
	}
	_ = group.Wait()
	return docs, cases
}

func (s *IngestService) extractOne(ctx context.Context, it ingestItem) (document.Document, error) {
	rc, err := s.store.OpenBlob(ctx, it.container, it.blob.Name)
	if err != nil {
		return document.Document{}, fmt.Errorf("download: %w", err)
	}
	text, err := ExtractText(it.blob.Name, rc)
	if cerr := rc.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if err != nil {
		return document.Document{}, err
	}
	if text == "" {
		return document.Document{}, errors.New("no text extracted")
	}
	return document.Tag(it.container, it.blob.Name, text), nil
}

func caseFromDocument(doc document.Document, blob ports.BlobInfo) document.CaseDocument {
	cd := document.CaseDocument{
		ID:           doc.ID,
		Title:        doc.Title,
		CaseID:       doc.CaseID,
		Summary:      doc.Summary,
		Type:         doc.DocumentType,
		AllowedRoles: doc.AllowedRoles,
		UpdatedAt:    blob.LastModified,
	}
	if !blob.LastModified.IsZero() {
		cd.Date = blob.LastModified.UTC().Format("2006-01-02")
	}
	return cd
}
