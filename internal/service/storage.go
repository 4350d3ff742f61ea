package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/heiraid/heiraid-api/internal/errors"
	"github.com/heiraid/heiraid-api/internal/ports"
)

// StorageServiceOptions groups dependencies for StorageService.
type StorageServiceOptions struct {
	Store  ports.BlobStore
	Logger *slog.Logger
}

// StorageService lists document containers and their blobs.
type StorageService struct {
	store  ports.BlobStore
	logger *slog.Logger
}

// NewStorageService constructs a StorageService.
func NewStorageService(opts StorageServiceOptions) *StorageService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageService{store: opts.Store, logger: logger}
}

// MsgContainerRequired rejects blob listings without a container.
const MsgContainerRequired = "containerName is required."

var errStorageNotConfigured = apperrors.Unavailable("Storage is not configured.")

// ListContainers returns the container names.
func (s *StorageService) ListContainers(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, errStorageNotConfigured
	}
	names, err := s.store.ListContainers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list containers failed", "error", err)
		return nil, fmt.Errorf("list containers: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// ListBlobs returns the blobs of one container.
func (s *StorageService) ListBlobs(ctx context.Context, container string) ([]ports.BlobInfo, error) {
	container = strings.TrimSpace(container)
	if container == "" {
		return nil, apperrors.ValidationField("containerName", MsgContainerRequired)
	}
	if s.store == nil {
		return nil, errStorageNotConfigured
	}
	blobs, err := s.store.ListBlobs(ctx, container)
	if err != nil {
		s.logger.ErrorContext(ctx, "list blobs failed", "container", container, "error", err)
		return nil, fmt.Errorf("list blobs in %s: %w", container, err)
	}
	if blobs == nil {
		blobs = []ports.BlobInfo{}
	}
	return blobs, nil
}

// Validate checks the storage connection by listing containers.
func (s *StorageService) Validate(ctx context.Context) ([]string, error) {
	names, err := s.ListContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("validate storage: %w", err)
	}
	s.logger.InfoContext(ctx, "storage connection validated", "containers", len(names))
	return names, nil
}
