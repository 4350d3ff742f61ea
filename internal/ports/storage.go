package ports

import (
	"context"
	"io"
	"time"
)

// BlobInfo describes a stored object.
type BlobInfo struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ContentType  string    `json:"contentType,omitempty"`
}

// BlobStore lists and reads documents kept in object storage containers.
type BlobStore interface {
	ListContainers(ctx context.Context) ([]string, error)
	ListBlobs(ctx context.Context, container string) ([]BlobInfo, error)
	// OpenBlob returns a reader for the blob body. Callers must close it.
	OpenBlob(ctx context.Context, container, name string) (io.ReadCloser, error)
}
