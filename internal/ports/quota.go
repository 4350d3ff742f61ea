package ports

import (
	"context"
	"time"
)

// GuestQuota meters guest usage of LLM-backed routes.
type GuestQuota interface {
	// Allow records one use for key and reports whether it is within limit for the window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
