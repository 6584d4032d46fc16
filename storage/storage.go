package storage

import (
	"context"
	"time"
)

// BlobStore is the narrow contract with the blob backend. Paths are opaque
// keys; tenant prefixing is enforced by TenantStore before any call reaches
// an implementation.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, path string) error
	SignURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}
