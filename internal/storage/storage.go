package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the surface the rest of the service consumes. Swap
// implementations by changing the concrete type injected at startup; tests
// substitute fakes.
type ObjectStore interface {
	// Upload streams a file to the store and returns the upload result.
	Upload(ctx context.Context, body io.Reader, originalName, contentType string) (*UploadResult, error)
	// Delete removes an object by key; absent keys count as success.
	Delete(ctx context.Context, key string) bool
	// SignedURL issues a time-bounded access URL, or "" on failure.
	SignedURL(ctx context.Context, key string, ttl time.Duration) string
}

// Lazy is an ObjectStore that resolves the process-wide client at the moment
// of each call. Initialization runs concurrently with process startup, so
// early callers fail fast with ErrNotInitialized instead of blocking.
type Lazy struct{}

// Upload delegates to the current client, failing fast when uninitialized.
func (Lazy) Upload(ctx context.Context, body io.Reader, originalName, contentType string) (*UploadResult, error) {
	c, err := Current()
	if err != nil {
		return nil, err
	}
	return c.Upload(ctx, body, originalName, contentType)
}

// Delete delegates to the current client; before initialization it reports
// failure so callers can retry the cleanup later.
func (Lazy) Delete(ctx context.Context, key string) bool {
	c, err := Current()
	if err != nil {
		return false
	}
	return c.Delete(ctx, key)
}

// SignedURL delegates to the current client; "" means retry later.
func (Lazy) SignedURL(ctx context.Context, key string, ttl time.Duration) string {
	c, err := Current()
	if err != nil {
		return ""
	}
	return c.SignedURL(ctx, key, ttl)
}

var _ ObjectStore = Lazy{}
