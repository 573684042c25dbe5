// Package objectstore provides access to the recording object store.
// Supported backends: Amazon S3 (and S3-compatible services) and the local
// filesystem for development and tests.
package objectstore

import (
	"context"
	"io"
	"time"
)

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// Store defines the object store operations consumed by the pipeline.
type Store interface {
	// SignedURL returns a time-limited URL for fetching the object at path.
	SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// Upload writes data from reader to the given path.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download returns a reader for the object at the given path.
	// The caller is responsible for closing the returned ReadCloser.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at the given path.
	// Returns nil if the object does not exist.
	Delete(ctx context.Context, path string) error

	// Exists checks whether an object exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}
