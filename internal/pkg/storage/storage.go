package storage

import (
	"context"
	"io"
	"time"
)

// FileStorage stores uploaded content and hands back an opaque reference.
// Every backend resolves its own references through Download.
type FileStorage interface {
	// Upload uploads a file and returns the reference to persist
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download retrieves a file
	Download(ctx context.Context, ref string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, ref string) error

	// GetURL generates a URL the client can load the file from
	GetURL(ctx context.Context, ref string, expiry time.Duration) (string, error)

	// Exists checks if file exists
	Exists(ctx context.Context, ref string) (bool, error)
}
