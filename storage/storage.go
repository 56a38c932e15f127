package storage

import (
	"context"
	"io"
)

// Storage is the blob store behind audio archiving. Objects are addressed
// by slash-separated paths inside one bucket.
type Storage interface {
	// Upload writes the object at path, replacing any existing one.
	Upload(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL of the object at path.
	URL(ctx context.Context, path string) (string, error)
}
