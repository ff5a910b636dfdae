package domain

import (
	"context"
	"io"
)

// BlobStore is the external file storage. Filename collision avoidance is the
// caller's responsibility (timestamp prefix).
type BlobStore interface {
	// Upload stores the content and returns the object path within the bucket.
	Upload(ctx context.Context, bucket, filename, contentType string, content io.Reader) (path string, err error)
	// PublicURL returns the publicly reachable URL for an uploaded object.
	PublicURL(bucket, path string) string
}
