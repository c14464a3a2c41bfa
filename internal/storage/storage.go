// Package storage abstracts where uploaded transaction files live.
package storage

import (
	"context"
	"errors"
)

var ErrObjectNotFound = errors.New("object_not_found")

// ObjectStore fetches uploaded source files for ingestion. Paths are
// bucket-relative; the local driver treats the bucket as a directory
// under its root.
type ObjectStore interface {
	Fetch(ctx context.Context, bucket, path string) ([]byte, error)
}
