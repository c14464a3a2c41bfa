package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type localStore struct {
	root string
}

// NewLocalStore serves objects from a directory tree laid out as
// <root>/<bucket>/<path>. It is the default driver for development and
// tests.
func NewLocalStore(root string) ObjectStore {
	return &localStore{root: root}
}

func (s *localStore) Fetch(_ context.Context, bucket, path string) ([]byte, error) {
	full := filepath.Join(s.root, bucket, filepath.FromSlash(path))

	// Reject paths that escape the storage root.
	rel, err := filepath.Rel(s.root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, path)
		}
		return nil, fmt.Errorf("read object %s/%s: %w", bucket, path, err)
	}
	return data, nil
}
