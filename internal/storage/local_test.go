package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Fetch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "uploads", "q1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "uploads", "q1", "sales.csv"), []byte("a,b\n"), 0o644))

	store := NewLocalStore(root)

	data, err := store.Fetch(context.Background(), "uploads", "q1/sales.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}

func TestLocalStore_NotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	_, err := store.Fetch(context.Background(), "uploads", "missing.csv")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStore_RejectsEscapingPaths(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("nope"), 0o644))

	store := NewLocalStore(root)

	_, err := store.Fetch(context.Background(), "uploads", "../../secret.txt")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
