package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveAndRemoveRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	rel := UploadPath("Acme Studio", "Wedding", "Previews", "img001.jpg")
	written, err := store.Save(context.Background(), rel, strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	require.Equal(t, int64(len("jpeg-bytes")), written)

	require.NoError(t, store.Remove(rel))
	// Removing again is a no-op.
	require.NoError(t, store.Remove(rel))
}

func TestUploadPathLayout(t *testing.T) {
	rel := UploadPath("Acme", "Wedding", "Previews", "img.jpg")
	require.Equal(t, filepath.Join("Acme", "Wedding", "Previews", "img.jpg"), rel)

	// Folder segment is omitted for photos directly in the collection.
	rel = UploadPath("Acme", "Wedding", "", "img.jpg")
	require.Equal(t, filepath.Join("Acme", "Wedding", "img.jpg"), rel)
}

func TestUploadPathStripsTraversal(t *testing.T) {
	rel := UploadPath("Acme", "Wedding", "", "../../etc/passwd")
	require.NotContains(t, rel, "..")
}

func TestSaveRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../outside.txt", strings.NewReader("x"))
	require.Error(t, err)

	_, err = store.Save(context.Background(), "/abs.txt", strings.NewReader("x"))
	require.Error(t, err)
}

func TestNewLocalStoreCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "media")
	_, err := NewLocalStore(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
