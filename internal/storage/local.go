package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store persists photo blobs outside the database. Writes and removals are
// not transactional with the DB; callers treat removal as best-effort.
type Store interface {
	Save(ctx context.Context, relPath string, r io.Reader) (int64, error)
	Remove(relPath string) error
}

// LocalStore keeps blobs on the local filesystem under a media root.
type LocalStore struct {
	root string
}

// NewLocalStore creates the media root if needed and returns a store.
func NewLocalStore(root string) (*LocalStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: media root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create media root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Save streams the reader to the relative path, creating parent directories.
func (s *LocalStore) Save(ctx context.Context, relPath string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	full, err := s.resolve(relPath)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("storage: create directories: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return 0, fmt.Errorf("storage: create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return written, fmt.Errorf("storage: write file: %w", err)
	}
	return written, nil
}

// Remove deletes the blob at the relative path. A missing file is not an error.
func (s *LocalStore) Remove(relPath string) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

func (s *LocalStore) resolve(relPath string) (string, error) {
	relPath = filepath.Clean(strings.TrimSpace(relPath))
	if relPath == "" || relPath == "." || strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("storage: invalid path %q", relPath)
	}
	return filepath.Join(s.root, relPath), nil
}

// UploadPath derives the human-readable storage layout for a photo:
// {company}/{project}/{folder}/{filename}, folder segment omitted when the
// photo sits directly in the collection. Filenames are not content-addressed,
// so two uploads with the same name collide; that mirrors current behaviour
// and is documented rather than fixed here.
func UploadPath(company, project, folder, filename string) string {
	segments := make([]string, 0, 4)
	for _, segment := range []string{company, project, folder} {
		if cleaned := cleanSegment(segment); cleaned != "" {
			segments = append(segments, cleaned)
		}
	}
	segments = append(segments, cleanSegment(filepath.Base(filename)))
	return filepath.Join(segments...)
}

func cleanSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	segment = strings.ReplaceAll(segment, string(filepath.Separator), "-")
	segment = strings.ReplaceAll(segment, "..", "")
	return segment
}
