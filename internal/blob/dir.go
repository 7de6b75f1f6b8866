package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirStore maps the blob contract onto an OS directory. Each site occupies
// its own subdirectory unless the store is pinned to a single site folder.
type DirStore struct {
	root   string
	single bool
}

// DirStoreOption configures directory store behaviour.
type DirStoreOption func(*DirStore)

// WithSingleSite maps every site namespace directly onto the root folder.
// Local-first site folders use this so content lives at the folder top level.
func WithSingleSite() DirStoreOption {
	return func(s *DirStore) {
		s.single = true
	}
}

// NewDirStore returns a blob store rooted at dir.
func NewDirStore(root string, opts ...DirStoreOption) *DirStore {
	s := &DirStore{root: root}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DirStore) resolve(siteID, path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(normalizePath(path)))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("blob: invalid path %q", path)
	}
	base := s.root
	if !s.single {
		base = filepath.Join(s.root, siteID)
	}
	return filepath.Join(base, cleaned), nil
}

func (s *DirStore) baseDir(siteID string) string {
	if s.single {
		return s.root
	}
	return filepath.Join(s.root, siteID)
}

// GetBlob reads a file relative to the site folder.
func (s *DirStore) GetBlob(_ context.Context, siteID, path string) ([]byte, error) {
	target, err := s.resolve(siteID, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{SiteID: siteID, Path: path}
		}
		return nil, fmt.Errorf("blob: read %q: %w", path, err)
	}
	return data, nil
}

// PutBlob writes a file, creating parent directories as needed.
func (s *DirStore) PutBlob(_ context.Context, siteID, path string, data []byte) error {
	target, err := s.resolve(siteID, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("blob: prepare %q: %w", path, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("blob: write %q: %w", path, err)
	}
	return nil
}

// DeleteBlob removes a file; missing files are ignored.
func (s *DirStore) DeleteBlob(_ context.Context, siteID, path string) error {
	target, err := s.resolve(siteID, path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob: delete %q: %w", path, err)
	}
	return nil
}

// ListBlobs walks the site folder and returns sorted forward-slash paths
// under prefix.
func (s *DirStore) ListBlobs(_ context.Context, siteID, prefix string) ([]string, error) {
	base := s.baseDir(siteID)
	if _, err := os.Stat(base); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	prefix = normalizePath(prefix)

	var paths []string
	err := fs.WalkDir(os.DirFS(base), ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if prefix == "" || strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blob: list %q: %w", prefix, err)
	}
	sort.Strings(paths)
	return paths, nil
}
