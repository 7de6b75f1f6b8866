package blob

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps blobs in process memory, grouped per site. It backs unit
// tests and the in-memory runtime profile.
type MemoryStore struct {
	mu    sync.RWMutex
	sites map[string]map[string][]byte
}

// NewMemoryStore returns an empty in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sites: map[string]map[string][]byte{}}
}

// GetBlob returns the bytes stored for path inside the site namespace.
func (s *MemoryStore) GetBlob(_ context.Context, siteID, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[siteID]
	if !ok {
		return nil, &NotFoundError{SiteID: siteID, Path: path}
	}
	data, ok := site[normalizePath(path)]
	if !ok {
		return nil, &NotFoundError{SiteID: siteID, Path: path}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// PutBlob stores bytes under the site namespace, replacing any previous blob.
func (s *MemoryStore) PutBlob(_ context.Context, siteID, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	site, ok := s.sites[siteID]
	if !ok {
		site = map[string][]byte{}
		s.sites[siteID] = site
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	site[normalizePath(path)] = stored
	return nil
}

// DeleteBlob removes a blob; deleting a missing blob is not an error.
func (s *MemoryStore) DeleteBlob(_ context.Context, siteID, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if site, ok := s.sites[siteID]; ok {
		delete(site, normalizePath(path))
	}
	return nil
}

// ListBlobs returns the sorted paths under prefix for one site.
func (s *MemoryStore) ListBlobs(_ context.Context, siteID, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site, ok := s.sites[siteID]
	if !ok {
		return nil, nil
	}
	prefix = normalizePath(prefix)

	var paths []string
	for path := range site {
		if prefix == "" || strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func normalizePath(path string) string {
	return strings.TrimPrefix(strings.TrimSpace(path), "/")
}
