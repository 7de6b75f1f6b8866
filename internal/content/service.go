package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// Service loads a site's markdown sources out of the blob store. Load
// returns a whole-site snapshot; Get fetches one document without scanning
// the rest.
type Service interface {
	Load(ctx context.Context, siteID string) (*Set, error)
	Get(ctx context.Context, siteID, treePath string) (*File, error)
}

const (
	defaultContentRoot = "content"
	defaultExtension   = ".md"
)

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithContentRoot overrides the content root prefix.
func WithContentRoot(root string) ServiceOption {
	return func(s *service) {
		if root = strings.Trim(strings.TrimSpace(root), "/"); root != "" {
			s.root = root
		}
	}
}

// WithExtension overrides the markdown file extension.
func WithExtension(ext string) ServiceOption {
	return func(s *service) {
		if ext = strings.TrimSpace(ext); ext != "" {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			s.ext = ext
		}
	}
}

type service struct {
	blobs interfaces.BlobStore
	root  string
	ext   string
}

// NewService constructs a content service backed by the given blob store.
func NewService(blobs interfaces.BlobStore, opts ...ServiceOption) Service {
	if blobs == nil {
		panic("content: blob store is required")
	}

	s := &service{
		blobs: blobs,
		root:  defaultContentRoot,
		ext:   defaultExtension,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Load(ctx context.Context, siteID string) (*Set, error) {
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return nil, ErrSiteIDRequired
	}

	paths, err := s.blobs.ListBlobs(ctx, siteID, s.root+"/")
	if err != nil {
		return nil, fmt.Errorf("content: list sources for site %q: %w", siteID, err)
	}

	set := NewSet(s.root, s.ext)
	for _, blobPath := range paths {
		if !strings.HasSuffix(blobPath, s.ext) {
			continue
		}
		data, err := s.blobs.GetBlob(ctx, siteID, blobPath)
		if err != nil {
			return nil, fmt.Errorf("content: read %q for site %q: %w", blobPath, siteID, err)
		}
		file, err := ParseFile(blobPath, data)
		if err != nil {
			return nil, err
		}
		if err := set.Add(file); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (s *service) Get(ctx context.Context, siteID, treePath string) (*File, error) {
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return nil, ErrSiteIDRequired
	}

	set := NewSet(s.root, s.ext)
	blobPath := set.FilePath(treePath)
	data, err := s.blobs.GetBlob(ctx, siteID, blobPath)
	if err != nil {
		return nil, &NotFoundError{Resource: "content file", Key: blobPath}
	}
	return ParseFile(blobPath, data)
}
