package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sitebuilder/internal/identity"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// Service loads, persists, and mutates site manifests. Structure mutations
// operate on whole subtrees: moving or removing a node carries its children
// with it in a single save.
type Service interface {
	Load(ctx context.Context, siteID string) (*Manifest, error)
	Save(ctx context.Context, m *Manifest) error
	InsertNode(ctx context.Context, siteID, parentPath string, node Node) (*Manifest, error)
	UpdateNode(ctx context.Context, siteID, path string, mutate func(*Node)) (*Manifest, error)
	MoveNode(ctx context.Context, siteID, path, newParentPath string, position int) (*Manifest, error)
	ReorderNode(ctx context.Context, siteID, path string, position int) (*Manifest, error)
	RemoveNode(ctx context.Context, siteID, path string) (*Manifest, error)
}

const defaultManifestPath = "manifest.json"

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithManifestPath overrides where the manifest document lives inside the
// site's blob namespace.
func WithManifestPath(path string) ServiceOption {
	return func(s *service) {
		if path = strings.TrimSpace(path); path != "" {
			s.path = path
		}
	}
}

type service struct {
	blobs interfaces.BlobStore
	path  string
	now   func() time.Time
}

// NewService constructs a manifest service backed by the given blob store.
func NewService(blobs interfaces.BlobStore, opts ...ServiceOption) Service {
	if blobs == nil {
		panic("manifest: blob store is required")
	}

	s := &service{
		blobs: blobs,
		path:  defaultManifestPath,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Load(ctx context.Context, siteID string) (*Manifest, error) {
	siteID = strings.TrimSpace(siteID)
	if siteID == "" {
		return nil, ErrSiteIDRequired
	}

	data, err := s.blobs.GetBlob(ctx, siteID, s.path)
	if err != nil {
		return nil, &NotFoundError{Resource: "manifest", Key: siteID}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode %s for site %q: %w", s.path, siteID, err)
	}

	if m.SiteID == "" {
		m.SiteID = siteID
	}
	if m.Tree == nil {
		m.Tree = NewTree()
	}
	m.EnsureIDs()
	return &m, nil
}

func (s *service) Save(ctx context.Context, m *Manifest) error {
	if m == nil {
		return ErrManifestNil
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if m.Tree == nil {
		m.Tree = NewTree()
	}

	m.EnsureIDs()
	m.UpdatedAt = s.now().UTC()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: encode site %q: %w", m.SiteID, err)
	}
	if err := s.blobs.PutBlob(ctx, m.SiteID, s.path, data); err != nil {
		return fmt.Errorf("manifest: persist site %q: %w", m.SiteID, err)
	}
	return nil
}

func (s *service) InsertNode(ctx context.Context, siteID, parentPath string, node Node) (*Manifest, error) {
	if node.Kind == "" {
		node.Kind = NodeKindPage
	}
	if node.Kind != NodeKindPage && node.Kind != NodeKindCollection {
		return nil, ErrNodeKindInvalid
	}

	return s.mutate(ctx, siteID, func(m *Manifest) error {
		return m.Tree.Insert(parentPath, node)
	})
}

func (s *service) UpdateNode(ctx context.Context, siteID, path string, mutate func(*Node)) (*Manifest, error) {
	return s.mutate(ctx, siteID, func(m *Manifest) error {
		return m.Tree.Update(path, mutate)
	})
}

func (s *service) MoveNode(ctx context.Context, siteID, path, newParentPath string, position int) (*Manifest, error) {
	return s.mutate(ctx, siteID, func(m *Manifest) error {
		return m.Tree.Move(path, newParentPath, position)
	})
}

func (s *service) ReorderNode(ctx context.Context, siteID, path string, position int) (*Manifest, error) {
	return s.mutate(ctx, siteID, func(m *Manifest) error {
		return m.Tree.Reorder(path, position)
	})
}

func (s *service) RemoveNode(ctx context.Context, siteID, path string) (*Manifest, error) {
	return s.mutate(ctx, siteID, func(m *Manifest) error {
		return m.Tree.Remove(path)
	})
}

func (s *service) mutate(ctx context.Context, siteID string, apply func(*Manifest) error) (*Manifest, error) {
	m, err := s.Load(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if err := apply(m); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// EnsureIDs assigns deterministic identifiers to the manifest's nodes so the
// same logical structure always resolves to the same UUIDs.
func (m *Manifest) EnsureIDs() {
	if m == nil || m.Tree == nil {
		return
	}
	var assign []string
	m.Tree.Walk(func(node Node, _ int) bool {
		if node.ID == uuid.Nil {
			assign = append(assign, node.Path)
		}
		return true
	})
	for _, path := range assign {
		_ = m.Tree.Update(path, func(node *Node) {
			node.ID = identity.NodeUUID(m.SiteID, node.Path)
		})
	}
}
