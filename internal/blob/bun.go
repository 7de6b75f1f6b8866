package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SiteBlob is the durable row backing one stored blob.
type SiteBlob struct {
	bun.BaseModel `bun:"table:site_blobs,alias:sb"`

	ID        uuid.UUID `bun:",pk,type:uuid"                                 json:"id"`
	SiteID    string    `bun:"site_id,notnull,unique:site_blobs_site_path"   json:"site_id"`
	Path      string    `bun:"path,notnull,unique:site_blobs_site_path"      json:"path"`
	Data      []byte    `bun:"data,notnull"                                  json:"-"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// BunStore persists blobs in a relational table. The derivative cache uses it
// as its durable tier.
type BunStore struct {
	db  *bun.DB
	now func() time.Time
}

// BunStoreOption configures the store.
type BunStoreOption func(*BunStore)

// WithBunNow overrides the timestamp source (primarily for tests).
func WithBunNow(now func() time.Time) BunStoreOption {
	return func(s *BunStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewBunStore wraps a bun database handle.
func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	if db == nil {
		panic("blob: bun database is required")
	}
	s := &BunStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the backing table when it does not exist yet.
func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*SiteBlob)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("blob: create site_blobs table: %w", err)
	}
	return nil
}

// GetBlob loads the stored bytes for one site path.
func (s *BunStore) GetBlob(ctx context.Context, siteID, path string) ([]byte, error) {
	row := new(SiteBlob)
	err := s.db.NewSelect().
		Model(row).
		Where("sb.site_id = ?", siteID).
		Where("sb.path = ?", normalizePath(path)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{SiteID: siteID, Path: path}
		}
		return nil, fmt.Errorf("blob: load %q: %w", path, err)
	}
	return row.Data, nil
}

// PutBlob upserts the blob for one site path.
func (s *BunStore) PutBlob(ctx context.Context, siteID, path string, data []byte) error {
	row := &SiteBlob{
		ID:        uuid.New(),
		SiteID:    siteID,
		Path:      normalizePath(path),
		Data:      data,
		UpdatedAt: s.now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (site_id, path) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("blob: store %q: %w", path, err)
	}
	return nil
}

// DeleteBlob removes the blob; missing rows are ignored.
func (s *BunStore) DeleteBlob(ctx context.Context, siteID, path string) error {
	_, err := s.db.NewDelete().
		Model((*SiteBlob)(nil)).
		Where("site_id = ?", siteID).
		Where("path = ?", normalizePath(path)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("blob: delete %q: %w", path, err)
	}
	return nil
}

// ListBlobs returns the sorted paths stored under prefix for one site.
func (s *BunStore) ListBlobs(ctx context.Context, siteID, prefix string) ([]string, error) {
	var paths []string
	query := s.db.NewSelect().
		Model((*SiteBlob)(nil)).
		Column("path").
		Where("site_id = ?", siteID).
		Order("path ASC")
	if prefix = normalizePath(prefix); prefix != "" {
		query = query.Where("path LIKE ?", prefix+"%")
	}
	if err := query.Scan(ctx, &paths); err != nil {
		return nil, fmt.Errorf("blob: list %q: %w", prefix, err)
	}
	return paths, nil
}
