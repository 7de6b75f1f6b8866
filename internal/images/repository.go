package images

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DerivativeStore persists derivative metadata.
type DerivativeStore interface {
	Save(ctx context.Context, record *DerivativeRecord) (*DerivativeRecord, error)
	FindByToken(ctx context.Context, token string) (*DerivativeRecord, error)
	ListBySite(ctx context.Context, siteID string) ([]*DerivativeRecord, error)
	DeleteBySite(ctx context.Context, siteID string) (int, error)
}

func newDerivativeRepository(db *bun.DB) repository.Repository[*DerivativeRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*DerivativeRecord]{
		NewRecord:          func() *DerivativeRecord { return &DerivativeRecord{} },
		GetID:              func(rec *DerivativeRecord) uuid.UUID { return rec.ID },
		SetID:              func(rec *DerivativeRecord, id uuid.UUID) { rec.ID = id },
		GetIdentifier:      func() string { return "token" },
		GetIdentifierValue: func(rec *DerivativeRecord) string { return rec.Token },
	})
}

// BunDerivativeStore implements DerivativeStore on a bun database with
// optional read-through caching.
type BunDerivativeStore struct {
	db   *bun.DB
	repo repository.Repository[*DerivativeRecord]
}

// NewBunDerivativeStore creates a store without caching.
func NewBunDerivativeStore(db *bun.DB) *BunDerivativeStore {
	return NewBunDerivativeStoreWithCache(db, nil, nil)
}

// NewBunDerivativeStoreWithCache creates a store whose token lookups go
// through the cache service.
func NewBunDerivativeStoreWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunDerivativeStore {
	base := newDerivativeRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunDerivativeStore{db: db, repo: base}
}

// Init creates the backing table when it does not exist yet.
func (s *BunDerivativeStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*DerivativeRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("images: create derivative table: %w", err)
	}
	return nil
}

func (s *BunDerivativeStore) Save(ctx context.Context, record *DerivativeRecord) (*DerivativeRecord, error) {
	saved, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("images: save derivative: %w", err)
	}
	return saved, nil
}

func (s *BunDerivativeStore) FindByToken(ctx context.Context, token string) (*DerivativeRecord, error) {
	record, err := s.repo.GetByIdentifier(ctx, token)
	if err != nil {
		if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, &NotFoundError{Resource: "derivative", Key: token}
		}
		return nil, fmt.Errorf("images: find derivative: %w", err)
	}
	return record, nil
}

func (s *BunDerivativeStore) ListBySite(ctx context.Context, siteID string) ([]*DerivativeRecord, error) {
	records, _, err := s.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.site_id = ?", siteID).Order("token ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("images: list derivatives: %w", err)
	}
	return records, nil
}

func (s *BunDerivativeStore) DeleteBySite(ctx context.Context, siteID string) (int, error) {
	records, err := s.ListBySite(ctx, siteID)
	if err != nil {
		return 0, err
	}
	for _, record := range records {
		if err := s.repo.Delete(ctx, record); err != nil {
			return 0, fmt.Errorf("images: delete derivative %s: %w", record.Token, err)
		}
	}
	return len(records), nil
}

// MemoryDerivativeStore is the in-memory DerivativeStore used by tests and
// throwaway sessions.
type MemoryDerivativeStore struct {
	mu      sync.RWMutex
	byToken map[string]*DerivativeRecord
}

func NewMemoryDerivativeStore() *MemoryDerivativeStore {
	return &MemoryDerivativeStore{byToken: map[string]*DerivativeRecord{}}
}

func (s *MemoryDerivativeStore) Save(_ context.Context, record *DerivativeRecord) (*DerivativeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	if clone.ID == uuid.Nil {
		clone.ID = uuid.New()
	}
	s.byToken[clone.Token] = &clone
	out := clone
	return &out, nil
}

func (s *MemoryDerivativeStore) FindByToken(_ context.Context, token string) (*DerivativeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byToken[token]
	if !ok {
		return nil, &NotFoundError{Resource: "derivative", Key: token}
	}
	clone := *record
	return &clone, nil
}

func (s *MemoryDerivativeStore) ListBySite(_ context.Context, siteID string) ([]*DerivativeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*DerivativeRecord
	for _, record := range s.byToken {
		if record.SiteID != siteID {
			continue
		}
		clone := *record
		records = append(records, &clone)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Token < records[j].Token })
	return records, nil
}

func (s *MemoryDerivativeStore) DeleteBySite(_ context.Context, siteID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for token, record := range s.byToken {
		if record.SiteID == siteID {
			delete(s.byToken, token)
			deleted++
		}
	}
	return deleted, nil
}
