package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-sitebuilder/internal/blob"
	"github.com/goliatone/go-sitebuilder/internal/identity"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// Service generates and serves image derivatives. Resolve is safe for
// concurrent use; identical in-flight requests collapse onto one
// transformation.
type Service interface {
	// Resolve returns the site-relative path serving the reference at the
	// requested transform, generating and persisting the derivative on
	// first use. Vector sources and zero transforms return the source
	// path untouched.
	Resolve(ctx context.Context, siteID string, ref Reference, transform Transform) (string, error)
	// ClearSite removes every generated derivative for the site, blobs
	// and records both, and reports how many were dropped.
	ClearSite(ctx context.Context, siteID string) (int, error)
	// InvalidateSource drops the memoized bytes for one source so the next
	// resolve re-reads and re-hashes the blob. Callers invoke it after
	// replacing an image at an existing path.
	InvalidateSource(ctx context.Context, siteID, src string) error
	// ExportAssets returns the union of original sources and generated
	// derivatives referenced by the site, ready to copy into an export
	// bundle.
	ExportAssets(ctx context.Context, siteID string, refs []Reference) ([]Asset, error)
}

type ServiceOption func(*service)

func WithLogger(log interfaces.Logger) ServiceOption {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithQuality sets the JPEG encode quality, 1 through 100.
func WithQuality(quality int) ServiceOption {
	return func(s *service) {
		if quality > 0 && quality <= 100 {
			s.quality = quality
		}
	}
}

func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSourceCache replaces the session memo holding source image bytes. A
// positive TTL bounds how long a source's bytes, and therefore its content
// hash, are reused before the blob store is consulted again.
func WithSourceCache(cache interfaces.CacheProvider, ttl time.Duration) ServiceOption {
	return func(s *service) {
		if cache != nil {
			s.cache = cache
			s.cacheTTL = ttl
		}
	}
}

type service struct {
	blobs    interfaces.BlobStore
	store    DerivativeStore
	cache    interfaces.CacheProvider
	cacheTTL time.Duration
	log      interfaces.Logger
	group    singleflight.Group
	quality  int
	now      func() time.Time
}

func NewService(blobs interfaces.BlobStore, store DerivativeStore, opts ...ServiceOption) Service {
	if blobs == nil {
		panic("images: blob store is required")
	}
	if store == nil {
		panic("images: derivative store is required")
	}

	s := &service{
		blobs:   blobs,
		store:   store,
		cache:   blob.NewMemoryCache(),
		log:     logging.NoOp(),
		quality: defaultQuality,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Resolve(ctx context.Context, siteID string, ref Reference, transform Transform) (string, error) {
	if ref.IsZero() {
		return "", ErrSourceRequired
	}
	src := normalizeSourcePath(ref.Src)

	t := normalizeTransform(transform)
	if ref.IsVector() || t.IsZero() {
		return src, nil
	}

	data, err := s.sourceBytes(ctx, siteID, src)
	if err != nil {
		return "", processingError(src, "load source", err)
	}

	key := DerivativeKey{
		SiteID:     siteID,
		Source:     src,
		SourceHash: hashBytes(data),
		Width:      t.Width,
		Height:     t.Height,
		Crop:       t.Crop,
		Gravity:    t.Gravity,
	}
	token := key.Token()

	if record, err := s.store.FindByToken(ctx, token); err == nil {
		return record.Path, nil
	} else if !isNotFound(err) {
		s.log.Warn("derivative lookup failed, regenerating", "token", token, "error", err)
	}

	result, err, _ := s.group.Do(token, func() (interface{}, error) {
		return s.generate(ctx, siteID, src, data, key, t)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// sourceBytes reads a source image through the session memo, so repeated
// resolves of one source hit the blob store once. The content hash in the
// derivative key derives from the memoized bytes; a replaced source is
// picked up after the memo's TTL or an explicit ClearSite.
func (s *service) sourceBytes(ctx context.Context, siteID, src string) ([]byte, error) {
	key := sourceCacheKey(siteID, src)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if data, ok := cached.([]byte); ok {
			return data, nil
		}
	}

	data, err := s.blobs.GetBlob(ctx, siteID, src)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.log.Warn("source memo write failed", "site", siteID, "source", src, "error", err)
	}
	return data, nil
}

func sourceCacheKey(siteID, src string) string {
	return "sources/" + siteID + "/" + src
}

func (s *service) InvalidateSource(ctx context.Context, siteID, src string) error {
	return s.cache.Delete(ctx, sourceCacheKey(siteID, normalizeSourcePath(src)))
}

func (s *service) generate(ctx context.Context, siteID, src string, data []byte, key DerivativeKey, t Transform) (string, error) {
	token := key.Token()

	// A concurrent flight may have landed between lookup and Do.
	if record, err := s.store.FindByToken(ctx, token); err == nil {
		return record.Path, nil
	}

	out, info, err := applyTransform(data, t, s.quality)
	if err != nil {
		return "", processingError(src, "transform", err)
	}

	blobPath := key.BlobPath()
	if err := s.blobs.PutBlob(ctx, siteID, blobPath, out); err != nil {
		return "", processingError(src, "store derivative", err)
	}

	record := &DerivativeRecord{
		ID:         identity.DerivativeUUID(token),
		SiteID:     siteID,
		Token:      token,
		Source:     src,
		SourceHash: key.SourceHash,
		Width:      info.Width,
		Height:     info.Height,
		Crop:       string(key.Crop),
		Gravity:    string(key.Gravity),
		Path:       blobPath,
		Format:     info.Format,
		Size:       int64(len(out)),
		CreatedAt:  s.now().UTC(),
	}
	if _, err := s.store.Save(ctx, record); err != nil {
		// The blob is already written; the derivative still serves, it
		// just cannot be enumerated until regenerated.
		s.log.Warn("derivative record save failed", "token", token, "error", err)
	}

	s.log.Debug("derivative generated",
		"site", siteID,
		"source", src,
		"path", blobPath,
		"size", record.Size,
	)
	return blobPath, nil
}

func (s *service) ClearSite(ctx context.Context, siteID string) (int, error) {
	paths, err := s.blobs.ListBlobs(ctx, siteID, derivativePrefix)
	if err != nil {
		return 0, processingError(siteID, "list derivatives", err)
	}
	for _, path := range paths {
		if err := s.blobs.DeleteBlob(ctx, siteID, path); err != nil {
			return 0, processingError(path, "delete derivative", err)
		}
	}

	deleted, err := s.store.DeleteBySite(ctx, siteID)
	if err != nil {
		return 0, err
	}
	if deleted < len(paths) {
		deleted = len(paths)
	}

	// The memo refills on demand; dropping it here makes an explicit clear
	// also forget any stale source bytes.
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Warn("source memo clear failed", "site", siteID, "error", err)
	}
	return deleted, nil
}

func (s *service) ExportAssets(ctx context.Context, siteID string, refs []Reference) ([]Asset, error) {
	seen := map[string]bool{}
	var assets []Asset

	for _, ref := range refs {
		if ref.IsZero() {
			continue
		}
		src := normalizeSourcePath(ref.Src)
		if seen[src] {
			continue
		}
		data, err := s.sourceBytes(ctx, siteID, src)
		if err != nil {
			s.log.Warn("export skipping unreadable source", "site", siteID, "source", src, "error", err)
			continue
		}
		seen[src] = true
		assets = append(assets, Asset{Path: src, Data: data})
	}

	records, err := s.store.ListBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if seen[record.Path] {
			continue
		}
		data, err := s.blobs.GetBlob(ctx, siteID, record.Path)
		if err != nil {
			s.log.Warn("export skipping missing derivative", "site", siteID, "path", record.Path, "error", err)
			continue
		}
		seen[record.Path] = true
		assets = append(assets, Asset{Path: record.Path, Data: data})
	}

	return assets, nil
}

// normalizeTransform fills the defaults that participate in the derivative
// key, so "fit" and an empty crop produce one derivative, not two.
func normalizeTransform(t Transform) Transform {
	t = t.Normalize()
	if t.IsZero() {
		return t
	}
	if t.Crop == "" || !t.Crop.Valid() {
		t.Crop = CropFit
	}
	if t.Gravity == "" || !t.Gravity.Valid() {
		t.Gravity = GravityCenter
	}
	return t
}

func normalizeSourcePath(src string) string {
	return strings.TrimPrefix(strings.TrimSpace(src), "/")
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

func isNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
