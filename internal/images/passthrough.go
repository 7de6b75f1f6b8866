package images

import (
	"context"

	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

type passthroughService struct {
	blobs interfaces.BlobStore
	log   interfaces.Logger
}

// NewPassthroughService returns a pipeline that serves sources untouched and
// never generates derivatives. It backs deployments that disable image
// processing while keeping exports supplied with the original assets.
func NewPassthroughService(blobs interfaces.BlobStore, log interfaces.Logger) Service {
	if blobs == nil {
		panic("images: blob store is required")
	}
	if log == nil {
		log = logging.NoOp()
	}
	return &passthroughService{blobs: blobs, log: log}
}

func (s *passthroughService) Resolve(_ context.Context, _ string, ref Reference, _ Transform) (string, error) {
	if ref.IsZero() {
		return "", ErrSourceRequired
	}
	return normalizeSourcePath(ref.Src), nil
}

func (s *passthroughService) ClearSite(context.Context, string) (int, error) {
	return 0, nil
}

func (s *passthroughService) InvalidateSource(context.Context, string, string) error {
	return nil
}

func (s *passthroughService) ExportAssets(ctx context.Context, siteID string, refs []Reference) ([]Asset, error) {
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
		data, err := s.blobs.GetBlob(ctx, siteID, src)
		if err != nil {
			s.log.Warn("export skipping unreadable source", "site", siteID, "source", src, "error", err)
			continue
		}
		seen[src] = true
		assets = append(assets, Asset{Path: src, Data: data})
	}

	return assets, nil
}
