package images

import (
	"context"
	"testing"

	"github.com/goliatone/go-sitebuilder/internal/blob"
)

func TestPassthroughServesSourceUntouched(t *testing.T) {
	blobs := blob.NewMemoryStore()
	svc := NewPassthroughService(blobs, nil)

	got, err := svc.Resolve(context.Background(), "site-a", Reference{Src: "/media/cover.png"}, Transform{Width: 100})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "media/cover.png" {
		t.Fatalf("expected source path untouched, got %q", got)
	}

	if _, err := svc.Resolve(context.Background(), "site-a", Reference{}, Transform{}); err != ErrSourceRequired {
		t.Fatalf("expected ErrSourceRequired for empty reference, got %v", err)
	}
}

func TestPassthroughClearSiteIsEmpty(t *testing.T) {
	svc := NewPassthroughService(blob.NewMemoryStore(), nil)

	removed, err := svc.ClearSite(context.Background(), "site-a")
	if err != nil {
		t.Fatalf("ClearSite returned error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected nothing removed, got %d", removed)
	}
}

func TestPassthroughExportsSourcesOnly(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemoryStore()
	if err := blobs.PutBlob(ctx, "site-a", "media/cover.png", pngBytes(t, 4, 4)); err != nil {
		t.Fatalf("seed cover: %v", err)
	}

	svc := NewPassthroughService(blobs, nil)

	refs := []Reference{
		{Src: "media/cover.png"},
		{Src: "/media/cover.png"},
		{Src: "media/missing.png"},
		{},
	}
	assets, err := svc.ExportAssets(ctx, "site-a", refs)
	if err != nil {
		t.Fatalf("ExportAssets returned error: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("expected one readable source, got %d", len(assets))
	}
	if assets[0].Path != "media/cover.png" {
		t.Fatalf("unexpected asset path %q", assets[0].Path)
	}
	if len(assets[0].Data) == 0 {
		t.Fatalf("expected asset bytes to be copied")
	}
}
