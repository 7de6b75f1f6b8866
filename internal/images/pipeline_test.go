package images

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-sitebuilder/internal/blob"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

// countingBlobStore tracks reads and writes so tests can assert
// de-duplication and session memoization.
type countingBlobStore struct {
	interfaces.BlobStore
	mu   sync.Mutex
	puts int
	gets map[string]int
}

func (c *countingBlobStore) PutBlob(ctx context.Context, siteID, path string, data []byte) error {
	c.mu.Lock()
	c.puts++
	c.mu.Unlock()
	return c.BlobStore.PutBlob(ctx, siteID, path, data)
}

func (c *countingBlobStore) GetBlob(ctx context.Context, siteID, path string) ([]byte, error) {
	c.mu.Lock()
	if c.gets == nil {
		c.gets = map[string]int{}
	}
	c.gets[siteID+"/"+path]++
	c.mu.Unlock()
	return c.BlobStore.GetBlob(ctx, siteID, path)
}

func (c *countingBlobStore) putCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts
}

func (c *countingBlobStore) getCount(siteID, path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets[siteID+"/"+path]
}

func newTestPipeline(t *testing.T) (Service, *countingBlobStore, *MemoryDerivativeStore) {
	t.Helper()

	blobs := &countingBlobStore{BlobStore: blob.NewMemoryStore()}
	store := NewMemoryDerivativeStore()
	svc := NewService(blobs, store, WithNow(func() time.Time {
		return time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)
	}))
	return svc, blobs, store
}

func TestResolveGeneratesDerivative(t *testing.T) {
	ctx := context.Background()
	svc, blobs, store := newTestPipeline(t)
	if err := blobs.PutBlob(ctx, "demo", "media/hero.png", pngBytes(t, 100, 60)); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	path, err := svc.Resolve(ctx, "demo", Reference{Src: "media/hero.png"}, Transform{Width: 50, Height: 30, Crop: CropFill})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.HasPrefix(path, "derivatives/hero-50x30-") || !strings.HasSuffix(path, ".png") {
		t.Fatalf("unexpected derivative path %q", path)
	}

	data, err := blobs.GetBlob(ctx, "demo", path)
	if err != nil {
		t.Fatalf("derivative blob missing: %v", err)
	}
	info, err := Probe(data)
	if err != nil {
		t.Fatalf("probe derivative: %v", err)
	}
	if info.Width != 50 || info.Height != 30 || info.Format != "png" {
		t.Fatalf("unexpected derivative %+v", info)
	}

	records, err := store.ListBySite(ctx, "demo")
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Path != path || records[0].Format != "png" || records[0].Width != 50 {
		t.Fatalf("unexpected record %+v", records[0])
	}
}

func TestResolveReusesDerivative(t *testing.T) {
	ctx := context.Background()
	svc, blobs, store := newTestPipeline(t)
	if err := blobs.PutBlob(ctx, "demo", "media/hero.png", pngBytes(t, 100, 60)); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	ref := Reference{Src: "media/hero.png"}
	transform := Transform{Width: 40, Height: 40, Crop: CropFill}

	first, err := svc.Resolve(ctx, "demo", ref, transform)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := svc.Resolve(ctx, "demo", ref, transform)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical paths, got %q and %q", first, second)
	}
	if blobs.putCount() != 2 {
		t.Fatalf("expected source + one derivative write, got %d writes", blobs.putCount())
	}
	records, _ := store.ListBySite(ctx, "demo")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestResolveMemoizesSourceReads(t *testing.T) {
	ctx := context.Background()
	svc, blobs, _ := newTestPipeline(t)
	if err := blobs.PutBlob(ctx, "demo", "media/hero.png", pngBytes(t, 100, 60)); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	ref := Reference{Src: "media/hero.png"}
	transform := Transform{Width: 40, Height: 40, Crop: CropFill}
	for i := 0; i < 5; i++ {
		if _, err := svc.Resolve(ctx, "demo", ref, transform); err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
	}
	if got := blobs.getCount("demo", "media/hero.png"); got != 1 {
		t.Fatalf("expected one source read for the session, got %d", got)
	}

	// Distinct transforms of the same source also ride the memo.
	if _, err := svc.Resolve(ctx, "demo", ref, Transform{Width: 20, Height: 20, Crop: CropFill}); err != nil {
		t.Fatalf("resolve new transform: %v", err)
	}
	if got := blobs.getCount("demo", "media/hero.png"); got != 1 {
		t.Fatalf("expected memoized read across transforms, got %d", got)
	}

	if err := svc.InvalidateSource(ctx, "demo", "media/hero.png"); err != nil {
		t.Fatalf("invalidate source: %v", err)
	}
	if _, err := svc.Resolve(ctx, "demo", ref, transform); err != nil {
		t.Fatalf("resolve after invalidate: %v", err)
	}
	if got := blobs.getCount("demo", "media/hero.png"); got != 2 {
		t.Fatalf("expected re-read after invalidation, got %d", got)
	}
}

func TestResolveCollapsesConcurrentRequests(t *testing.T) {
	ctx := context.Background()
	svc, blobs, _ := newTestPipeline(t)
	if err := blobs.PutBlob(ctx, "demo", "media/hero.png", pngBytes(t, 120, 80)); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	var wg sync.WaitGroup
	paths := make([]string, 8)
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = svc.Resolve(ctx, "demo",
				Reference{Src: "media/hero.png"},
				Transform{Width: 60, Height: 40, Crop: CropFill},
			)
		}(i)
	}
	wg.Wait()

	for i := range errs {
		if errs[i] != nil {
			t.Fatalf("resolve %d: %v", i, errs[i])
		}
		if paths[i] != paths[0] {
			t.Fatalf("resolve %d produced %q, want %q", i, paths[i], paths[0])
		}
	}
	if blobs.putCount() != 2 {
		t.Fatalf("expected one derivative write across all requests, got %d writes", blobs.putCount())
	}
}

func TestResolveVectorBypass(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestPipeline(t)

	path, err := svc.Resolve(ctx, "demo", Reference{Src: "/media/logo.svg"}, Transform{Width: 200, Height: 200})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path != "media/logo.svg" {
		t.Fatalf("expected untouched vector path, got %q", path)
	}
	if records, _ := store.ListBySite(ctx, "demo"); len(records) != 0 {
		t.Fatalf("expected no records for vector source, got %d", len(records))
	}
}

func TestResolveZeroTransform(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestPipeline(t)

	path, err := svc.Resolve(ctx, "demo", Reference{Src: "media/photo.jpg"}, Transform{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if path != "media/photo.jpg" {
		t.Fatalf("expected source path, got %q", path)
	}
}

func TestResolveNeverUpscales(t *testing.T) {
	ctx := context.Background()
	svc, blobs, _ := newTestPipeline(t)
	if err := blobs.PutBlob(ctx, "demo", "media/small.png", pngBytes(t, 40, 20)); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	path, err := svc.Resolve(ctx, "demo", Reference{Src: "media/small.png"}, Transform{Width: 400, Height: 200, Crop: CropFill})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	data, err := blobs.GetBlob(ctx, "demo", path)
	if err != nil {
		t.Fatalf("derivative blob missing: %v", err)
	}
	info, err := Probe(data)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if info.Width > 40 || info.Height > 20 {
		t.Fatalf("derivative upscaled to %dx%d", info.Width, info.Height)
	}
}

func TestResolveNewBytesMintNewDerivative(t *testing.T) {
	ctx := context.Background()
	svc, blobs, store := newTestPipeline(t)
	if err := blobs.PutBlob(ctx, "demo", "media/hero.png", pngBytes(t, 100, 60)); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	transform := Transform{Width: 50, Height: 30, Crop: CropFill}
	first, err := svc.Resolve(ctx, "demo", Reference{Src: "media/hero.png"}, transform)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	if err := blobs.PutBlob(ctx, "demo", "media/hero.png", pngBytes(t, 90, 60)); err != nil {
		t.Fatalf("replace source: %v", err)
	}
	if err := svc.InvalidateSource(ctx, "demo", "media/hero.png"); err != nil {
		t.Fatalf("invalidate source: %v", err)
	}
	second, err := svc.Resolve(ctx, "demo", Reference{Src: "media/hero.png"}, transform)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if first == second {
		t.Fatalf("expected new derivative for new source bytes, both %q", first)
	}
	records, _ := store.ListBySite(ctx, "demo")
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestResolveSiteIsolation(t *testing.T) {
	ctx := context.Background()
	svc, blobs, _ := newTestPipeline(t)
	source := pngBytes(t, 80, 40)
	for _, site := range []string{"alpha", "beta"} {
		if err := blobs.PutBlob(ctx, site, "media/shared.png", source); err != nil {
			t.Fatalf("seed %s: %v", site, err)
		}
	}

	transform := Transform{Width: 40, Height: 20, Crop: CropFill}
	alphaPath, err := svc.Resolve(ctx, "alpha", Reference{Src: "media/shared.png"}, transform)
	if err != nil {
		t.Fatalf("alpha resolve: %v", err)
	}
	betaPath, err := svc.Resolve(ctx, "beta", Reference{Src: "media/shared.png"}, transform)
	if err != nil {
		t.Fatalf("beta resolve: %v", err)
	}

	if alphaPath == betaPath {
		t.Fatalf("expected site-scoped derivative names, both %q", alphaPath)
	}
	if _, err := blobs.GetBlob(ctx, "beta", alphaPath); err == nil {
		t.Fatal("alpha derivative leaked into beta namespace")
	}
}

func TestResolveMissingSource(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestPipeline(t)

	_, err := svc.Resolve(ctx, "demo", Reference{Src: "media/nope.png"}, Transform{Width: 10, Height: 10})
	var procErr *ImageProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ImageProcessingError, got %v", err)
	}
	if procErr.Stage != "load source" {
		t.Fatalf("unexpected stage %q", procErr.Stage)
	}
}

func TestResolveCorruptSource(t *testing.T) {
	ctx := context.Background()
	svc, blobs, _ := newTestPipeline(t)
	if err := blobs.PutBlob(ctx, "demo", "media/bad.png", []byte("not an image")); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	_, err := svc.Resolve(ctx, "demo", Reference{Src: "media/bad.png"}, Transform{Width: 10, Height: 10})
	var procErr *ImageProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ImageProcessingError, got %v", err)
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestClearSite(t *testing.T) {
	ctx := context.Background()
	svc, blobs, store := newTestPipeline(t)
	for _, site := range []string{"demo", "other"} {
		if err := blobs.PutBlob(ctx, site, "media/hero.png", pngBytes(t, 100, 60)); err != nil {
			t.Fatalf("seed %s: %v", site, err)
		}
	}

	for _, transform := range []Transform{
		{Width: 50, Height: 30, Crop: CropFill},
		{Width: 20, Height: 20, Crop: CropFit},
	} {
		if _, err := svc.Resolve(ctx, "demo", Reference{Src: "media/hero.png"}, transform); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	if _, err := svc.Resolve(ctx, "other", Reference{Src: "media/hero.png"}, Transform{Width: 10, Height: 10}); err != nil {
		t.Fatalf("resolve other: %v", err)
	}

	deleted, err := svc.ClearSite(ctx, "demo")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}

	if records, _ := store.ListBySite(ctx, "demo"); len(records) != 0 {
		t.Fatalf("expected no records after clear, got %d", len(records))
	}
	if paths, _ := blobs.ListBlobs(ctx, "demo", "derivatives/"); len(paths) != 0 {
		t.Fatalf("expected no derivative blobs after clear, got %v", paths)
	}
	if records, _ := store.ListBySite(ctx, "other"); len(records) != 1 {
		t.Fatalf("expected other site untouched, got %d records", len(records))
	}
}

func TestExportAssets(t *testing.T) {
	ctx := context.Background()
	svc, blobs, _ := newTestPipeline(t)
	if err := blobs.PutBlob(ctx, "demo", "media/hero.png", pngBytes(t, 100, 60)); err != nil {
		t.Fatalf("seed png: %v", err)
	}
	if err := blobs.PutBlob(ctx, "demo", "media/logo.svg", []byte("<svg/>")); err != nil {
		t.Fatalf("seed svg: %v", err)
	}

	derivative, err := svc.Resolve(ctx, "demo", Reference{Src: "media/hero.png"}, Transform{Width: 50, Height: 30, Crop: CropFill})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	refs := []Reference{
		{Src: "media/hero.png"},
		{Src: "media/hero.png"},
		{Src: "media/logo.svg"},
		{Src: "media/missing.png"},
	}
	assets, err := svc.ExportAssets(ctx, "demo", refs)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	paths := map[string]bool{}
	for _, asset := range assets {
		if len(asset.Data) == 0 {
			t.Fatalf("asset %q has no data", asset.Path)
		}
		if paths[asset.Path] {
			t.Fatalf("duplicate asset path %q", asset.Path)
		}
		paths[asset.Path] = true
	}
	for _, expected := range []string{"media/hero.png", "media/logo.svg", derivative} {
		if !paths[expected] {
			t.Fatalf("missing asset %q in %v", expected, paths)
		}
	}
	if len(assets) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(assets))
	}
}
