package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDirStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewDirStore(t.TempDir())

	if err := store.PutBlob(ctx, "demo", "content/blog/first.md", []byte("# First")); err != nil {
		t.Fatalf("put: %v", err)
	}

	data, err := store.GetBlob(ctx, "demo", "content/blog/first.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "# First" {
		t.Fatalf("unexpected bytes %q", data)
	}
}

func TestDirStoreSingleSiteMapsRootDirectly(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "content"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "content", "index.md"), []byte("# Home"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := NewDirStore(root, WithSingleSite())
	data, err := store.GetBlob(ctx, "whatever-site", "content/index.md")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != "# Home" {
		t.Fatalf("unexpected bytes %q", data)
	}
}

func TestDirStoreRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	store := NewDirStore(t.TempDir())

	if _, err := store.GetBlob(ctx, "demo", "../outside.txt"); err == nil {
		t.Fatalf("expected traversal path to be rejected")
	}
	if err := store.PutBlob(ctx, "demo", "..", []byte("x")); err == nil {
		t.Fatalf("expected bare parent path to be rejected")
	}
}

func TestDirStoreListReturnsSortedForwardSlashPaths(t *testing.T) {
	ctx := context.Background()
	store := NewDirStore(t.TempDir())

	for _, path := range []string{"media/b.jpg", "media/a.jpg", "content/index.md"} {
		if err := store.PutBlob(ctx, "demo", path, []byte("x")); err != nil {
			t.Fatalf("put %s: %v", path, err)
		}
	}

	paths, err := store.ListBlobs(ctx, "demo", "media/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(paths, []string{"media/a.jpg", "media/b.jpg"}) {
		t.Fatalf("unexpected listing: %v", paths)
	}

	empty, err := store.ListBlobs(ctx, "missing-site", "")
	if err != nil {
		t.Fatalf("list missing site: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty listing, got %v", empty)
	}
}

func TestDirStoreMissingFileIsNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewDirStore(t.TempDir())

	_, err := store.GetBlob(ctx, "demo", "content/missing.md")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
