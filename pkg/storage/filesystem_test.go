package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesystemTargetWriteReadRemove(t *testing.T) {
	root := t.TempDir()
	target := NewFilesystemTarget(root, "public")
	ctx := context.Background()

	if _, err := target.Exec(ctx, OpEnsureDir, "public/blog"); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	if info, err := os.Stat(filepath.Join(root, "blog")); err != nil || !info.IsDir() {
		t.Fatalf("expected blog directory under root, err=%v", err)
	}

	payload := "<html>first post</html>"
	if _, err := target.Exec(ctx, OpWrite, "public/blog/first/index.html", strings.NewReader(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
	onDisk, err := os.ReadFile(filepath.Join(root, "blog", "first", "index.html"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(onDisk) != payload {
		t.Fatalf("unexpected file contents %q", onDisk)
	}

	rows, err := target.Query(ctx, OpRead, "public/blog/first/index.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows == nil || !rows.Next() {
		t.Fatal("expected one row for existing file")
	}
	var data []byte
	if err := rows.Scan(&data); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if err := rows.Close(); err != nil {
		t.Fatalf("close rows: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("unexpected scanned contents %q", data)
	}

	if _, err := target.Exec(ctx, OpRemove, "public/blog"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "blog")); !os.IsNotExist(err) {
		t.Fatalf("expected blog tree removed, err=%v", err)
	}
}

func TestFilesystemTargetReadMissingFile(t *testing.T) {
	target := NewFilesystemTarget(t.TempDir(), "")

	rows, err := target.Query(context.Background(), OpRead, "missing.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows != nil {
		t.Fatal("missing file should yield no rows")
	}
}

func TestFilesystemTargetTrimsBasePrefixOnly(t *testing.T) {
	root := t.TempDir()
	target := NewFilesystemTarget(root, "public")
	ctx := context.Background()

	// A path outside the base keeps its full shape under root.
	if _, err := target.Exec(ctx, OpWrite, "publicity/index.html", strings.NewReader("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "publicity", "index.html")); err != nil {
		t.Fatalf("expected publicity path preserved: %v", err)
	}

	if _, err := target.Exec(ctx, OpWrite, "public/index.html", strings.NewReader("y")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "index.html")); err != nil {
		t.Fatalf("expected base prefix trimmed: %v", err)
	}
}

func TestFilesystemTargetTransaction(t *testing.T) {
	root := t.TempDir()
	target := NewFilesystemTarget(root, "")

	err := target.Transaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.Exec(context.Background(), OpWrite, "robots.txt", strings.NewReader("User-agent: *\n")); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "robots.txt")); err != nil {
		t.Fatalf("expected robots.txt written: %v", err)
	}
}
