package export

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/goliatone/go-sitebuilder/pkg/storage"
)

type writeCategory string

const (
	categoryPage    writeCategory = "page"
	categoryAsset   writeCategory = "asset"
	categorySitemap writeCategory = "sitemap"
	categoryRobots  writeCategory = "robots"
)

// writeFileRequest describes one file write routed through the artifact writer.
type writeFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    writeCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// artifactWriter abstracts storage provider specifics for export outputs.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
}

func newArtifactWriter(provider storage.Provider) artifactWriter {
	if provider == nil {
		return noopWriter{}
	}
	return &storageWriter{provider: provider}
}

type storageWriter struct {
	provider storage.Provider
}

func (w *storageWriter) EnsureDir(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	_, err := w.provider.Exec(ctx, storage.OpEnsureDir, path)
	return err
}

func (w *storageWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if req.Content == nil {
		return errors.New("export: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("export: write requires path")
	}
	if req.Metadata == nil {
		req.Metadata = map[string]string{}
	}
	args := []any{
		req.Path,
		req.Content,
		req.Size,
		string(req.Category),
		req.ContentType,
		req.Checksum,
		req.Metadata,
	}
	_, err := w.provider.Exec(ctx, storage.OpWrite, args...)
	return err
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }
