package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Artifact operation verbs. Providers that back the static exporter map
// these onto their medium; args are positional per verb.
const (
	// OpEnsureDir creates the directory named by args[0], parents included.
	OpEnsureDir = "artifact.ensure_dir"
	// OpWrite streams args[1] (io.Reader) into the file named by args[0].
	OpWrite = "artifact.write"
	// OpRead returns one row scanning the file named by args[0] into *[]byte.
	OpRead = "artifact.read"
	// OpRemove deletes the file or directory tree named by args[0].
	OpRemove = "artifact.remove"
)

// NewFilesystemTarget returns a Provider that maps the artifact verbs onto
// the directory tree rooted at root. base should match the exporter's
// output directory so the shared prefix is trimmed before paths hit disk.
func NewFilesystemTarget(root, base string) Provider {
	base = strings.Trim(filepath.ToSlash(filepath.Clean(base)), "/")
	if base == "." {
		base = ""
	}
	return &filesystemTarget{root: root, base: base}
}

type filesystemTarget struct {
	root string
	base string
}

func (t *filesystemTarget) Query(_ context.Context, query string, args ...any) (Rows, error) {
	if query != OpRead || len(args) == 0 {
		return nil, nil
	}
	target := t.normalizePath(args[0])
	data, err := os.ReadFile(t.abs(target))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileRows{data: data}, nil
}

func (t *filesystemTarget) Exec(_ context.Context, query string, args ...any) (Result, error) {
	switch query {
	case OpEnsureDir:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("storage: ensure_dir requires path")
		}
		path := t.normalizePath(args[0])
		return emptyResult{}, os.MkdirAll(t.abs(path), 0o755)
	case OpWrite:
		if len(args) < 2 {
			return emptyResult{}, fmt.Errorf("storage: write requires path and reader")
		}
		path := t.normalizePath(args[0])
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return emptyResult{}, fmt.Errorf("storage: write expects io.Reader content")
		}
		full := t.abs(path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return emptyResult{}, err
		}
		file, err := os.Create(full)
		if err != nil {
			return emptyResult{}, err
		}
		defer file.Close()
		if _, err := io.Copy(file, reader); err != nil {
			return emptyResult{}, err
		}
		return emptyResult{}, nil
	case OpRemove:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("storage: remove requires path")
		}
		path := t.normalizePath(args[0])
		err := os.RemoveAll(t.abs(path))
		if errors.Is(err, os.ErrNotExist) {
			return emptyResult{}, nil
		}
		return emptyResult{}, err
	default:
		return emptyResult{}, nil
	}
}

func (t *filesystemTarget) Transaction(ctx context.Context, fn func(tx Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&filesystemTx{target: t})
}

func (t *filesystemTarget) abs(rel string) string {
	if rel == "" {
		return t.root
	}
	return filepath.Join(t.root, filepath.FromSlash(rel))
}

func (t *filesystemTarget) normalizePath(arg any) string {
	path, _ := arg.(string)
	path = strings.Trim(filepath.ToSlash(filepath.Clean(path)), "/")
	if path == "." {
		return ""
	}
	if t.base != "" {
		if path == t.base {
			return ""
		}
		if strings.HasPrefix(path, t.base+"/") {
			path = strings.TrimPrefix(path, t.base+"/")
		}
	}
	return path
}

type filesystemTx struct {
	target *filesystemTarget
}

func (tx *filesystemTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return tx.target.Query(ctx, query, args...)
}

func (tx *filesystemTx) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return tx.target.Exec(ctx, query, args...)
}

func (tx *filesystemTx) Transaction(context.Context, func(tx Transaction) error) error {
	return errors.New("storage: nested transactions not supported")
}

func (tx *filesystemTx) Commit() error { return nil }

func (tx *filesystemTx) Rollback() error { return nil }

type emptyResult struct{}

func (emptyResult) RowsAffected() (int64, error) { return 0, nil }
func (emptyResult) LastInsertId() (int64, error) { return 0, nil }

type fileRows struct {
	data []byte
	read bool
}

func (r *fileRows) Next() bool {
	if r.read {
		return false
	}
	r.read = true
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("storage: scan requires destination")
	}
	bytesDest, ok := dest[0].(*[]byte)
	if !ok {
		return fmt.Errorf("storage: unsupported scan destination %T", dest[0])
	}
	*bytesDest = append((*bytesDest)[:0], r.data...)
	return nil
}

func (r *fileRows) Close() error { return nil }
