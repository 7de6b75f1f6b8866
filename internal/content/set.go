package content

import (
	"fmt"
	"sort"
	"strings"
)

// Set is an immutable-by-convention snapshot of one site's content files,
// keyed by tree path (the blob path with the content root and extension
// stripped). The resolver treats a Set as frozen for the duration of a
// render.
type Set struct {
	root  string
	ext   string
	files map[string]*File
}

// NewSet returns an empty set rooted at root with the given extension.
func NewSet(root, ext string) *Set {
	return &Set{
		root:  strings.Trim(root, "/"),
		ext:   ext,
		files: map[string]*File{},
	}
}

// Root returns the content root prefix, e.g. "content".
func (s *Set) Root() string { return s.root }

// Ext returns the markdown extension, e.g. ".md".
func (s *Set) Ext() string { return s.ext }

// FilePath maps a tree path onto its blob path inside the content root.
func (s *Set) FilePath(treePath string) string {
	return s.root + "/" + strings.Trim(treePath, "/") + s.ext
}

// TreePath maps a blob path back onto its tree path. The second return is
// false when the path sits outside the content root or lacks the extension.
func (s *Set) TreePath(blobPath string) (string, bool) {
	prefix := s.root + "/"
	if !strings.HasPrefix(blobPath, prefix) || !strings.HasSuffix(blobPath, s.ext) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(blobPath, prefix), s.ext), true
}

// Add registers a parsed file, enforcing the path invariant.
func (s *Set) Add(f *File) error {
	if f == nil {
		return ErrFileNil
	}
	treePath, ok := s.TreePath(f.Path)
	if ok {
		ok = treePath != ""
	}
	if !ok {
		return fmt.Errorf("content: path %q must live under %q and end in %q: %w", f.Path, s.root, s.ext, ErrPathOutsideRoot)
	}
	s.files[treePath] = f
	return nil
}

// Get resolves a file by tree path.
func (s *Set) Get(treePath string) (*File, bool) {
	if s == nil {
		return nil, false
	}
	f, ok := s.files[strings.Trim(treePath, "/")]
	return f, ok
}

// Children returns the files directly inside folder, sorted by tree path.
// Deeper descendants are excluded; collections list only their own items.
func (s *Set) Children(folder string) []*File {
	if s == nil {
		return nil
	}
	folder = strings.Trim(folder, "/")
	prefix := ""
	if folder != "" {
		prefix = folder + "/"
	}

	var paths []string
	for treePath := range s.files {
		if !strings.HasPrefix(treePath, prefix) {
			continue
		}
		rest := strings.TrimPrefix(treePath, prefix)
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		paths = append(paths, treePath)
	}
	sort.Strings(paths)

	files := make([]*File, len(paths))
	for i, treePath := range paths {
		files[i] = s.files[treePath]
	}
	return files
}

// HasFolder reports whether any file lives underneath folder.
func (s *Set) HasFolder(folder string) bool {
	if s == nil {
		return false
	}
	prefix := strings.Trim(folder, "/") + "/"
	for treePath := range s.files {
		if strings.HasPrefix(treePath, prefix) {
			return true
		}
	}
	return false
}

// Len reports the number of files in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.files)
}

// Paths returns every tree path in the set, sorted.
func (s *Set) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, 0, len(s.files))
	for treePath := range s.files {
		paths = append(paths, treePath)
	}
	sort.Strings(paths)
	return paths
}
