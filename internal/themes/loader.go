package themes

import (
	"encoding/json"
	"errors"
	"io/fs"
	"path"
	"strings"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitebuilder/internal/schema"
)

const (
	themeManifestFile  = "theme.json"
	layoutManifestFile = "layout.json"
	layoutsDir         = "layouts"
)

// LoadTheme reads one theme directory: theme.json, every layout manifest the
// theme references, and, when the directory carries one, a go-theme design
// token manifest. Layout file paths are rebased onto the theme root so
// consumers can read them without knowing the directory convention.
func LoadTheme(fsys fs.FS, name string) (*Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrThemeNameRequired
	}

	data, err := fs.ReadFile(fsys, path.Join(name, themeManifestFile))
	if err != nil {
		return nil, &NotFoundError{Resource: "theme", Key: name}
	}

	manifest := &Manifest{}
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, &schema.SchemaError{Resource: "theme manifest " + name, Cause: err}
	}
	if manifest.Name == "" {
		manifest.Name = name
	}

	theme := &Theme{
		Name:     name,
		Manifest: manifest,
		Layouts:  make(map[string]*LayoutManifest, len(manifest.Layouts)),
	}

	for _, layoutID := range manifest.Layouts {
		layout, err := loadLayout(fsys, name, layoutID)
		if err != nil {
			return nil, err
		}
		theme.Layouts[layoutID] = layout
	}

	// Design tokens are optional; a theme without a go-theme manifest still
	// renders, it just contributes no token-derived CSS variables.
	if tokens, err := gotheme.LoadDir(fsys, name); err == nil {
		if strings.TrimSpace(tokens.Name) == "" {
			tokens.Name = name
		}
		theme.Tokens = tokens
	}

	return theme, nil
}

func loadLayout(fsys fs.FS, themeName, layoutID string) (*LayoutManifest, error) {
	layoutID = strings.TrimSpace(layoutID)
	layoutBase := path.Join(layoutsDir, layoutID)

	data, err := fs.ReadFile(fsys, path.Join(themeName, layoutBase, layoutManifestFile))
	if err != nil {
		return nil, &NotFoundError{Resource: "layout", Key: themeName + "/" + layoutID}
	}

	layout := &LayoutManifest{}
	if err := json.Unmarshal(data, layout); err != nil {
		return nil, &schema.SchemaError{Resource: "layout manifest " + layoutID, Cause: err}
	}
	if layout.Name == "" {
		layout.Name = layoutID
	}
	if layout.Type == "" {
		layout.Type = LayoutTypePage
	}
	if layout.Type != LayoutTypePage && layout.Type != LayoutTypeCollection {
		return nil, errors.Join(ErrLayoutTypeInvalid, errors.New("layout "+layoutID))
	}

	// Paths inside a layout manifest are layout-relative unless they start
	// with a slash, which pins them to the theme root.
	for i, file := range layout.Files {
		if strings.HasPrefix(file.Path, "/") {
			layout.Files[i].Path = strings.TrimPrefix(path.Clean(file.Path), "/")
			continue
		}
		layout.Files[i].Path = path.Join(layoutBase, file.Path)
	}

	return layout, nil
}
