package templates

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/internal/themes"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// BaseTemplateName is the store key for the theme's outer document shell.
const BaseTemplateName = "base"

// LayoutTemplateName returns the store key for a layout's main template.
func LayoutTemplateName(layoutID string) string {
	return "layout:" + layoutID
}

// Warmer loads a theme's templates into a store. After Warm returns, every
// base, layout, and partial template resolves synchronously from the store
// without touching the theme filesystem again.
type Warmer struct {
	store  *Store
	themes themes.Service
	log    interfaces.Logger
}

type WarmerOption func(*Warmer)

func WithWarmerLogger(log interfaces.Logger) WarmerOption {
	return func(w *Warmer) {
		if log != nil {
			w.log = log
		}
	}
}

func NewWarmer(store *Store, themeService themes.Service, opts ...WarmerOption) *Warmer {
	if store == nil {
		panic("templates: store is required")
	}
	if themeService == nil {
		panic("templates: theme service is required")
	}

	w := &Warmer{
		store:  store,
		themes: themeService,
		log:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Warm registers the theme's base template, its partials, and the named
// layouts with the store. Passing no layout IDs warms every layout the theme
// declares. Previously registered partials are cleared first so templates
// from an earlier theme, or an earlier version of this one, never leak in.
func (w *Warmer) Warm(ctx context.Context, themeName string, layoutIDs ...string) error {
	theme, err := w.themes.GetTheme(ctx, themeName)
	if err != nil {
		return err
	}

	w.store.ClearPartials()

	if base, ok := theme.BaseFile(); ok {
		source, err := w.themes.TemplateSource(ctx, themeName, base.Path)
		if err != nil {
			return fmt.Errorf("templates: warm base for theme %q: %w", themeName, err)
		}
		if err := w.store.RegisterTemplate(BaseTemplateName, source); err != nil {
			return err
		}
	}

	for _, file := range theme.PartialFiles() {
		if err := w.registerPartial(ctx, themeName, file); err != nil {
			return err
		}
	}

	if len(layoutIDs) == 0 {
		layoutIDs = theme.Manifest.Layouts
	}
	for _, layoutID := range layoutIDs {
		if err := w.warmLayout(ctx, theme, layoutID); err != nil {
			return err
		}
	}

	w.log.Debug("theme warmed",
		"theme", themeName,
		"layouts", len(layoutIDs),
		"partials", len(w.store.PartialNames()),
	)
	return nil
}

func (w *Warmer) warmLayout(ctx context.Context, theme *themes.Theme, layoutID string) error {
	layout, ok := theme.Layout(layoutID)
	if !ok {
		return &themes.NotFoundError{Resource: "layout", Key: theme.Name + "/" + layoutID}
	}

	if file, ok := layout.TemplateFile(); ok {
		source, err := w.themes.TemplateSource(ctx, theme.Name, file.Path)
		if err != nil {
			return fmt.Errorf("templates: warm layout %q: %w", layoutID, err)
		}
		if err := w.store.RegisterTemplate(LayoutTemplateName(layoutID), source); err != nil {
			return err
		}
	}

	for _, file := range layout.PartialFiles() {
		if err := w.registerPartial(ctx, theme.Name, file); err != nil {
			return err
		}
	}
	return nil
}

func (w *Warmer) registerPartial(ctx context.Context, themeName string, file themes.File) error {
	source, err := w.themes.TemplateSource(ctx, themeName, file.Path)
	if err != nil {
		return fmt.Errorf("templates: warm partial %q: %w", file.PartialName(), err)
	}
	return w.store.RegisterPartial(file.PartialName(), source)
}
