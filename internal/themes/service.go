package themes

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// Service exposes theme manifests, layouts, appearance schemas, template
// sources, and design token selections. Loaded themes are cached for the
// process lifetime; invalidation is explicit, never implicit.
type Service interface {
	GetTheme(ctx context.Context, name string) (*Theme, error)
	GetLayout(ctx context.Context, themeName, layoutID string) (*LayoutManifest, error)
	AppearanceSchema(ctx context.Context, themeName string) (map[string]any, error)
	TemplateSource(ctx context.Context, themeName, filePath string) (string, error)
	Selection(ctx context.Context, themeName, variant string) (*gotheme.Selection, error)
	Invalidate(themeName string)
}

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithDefaultTheme sets the fallback theme for token selection.
func WithDefaultTheme(name string) ServiceOption {
	return func(s *service) {
		s.defaultTheme = strings.TrimSpace(name)
	}
}

// WithDefaultVariant sets the fallback design token variant.
func WithDefaultVariant(variant string) ServiceOption {
	return func(s *service) {
		s.defaultVariant = strings.TrimSpace(variant)
	}
}

// WithLogger attaches a logger.
func WithLogger(log interfaces.Logger) ServiceOption {
	return func(s *service) {
		if log != nil {
			s.log = log
		}
	}
}

type service struct {
	fsys           fs.FS
	defaultTheme   string
	defaultVariant string
	log            interfaces.Logger

	mu         sync.RWMutex
	themes     map[string]*Theme
	registry   *gotheme.MemoryRegistry
	registered map[string]bool
}

// NewService constructs a theme service over the themes base directory.
func NewService(fsys fs.FS, opts ...ServiceOption) Service {
	if fsys == nil {
		panic("themes: theme filesystem is required")
	}

	s := &service{
		fsys:       fsys,
		log:        logging.NoOp(),
		themes:     map[string]*Theme{},
		registry:   gotheme.NewRegistry(),
		registered: map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetTheme(_ context.Context, name string) (*Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrThemeNameRequired
	}

	s.mu.RLock()
	cached, ok := s.themes[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.themes[name]; ok {
		return cached, nil
	}

	theme, err := LoadTheme(s.fsys, name)
	if err != nil {
		return nil, err
	}
	s.themes[name] = theme
	return theme, nil
}

func (s *service) GetLayout(ctx context.Context, themeName, layoutID string) (*LayoutManifest, error) {
	theme, err := s.GetTheme(ctx, themeName)
	if err != nil {
		return nil, err
	}
	layout, ok := theme.Layout(layoutID)
	if !ok {
		return nil, &NotFoundError{Resource: "layout", Key: themeName + "/" + layoutID}
	}
	return layout, nil
}

func (s *service) AppearanceSchema(ctx context.Context, themeName string) (map[string]any, error) {
	theme, err := s.GetTheme(ctx, themeName)
	if err != nil {
		return nil, err
	}
	return theme.Manifest.AppearanceSchema, nil
}

func (s *service) TemplateSource(ctx context.Context, themeName, filePath string) (string, error) {
	if _, err := s.GetTheme(ctx, themeName); err != nil {
		return "", err
	}
	data, err := fs.ReadFile(s.fsys, path.Join(themeName, filePath))
	if err != nil {
		return "", &NotFoundError{Resource: "template file", Key: themeName + "/" + filePath}
	}
	return string(data), nil
}

// Selection resolves the theme's design tokens for a variant. Themes without
// a token manifest return a nil selection; rendering proceeds with config
// derived variables only.
func (s *service) Selection(ctx context.Context, themeName, variant string) (*gotheme.Selection, error) {
	theme, err := s.GetTheme(ctx, themeName)
	if err != nil {
		return nil, err
	}
	if theme.Tokens == nil {
		return nil, nil
	}

	s.mu.Lock()
	if !s.registered[theme.Name] {
		if err := s.registry.Register(theme.Tokens); err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("themes: register tokens for %q: %w", theme.Name, err)
		}
		s.registered[theme.Name] = true
	}
	s.mu.Unlock()

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.defaultTheme,
		DefaultVariant: s.defaultVariant,
	}
	if variant = strings.TrimSpace(variant); variant == "" {
		variant = s.defaultVariant
	}

	selection, err := selector.Select(theme.Name, variant)
	if err != nil {
		return nil, fmt.Errorf("themes: select tokens for %q: %w", theme.Name, err)
	}
	return selection, nil
}

// Invalidate drops the cached manifest for one theme, or every theme when
// name is empty. Token registrations survive; re-registering the same theme
// name is not supported by the registry.
func (s *service) Invalidate(themeName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if themeName = strings.TrimSpace(themeName); themeName == "" {
		s.themes = map[string]*Theme{}
		return
	}
	delete(s.themes, themeName)
}
