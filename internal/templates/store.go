package templates

import (
	"sync"

	"github.com/aymerick/raymond"
	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// Store compiles and caches handlebars templates for one rendering pipeline.
// Every Store owns its own partials and helpers, so two stores warmed from
// different themes never observe each other's registrations.
type Store struct {
	mu       sync.RWMutex
	sources  map[string]string
	partials map[string]string
	compiled map[string]*raymond.Template
	helpers  map[string]interface{}
	log      interfaces.Logger
}

type StoreOption func(*Store)

// WithHelper registers an additional helper under the given name. Helpers
// registered this way shadow the built-in helper of the same name.
func WithHelper(name string, helper interface{}) StoreOption {
	return func(s *Store) {
		if name == "" || helper == nil {
			return
		}
		s.helpers[name] = helper
	}
}

// WithLogger attaches a logger used by helpers that swallow errors, such as
// renderItem.
func WithLogger(log interfaces.Logger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sources:  map[string]string{},
		partials: map[string]string{},
		compiled: map[string]*raymond.Template{},
		log:      logging.NoOp(),
	}
	s.helpers = builtinHelpers(s)
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// RegisterTemplate stores the source for a named template. Any previously
// compiled instance under the same name is dropped.
func (s *Store) RegisterTemplate(name, source string) error {
	if name == "" {
		return ErrTemplateNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources[name] = source
	delete(s.compiled, name)
	return nil
}

// RegisterPartial stores a partial source. Compiled templates capture the
// partial set they were built with, so the compiled cache is reset.
func (s *Store) RegisterPartial(name, source string) error {
	if name == "" {
		return ErrPartialNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.partials[name] = source
	s.compiled = map[string]*raymond.Template{}
	return nil
}

// ClearPartials unregisters every partial and drops the compiled cache.
// Warming a theme calls this first so renamed partials never linger.
func (s *Store) ClearPartials() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.partials = map[string]string{}
	s.compiled = map[string]*raymond.Template{}
}

// Clear resets the store to its empty state. Helpers survive, they belong to
// the store instance rather than to a warmed theme.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources = map[string]string{}
	s.partials = map[string]string{}
	s.compiled = map[string]*raymond.Template{}
}

// Has reports whether a template source is registered under name.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sources[name]
	return ok
}

// PartialNames returns the names of all registered partials.
func (s *Store) PartialNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.partials))
	for name := range s.partials {
		names = append(names, name)
	}
	return names
}

// Template returns the compiled template registered under name. Lookups after
// warming never touch the filesystem, the source is compiled at most once.
func (s *Store) Template(name string) (*raymond.Template, error) {
	if name == "" {
		return nil, ErrTemplateNameRequired
	}

	s.mu.RLock()
	cached, ok := s.compiled[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.compiled[name]; ok {
		return cached, nil
	}
	source, ok := s.sources[name]
	if !ok {
		return nil, &TemplateError{Name: name, Cause: ErrTemplateNotRegistered}
	}
	tpl, err := s.compileLocked(source)
	if err != nil {
		return nil, &TemplateError{Name: name, Cause: err}
	}
	s.compiled[name] = tpl
	return tpl, nil
}

// Render executes the named template against data.
func (s *Store) Render(name string, data interface{}) (string, error) {
	tpl, err := s.Template(name)
	if err != nil {
		return "", err
	}
	out, err := tpl.Exec(data)
	if err != nil {
		return "", &TemplateError{Name: name, Cause: err}
	}
	return out, nil
}

// RenderString compiles source once, executes it against data, and discards
// the compiled template. The current partials and helpers are available.
func (s *Store) RenderString(source string, data interface{}) (string, error) {
	s.mu.RLock()
	tpl, err := s.compileLocked(source)
	s.mu.RUnlock()
	if err != nil {
		return "", &TemplateError{Name: "inline", Cause: err}
	}
	out, err := tpl.Exec(data)
	if err != nil {
		return "", &TemplateError{Name: "inline", Cause: err}
	}
	return out, nil
}

// compileLocked parses source and attaches the store's helpers and partials
// to the fresh template instance. Callers must hold at least a read lock.
func (s *Store) compileLocked(source string) (*raymond.Template, error) {
	tpl, err := raymond.Parse(source)
	if err != nil {
		return nil, err
	}
	for name, helper := range s.helpers {
		tpl.RegisterHelper(name, helper)
	}
	for name, partial := range s.partials {
		tpl.RegisterPartial(name, partial)
	}
	return tpl, nil
}
