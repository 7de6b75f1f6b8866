package navigation

import (
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-sitebuilder/internal/manifest"
	"github.com/goliatone/go-sitebuilder/internal/resolver"
)

// URLKitResolverOptions configures the go-urlkit backed href resolver.
type URLKitResolverOptions struct {
	Manager *urlkit.RouteManager
	// Group is the route group path, dotted for nested groups.
	Group string
	// Route is the template used for page nodes, defaults to "page".
	Route string
	// HomeRoute, when set, is used for the index node instead of Route.
	HomeRoute string
	// PathParam is the template parameter receiving the node path,
	// defaults to "path".
	PathParam string
}

// URLKitResolver builds navigation hrefs through a go-urlkit RouteManager,
// so preview and export surfaces can declare their URL layouts as route
// groups instead of string concatenation.
type URLKitResolver struct {
	manager   *urlkit.RouteManager
	groupPath string
	route     string
	homeRoute string
	pathParam string

	mu    sync.RWMutex
	group *urlkit.Group
}

// NewURLKitResolver constructs a resolver. A nil manager yields a resolver
// that always falls back to default href computation.
func NewURLKitResolver(opts URLKitResolverOptions) *URLKitResolver {
	if opts.Route == "" {
		opts.Route = "page"
	}
	if opts.PathParam == "" {
		opts.PathParam = "path"
	}

	return &URLKitResolver{
		manager:   opts.Manager,
		groupPath: strings.TrimSpace(opts.Group),
		route:     strings.TrimSpace(opts.Route),
		homeRoute: strings.TrimSpace(opts.HomeRoute),
		pathParam: opts.PathParam,
	}
}

// Resolve implements URLResolver.
func (r *URLKitResolver) Resolve(node manifest.Node) (string, bool) {
	if r == nil || r.manager == nil || r.groupPath == "" {
		return "", false
	}

	group, err := r.resolveGroup()
	if err != nil || group == nil {
		return "", false
	}

	routeName := r.route
	usingHome := node.Path == resolver.IndexPath && r.homeRoute != ""
	if usingHome {
		routeName = r.homeRoute
	}

	builder, err := safeBuilder(group, routeName)
	if err != nil || builder == nil {
		return "", false
	}
	if !usingHome {
		builder.WithParam(r.pathParam, node.Path)
	}

	url, err := builder.Build()
	if err != nil {
		return "", false
	}
	return url, true
}

func (r *URLKitResolver) resolveGroup() (*urlkit.Group, error) {
	r.mu.RLock()
	group := r.group
	r.mu.RUnlock()
	if group != nil {
		return group, nil
	}

	parts := strings.Split(r.groupPath, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.group = current
	r.mu.Unlock()
	return current, nil
}

// The urlkit lookups panic on unknown names, so they are wrapped into
// errors here and the caller falls back to default hrefs.

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("navigation: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("navigation: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("navigation: parent group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("navigation: child group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, err
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("navigation: route %q not found", route)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}
