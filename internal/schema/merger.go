package schema

import (
	"context"

	"github.com/goliatone/go-sitebuilder/internal/logging"
	"github.com/goliatone/go-sitebuilder/pkg/interfaces"
)

// Source resolves the current appearance schema for a theme.
type Source interface {
	AppearanceSchema(ctx context.Context, themeName string) (map[string]any, error)
}

// Merger synchronizes a site's saved theme config against the theme's
// current appearance schema.
type Merger struct {
	source Source
	log    interfaces.Logger
}

// MergerOption configures the merger.
type MergerOption func(*Merger)

// WithLogger attaches a logger for degraded-mode warnings.
func WithLogger(log interfaces.Logger) MergerOption {
	return func(m *Merger) {
		if log != nil {
			m.log = log
		}
	}
}

// NewMerger constructs a config merger over the given schema source.
func NewMerger(source Source, opts ...MergerOption) *Merger {
	if source == nil {
		panic("schema: source is required")
	}

	m := &Merger{
		source: source,
		log:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MergeConfig returns the saved config synchronized with the theme's current
// schema. When the schema cannot be loaded the saved config is returned
// unchanged so the render proceeds with the last known good values.
func (m *Merger) MergeConfig(ctx context.Context, themeName string, saved map[string]any) map[string]any {
	schemaDoc, err := m.source.AppearanceSchema(ctx, themeName)
	if err != nil {
		m.log.Warn("theme schema unavailable, rendering with saved config",
			"theme", themeName,
			"error", err,
		)
		merged := cloneMap(saved)
		if merged == nil {
			merged = map[string]any{}
		}
		return merged
	}
	return ApplyDefaults(saved, schemaDoc)
}
