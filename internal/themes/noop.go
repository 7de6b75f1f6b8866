package themes

import (
	"context"

	gotheme "github.com/goliatone/go-theme"
)

type noopService struct{}

// NewNoOpService returns a theme service for deployments that run with
// theming disabled. Every lookup fails with ErrFeatureDisabled, which sends
// the renderer down its fallback document paths.
func NewNoOpService() Service {
	return noopService{}
}

func (noopService) GetTheme(context.Context, string) (*Theme, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) GetLayout(context.Context, string, string) (*LayoutManifest, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) AppearanceSchema(context.Context, string) (map[string]any, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) TemplateSource(context.Context, string, string) (string, error) {
	return "", ErrFeatureDisabled
}

func (noopService) Selection(context.Context, string, string) (*gotheme.Selection, error) {
	return nil, ErrFeatureDisabled
}

func (noopService) Invalidate(string) {}
