package mock

import (
	"context"

	"github.com/fwojciec/dealrater"
)

var _ dealrater.TemplateSource = (*TemplateSource)(nil)

// TemplateSource is a mock implementation of dealrater.TemplateSource.
type TemplateSource struct {
	LoadTemplatesFn func(ctx context.Context) ([]dealrater.Template, error)
}

func (s *TemplateSource) LoadTemplates(ctx context.Context) ([]dealrater.Template, error) {
	return s.LoadTemplatesFn(ctx)
}
