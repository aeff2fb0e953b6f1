package hypothesis

import (
	"context"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
	"github.com/mschrader15/hypothesis-sync/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ClientFactory = (*Factory)(nil)

// Factory builds Hypothes.is clients from settings. Options set here
// (base URL, page size) apply to every client it creates.
type Factory struct {
	opts []Option
}

// NewFactory creates a client factory.
func NewFactory(opts ...Option) *Factory {
	return &Factory{opts: opts}
}

// Create returns a client authenticated with the settings' API token.
func (f *Factory) Create(ctx context.Context, settings domain.Settings) (driven.AnnotationClient, error) {
	if settings.APIToken == "" {
		return nil, domain.ErrNotConnected
	}
	return NewClient(ctx, settings.APIToken, f.opts...), nil
}
