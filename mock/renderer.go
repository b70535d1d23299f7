package mock

import (
	"context"

	"github.com/fwojciec/docsift"
)

var _ docsift.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of docsift.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, url string) (*docsift.RenderResult, error)
	CloseFn  func() error
}

func (r *Renderer) Render(ctx context.Context, url string) (*docsift.RenderResult, error) {
	return r.RenderFn(ctx, url)
}

func (r *Renderer) Close() error {
	return r.CloseFn()
}
