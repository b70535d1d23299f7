package docsift

import "context"

// RenderResult is the outcome of rendering one URL.
type RenderResult struct {
	// URL is the URL that was requested.
	URL string

	// FinalURL is the URL after redirects. Equal to URL when there were none.
	FinalURL string

	// Status is the HTTP status of the main document response.
	Status int

	// HTML is the serialized document after scripts have run.
	HTML string
}

// OK reports whether the main document was served with a 2xx status.
func (r *RenderResult) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Renderer retrieves rendered HTML for URLs.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Renderer interface {
	// Render navigates to the URL, waits for the page to load, and returns
	// the rendered HTML with the final URL and status.
	// The context controls timeout and cancellation.
	Render(ctx context.Context, url string) (*RenderResult, error)

	// Close releases renderer resources.
	// Must be called when the Renderer is no longer needed.
	Close() error
}
