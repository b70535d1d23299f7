// Package http provides an HTTP-based docsift.Renderer for static sites
// that don't require JavaScript rendering.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/docsift"
)

// DefaultTimeout is the default timeout for HTTP requests.
const DefaultTimeout = 30 * time.Second

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 10 << 20

// userAgent identifies the crawler to servers.
const userAgent = "docsift/1.0 (+https://github.com/fwojciec/docsift)"

// Ensure Renderer implements docsift.Renderer at compile time.
var _ docsift.Renderer = (*Renderer)(nil)

// Renderer retrieves HTML with plain HTTP GET requests. It does not execute
// JavaScript.
type Renderer struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithClient sets the HTTP client. Its Timeout is overridden by WithTimeout.
func WithClient(c *http.Client) Option {
	return func(r *Renderer) {
		r.client = c
	}
}

// NewRenderer creates a new HTTP-based Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		r.client = &http.Client{}
	}
	client := *r.client
	client.Timeout = r.timeout
	r.client = &client

	return r
}

// Factory returns a constructor suitable for crawl.Crawler.NewRenderer.
func Factory(opts ...Option) func() (docsift.Renderer, error) {
	return func() (docsift.Renderer, error) {
		return NewRenderer(opts...), nil
	}
}

// Render fetches url following redirects. Non-2xx responses are returned
// with their status rather than as errors.
func (r *Renderer) Render(ctx context.Context, url string) (*docsift.RenderResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, docsift.Errorf(docsift.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}

	return &docsift.RenderResult{
		URL:      url,
		FinalURL: resp.Request.URL.String(),
		Status:   resp.StatusCode,
		HTML:     string(body),
	}, nil
}

// Close releases resources. It is a no-op since http.Client doesn't
// require explicit cleanup.
func (r *Renderer) Close() error {
	return nil
}
