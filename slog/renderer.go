// Package slog wraps docsift services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsift"
)

// Ensure LoggingRenderer implements docsift.Renderer.
var _ docsift.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer with request logging.
type LoggingRenderer struct {
	next   docsift.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next docsift.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render logs the URL, status, final URL and size of each render.
func (r *LoggingRenderer) Render(ctx context.Context, url string) (result *docsift.RenderResult, err error) {
	defer func(begin time.Time) {
		var status, bytes int
		var finalURL string
		if result != nil {
			status, bytes, finalURL = result.Status, len(result.HTML), result.FinalURL
		}
		r.logger.Info("render",
			"url", url,
			"final_url", finalURL,
			"status", status,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Render(ctx, url)
}

// Close delegates to the wrapped renderer.
func (r *LoggingRenderer) Close() error {
	return r.next.Close()
}
