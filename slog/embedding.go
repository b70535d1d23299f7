package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsift"
)

// Ensure LoggingEmbeddingModel implements docsift.EmbeddingModel.
var _ docsift.EmbeddingModel = (*LoggingEmbeddingModel)(nil)

// LoggingEmbeddingModel wraps an EmbeddingModel with debug logging.
type LoggingEmbeddingModel struct {
	next   docsift.EmbeddingModel
	logger *slog.Logger
}

// NewLoggingEmbeddingModel creates a new LoggingEmbeddingModel.
func NewLoggingEmbeddingModel(next docsift.EmbeddingModel, logger *slog.Logger) *LoggingEmbeddingModel {
	return &LoggingEmbeddingModel{next: next, logger: logger}
}

// Embed logs input and output counts and delegates.
func (m *LoggingEmbeddingModel) Embed(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	defer func(begin time.Time) {
		m.logger.Debug("embed",
			"texts", len(texts),
			"vectors", len(vectors),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.Embed(ctx, texts)
}
