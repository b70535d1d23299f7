package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsift"
)

// Ensure LoggingVectorStore implements docsift.VectorStore.
var _ docsift.VectorStore = (*LoggingVectorStore)(nil)

// LoggingVectorStore wraps a VectorStore with operation logging.
type LoggingVectorStore struct {
	next   docsift.VectorStore
	logger *slog.Logger
}

// NewLoggingVectorStore creates a new LoggingVectorStore.
func NewLoggingVectorStore(next docsift.VectorStore, logger *slog.Logger) *LoggingVectorStore {
	return &LoggingVectorStore{next: next, logger: logger}
}

// CollectionExists logs at debug level and delegates.
func (s *LoggingVectorStore) CollectionExists(ctx context.Context, name string) (ok bool, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("collection exists",
			"collection", name,
			"exists", ok,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CollectionExists(ctx, name)
}

// CreateCollection logs and delegates.
func (s *LoggingVectorStore) CreateCollection(ctx context.Context, name string, dimension int) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create collection",
			"collection", name,
			"dimension", dimension,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateCollection(ctx, name, dimension)
}

// DeleteCollection logs and delegates.
func (s *LoggingVectorStore) DeleteCollection(ctx context.Context, name string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete collection",
			"collection", name,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteCollection(ctx, name)
}

// Upsert logs the batch size and delegates.
func (s *LoggingVectorStore) Upsert(ctx context.Context, name string, points []docsift.IndexedPoint) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("upsert",
			"collection", name,
			"points", len(points),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Upsert(ctx, name, points)
}

// Search logs the hit count and delegates.
func (s *LoggingVectorStore) Search(ctx context.Context, name string, vector []float32, limit int) (hits []docsift.ScoredPoint, err error) {
	defer func(begin time.Time) {
		s.logger.Info("vector search",
			"collection", name,
			"limit", limit,
			"hits", len(hits),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, name, vector, limit)
}
