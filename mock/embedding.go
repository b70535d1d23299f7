package mock

import (
	"context"

	"github.com/fwojciec/docsift"
)

var (
	_ docsift.Embedder       = (*Embedder)(nil)
	_ docsift.EmbeddingModel = (*EmbeddingModel)(nil)
	_ docsift.VectorCache    = (*VectorCache)(nil)
)

// Embedder is a mock implementation of docsift.Embedder.
type Embedder struct {
	EmbedChunkFn func(ctx context.Context, text string) ([]float32, error)
	EmbedQueryFn func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) EmbedChunk(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedChunkFn(ctx, text)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedQueryFn(ctx, text)
}

// EmbeddingModel is a mock implementation of docsift.EmbeddingModel.
type EmbeddingModel struct {
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *EmbeddingModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return m.EmbedFn(ctx, texts)
}

// VectorCache is a mock implementation of docsift.VectorCache.
type VectorCache struct {
	GetFn func(ctx context.Context, key string) (*docsift.CacheEntry, error)
	SetFn func(ctx context.Context, key string, entry *docsift.CacheEntry) error
}

func (c *VectorCache) Get(ctx context.Context, key string) (*docsift.CacheEntry, error) {
	return c.GetFn(ctx, key)
}

func (c *VectorCache) Set(ctx context.Context, key string, entry *docsift.CacheEntry) error {
	return c.SetFn(ctx, key, entry)
}
