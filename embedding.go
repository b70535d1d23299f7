package docsift

import "context"

// EmbeddingDimension is the length of every embedding vector.
const EmbeddingDimension = 384

// Embedder turns text into embedding vectors. Chunks and queries go through
// the same function so their vectors are comparable.
type Embedder interface {
	// EmbedChunk returns the vector for a chunk of document text.
	EmbedChunk(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery returns the vector for a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingModel is an external model producing embeddings.
type EmbeddingModel interface {
	// Embed returns one vector per input text, in input order. A model that
	// returns per-token vectors may return them concatenated; callers pool
	// them down to EmbeddingDimension.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// CacheEntry is a cached embedding. Degraded marks a fallback vector that
// should be replaced once the model produces the real one.
type CacheEntry struct {
	Vector   []float32 `json:"vector"`
	Degraded bool      `json:"degraded,omitempty"`
}

// VectorCache stores embeddings by a content-derived key.
type VectorCache interface {
	// Get returns the entry for key. Returns ENOTFOUND on a miss.
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores the entry for key, replacing any existing one.
	Set(ctx context.Context, key string, entry *CacheEntry) error
}
