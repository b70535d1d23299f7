package docsift

import "context"

// PointPayload is the metadata stored next to each vector.
type PointPayload struct {
	PageURL     string `json:"pageUrl"`
	Chunk       string `json:"chunk"`
	SiteKey     string `json:"siteKey"`
	SectionPath string `json:"sectionPath"`
	ChunkIndex  int    `json:"chunkIndex"`
}

// IndexedPoint is one vector in a collection.
type IndexedPoint struct {
	ID      string
	Vector  []float32
	Payload PointPayload
}

// ScoredPoint is a search hit. Higher scores are more similar.
type ScoredPoint struct {
	ID      string
	Score   float32
	Payload PointPayload
}

// VectorStore represents a vector database holding one collection per site.
type VectorStore interface {
	// CollectionExists reports whether the named collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// CreateCollection creates a cosine-distance collection of the given
	// dimension. Creating an existing collection is not an error.
	CreateCollection(ctx context.Context, name string, dimension int) error

	// DeleteCollection removes the collection and all its points.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert inserts or replaces points by ID.
	Upsert(ctx context.Context, name string, points []IndexedPoint) error

	// Search returns up to limit points closest to vector, best first.
	Search(ctx context.Context, name string, vector []float32, limit int) ([]ScoredPoint, error)
}
