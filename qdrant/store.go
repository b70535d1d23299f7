// Package qdrant provides a docsift.VectorStore backed by Qdrant.
package qdrant

import (
	"context"
	"fmt"

	"github.com/fwojciec/docsift"
	"github.com/qdrant/go-client/qdrant"
)

// Payload field names.
const (
	fieldPageURL     = "pageUrl"
	fieldChunk       = "chunk"
	fieldSiteKey     = "siteKey"
	fieldSectionPath = "sectionPath"
	fieldChunkIndex  = "chunkIndex"
)

// Ensure Store implements docsift.VectorStore at compile time.
var _ docsift.VectorStore = (*Store)(nil)

// Client is the subset of *qdrant.Client used by Store.
type Client interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
}

// Config holds connection settings for a Qdrant server.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// Store implements docsift.VectorStore on a Qdrant gRPC client.
type Store struct {
	client Client
	closer func() error
}

// Open connects to the Qdrant server described by cfg.
func Open(cfg Config) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, docsift.Errorf(docsift.EUNAVAILABLE, "qdrant connect %s:%d: %v", cfg.Host, cfg.Port, err)
	}
	return &Store{client: client, closer: client.Close}, nil
}

// NewStore wraps an existing client.
func NewStore(client Client) *Store {
	return &Store{client: client}
}

// Close releases the underlying connection when Store opened it.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// CollectionExists reports whether the named collection exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	ok, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("qdrant collection exists %q: %w", name, err)
	}
	return ok, nil
}

// CreateCollection creates a cosine collection unless it already exists.
func (s *Store) CreateCollection(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return docsift.Errorf(docsift.EINVALID, "collection dimension must be positive")
	}
	exists, err := s.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection %q: %w", name, err)
	}
	return nil
}

// DeleteCollection removes the collection and all its points.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("qdrant delete collection %q: %w", name, err)
	}
	return nil
}

// Upsert writes points and waits for the write to be applied.
func (s *Store) Upsert(ctx context.Context, name string, points []docsift.IndexedPoint) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		structs[i] = ToPointStruct(p)
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Wait:           &wait,
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert %d points into %q: %w", len(points), name, err)
	}
	return nil
}

// Search returns up to limit points nearest to vector with their payloads.
func (s *Store) Search(ctx context.Context, name string, vector []float32, limit int) ([]docsift.ScoredPoint, error) {
	if limit <= 0 {
		return nil, docsift.Errorf(docsift.EINVALID, "search limit must be positive")
	}

	n := uint64(limit)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &n,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query %q: %w", name, err)
	}

	out := make([]docsift.ScoredPoint, 0, len(hits))
	for _, hit := range hits {
		out = append(out, FromScoredPoint(hit))
	}
	return out, nil
}

// ToPointStruct converts a point to its Qdrant form.
func ToPointStruct(p docsift.IndexedPoint) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewID(p.ID),
		Vectors: qdrant.NewVectors(p.Vector...),
		Payload: qdrant.NewValueMap(map[string]any{
			fieldPageURL:     p.Payload.PageURL,
			fieldChunk:       p.Payload.Chunk,
			fieldSiteKey:     p.Payload.SiteKey,
			fieldSectionPath: p.Payload.SectionPath,
			fieldChunkIndex:  int64(p.Payload.ChunkIndex),
		}),
	}
}

// FromScoredPoint converts a Qdrant hit. Missing payload fields are zero.
func FromScoredPoint(hit *qdrant.ScoredPoint) docsift.ScoredPoint {
	payload := hit.GetPayload()
	return docsift.ScoredPoint{
		ID:    hit.GetId().GetUuid(),
		Score: hit.GetScore(),
		Payload: docsift.PointPayload{
			PageURL:     payload[fieldPageURL].GetStringValue(),
			Chunk:       payload[fieldChunk].GetStringValue(),
			SiteKey:     payload[fieldSiteKey].GetStringValue(),
			SectionPath: payload[fieldSectionPath].GetStringValue(),
			ChunkIndex:  int(payload[fieldChunkIndex].GetIntegerValue()),
		},
	}
}
