package mock

import (
	"context"

	"github.com/fwojciec/docsift"
)

var _ docsift.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of docsift.VectorStore.
type VectorStore struct {
	CollectionExistsFn func(ctx context.Context, name string) (bool, error)
	CreateCollectionFn func(ctx context.Context, name string, dimension int) error
	DeleteCollectionFn func(ctx context.Context, name string) error
	UpsertFn           func(ctx context.Context, name string, points []docsift.IndexedPoint) error
	SearchFn           func(ctx context.Context, name string, vector []float32, limit int) ([]docsift.ScoredPoint, error)
}

func (s *VectorStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	return s.CollectionExistsFn(ctx, name)
}

func (s *VectorStore) CreateCollection(ctx context.Context, name string, dimension int) error {
	return s.CreateCollectionFn(ctx, name, dimension)
}

func (s *VectorStore) DeleteCollection(ctx context.Context, name string) error {
	return s.DeleteCollectionFn(ctx, name)
}

func (s *VectorStore) Upsert(ctx context.Context, name string, points []docsift.IndexedPoint) error {
	return s.UpsertFn(ctx, name, points)
}

func (s *VectorStore) Search(ctx context.Context, name string, vector []float32, limit int) ([]docsift.ScoredPoint, error) {
	return s.SearchFn(ctx, name, vector, limit)
}
