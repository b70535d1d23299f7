package mock

import (
	"context"

	"github.com/fwojciec/docsift"
)

var _ docsift.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of docsift.Searcher that also offers
// the multi-query SearchAll of search.Searcher.
type Searcher struct {
	SearchFn    func(ctx context.Context, baseURL, query string, topK int) ([]docsift.SearchResult, error)
	SearchAllFn func(ctx context.Context, baseURL string, queries []string, topK int) ([]docsift.QueryResults, error)
}

func (s *Searcher) Search(ctx context.Context, baseURL, query string, topK int) ([]docsift.SearchResult, error) {
	return s.SearchFn(ctx, baseURL, query, topK)
}

func (s *Searcher) SearchAll(ctx context.Context, baseURL string, queries []string, topK int) ([]docsift.QueryResults, error) {
	return s.SearchAllFn(ctx, baseURL, queries, topK)
}
