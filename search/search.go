// Package search answers queries against indexed sites. Vector similarity
// is tried first; when it errors or finds nothing, chunks from the local
// mirror are scored lexically instead.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/fwojciec/docsift"
	"golang.org/x/sync/errgroup"
)

// Ensure Searcher implements docsift.Searcher at compile time.
var _ docsift.Searcher = (*Searcher)(nil)

// DefaultConcurrency bounds the queries SearchAll runs at once.
const DefaultConcurrency = 4

// Searcher retrieves the chunks most relevant to a query.
type Searcher struct {
	Embedder docsift.Embedder
	Vectors  docsift.VectorStore
	Mirror   docsift.MirrorStore

	// Concurrency bounds SearchAll. Zero uses DefaultConcurrency.
	Concurrency int
	Logger      *slog.Logger
}

// Search returns up to topK results for query against the site at baseURL.
// Only an invalid base URL is an error; retrieval failures degrade to the
// lexical fallback and then to an empty result.
func (s *Searcher) Search(ctx context.Context, baseURL, query string, topK int) ([]docsift.SearchResult, error) {
	if _, err := docsift.ParseBaseURL(baseURL); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = docsift.DefaultTopK
	}
	key := docsift.CollectionKey(baseURL)

	results, err := s.vectorSearch(ctx, key, query, topK)
	if err != nil {
		s.logger().Warn("vector search failed, using lexical fallback", "collection", key, "err", err)
	}
	if len(results) > 0 {
		return results, nil
	}

	results, err = s.lexicalSearch(ctx, key, query, topK)
	if err != nil {
		s.logger().Warn("lexical search failed", "collection", key, "err", err)
		return []docsift.SearchResult{}, nil
	}
	return results, nil
}

// SearchAll runs every query concurrently and returns results in query
// order. A failing query yields an empty result list, not an error.
func (s *Searcher) SearchAll(ctx context.Context, baseURL string, queries []string, topK int) ([]docsift.QueryResults, error) {
	if _, err := docsift.ParseBaseURL(baseURL); err != nil {
		return nil, err
	}

	out := make([]docsift.QueryResults, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())

	for i, query := range queries {
		g.Go(func() error {
			results, err := s.Search(gctx, baseURL, query, topK)
			if err != nil {
				s.logger().Warn("search query", "query", query, "err", err)
				results = []docsift.SearchResult{}
			}
			out[i] = docsift.QueryResults{Query: query, Results: results}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Searcher) vectorSearch(ctx context.Context, key, query string, topK int) ([]docsift.SearchResult, error) {
	if s.Embedder == nil || s.Vectors == nil {
		return nil, nil
	}
	vector, err := s.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	points, err := s.Vectors.Search(ctx, key, vector, topK)
	if err != nil {
		return nil, err
	}

	results := make([]docsift.SearchResult, 0, len(points))
	for _, p := range points {
		results = append(results, docsift.SearchResult{
			ChunkText:   p.Payload.Chunk,
			PageURL:     p.Payload.PageURL,
			SectionPath: p.Payload.SectionPath,
			Score:       float64(p.Score),
			Method:      docsift.MethodVector,
		})
	}
	return results, nil
}

func (s *Searcher) lexicalSearch(ctx context.Context, key, query string, topK int) ([]docsift.SearchResult, error) {
	entries, err := s.Mirror.LoadEntries(ctx, key)
	if err != nil {
		return nil, err
	}
	return RankLexical(entries, query, topK), nil
}

// RankLexical scores entries against the lowercase whitespace-separated
// terms of query and returns the topK best, highest first. An entry scores
// the total count of term occurrences in its lowercased text divided by the
// text length, times 100. Entries scoring zero are dropped; ties keep
// mirror order.
func RankLexical(entries []docsift.MirrorEntry, query string, topK int) []docsift.SearchResult {
	terms := strings.Fields(strings.ToLower(query))
	results := []docsift.SearchResult{}
	if len(terms) == 0 {
		return results
	}

	for _, entry := range entries {
		score := LexicalScore(entry.Chunk, terms)
		if score == 0 {
			continue
		}
		results = append(results, docsift.SearchResult{
			ChunkText:   entry.Chunk,
			PageURL:     entry.Metadata.PageURL,
			SectionPath: entry.Metadata.SectionPath,
			Score:       score,
			Method:      docsift.MethodLexical,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// LexicalScore is the occurrence density of lowercase terms in text.
func LexicalScore(text string, terms []string) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	var hits int
	for _, term := range terms {
		hits += strings.Count(lower, term)
	}
	return float64(hits) / float64(len(text)) * 100
}

func (s *Searcher) concurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return DefaultConcurrency
}

func (s *Searcher) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
