package search_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/embed"
	"github.com/fwojciec/docsift/fs"
	"github.com/fwojciec/docsift/mock"
	"github.com/fwojciec/docsift/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://example.com/docs"

func mirrorWith(t *testing.T, chunks map[string][]string) *fs.Mirror {
	t.Helper()
	mirror := fs.NewMirror(t.TempDir())
	key := docsift.CollectionKey(baseURL)
	for page, texts := range chunks {
		entries := make([]docsift.MirrorEntry, 0, len(texts))
		for i, text := range texts {
			entries = append(entries, docsift.MirrorEntry{
				Chunk:    text,
				Metadata: docsift.MirrorMetadata{PageURL: page, ChunkIndex: i},
			})
		}
		require.NoError(t, mirror.SavePage(context.Background(), key, page, entries))
	}
	return mirror
}

func failingVectors() *mock.VectorStore {
	return &mock.VectorStore{
		SearchFn: func(ctx context.Context, name string, vector []float32, limit int) ([]docsift.ScoredPoint, error) {
			return nil, errors.New("connection refused")
		},
	}
}

func TestSearcher_Search(t *testing.T) {
	t.Parallel()

	t.Run("returns vector results when available", func(t *testing.T) {
		t.Parallel()

		var gotName string
		var gotLimit int
		s := &search.Searcher{
			Embedder: embed.NewEmbedder(nil, nil, nil),
			Vectors: &mock.VectorStore{
				SearchFn: func(ctx context.Context, name string, vector []float32, limit int) ([]docsift.ScoredPoint, error) {
					gotName, gotLimit = name, limit
					return []docsift.ScoredPoint{{
						Score:   0.92,
						Payload: docsift.PointPayload{PageURL: "https://example.com/docs/a", Chunk: "vector hit", SectionPath: "A"},
					}}, nil
				},
			},
			Mirror: &mock.MirrorStore{
				LoadEntriesFn: func(ctx context.Context, siteKey string) ([]docsift.MirrorEntry, error) {
					t.Fatal("lexical fallback must not run when vector search has results")
					return nil, nil
				},
			},
		}

		results, err := s.Search(context.Background(), baseURL, "anything", 3)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "https_example_com_docs", gotName)
		assert.Equal(t, 3, gotLimit)
		assert.Equal(t, "vector hit", results[0].ChunkText)
		assert.Equal(t, "https://example.com/docs/a", results[0].PageURL)
		assert.Equal(t, "A", results[0].SectionPath)
		assert.InDelta(t, 0.92, results[0].Score, 1e-6)
		assert.Equal(t, docsift.MethodVector, results[0].Method)
	})

	t.Run("embeds the query like chunks", func(t *testing.T) {
		t.Parallel()

		embedder := embed.NewEmbedder(nil, nil, nil)
		chunkVec, err := embedder.EmbedChunk(context.Background(), "how to install")
		require.NoError(t, err)

		var queryVec []float32
		s := &search.Searcher{
			Embedder: embedder,
			Vectors: &mock.VectorStore{
				SearchFn: func(ctx context.Context, name string, vector []float32, limit int) ([]docsift.ScoredPoint, error) {
					queryVec = vector
					return nil, nil
				},
			},
			Mirror: mirrorWith(t, nil),
		}

		_, err = s.Search(context.Background(), baseURL, "how to install", 5)

		require.NoError(t, err)
		assert.Equal(t, chunkVec, queryVec)
	})

	t.Run("falls back to lexical search when the vector store errors", func(t *testing.T) {
		t.Parallel()

		s := &search.Searcher{
			Embedder: embed.NewEmbedder(nil, nil, nil),
			Vectors:  failingVectors(),
			Mirror: mirrorWith(t, map[string][]string{
				"https://example.com/docs/install": {"Run the installer to set up the CLI."},
				"https://example.com/docs/other":   {"Unrelated content about billing."},
			}),
		}

		results, err := s.Search(context.Background(), baseURL, "installer", 5)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "https://example.com/docs/install", results[0].PageURL)
		assert.Equal(t, docsift.MethodLexical, results[0].Method)
		assert.Greater(t, results[0].Score, 0.0)
	})

	t.Run("falls back to lexical search when vector search is empty", func(t *testing.T) {
		t.Parallel()

		s := &search.Searcher{
			Embedder: embed.NewEmbedder(nil, nil, nil),
			Vectors: &mock.VectorStore{
				SearchFn: func(ctx context.Context, name string, vector []float32, limit int) ([]docsift.ScoredPoint, error) {
					return nil, nil
				},
			},
			Mirror: mirrorWith(t, map[string][]string{
				"https://example.com/docs/a": {"configure the proxy"},
			}),
		}

		results, err := s.Search(context.Background(), baseURL, "proxy", 5)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, docsift.MethodLexical, results[0].Method)
	})

	t.Run("returns empty results when both paths fail", func(t *testing.T) {
		t.Parallel()

		s := &search.Searcher{
			Embedder: embed.NewEmbedder(nil, nil, nil),
			Vectors:  failingVectors(),
			Mirror:   fs.NewMirror(t.TempDir()),
		}

		results, err := s.Search(context.Background(), baseURL, "anything", 5)

		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("truncates to topK", func(t *testing.T) {
		t.Parallel()

		chunks := map[string][]string{}
		for i := range 10 {
			chunks[fmt.Sprintf("https://example.com/docs/%d", i)] = []string{"match"}
		}
		s := &search.Searcher{
			Embedder: embed.NewEmbedder(nil, nil, nil),
			Vectors:  failingVectors(),
			Mirror:   mirrorWith(t, chunks),
		}

		results, err := s.Search(context.Background(), baseURL, "match", 3)

		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("rejects invalid base URLs", func(t *testing.T) {
		t.Parallel()

		s := &search.Searcher{Mirror: fs.NewMirror(t.TempDir())}

		_, err := s.Search(context.Background(), "docs.example.com", "q", 5)

		assert.Equal(t, docsift.EINVALID, docsift.ErrorCode(err))
	})
}

func TestSearcher_SearchAll(t *testing.T) {
	t.Parallel()

	t.Run("returns results per query in order", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		s := &search.Searcher{
			Embedder: embed.NewEmbedder(nil, nil, nil),
			Vectors: &mock.VectorStore{
				SearchFn: func(ctx context.Context, name string, vector []float32, limit int) ([]docsift.ScoredPoint, error) {
					calls.Add(1)
					return nil, errors.New("down")
				},
			},
			Mirror: mirrorWith(t, map[string][]string{
				"https://example.com/docs/a": {"alpha topic"},
				"https://example.com/docs/b": {"beta topic"},
			}),
			Concurrency: 2,
		}

		out, err := s.SearchAll(context.Background(), baseURL, []string{"beta", "alpha", "gamma"}, 5)

		require.NoError(t, err)
		require.Len(t, out, 3)
		assert.Equal(t, "beta", out[0].Query)
		require.Len(t, out[0].Results, 1)
		assert.Equal(t, "https://example.com/docs/b", out[0].Results[0].PageURL)
		assert.Equal(t, "alpha", out[1].Query)
		require.Len(t, out[1].Results, 1)
		assert.Equal(t, "https://example.com/docs/a", out[1].Results[0].PageURL)
		assert.Empty(t, out[2].Results)
		assert.Equal(t, int32(3), calls.Load())
	})
}

func TestRankLexical(t *testing.T) {
	t.Parallel()

	t.Run("ranks matching chunks above non-matching ones", func(t *testing.T) {
		t.Parallel()

		entries := []docsift.MirrorEntry{
			{Chunk: "This page covers billing and invoices.", Metadata: docsift.MirrorMetadata{PageURL: "https://example.com/billing"}},
			{Chunk: "Follow the installation steps below.", Metadata: docsift.MirrorMetadata{PageURL: "https://example.com/install"}},
		}

		results := search.RankLexical(entries, "installation steps", 5)

		require.Len(t, results, 1)
		assert.Equal(t, "https://example.com/install", results[0].PageURL)
		assert.InDelta(t, 2.0/float64(len(entries[1].Chunk))*100, results[0].Score, 1e-9)
	})

	t.Run("scores by term density", func(t *testing.T) {
		t.Parallel()

		entries := []docsift.MirrorEntry{
			{Chunk: "install once in a long sentence about many other things"},
			{Chunk: "install install"},
		}

		results := search.RankLexical(entries, "INSTALL", 5)

		require.Len(t, results, 2)
		assert.Equal(t, "install install", results[0].ChunkText)
	})

	t.Run("keeps mirror order for ties", func(t *testing.T) {
		t.Parallel()

		entries := []docsift.MirrorEntry{
			{Chunk: "foo", Metadata: docsift.MirrorMetadata{PageURL: "first"}},
			{Chunk: "foo", Metadata: docsift.MirrorMetadata{PageURL: "second"}},
		}

		results := search.RankLexical(entries, "foo", 5)

		require.Len(t, results, 2)
		assert.Equal(t, "first", results[0].PageURL)
		assert.Equal(t, "second", results[1].PageURL)
	})

	t.Run("returns nothing for blank queries", func(t *testing.T) {
		t.Parallel()

		results := search.RankLexical([]docsift.MirrorEntry{{Chunk: "text"}}, "   ", 5)

		assert.Empty(t, results)
	})
}
