package docsift

import "context"

// DefaultTopK is the number of results returned per query when unset.
const DefaultTopK = 5

// Retrieval methods reported on search results.
const (
	MethodVector  = "vector"
	MethodLexical = "lexical"
)

// SearchResult is one ranked chunk returned for a query.
type SearchResult struct {
	ChunkText   string  `json:"chunkText"`
	PageURL     string  `json:"pageUrl"`
	SectionPath string  `json:"sectionPath,omitempty"`
	Score       float64 `json:"score"`
	Method      string  `json:"method"`
}

// QueryResults pairs a query with its results.
type QueryResults struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// Searcher answers queries against an indexed site.
type Searcher interface {
	// Search returns up to topK results for query. Failures degrade to
	// fewer results rather than errors.
	Search(ctx context.Context, baseURL, query string, topK int) ([]SearchResult, error)
}
