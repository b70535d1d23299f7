package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/crawl"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool names.
const (
	ToolCrawl     = "crawl-docs-website"
	ToolSearch    = "search-docs"
	ToolListSites = "list-docs-sites"
)

// CrawlInput is the input schema for the crawl tool.
type CrawlInput struct {
	BaseURL      string `json:"baseUrl" jsonschema:"absolute URL of the documentation site root"`
	ForceRecrawl bool   `json:"forceRecrawl,omitempty" jsonschema:"delete previously indexed data for the site before crawling"`
}

// CrawlOutput is the output schema for the crawl tool.
type CrawlOutput struct {
	CollectionKey string `json:"collectionKey"`
	Pages         int    `json:"pages"`
	Failed        int    `json:"failed"`
	Skipped       int    `json:"skipped"`
	Chunks        int    `json:"chunks"`
	FailedBatches int    `json:"failedBatches"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	BaseURL string   `json:"baseUrl" jsonschema:"absolute URL of a previously crawled documentation site"`
	Queries []string `json:"queries" jsonschema:"one or more natural language queries"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []docsift.QueryResults `json:"results,omitempty"`
}

// ListSitesInput is the empty input of the list tool.
type ListSitesInput struct{}

// SiteOutput describes one indexed site.
type SiteOutput struct {
	Key       string `json:"key"`
	BaseURL   string `json:"baseUrl"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
	CrawledAt string `json:"crawledAt"`
}

// ListSitesOutput is the output schema for the list tool.
type ListSitesOutput struct {
	Sites []SiteOutput `json:"sites,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolCrawl,
		Description: "Crawl a documentation website to depth 2, chunk and embed its pages, and index them for search-docs.",
	}, s.handleCrawl)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolSearch,
		Description: "Search a previously crawled documentation website. Returns ranked chunks per query with score and source URL.",
	}, s.handleSearch)

	if s.services.Sites != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        ToolListSites,
			Description: "List documentation websites that have been crawled.",
		}, s.handleListSites)
	}
}

func (s *Server) handleCrawl(ctx context.Context, _ *mcp.CallToolRequest, input CrawlInput) (*mcp.CallToolResult, CrawlOutput, error) {
	baseURL := strings.TrimSpace(input.BaseURL)
	if _, err := docsift.ParseBaseURL(baseURL); err != nil {
		return errorResult("Invalid baseUrl", err), CrawlOutput{}, nil
	}

	s.crawlMu.Lock()
	defer s.crawlMu.Unlock()

	progress := func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressCompleted:
			s.logger.Debug("crawled page", "url", e.URL, "depth", e.Depth, "chunks", e.Chunks)
		case crawl.ProgressFailed:
			s.logger.Debug("page failed", "url", e.URL, "err", e.Error)
		}
	}

	result, err := s.services.Crawler.Crawl(ctx, baseURL, input.ForceRecrawl, progress)
	if err != nil {
		return errorResult("Crawl of "+baseURL+" failed", err), CrawlOutput{}, nil
	}

	out := CrawlOutput{
		CollectionKey: result.SiteKey,
		Pages:         result.Pages,
		Failed:        result.Failed,
		Skipped:       result.Skipped,
		Chunks:        result.Chunks,
		FailedBatches: result.FailedBatches,
	}
	return textResult(crawl.FormatSummary(baseURL, result)), out, nil
}

func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	baseURL := strings.TrimSpace(input.BaseURL)
	if _, err := docsift.ParseBaseURL(baseURL); err != nil {
		return errorResult("Invalid baseUrl", err), SearchOutput{}, nil
	}
	if len(input.Queries) == 0 {
		return errorResult("Invalid queries", docsift.Errorf(docsift.EINVALID, "at least one query is required")), SearchOutput{}, nil
	}
	queries := make([]string, len(input.Queries))
	for i, q := range input.Queries {
		queries[i] = strings.TrimSpace(q)
		if queries[i] == "" {
			return errorResult("Invalid queries", docsift.Errorf(docsift.EINVALID, "query %d is empty", i+1)), SearchOutput{}, nil
		}
	}

	results, err := s.services.Searcher.SearchAll(ctx, baseURL, queries, s.topK())
	if err != nil {
		return errorResult("Search of "+baseURL+" failed", err), SearchOutput{}, nil
	}

	return textResult(docsift.FormatSearchResults(results)), SearchOutput{Results: results}, nil
}

func (s *Server) handleListSites(ctx context.Context, _ *mcp.CallToolRequest, _ ListSitesInput) (*mcp.CallToolResult, ListSitesOutput, error) {
	sites, err := s.services.Sites.FindSites(ctx, docsift.SiteFilter{})
	if err != nil {
		return errorResult("Listing sites failed", err), ListSitesOutput{}, nil
	}

	out := ListSitesOutput{Sites: make([]SiteOutput, 0, len(sites))}
	if len(sites) == 0 {
		return textResult("No documentation sites have been crawled yet."), out, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d documentation site(s):\n", len(sites))
	for _, site := range sites {
		crawledAt := site.CrawledAt.UTC().Format(time.RFC3339)
		out.Sites = append(out.Sites, SiteOutput{
			Key:       site.Key,
			BaseURL:   site.BaseURL,
			Pages:     site.Pages,
			Chunks:    site.Chunks,
			CrawledAt: crawledAt,
		})
		fmt.Fprintf(&b, "- %s (%s): %d pages, %d chunks, crawled %s\n",
			site.BaseURL, site.Key, site.Pages, site.Chunks, crawledAt)
	}
	return textResult(b.String()), out, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult renders a failure as tool output rather than a protocol error.
// Infrastructure errors keep their full chain so the agent sees the cause.
func errorResult(message string, err error) *mcp.CallToolResult {
	detail := err.Error()
	var e *docsift.Error
	if errors.As(err, &e) {
		detail = docsift.ErrorMessage(err)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{
			Text: message + ": " + detail,
		}},
	}
}
