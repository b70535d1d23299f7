// Package crawl provides documentation crawling and ingestion.
// It walks a site breadth-first to a fixed depth, turns each rendered page
// into chunks, embeds them, and persists them to the local mirror and the
// vector store.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/fwojciec/docsift"
	"github.com/google/uuid"
)

// Defaults for zero-valued Crawler fields.
const (
	DefaultRenderTimeout = 60 * time.Second
	DefaultBatchSize     = 50
)

// pointNamespace scopes the deterministic point IDs derived per chunk.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/fwojciec/docsift/points"))

// Crawler orchestrates the crawling and indexing of documentation sites.
type Crawler struct {
	// NewRenderer creates the renderer used for one crawl run. It is closed
	// when the run ends.
	NewRenderer func() (docsift.Renderer, error)

	Extractor docsift.Extractor
	Converter docsift.Converter
	Links     docsift.LinkExtractor
	Embedder  docsift.Embedder
	Mirror    docsift.MirrorStore
	Vectors   docsift.VectorStore

	// Sites records crawl results when set.
	Sites docsift.SiteService

	// RateLimiter throttles renders per domain when set.
	RateLimiter docsift.DomainLimiter

	RenderTimeout time.Duration

	// RetryDelays are the waits between render attempts. Nil renders once.
	RetryDelays []time.Duration

	BatchSize int
	MaxDepth  int
	Logger    *slog.Logger
}

// Result holds the outcome of a crawl operation.
type Result struct {
	SiteKey       string
	Pages         int
	Failed        int
	Skipped       int
	Chunks        int
	Sections      int
	FailedBatches int
	Bytes         int
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type   ProgressType
	URL    string
	Depth  int
	Chunks int
	Error  error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressSkipped
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// run holds the state of one Crawl call.
type run struct {
	base     *url.URL
	baseURL  string
	key      string
	frontier *Frontier
	renderer docsift.Renderer
	position int
	result   Result
	progress ProgressFunc
}

func (r *run) report(event ProgressEvent) {
	if r.progress != nil {
		r.progress(event)
	}
}

// Crawl crawls the site rooted at baseURL and indexes every page it reaches.
// With force, the site's mirror, vector collection and registry record are
// deleted first. Per-page failures are counted in the result; only setup
// failures and cancellation return an error.
func (c *Crawler) Crawl(ctx context.Context, baseURL string, force bool, progress ProgressFunc) (*Result, error) {
	base, err := docsift.ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	r := &run{
		base:     base,
		baseURL:  baseURL,
		key:      docsift.CollectionKey(baseURL),
		frontier: NewFrontier(c.maxDepth()),
		progress: progress,
	}
	r.result.SiteKey = r.key

	if force {
		if err := c.reset(ctx, r.key); err != nil {
			return nil, err
		}
	}

	if err := c.ensureCollection(ctx, r.key); err != nil {
		return nil, err
	}

	renderer, err := c.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("start renderer: %w", err)
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			c.logger().Warn("close renderer", "err", err)
		}
	}()
	r.renderer = renderer

	r.frontier.Push(docsift.CrawlTask{
		URL:   docsift.NormalizeURL(baseURL, baseURL),
		Depth: 1,
	})
	r.report(ProgressEvent{Type: ProgressStarted, URL: baseURL})

	for {
		task, ok := r.frontier.Pop()
		if !ok {
			break
		}
		if ctx.Err() != nil {
			break
		}
		c.processTask(ctx, r, task)
	}

	if err := ctx.Err(); err != nil {
		return &r.result, err
	}

	c.recordSite(ctx, r)
	r.report(ProgressEvent{Type: ProgressFinished, URL: baseURL})

	return &r.result, nil
}

// processTask renders one task and indexes its content. Failures are
// recorded on the run and never abort the crawl.
func (c *Crawler) processTask(ctx context.Context, r *run, task docsift.CrawlTask) {
	if !r.frontier.Visit(task.URL) {
		return
	}

	page, err := c.render(ctx, r.renderer, task.URL)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.result.Failed++
		c.logger().Warn("render failed", "url", task.URL, "depth", task.Depth, "err", err)
		r.report(ProgressEvent{Type: ProgressFailed, URL: task.URL, Depth: task.Depth, Error: err})
		return
	}

	pageURL := task.URL
	if page.FinalURL != "" {
		final := docsift.NormalizeURL(page.FinalURL, r.baseURL)
		if final != task.URL {
			if !r.frontier.Visit(final) {
				r.result.Skipped++
				r.report(ProgressEvent{Type: ProgressSkipped, URL: task.URL, Depth: task.Depth})
				return
			}
			pageURL = final
		}
	}

	links := c.discoverLinks(r, page.HTML, pageURL)
	if task.Depth < r.frontier.maxDepth {
		for _, link := range links {
			r.frontier.Push(docsift.CrawlTask{URL: link, Depth: task.Depth + 1})
		}
	}

	markdown, err := c.extract(page.HTML)
	if err != nil || markdown == "" {
		r.result.Skipped++
		c.logger().Debug("no content", "url", pageURL, "err", err)
		r.report(ProgressEvent{Type: ProgressSkipped, URL: pageURL, Depth: task.Depth, Error: err})
		return
	}

	chunks := docsift.ChunkDocument(pageURL, markdown)
	if len(chunks) == 0 {
		r.result.Skipped++
		r.report(ProgressEvent{Type: ProgressSkipped, URL: pageURL, Depth: task.Depth})
		return
	}

	entries := make([]docsift.MirrorEntry, 0, len(chunks))
	points := make([]docsift.IndexedPoint, 0, len(chunks))
	for _, chunk := range chunks {
		entries = append(entries, docsift.MirrorEntry{
			Chunk: chunk.Text,
			Metadata: docsift.MirrorMetadata{
				PageURL:     pageURL,
				LinksFound:  len(links),
				SectionPath: chunk.SectionPath,
				ChunkIndex:  chunk.Index,
			},
		})

		vector, err := c.Embedder.EmbedChunk(ctx, chunk.Text)
		if err != nil {
			c.logger().Warn("embed chunk", "url", pageURL, "chunk", chunk.Index, "err", err)
			continue
		}
		points = append(points, docsift.IndexedPoint{
			ID:     PointID(r.key, r.position, chunk.Index),
			Vector: vector,
			Payload: docsift.PointPayload{
				PageURL:     pageURL,
				Chunk:       chunk.Text,
				SiteKey:     r.key,
				SectionPath: chunk.SectionPath,
				ChunkIndex:  chunk.Index,
			},
		})
	}

	if err := c.Mirror.SavePage(ctx, r.key, pageURL, entries); err != nil {
		r.result.Failed++
		c.logger().Warn("mirror page", "url", pageURL, "err", err)
		r.report(ProgressEvent{Type: ProgressFailed, URL: pageURL, Depth: task.Depth, Error: err})
		return
	}

	c.upsert(ctx, r, points)

	r.position++
	r.result.Pages++
	r.result.Chunks += len(chunks)
	r.result.Sections += len(docsift.ExtractSections(markdown))
	r.result.Bytes += len(markdown)
	r.report(ProgressEvent{Type: ProgressCompleted, URL: pageURL, Depth: task.Depth, Chunks: len(chunks)})
}

// render fetches one page under the per-page timeout, retrying per
// RetryDelays. Non-2xx responses are errors.
func (c *Crawler) render(ctx context.Context, renderer docsift.Renderer, pageURL string) (*docsift.RenderResult, error) {
	if c.RateLimiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, err
		}
		if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	render := func(ctx context.Context, target string) (*docsift.RenderResult, error) {
		rctx, cancel := context.WithTimeout(ctx, c.renderTimeout())
		defer cancel()
		return renderer.Render(rctx, target)
	}

	page, err := RenderWithRetry(ctx, pageURL, render, c.RetryDelays, c.logger())
	if err != nil {
		return nil, err
	}
	if !page.OK() {
		return nil, fmt.Errorf("unexpected status %d", page.Status)
	}
	return page, nil
}

// discoverLinks returns the in-scope links of a page. Extraction errors
// yield no links.
func (c *Crawler) discoverLinks(r *run, html, pageURL string) []string {
	if c.Links == nil {
		return nil
	}
	links, err := c.Links.ExtractLinks(html, pageURL)
	if err != nil {
		c.logger().Debug("extract links", "url", pageURL, "err", err)
		return nil
	}
	return ScopeLinks(links, r.base)
}

// extract turns rendered HTML into trimmed markdown.
func (c *Crawler) extract(html string) (string, error) {
	extracted, err := c.Extractor.Extract(html)
	if err != nil {
		return "", err
	}
	markdown, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(markdown), nil
}

// upsert stores one page's points in batches of at most BatchSize before
// the next page starts. A failed batch is logged and dropped.
func (c *Crawler) upsert(ctx context.Context, r *run, points []docsift.IndexedPoint) {
	size := c.batchSize()
	for start := 0; start < len(points); start += size {
		batch := points[start:min(start+size, len(points))]
		if err := c.Vectors.Upsert(ctx, r.key, batch); err != nil {
			r.result.FailedBatches++
			c.logger().Warn("upsert batch", "collection", r.key, "points", len(batch), "err", err)
		}
	}
}

// reset deletes everything stored for the site.
func (c *Crawler) reset(ctx context.Context, key string) error {
	if err := c.Mirror.DeleteSite(ctx, key); err != nil {
		return fmt.Errorf("clear mirror: %w", err)
	}

	exists, err := c.Vectors.CollectionExists(ctx, key)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		if err := c.Vectors.DeleteCollection(ctx, key); err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
	}

	if c.Sites != nil {
		if err := c.Sites.DeleteSite(ctx, key); err != nil && docsift.ErrorCode(err) != docsift.ENOTFOUND {
			return fmt.Errorf("delete site record: %w", err)
		}
	}
	return nil
}

// ensureCollection creates the site's collection when it is missing.
func (c *Crawler) ensureCollection(ctx context.Context, key string) error {
	exists, err := c.Vectors.CollectionExists(ctx, key)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		return nil
	}
	if err := c.Vectors.CreateCollection(ctx, key, docsift.EmbeddingDimension); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// recordSite saves the crawl totals to the registry when one is configured.
func (c *Crawler) recordSite(ctx context.Context, r *run) {
	if c.Sites == nil {
		return
	}
	site := &docsift.Site{
		Key:       r.key,
		BaseURL:   r.baseURL,
		Pages:     r.result.Pages,
		Chunks:    r.result.Chunks,
		CrawledAt: time.Now().UTC(),
	}
	if err := c.Sites.SaveSite(ctx, site); err != nil {
		c.logger().Warn("save site", "key", r.key, "err", err)
	}
}

// PointID derives the vector point ID for a chunk from the site key, the
// page's position in the crawl, and the chunk index. Recrawling a site in
// the same order overwrites points instead of duplicating them.
func PointID(siteKey string, position, chunkIndex int) string {
	name := fmt.Sprintf("%s/%d/%d", siteKey, position, chunkIndex)
	return uuid.NewSHA1(pointNamespace, []byte(name)).String()
}

func (c *Crawler) renderTimeout() time.Duration {
	if c.RenderTimeout > 0 {
		return c.RenderTimeout
	}
	return DefaultRenderTimeout
}

func (c *Crawler) batchSize() int {
	if c.BatchSize > 0 {
		return c.BatchSize
	}
	return DefaultBatchSize
}

func (c *Crawler) maxDepth() int {
	if c.MaxDepth > 0 {
		return min(c.MaxDepth, docsift.MaxCrawlDepth)
	}
	return docsift.MaxCrawlDepth
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}
