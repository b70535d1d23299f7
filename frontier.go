package docsift

import "context"

// MaxCrawlDepth is the deepest level a crawl visits. The seed URL is depth 1.
const MaxCrawlDepth = 2

// CrawlTask is a URL waiting to be rendered and the depth it was found at.
type CrawlTask struct {
	URL   string
	Depth int
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
