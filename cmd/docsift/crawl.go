package main

import (
	"fmt"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	if _, err := docsift.ParseBaseURL(c.URL); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsift.ErrorMessage(err))
		return err
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  [%d] %s (%d chunks)\n", event.Depth, crawl.TruncateURL(event.URL, 80), event.Chunks)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  fail %s: %v\n", event.URL, event.Error)
		case crawl.ProgressSkipped:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.URL, event.Error)
		}
	}

	result, err := deps.Crawler.Crawl(deps.Ctx, c.URL, c.Force, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error crawling: %s\n", docsift.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, crawl.FormatSummary(c.URL, result))
	return nil
}
