package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/docsift"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	queries := make([]string, 0, len(c.Queries))
	for _, q := range c.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	if len(queries) == 0 {
		fmt.Fprintln(deps.Stderr, "error: at least one non-empty query is required")
		return docsift.Errorf(docsift.EINVALID, "at least one non-empty query is required")
	}

	topK := c.TopK
	if topK <= 0 {
		topK = deps.TopK
	}

	if deps.WaitEmbedder != nil && !deps.WaitEmbedder(deps.Ctx) {
		fmt.Fprintln(deps.Stderr, "warning: embedding model not ready, query vectors use the fallback")
	}

	results, err := deps.Searcher.SearchAll(deps.Ctx, c.URL, queries, topK)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsift.ErrorMessage(err))
		return err
	}

	fmt.Fprint(deps.Stdout, docsift.FormatSearchResults(results))
	return nil
}
