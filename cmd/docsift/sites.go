package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/docsift"
)

// Run executes the sites command.
func (c *SitesCmd) Run(deps *Dependencies) error {
	sites, err := deps.Sites.FindSites(deps.Ctx, docsift.SiteFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsift.ErrorMessage(err))
		return err
	}

	if len(sites) == 0 {
		fmt.Fprintln(deps.Stdout, "No sites found. Use 'docsift crawl' to index one.")
		return nil
	}

	for _, s := range sites {
		fmt.Fprintf(deps.Stdout, "%s  %s  %d pages  %d chunks  %s\n",
			s.Key, s.BaseURL, s.Pages, s.Chunks, s.CrawledAt.Local().Format(time.DateTime))
	}
	return nil
}
