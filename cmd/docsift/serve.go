package main

import (
	"fmt"

	"github.com/fwojciec/docsift/mcp"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server, err := mcp.NewServer(mcp.Services{
		Crawler:  deps.Crawler,
		Searcher: deps.Searcher,
		Sites:    deps.Sites,
		TopK:     deps.TopK,
		Logger:   deps.Logger,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	if c.HTTP != "" {
		return server.RunHTTP(deps.Ctx, c.HTTP)
	}
	return server.Run(deps.Ctx)
}
