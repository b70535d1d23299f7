package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/mcp"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Sites    docsift.SiteService
	Mirror   docsift.MirrorStore
	Vectors  docsift.VectorStore
	Crawler  mcp.Crawler
	Searcher mcp.Searcher
	TopK     int

	// WaitEmbedder blocks until query embeddings come from the model and
	// reports whether they do. Nil skips the wait.
	WaitEmbedder func(ctx context.Context) bool
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `name:"config" env:"DOCSIFT_CONFIG" help:"Path to the TOML config file (default ~/.docsift/config.toml)"`
	Verbose bool   `short:"v" help:"Log at debug level"`

	Serve  ServeCmd  `cmd:"" help:"Run the MCP server (stdio unless --http is set)"`
	Crawl  CrawlCmd  `cmd:"" help:"Crawl and index a documentation site"`
	Search SearchCmd `cmd:"" help:"Search an indexed documentation site"`
	Sites  SitesCmd  `cmd:"" help:"List indexed documentation sites"`
	Delete DeleteCmd `cmd:"" help:"Delete everything indexed for a site"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	HTTP string `name:"http" placeholder:"ADDR" help:"Serve streamable HTTP on this address instead of stdio"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL   string `arg:"" help:"Documentation base URL"`
	Force bool   `short:"f" help:"Delete previously indexed data first"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	URL     string   `arg:"" help:"Documentation base URL"`
	Queries []string `arg:"" name:"query" help:"One or more queries"`
	TopK    int      `name:"top-k" short:"k" help:"Results per query (default from config)"`
}

// SitesCmd is the "sites" subcommand.
type SitesCmd struct{}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	URL   string `arg:"" help:"Documentation base URL"`
	Force bool   `help:"Confirm deletion"`
}
