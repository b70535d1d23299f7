// Package mcp exposes crawling and search as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/crawl"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is the MCP server version.
const Version = "0.1.0"

// ErrMissingCrawler is returned when no crawler is provided.
var ErrMissingCrawler = errors.New("mcp: crawler is required")

// ErrMissingSearcher is returned when no searcher is provided.
var ErrMissingSearcher = errors.New("mcp: searcher is required")

// Crawler indexes a documentation site.
type Crawler interface {
	Crawl(ctx context.Context, baseURL string, force bool, progress crawl.ProgressFunc) (*crawl.Result, error)
}

// Searcher answers several queries against one site.
type Searcher interface {
	SearchAll(ctx context.Context, baseURL string, queries []string, topK int) ([]docsift.QueryResults, error)
}

// Services aggregates the dependencies of the server.
type Services struct {
	Crawler  Crawler
	Searcher Searcher

	// Sites backs list-docs-sites. The tool is not registered without it.
	Sites docsift.SiteService

	// TopK is the number of results per query. Zero uses docsift.DefaultTopK.
	TopK   int
	Logger *slog.Logger
}

// Validate ensures all required services are set.
func (s *Services) Validate() error {
	if s.Crawler == nil {
		return ErrMissingCrawler
	}
	if s.Searcher == nil {
		return ErrMissingSearcher
	}
	return nil
}

// Server is the MCP server for docsift.
type Server struct {
	services Services
	server   *mcp.Server
	logger   *slog.Logger

	// crawlMu serializes crawls.
	crawlMu sync.Mutex
}

// NewServer creates a new MCP server with its tools registered.
func NewServer(services Services) (*Server, error) {
	if err := services.Validate(); err != nil {
		return nil, fmt.Errorf("validating services: %w", err)
	}

	logger := services.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		services: services,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "docsift",
			Version: Version,
		}, nil),
		logger: logger,
	}
	s.registerTools()
	return s, nil
}

// Serve runs the server on transport until the client disconnects or ctx
// is cancelled.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over streamable HTTP on addr.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("mcp http listening", "addr", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) topK() int {
	if s.services.TopK > 0 {
		return s.services.TopK
	}
	return docsift.DefaultTopK
}
