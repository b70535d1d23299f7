package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/crawl"
	"github.com/fwojciec/docsift/embed"
	"github.com/fwojciec/docsift/fs"
	"github.com/fwojciec/docsift/gemini"
	"github.com/fwojciec/docsift/goquery"
	"github.com/fwojciec/docsift/htmltomarkdown"
	dshttp "github.com/fwojciec/docsift/http"
	"github.com/fwojciec/docsift/qdrant"
	"github.com/fwojciec/docsift/readability"
	"github.com/fwojciec/docsift/redis"
	"github.com/fwojciec/docsift/rod"
	"github.com/fwojciec/docsift/search"
	dsslog "github.com/fwojciec/docsift/slog"
	"github.com/fwojciec/docsift/sqlite"
	"github.com/fwojciec/docsift/trafilatura"
	"google.golang.org/genai"
)

// embedderReadyTimeout bounds how long a one-shot search waits for the
// embedding model before using fallback vectors.
const embedderReadyTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads environment overrides. Defaults to os.Getenv.
	Getenv func(string) string

	// Config is loaded during Run.
	Config *Config

	// SQLite database backing the site registry.
	DB *sqlite.DB

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Getenv: os.Getenv}
}

// Close gracefully stops the program, releasing resources in reverse order.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

func (m *Main) onClose(fn func() error) {
	m.closers = append(m.closers, fn)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docsift"),
		kong.Description("Crawl documentation sites and search them semantically."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docsift --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	configPath := cli.Config
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	m.Config, err = LoadConfig(configPath, m.getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: check %s or set DOCSIFT_CONFIG\n", configPath)
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	// stdout carries the MCP stdio protocol, so logs go to stderr.
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.TopK = m.Config.Search.TopK

	defer m.Close()

	if err := m.openRegistry(deps); err != nil {
		fmt.Fprintf(stderr, "Hint: set db_path in %s to use a different database path\n", configPath)
		return err
	}

	switch cmd {
	case "sites":
		return kongCtx.Run(deps)
	case "delete":
		if err := m.openStores(deps); err != nil {
			return err
		}
		return kongCtx.Run(deps)
	}

	if err := m.openStores(deps); err != nil {
		return err
	}
	embedder := m.openEmbedder(ctx, deps)

	deps.Searcher = &search.Searcher{
		Embedder: embedder,
		Vectors:  deps.Vectors,
		Mirror:   deps.Mirror,
		Logger:   deps.Logger,
	}
	deps.WaitEmbedder = func(ctx context.Context) bool {
		return embedder.WaitReady(ctx, embedderReadyTimeout)
	}

	if cmd == "crawl" || cmd == "serve" {
		crawler, err := m.newCrawler(deps, embedder)
		if err != nil {
			return err
		}
		deps.Crawler = crawler
	}

	return kongCtx.Run(deps)
}

func (m *Main) getenv(key string) string {
	if m.Getenv == nil {
		return os.Getenv(key)
	}
	return m.Getenv(key)
}

// openRegistry opens the SQLite site registry.
func (m *Main) openRegistry(deps *Dependencies) error {
	if dir := filepath.Dir(m.Config.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}
	m.DB = sqlite.NewDB(m.Config.DBPath)
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", m.Config.DBPath, err)
	}
	m.onClose(m.DB.Close)
	deps.Sites = sqlite.NewSiteService(m.DB)
	return nil
}

// openStores wires the local mirror and the vector store.
func (m *Main) openStores(deps *Dependencies) error {
	deps.Mirror = dsslog.NewLoggingMirror(fs.NewMirror(m.Config.DataDir, m.Config.UserMirrorDir), deps.Logger)

	store, err := qdrant.Open(qdrant.Config{
		Host:   m.Config.Qdrant.Host,
		Port:   m.Config.Qdrant.Port,
		APIKey: m.Config.Qdrant.APIKey,
		UseTLS: m.Config.Qdrant.UseTLS,
	})
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: start Qdrant or set QDRANT_HOST and QDRANT_PORT")
		return err
	}
	m.onClose(store.Close)
	deps.Vectors = dsslog.NewLoggingVectorStore(store, deps.Logger)
	return nil
}

// openEmbedder builds the embedder. Without a Gemini key, or when Redis is
// unreachable, it degrades instead of failing.
func (m *Main) openEmbedder(ctx context.Context, deps *Dependencies) *embed.Embedder {
	var model docsift.EmbeddingModel
	if m.Config.Gemini.APIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  m.Config.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			deps.Logger.Warn("gemini client unavailable, using fallback embeddings", "err", err)
		} else {
			model = dsslog.NewLoggingEmbeddingModel(gemini.NewModel(client, m.Config.Gemini.Model), deps.Logger)
		}
	} else {
		deps.Logger.Warn("GEMINI_API_KEY not set, using fallback embeddings")
	}

	var cache docsift.VectorCache
	if m.Config.Redis.Addr != "" {
		ttl, _ := m.Config.CacheTTL()
		c, err := redis.Open(ctx, redis.Config{
			Addr:     m.Config.Redis.Addr,
			Password: m.Config.Redis.Password,
			DB:       m.Config.Redis.DB,
			TTL:      ttl,
		})
		if err != nil {
			deps.Logger.Warn("redis unavailable, caching embeddings in memory", "err", err)
		} else {
			m.onClose(c.Close)
			cache = c
		}
	}

	embedder := embed.NewEmbedder(model, cache, deps.Logger)
	embedder.Start(ctx)
	m.onClose(embedder.Close)
	return embedder
}

// newCrawler wires the ingestion pipeline.
func (m *Main) newCrawler(deps *Dependencies, embedder docsift.Embedder) (*crawl.Crawler, error) {
	timeout, err := m.Config.RenderTimeout()
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	extractor := trafilatura.NewExtractor(readability.NewExtractor())

	var newRenderer func() (docsift.Renderer, error)
	switch m.Config.Crawl.Renderer {
	case RendererHTTP:
		newRenderer = dshttp.Factory(dshttp.WithTimeout(timeout))
	case RendererAuto:
		newRenderer = crawl.AutoFactory(
			dshttp.Factory(dshttp.WithTimeout(timeout)),
			rod.Factory(rod.WithRenderTimeout(timeout)),
			extractor,
			logger,
		)
	default:
		newRenderer = rod.Factory(rod.WithRenderTimeout(timeout))
	}

	return &crawl.Crawler{
		NewRenderer: func() (docsift.Renderer, error) {
			r, err := newRenderer()
			if err != nil {
				fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed, or set crawl.renderer = \"http\"")
				return nil, err
			}
			return dsslog.NewLoggingRenderer(r, logger), nil
		},
		Extractor:     extractor,
		Converter:     htmltomarkdown.NewConverter(),
		Links:         goquery.NewLinkExtractor(),
		Embedder:      embedder,
		Mirror:        deps.Mirror,
		Vectors:       deps.Vectors,
		Sites:         deps.Sites,
		RateLimiter:   crawl.NewDomainLimiter(m.Config.Crawl.RateLimit),
		RenderTimeout: timeout,
		RetryDelays:   m.Config.RetryDelays(),
		BatchSize:     m.Config.Crawl.BatchSize,
		Logger:        logger,
	}, nil
}
