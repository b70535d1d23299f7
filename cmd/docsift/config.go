package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/crawl"
	"github.com/fwojciec/docsift/gemini"
	"github.com/pelletier/go-toml/v2"
)

// Renderer names accepted in the config.
const (
	RendererRod  = "rod"
	RendererHTTP = "http"
	RendererAuto = "auto"
)

// Config holds settings loaded from the TOML config file and environment.
type Config struct {
	// DataDir is the project mirror root. Reads prefer it over UserMirrorDir.
	DataDir       string `toml:"data_dir"`
	UserMirrorDir string `toml:"user_mirror_dir"`
	DBPath        string `toml:"db_path"`

	Qdrant QdrantConfig `toml:"qdrant"`
	Gemini GeminiConfig `toml:"gemini"`
	Redis  RedisConfig  `toml:"redis"`
	Crawl  CrawlConfig  `toml:"crawl"`
	Search SearchConfig `toml:"search"`
}

// QdrantConfig configures the vector store connection.
type QdrantConfig struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	APIKey string `toml:"api_key"`
	UseTLS bool   `toml:"use_tls"`
}

// GeminiConfig configures the embedding model. Without an API key the
// embedder runs on fallback vectors only.
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// RedisConfig configures the shared embedding cache. An empty address keeps
// the cache in memory.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      string `toml:"ttl"`
}

// CrawlConfig configures ingestion.
type CrawlConfig struct {
	Renderer      string  `toml:"renderer"`
	RenderTimeout string  `toml:"render_timeout"`
	RateLimit     float64 `toml:"rate_limit"`
	BatchSize     int     `toml:"batch_size"`
	// RetryRenders retries failed and 5xx renders with backoff. Off by default.
	RetryRenders bool `toml:"retry_renders"`
}

// SearchConfig configures retrieval.
type SearchConfig struct {
	TopK int `toml:"top_k"`
}

// DefaultConfigPath returns ~/.docsift/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(homeDir(), "config.toml")
}

// LoadConfig reads the TOML file at path, applies environment overrides
// and fills in defaults. A missing file is not an error.
func LoadConfig(path string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %q: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, docsift.Errorf(docsift.EINVALID, "parse config %q: %v", path, err)
			}
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("DOCSIFT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getenv("QDRANT_HOST"); v != "" {
		c.Qdrant.Host = v
	}
	if v := getenv("QDRANT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return docsift.Errorf(docsift.EINVALID, "QDRANT_PORT %q is not a number", v)
		}
		c.Qdrant.Port = port
	}
	if v := getenv("QDRANT_API_KEY"); v != "" {
		c.Qdrant.APIKey = v
	}
	if v := getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.UserMirrorDir == "" {
		c.UserMirrorDir = filepath.Join(homeDir(), "mirror")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(homeDir(), "docsift.db")
	}
	if c.Qdrant.Host == "" {
		c.Qdrant.Host = "localhost"
	}
	if c.Qdrant.Port == 0 {
		c.Qdrant.Port = 6334
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = gemini.DefaultModel
	}
	if c.Crawl.Renderer == "" {
		c.Crawl.Renderer = RendererRod
	}
	if c.Crawl.RenderTimeout == "" {
		c.Crawl.RenderTimeout = crawl.DefaultRenderTimeout.String()
	}
	if c.Crawl.RateLimit == 0 {
		c.Crawl.RateLimit = crawl.DefaultRequestsPerSecond
	}
	if c.Crawl.BatchSize == 0 {
		c.Crawl.BatchSize = crawl.DefaultBatchSize
	}
	if c.Search.TopK == 0 {
		c.Search.TopK = docsift.DefaultTopK
	}
}

// Validate returns an error if the config contains invalid values.
func (c *Config) Validate() error {
	switch c.Crawl.Renderer {
	case RendererRod, RendererHTTP, RendererAuto:
	default:
		return docsift.Errorf(docsift.EINVALID, "crawl.renderer must be %q, %q or %q, got %q", RendererRod, RendererHTTP, RendererAuto, c.Crawl.Renderer)
	}
	if _, err := c.RenderTimeout(); err != nil {
		return err
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Crawl.BatchSize < 0 {
		return docsift.Errorf(docsift.EINVALID, "crawl.batch_size must not be negative")
	}
	if c.Search.TopK < 0 {
		return docsift.Errorf(docsift.EINVALID, "search.top_k must not be negative")
	}
	return nil
}

// RenderTimeout returns the parsed per-page render timeout.
func (c *Config) RenderTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Crawl.RenderTimeout)
	if err != nil || d <= 0 {
		return 0, docsift.Errorf(docsift.EINVALID, "crawl.render_timeout %q is not a positive duration", c.Crawl.RenderTimeout)
	}
	return d, nil
}

// RetryDelays returns the render backoff, or nil when retries are off.
func (c *Config) RetryDelays() []time.Duration {
	if !c.Crawl.RetryRenders {
		return nil
	}
	return crawl.DefaultRetryDelays()
}

// CacheTTL returns the parsed Redis entry TTL; zero keeps entries forever.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Redis.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Redis.TTL)
	if err != nil || d < 0 {
		return 0, docsift.Errorf(docsift.EINVALID, "redis.ttl %q is not a valid duration", c.Redis.TTL)
	}
	return d, nil
}

// homeDir returns ~/.docsift, or .docsift when the home directory is unknown.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".docsift"
	}
	return filepath.Join(home, ".docsift")
}
