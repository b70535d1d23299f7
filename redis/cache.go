// Package redis provides a docsift.VectorCache shared through Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docsift"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces cache keys.
const DefaultKeyPrefix = "docsift:emb:"

// Ensure Cache implements docsift.VectorCache at compile time.
var _ docsift.VectorCache = (*Cache)(nil)

// Client is the subset of redis.Cmdable used by Cache.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache stores embeddings in Redis as JSON under hashed keys.
type Cache struct {
	client Client
	closer func() error

	// Prefix is prepended to every key. Defaults to DefaultKeyPrefix.
	Prefix string

	// TTL expires entries. Zero keeps them forever.
	TTL time.Duration
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, docsift.Errorf(docsift.EUNAVAILABLE, "redis connect %s: %v", cfg.Addr, err)
	}
	c := NewCache(client)
	c.TTL = cfg.TTL
	c.closer = client.Close
	return c, nil
}

// NewCache wraps an existing client.
func NewCache(client Client) *Cache {
	return &Cache{client: client, Prefix: DefaultKeyPrefix}
}

// Close releases the connection when Cache opened it.
func (c *Cache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// Get returns the entry for key, or ENOTFOUND on a miss.
func (c *Cache) Get(ctx context.Context, key string) (*docsift.CacheEntry, error) {
	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, docsift.Errorf(docsift.ENOTFOUND, "cache miss")
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry docsift.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, nil
}

// Set stores entry under key.
func (c *Cache) Set(ctx context.Context, key string, entry *docsift.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(key), data, c.TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Key returns the Redis key for a cache key: the prefix followed by the
// hex xxhash of key.
func (c *Cache) Key(key string) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return prefix + strconv.FormatUint(xxhash.Sum64String(key), 16)
}
