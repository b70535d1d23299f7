// Package embed turns text into embedding vectors. Vectors come from an
// external model when it is ready and from a deterministic hash-seeded
// fallback otherwise; fallback vectors are replaced in the cache once the
// model catches up.
package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docsift"
)

// Ensure Embedder implements docsift.Embedder at compile time.
var _ docsift.Embedder = (*Embedder)(nil)

const (
	// MaxInputRunes bounds the text submitted to the model.
	MaxInputRunes = 8192

	// cacheKeyRunes is the prefix length of normalized text used as cache key.
	cacheKeyRunes = 100

	upgradeQueueSize      = 1024
	defaultWarmupInterval = 5 * time.Second
	warmupText            = "warmup"

	// fallbackStream separates fallback streams from other PCG users.
	fallbackStream = 0x9e3779b97f4a7c15
)

// Embedder produces embeddings through a model with a degraded fallback.
// Start launches the model warmup and the upgrade worker; Close stops them.
// Embedder is safe for concurrent use by multiple goroutines.
type Embedder struct {
	model  docsift.EmbeddingModel
	cache  docsift.VectorCache
	logger *slog.Logger

	// WarmupInterval is the delay between failed warmup attempts.
	WarmupInterval time.Duration

	ready    atomic.Bool
	readyCh  chan struct{}
	upgrades chan string
	done     chan struct{}
	wg       sync.WaitGroup

	startOnce sync.Once
	closeOnce sync.Once
}

// NewEmbedder creates an Embedder. A nil model keeps the embedder in
// fallback mode; a nil cache uses an in-memory cache; a nil logger discards.
func NewEmbedder(model docsift.EmbeddingModel, cache docsift.VectorCache, logger *slog.Logger) *Embedder {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Embedder{
		model:    model,
		cache:    cache,
		logger:   logger,
		readyCh:  make(chan struct{}),
		upgrades: make(chan string, upgradeQueueSize),
		done:     make(chan struct{}),
	}
}

// Start warms up the model and starts the upgrade worker in the background.
// It returns immediately. Calling Start more than once has no effect.
func (e *Embedder) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		if e.model == nil {
			return
		}
		e.wg.Add(2)
		go e.warmup(ctx)
		go e.upgradeLoop(ctx)
	})
}

// Close stops background work and waits for it to finish.
func (e *Embedder) Close() error {
	e.closeOnce.Do(func() {
		close(e.done)
	})
	e.wg.Wait()
	return nil
}

// Ready reports whether the model answered its warmup request.
func (e *Embedder) Ready() bool {
	return e.ready.Load()
}

// WaitReady blocks until the model is ready, ctx ends, or timeout elapses.
// It reports whether the model is ready. Without a model it returns false
// at once.
func (e *Embedder) WaitReady(ctx context.Context, timeout time.Duration) bool {
	if e.model == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return e.waitReady(ctx)
}

// EmbedChunk returns the vector for a chunk of document text.
func (e *Embedder) EmbedChunk(ctx context.Context, text string) ([]float32, error) {
	return e.Embed(ctx, text)
}

// EmbedQuery returns the vector for a search query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.Embed(ctx, text)
}

// Embed returns a unit-length vector of docsift.EmbeddingDimension for text.
// It never fails: model errors degrade to the fallback vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	normalized := Normalize(text)
	key := CacheKey(normalized)

	cached := e.lookup(ctx, key)
	if cached != nil && (!cached.Degraded || !e.ready.Load()) {
		return clone(cached.Vector), nil
	}

	if e.ready.Load() {
		vec, err := e.primary(ctx, normalized)
		if err == nil {
			e.store(ctx, key, &docsift.CacheEntry{Vector: vec})
			return clone(vec), nil
		}
		e.logger.Warn("embedding model failed, using fallback", "err", err)
	}

	vec := Fallback(normalized)
	e.store(ctx, key, &docsift.CacheEntry{Vector: vec, Degraded: true})
	e.queueUpgrade(normalized)
	return clone(vec), nil
}

// primary asks the model for the vector of already normalized text.
func (e *Embedder) primary(ctx context.Context, normalized string) ([]float32, error) {
	vecs, err := e.model.Embed(ctx, []string{truncate(normalized, MaxInputRunes)})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("model returned %d vectors for 1 input", len(vecs))
	}
	return Pool(vecs[0])
}

func (e *Embedder) lookup(ctx context.Context, key string) *docsift.CacheEntry {
	entry, err := e.cache.Get(ctx, key)
	if err != nil {
		if docsift.ErrorCode(err) != docsift.ENOTFOUND {
			e.logger.Warn("vector cache get", "err", err)
		}
		return nil
	}
	if entry == nil || len(entry.Vector) != docsift.EmbeddingDimension {
		return nil
	}
	return entry
}

func (e *Embedder) store(ctx context.Context, key string, entry *docsift.CacheEntry) {
	if err := e.cache.Set(ctx, key, entry); err != nil {
		e.logger.Warn("vector cache set", "err", err)
	}
}

// queueUpgrade schedules a primary embedding for text. Requests are dropped
// when the queue is full or there is no model.
func (e *Embedder) queueUpgrade(normalized string) {
	if e.model == nil {
		return
	}
	select {
	case e.upgrades <- normalized:
	default:
	}
}

func (e *Embedder) warmup(ctx context.Context) {
	defer e.wg.Done()

	interval := e.WarmupInterval
	if interval <= 0 {
		interval = defaultWarmupInterval
	}

	for {
		_, err := e.primary(ctx, warmupText)
		if err == nil {
			e.ready.Store(true)
			close(e.readyCh)
			e.logger.Info("embedding model ready")
			return
		}
		e.logger.Warn("embedding model warmup", "err", err)

		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		case <-time.After(interval):
		}
	}
}

func (e *Embedder) upgradeLoop(ctx context.Context) {
	defer e.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		case text := <-e.upgrades:
			if !e.waitReady(ctx) {
				return
			}
			e.upgrade(ctx, text)
		}
	}
}

func (e *Embedder) waitReady(ctx context.Context) bool {
	select {
	case <-e.readyCh:
		return true
	case <-ctx.Done():
		return false
	case <-e.done:
		return false
	}
}

// upgrade replaces a degraded cache entry with the model's vector.
func (e *Embedder) upgrade(ctx context.Context, normalized string) {
	key := CacheKey(normalized)
	if cached := e.lookup(ctx, key); cached != nil && !cached.Degraded {
		return
	}
	vec, err := e.primary(ctx, normalized)
	if err != nil {
		e.logger.Debug("embedding upgrade failed", "err", err)
		return
	}
	e.store(ctx, key, &docsift.CacheEntry{Vector: vec})
}

// Normalize collapses whitespace runs to single spaces and trims the text.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CacheKey returns the cache key of normalized text: its first 100 runes.
func CacheKey(normalized string) string {
	return truncate(normalized, cacheKeyRunes)
}

// Fallback returns the deterministic degraded vector for text: standard
// normal components from a PCG seeded with the text's hash, L2-normalized.
func Fallback(text string) []float32 {
	rng := rand.New(rand.NewPCG(xxhash.Sum64String(text), fallbackStream))
	vec := make([]float32, docsift.EmbeddingDimension)
	for i := range vec {
		vec[i] = float32(rng.NormFloat64())
	}
	if err := normalizeL2(vec); err != nil {
		// Unreachable in practice: every component would have to be zero.
		vec[0] = 1
	}
	return vec
}

var errZeroVector = errors.New("zero vector")

// Pool reduces a model output to one unit vector. Outputs that hold several
// token vectors back to back are mean-pooled.
func Pool(raw []float32) ([]float32, error) {
	dim := docsift.EmbeddingDimension
	if len(raw) == 0 || len(raw)%dim != 0 {
		return nil, fmt.Errorf("embedding has %d values, want a multiple of %d", len(raw), dim)
	}

	tokens := len(raw) / dim
	vec := make([]float32, dim)
	for t := range tokens {
		for i := range dim {
			vec[i] += raw[t*dim+i]
		}
	}
	if tokens > 1 {
		for i := range vec {
			vec[i] /= float32(tokens)
		}
	}

	if err := normalizeL2(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func normalizeL2(vec []float32) error {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return errZeroVector
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return nil
}

func truncate(s string, runes int) string {
	n := 0
	for i := range s {
		if n == runes {
			return s[:i]
		}
		n++
	}
	return s
}

func clone(v []float32) []float32 {
	return append([]float32(nil), v...)
}
