package crawl

import (
	"sync"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/bloom"
)

// Frontier sizing for the Bloom filter that fronts the exact queued set.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
)

// Frontier is an in-memory FIFO queue of crawl tasks with deduplication.
// A URL is queued at most once and visited at most once.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu       sync.Mutex
	maxDepth int
	// seen answers "definitely new" without touching the maps; a positive
	// answer is confirmed against queued and visited.
	seen    *bloom.Filter
	queued  map[string]struct{}
	visited map[string]struct{}
	queue   []docsift.CrawlTask
}

// NewFrontier creates a new Frontier that accepts tasks up to maxDepth.
func NewFrontier(maxDepth int) *Frontier {
	return &Frontier{
		maxDepth: maxDepth,
		seen:     bloom.NewFilter(frontierExpectedURLs, frontierFalsePositiveRate),
		queued:   make(map[string]struct{}),
		visited:  make(map[string]struct{}),
	}
}

// Push adds a task to the back of the queue.
// Returns false if the task is deeper than the max depth or its URL has
// already been queued or visited. URLs must already be normalized.
func (f *Frontier) Push(task docsift.CrawlTask) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if task.Depth < 1 || task.Depth > f.maxDepth {
		return false
	}
	if f.seenLocked(task.URL) {
		return false
	}

	f.seen.Add(task.URL)
	f.queued[task.URL] = struct{}{}
	f.queue = append(f.queue, task)
	return true
}

// Pop removes and returns the oldest task.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (docsift.CrawlTask, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return docsift.CrawlTask{}, false
	}
	task := f.queue[0]
	f.queue[0] = docsift.CrawlTask{}
	f.queue = f.queue[1:]
	return task, true
}

// Visit marks the URL visited. It returns false if the URL was already
// visited, in which case the caller must not process it again.
func (f *Frontier) Visit(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.visited[url]; ok {
		return false
	}
	f.seen.Add(url)
	f.visited[url] = struct{}{}
	return true
}

// Seen returns true if the URL has been queued or visited.
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seenLocked(url)
}

// Visited returns the number of visited URLs.
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// Len returns the number of tasks waiting in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

func (f *Frontier) seenLocked(url string) bool {
	if !f.seen.Test(url) {
		return false
	}
	if _, ok := f.queued[url]; ok {
		return true
	}
	_, ok := f.visited[url]
	return ok
}
