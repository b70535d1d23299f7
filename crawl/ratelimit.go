package crawl

import (
	"context"
	"net"
	"strings"
	"sync"

	"github.com/fwojciec/docsift"
	"golang.org/x/time/rate"
)

var _ docsift.DomainLimiter = (*DomainLimiter)(nil)

// DefaultRequestsPerSecond is the per-domain render rate used by the CLI.
const DefaultRequestsPerSecond = 2

// DomainLimiter spaces out renders against the same host with one token
// bucket per host. Hosts are compared case-insensitively and without port.
// A non-positive rate disables limiting.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each host, without bursting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// Wait blocks until a request to domain is allowed.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.limiter(hostKey(domain)).Wait(ctx)
}

func (d *DomainLimiter) limiter(host string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.limiters[host]
	if !ok {
		l = rate.NewLimiter(d.limit, 1)
		d.limiters[host] = l
	}
	return l
}

func hostKey(domain string) string {
	if host, _, err := net.SplitHostPort(domain); err == nil {
		domain = host
	}
	return strings.ToLower(domain)
}
