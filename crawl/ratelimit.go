package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/dealrater"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the per-dealer request rate used by Batch.
const DefaultRequestsPerSecond = 1.0

var _ dealrater.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter spaces out requests to each dealer site with a token bucket
// per host. Requests to different hosts do not wait on each other.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a DomainLimiter allowing rps requests per second
// to each host, without bursting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a request to domain is allowed.
// Returns an error if ctx is done first.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return d.limiter(domain).Wait(ctx)
}

func (d *DomainLimiter) limiter(domain string) *rate.Limiter {
	key := strings.ToLower(domain)

	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[key] = l
	}
	return l
}

// DomainOf returns the host of rawURL without port and a leading "www.",
// so www.dealer.com and dealer.com share a limit.
func DomainOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", dealrater.Errorf(dealrater.EINVALID, "invalid url %q", rawURL)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", dealrater.Errorf(dealrater.EINVALID, "url %q has no host", rawURL)
	}
	return strings.TrimPrefix(host, "www."), nil
}
