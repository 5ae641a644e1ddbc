// Package ristretto caches rating reports in memory.
package ristretto

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/fwojciec/dealrater"
)

// DefaultTTL is how long a rated page is served from cache.
const DefaultTTL = 15 * time.Minute

// Ensure ReportCache implements dealrater.ReportCache at compile time.
var _ dealrater.ReportCache = (*ReportCache)(nil)

// ReportCache holds recent reports keyed by page URL. The cost of an entry
// is its listing count plus one, so MaxCost bounds the listings held.
type ReportCache struct {
	impl *ristretto.Cache[string, *dealrater.Report]
	ttl  time.Duration
}

// Option configures a ReportCache.
type Option func(*config)

type config struct {
	ttl         time.Duration
	maxListings int64
}

// WithTTL sets the entry lifetime.
func WithTTL(d time.Duration) Option {
	return func(c *config) {
		c.ttl = d
	}
}

// WithMaxListings bounds the number of listings held across all entries.
func WithMaxListings(n int64) Option {
	return func(c *config) {
		c.maxListings = n
	}
}

// NewReportCache creates a ReportCache. Close releases its goroutines.
func NewReportCache(opts ...Option) (*ReportCache, error) {
	cfg := config{ttl: DefaultTTL, maxListings: 100_000}
	for _, opt := range opts {
		opt(&cfg)
	}

	impl, err := ristretto.NewCache(&ristretto.Config[string, *dealrater.Report]{
		NumCounters:        cfg.maxListings * 10,
		MaxCost:            cfg.maxListings,
		BufferItems:        64,
		Metrics:            true,
		IgnoreInternalCost: true,
		Cost: func(r *dealrater.Report) int64 {
			return int64(len(r.Listings)) + 1
		},
	})
	if err != nil {
		return nil, err
	}

	return &ReportCache{impl: impl, ttl: cfg.ttl}, nil
}

// Get returns the cached report for url.
func (c *ReportCache) Get(url string) (*dealrater.Report, bool) {
	return c.impl.Get(url)
}

// Set caches report for url. Writes are applied asynchronously; a Get
// right after Set may miss unless Wait is called in between.
func (c *ReportCache) Set(url string, report *dealrater.Report) {
	c.impl.SetWithTTL(url, report, 0, c.ttl)
}

// Wait blocks until pending writes are applied.
func (c *ReportCache) Wait() {
	c.impl.Wait()
}

// Stats returns hit and size counters.
func (c *ReportCache) Stats() dealrater.CacheStats {
	m := c.impl.Metrics
	return dealrater.CacheStats{
		Hits:    m.Hits(),
		Misses:  m.Misses(),
		HitRate: m.Ratio(),
		Items:   m.KeysAdded() - m.KeysEvicted(),
	}
}

// Close stops the cache.
func (c *ReportCache) Close() {
	c.impl.Close()
}
