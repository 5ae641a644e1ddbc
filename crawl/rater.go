// Package crawl rates dealer inventory pages. It coordinates fetching,
// listing extraction and scoring for one page, and deduplication across
// the pages of a batch.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/dealrater"
)

var _ dealrater.Rater = (*Rater)(nil)

// Rater turns one inventory page into a Report.
type Rater struct {
	Fetcher   dealrater.Fetcher
	Extractor dealrater.Extractor

	// Logger may be nil.
	Logger *slog.Logger

	// RetryDelays between fetch attempts. Nil uses DefaultRetryDelays.
	RetryDelays []time.Duration

	// Now returns the report timestamp. Nil uses time.Now.
	Now func() time.Time
}

// Rate fetches url and rates the listings on it.
func (r *Rater) Rate(ctx context.Context, url string) (*dealrater.Report, error) {
	if url == "" {
		return nil, dealrater.Errorf(dealrater.EINVALID, "Missing URL.")
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	html, err := FetchWithRetry(ctx, url, r.Fetcher.Fetch, r.Logger, delays)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	return r.RateHTML(url, html), nil
}

// RateHTML rates the listings in an already fetched document. url is
// recorded on the report. A page without recognizable listings gives a
// report with no listings.
func (r *Rater) RateHTML(url, html string) *dealrater.Report {
	extraction := r.Extractor.Extract(html)

	if len(extraction.Listings) == 0 && r.Logger != nil {
		r.Logger.Info("no listings found", "url", url, "brand", extraction.Brand)
	}

	average, scored := dealrater.RateListings(extraction.Listings)

	return &dealrater.Report{
		URL:           url,
		Brand:         extraction.Brand,
		ContentHash:   ComputeHash(html),
		MarketAverage: average,
		Listings:      scored,
		CreatedAt:     r.now(),
	}
}

func (r *Rater) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}
