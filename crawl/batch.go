package crawl

import (
	"context"
	"sync/atomic"

	"github.com/fwojciec/dealrater"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages rated at once.
const DefaultConcurrency = 3

// Batch rates many inventory pages concurrently.
type Batch struct {
	Rater       dealrater.Rater
	Limiter     dealrater.DomainLimiter
	Concurrency int

	// Filter, when set, drops listings already seen on earlier pages of
	// the batch and rescores what is left. Pages are filtered in input
	// order once all are rated, so the page that keeps a repeated listing
	// does not depend on which fetch finished first.
	Filter dealrater.ListingFilter
}

// ProgressEvent reports progress during a batch.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Listings  int
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

type batchResult struct {
	position int
	url      string
	report   *dealrater.Report
	err      error
}

// RateAll rates every URL and returns the reports of the pages that
// succeeded, in input order. A failed page is reported through progress
// and skipped. RateAll returns an error only when ctx is done.
func (b *Batch) RateAll(ctx context.Context, urls []string, progress ProgressFunc) ([]*dealrater.Report, error) {
	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	total := len(urls)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	resultCh := make(chan batchResult, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, url := range urls {
			g.Go(func() error {
				resultCh <- b.rate(gctx, i, url)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]batchResult, total)
	var completed atomic.Int64
	for result := range resultCh {
		done := int(completed.Add(1))
		results[result.position] = result

		if progress == nil {
			continue
		}
		if result.err != nil {
			progress(ProgressEvent{
				Type:      ProgressFailed,
				Completed: done,
				Total:     total,
				URL:       result.url,
				Error:     result.err,
			})
			continue
		}
		progress(ProgressEvent{
			Type:      ProgressCompleted,
			Completed: done,
			Total:     total,
			URL:       result.url,
			Listings:  len(result.report.Listings),
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reports := make([]*dealrater.Report, 0, total)
	for _, result := range results {
		if result.err != nil {
			continue
		}
		report := result.report
		if b.Filter != nil {
			report = dedupe(report, b.Filter)
		}
		reports = append(reports, report)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return reports, nil
}

func (b *Batch) rate(ctx context.Context, position int, url string) batchResult {
	result := batchResult{position: position, url: url}

	if b.Limiter != nil {
		domain, err := DomainOf(url)
		if err != nil {
			result.err = err
			return result
		}
		if err := b.Limiter.Wait(ctx, domain); err != nil {
			result.err = err
			return result
		}
	}

	result.report, result.err = b.Rater.Rate(ctx, url)
	return result
}

// dedupe drops the listings of report seen on earlier pages and scores the
// rest against their own market average. report is returned unchanged when
// nothing was dropped.
func dedupe(report *dealrater.Report, filter dealrater.ListingFilter) *dealrater.Report {
	page := make([]dealrater.Listing, len(report.Listings))
	for i := range report.Listings {
		page[i] = report.Listings[i].Listing
	}

	seen := filter.VisitPage(page)
	fresh := make([]dealrater.Listing, 0, len(page))
	for i := range page {
		if !seen[i] {
			fresh = append(fresh, page[i])
		}
	}
	if len(fresh) == len(page) {
		return report
	}

	out := *report
	out.MarketAverage, out.Listings = dealrater.RateListings(fresh)
	return &out
}
