package dealrater

import (
	"context"
	"time"
)

// Report is the outcome of rating one inventory page.
type Report struct {
	ID            string          `json:"id"`
	URL           string          `json:"url"`
	Brand         string          `json:"brand"`
	ContentHash   string          `json:"contentHash"`
	MarketAverage float64         `json:"marketAverage"`
	Listings      []ScoredListing `json:"listings"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Validate returns an error if the report contains invalid fields.
func (r *Report) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "report URL required")
	}
	return nil
}

// ReportService represents a service for managing rated pages.
type ReportService interface {
	// CreateReport stores a report and its listings, assigning ID and CreatedAt.
	CreateReport(ctx context.Context, report *Report) error

	// FindReportByID retrieves a report with its listings.
	// Returns ENOTFOUND if report does not exist.
	FindReportByID(ctx context.Context, id string) (*Report, error)

	// FindReports retrieves reports matching the filter, newest first.
	// Listings are not loaded.
	FindReports(ctx context.Context, filter ReportFilter) ([]*Report, error)

	// DeleteReport permanently removes a report and its listings.
	// Returns ENOTFOUND if report does not exist.
	DeleteReport(ctx context.Context, id string) error
}

// ReportFilter represents a filter for FindReports.
type ReportFilter struct {
	ID    *string `json:"id"`
	URL   *string `json:"url"`
	Brand *string `json:"brand"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ReportCache holds recently rated pages keyed by URL.
type ReportCache interface {
	Get(url string) (*Report, bool)
	Set(url string, report *Report)
	Stats() CacheStats
}

// CacheStats holds report cache counters.
type CacheStats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	HitRate float64 `json:"hitRate"`
	Items   uint64  `json:"items"`
}

// Rater fetches an inventory page and rates the listings on it.
type Rater interface {
	// Rate returns the report for url. A page with no recognizable
	// listings yields a report with no listings, not an error.
	Rate(ctx context.Context, url string) (*Report, error)
}
