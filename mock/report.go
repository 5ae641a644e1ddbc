package mock

import (
	"context"

	"github.com/fwojciec/dealrater"
)

var _ dealrater.ReportService = (*ReportService)(nil)

// ReportService is a mock implementation of dealrater.ReportService.
type ReportService struct {
	CreateReportFn   func(ctx context.Context, report *dealrater.Report) error
	FindReportByIDFn func(ctx context.Context, id string) (*dealrater.Report, error)
	FindReportsFn    func(ctx context.Context, filter dealrater.ReportFilter) ([]*dealrater.Report, error)
	DeleteReportFn   func(ctx context.Context, id string) error
}

func (s *ReportService) CreateReport(ctx context.Context, report *dealrater.Report) error {
	return s.CreateReportFn(ctx, report)
}

func (s *ReportService) FindReportByID(ctx context.Context, id string) (*dealrater.Report, error) {
	return s.FindReportByIDFn(ctx, id)
}

func (s *ReportService) FindReports(ctx context.Context, filter dealrater.ReportFilter) ([]*dealrater.Report, error) {
	return s.FindReportsFn(ctx, filter)
}

func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	return s.DeleteReportFn(ctx, id)
}

var _ dealrater.ReportCache = (*ReportCache)(nil)

// ReportCache is a mock implementation of dealrater.ReportCache.
type ReportCache struct {
	GetFn   func(url string) (*dealrater.Report, bool)
	SetFn   func(url string, report *dealrater.Report)
	StatsFn func() dealrater.CacheStats
}

func (c *ReportCache) Get(url string) (*dealrater.Report, bool) {
	return c.GetFn(url)
}

func (c *ReportCache) Set(url string, report *dealrater.Report) {
	c.SetFn(url, report)
}

func (c *ReportCache) Stats() dealrater.CacheStats {
	return c.StatsFn()
}

var _ dealrater.Rater = (*Rater)(nil)

// Rater is a mock implementation of dealrater.Rater.
type Rater struct {
	RateFn func(ctx context.Context, url string) (*dealrater.Report, error)
}

func (r *Rater) Rate(ctx context.Context, url string) (*dealrater.Report, error) {
	return r.RateFn(ctx, url)
}
