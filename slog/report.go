package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/dealrater"
)

var _ dealrater.ReportService = (*LoggingReportService)(nil)

// LoggingReportService wraps a ReportService with logging of writes.
// Reads are logged at debug level.
type LoggingReportService struct {
	next   dealrater.ReportService
	logger *slog.Logger
}

// NewLoggingReportService creates a new LoggingReportService.
func NewLoggingReportService(next dealrater.ReportService, logger *slog.Logger) *LoggingReportService {
	return &LoggingReportService{next: next, logger: logger}
}

func (s *LoggingReportService) CreateReport(ctx context.Context, report *dealrater.Report) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create report",
			"id", report.ID,
			"url", report.URL,
			"count", len(report.Listings),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateReport(ctx, report)
}

func (s *LoggingReportService) FindReportByID(ctx context.Context, id string) (report *dealrater.Report, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find report",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindReportByID(ctx, id)
}

func (s *LoggingReportService) FindReports(ctx context.Context, filter dealrater.ReportFilter) (reports []*dealrater.Report, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find reports",
			"count", len(reports),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindReports(ctx, filter)
}

func (s *LoggingReportService) DeleteReport(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete report",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteReport(ctx, id)
}
