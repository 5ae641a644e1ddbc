package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/dealrater"
)

var _ dealrater.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor and logs which template matched.
type LoggingExtractor struct {
	next   dealrater.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next dealrater.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates and logs the matched brand and listing count.
func (e *LoggingExtractor) Extract(html string) *dealrater.Extraction {
	begin := time.Now()
	result := e.next.Extract(html)

	brand := result.Brand
	if brand == "" {
		brand = "(none)"
	}
	e.logger.Debug("extract",
		"brand", brand,
		"count", len(result.Listings),
		"duration", time.Since(begin),
	)
	return result
}
