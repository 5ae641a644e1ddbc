package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/dealrater"
	"github.com/fwojciec/dealrater/crawl"
	"github.com/fwojciec/dealrater/goquery"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Registry *dealrater.Registry
	Detector *goquery.Detector
	Rater    *crawl.Rater
	Batch    *crawl.Batch
	Reports  dealrater.ReportService
	Cache    dealrater.ReportCache
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	TemplateFile string `name:"templates" help:"JSON or YAML file with extra dealer templates" env:"DEALRATER_TEMPLATES" default:"formats.json"`
	DB           string `name:"db" help:"SQLite database path (default ~/.dealrater/dealrater.db)" env:"DEALRATER_DB"`
	LogLevel     string `help:"Log level (debug, info, warn, error)" env:"DEALRATER_LOG_LEVEL" default:"warn"`
	LogFile      string `help:"Write logs to a rotated file instead of stderr" env:"DEALRATER_LOG_FILE"`

	Rate      RateCmd      `cmd:"" help:"Fetch inventory pages and score their listings"`
	Parse     ParseCmd     `cmd:"" help:"Score listings in a saved HTML file"`
	Detect    DetectCmd    `cmd:"" help:"Show which dealer template matches an HTML file"`
	Templates TemplatesCmd `cmd:"" help:"List dealer templates in match order"`
	History   HistoryCmd   `cmd:"" help:"Browse saved rating reports"`
	Serve     ServeCmd     `cmd:"" help:"Start the HTTP API"`
}

// RateCmd is the "rate" subcommand.
type RateCmd struct {
	URLs        []string      `arg:"" name:"url" help:"Inventory page URLs"`
	Static      bool          `help:"Fetch with plain HTTP instead of a headless browser"`
	Save        bool          `short:"s" help:"Save reports to the database"`
	Dedupe      bool          `help:"Drop listings already seen on an earlier page"`
	Concurrency int           `short:"c" default:"3" help:"Concurrent page limit"`
	Timeout     time.Duration `default:"60s" help:"Per-page fetch timeout"`
	Chrome      string        `env:"DEALRATER_CHROME" help:"Chrome or Chromium binary (found automatically when empty)"`
	Output      string        `short:"o" help:"Write JSON to a file instead of stdout"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	File   string `arg:"" help:"HTML file, or - for stdin"`
	URL    string `help:"Page URL recorded on the report (defaults to the file name)"`
	Output string `short:"o" help:"Write JSON to a file instead of stdout"`
}

// DetectCmd is the "detect" subcommand.
type DetectCmd struct {
	File string `arg:"" help:"HTML file, or - for stdin"`
}

// TemplatesCmd is the "templates" subcommand.
type TemplatesCmd struct{}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	List   HistoryListCmd   `cmd:"" default:"withargs" help:"List saved reports, newest first"`
	Show   HistoryShowCmd   `cmd:"" help:"Show one saved report"`
	Delete HistoryDeleteCmd `cmd:"" help:"Delete a saved report"`
}

// HistoryListCmd is the "history list" subcommand.
type HistoryListCmd struct {
	Brand  string `help:"Only reports for this dealer brand"`
	URL    string `name:"url" help:"Only reports for this page URL"`
	Limit  int    `short:"n" default:"20" help:"Maximum reports to show"`
	Offset int    `help:"Skip this many reports"`
}

// HistoryShowCmd is the "history show" subcommand.
type HistoryShowCmd struct {
	ID   string `arg:"" help:"Report ID"`
	JSON bool   `name:"json" help:"Print the report as JSON"`
}

// HistoryDeleteCmd is the "history delete" subcommand.
type HistoryDeleteCmd struct {
	ID string `arg:"" help:"Report ID"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Host         string        `help:"Interface to listen on"`
	Port         int           `env:"PORT" default:"3001" help:"Port to listen on"`
	Static       bool          `help:"Fetch with plain HTTP instead of a headless browser"`
	Timeout      time.Duration `default:"60s" help:"Per-page fetch timeout"`
	Chrome       string        `env:"DEALRATER_CHROME" help:"Chrome or Chromium binary (found automatically when empty)"`
	RecycleAfter int64         `name:"recycle-after" default:"40" help:"Restart the browser after this many pages"`
	StaticDir    string        `name:"public" default:"public" help:"Directory served for unknown paths"`
	CacheTTL     time.Duration `name:"cache-ttl" default:"15m" help:"How long rated pages stay cached"`
	CacheSize    int64         `name:"cache-listings" default:"100000" help:"Maximum listings held in the cache"`
	ScrapeLimit  float64       `name:"scrape-limit" default:"1" help:"Scrape requests per second per client (0 disables)"`
}
