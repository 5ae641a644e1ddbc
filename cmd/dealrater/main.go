package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/dealrater"
	"github.com/fwojciec/dealrater/bloom"
	"github.com/fwojciec/dealrater/crawl"
	"github.com/fwojciec/dealrater/fs"
	"github.com/fwojciec/dealrater/goquery"
	dealhttp "github.com/fwojciec/dealrater/http"
	"github.com/fwojciec/dealrater/ristretto"
	"github.com/fwojciec/dealrater/rod"
	dealslog "github.com/fwojciec/dealrater/slog"
	"github.com/fwojciec/dealrater/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path used when --db is not given. Set before calling Run().
	DBPath string

	// Stdin is read by "parse -" and "detect -".
	Stdin io.Reader

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Stdin:  os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.DB = nil
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  m.Stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("dealrater"),
		kong.Description("Extract vehicle listings from dealer inventory pages and score each deal."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'dealrater --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	cmd := strings.Fields(kongCtx.Command())[0]

	// Logging
	level, err := dealslog.ParseLevel(cli.LogLevel)
	if err != nil {
		return err
	}
	logOut := stderr
	if cli.LogFile != "" {
		w := dealslog.NewFileWriter(cli.LogFile)
		m.closers = append(m.closers, w)
		logOut = w
	}
	deps.Logger = dealslog.NewLogger(logOut, level)

	// Templates
	templateFile := fs.NewTemplateFile(cli.TemplateFile)
	deps.Registry, err = goquery.LoadRegistry(ctx, templateFile)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Set DEALRATER_TEMPLATES or --templates to a different template file")
		return fmt.Errorf("failed to load templates from %q: %w", templateFile.Path(), err)
	}
	deps.Logger.Debug("templates loaded", "path", templateFile.Path(), "count", deps.Registry.Len())

	extractor := dealslog.NewLoggingExtractor(goquery.NewExtractor(deps.Registry), deps.Logger)
	deps.Detector = goquery.NewDetector(deps.Registry)
	deps.Rater = &crawl.Rater{
		Extractor: extractor,
		Logger:    deps.Logger,
	}

	// Database
	needsDB := cmd == "history" || cmd == "serve" || (cmd == "rate" && cli.Rate.Save)
	if needsDB {
		dbPath := cli.DB
		if dbPath == "" {
			dbPath = m.DBPath
		}
		m.DB = sqlite.NewDB(dbPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintln(stderr, "Hint: Set DEALRATER_DB to use a different database path")
			return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
		}
		deps.Reports = dealslog.NewLoggingReportService(sqlite.NewReportService(m.DB), deps.Logger)
	}

	// Fetching
	if cmd == "rate" || cmd == "serve" {
		opts := fetcherOptions{
			static:  cli.Rate.Static,
			timeout: cli.Rate.Timeout,
			chrome:  cli.Rate.Chrome,
		}
		if cmd == "serve" {
			opts = fetcherOptions{
				static:       cli.Serve.Static,
				timeout:      cli.Serve.Timeout,
				chrome:       cli.Serve.Chrome,
				recycleAfter: cli.Serve.RecycleAfter,
			}
		}
		fetcher, err := newFetcher(opts, deps.Logger)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --static")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		m.closers = append(m.closers, fetcher)
		deps.Rater.Fetcher = fetcher
	}

	if cmd == "rate" {
		deps.Batch = &crawl.Batch{
			Rater:   deps.Rater,
			Limiter: crawl.NewDomainLimiter(crawl.DefaultRequestsPerSecond),
		}
		if cli.Rate.Dedupe {
			deps.Batch.Filter = bloom.NewListingFilter(dedupeCapacity, dedupeFalsePositiveRate)
		}
	}

	if cmd == "serve" {
		cache, err := ristretto.NewReportCache(
			ristretto.WithTTL(cli.Serve.CacheTTL),
			ristretto.WithMaxListings(cli.Serve.CacheSize),
		)
		if err != nil {
			return fmt.Errorf("failed to create cache: %w", err)
		}
		defer cache.Close()
		deps.Cache = cache
	}

	return kongCtx.Run(deps)
}

// Listing dedupe sizing for "rate --dedupe".
const (
	dedupeCapacity          = 100000
	dedupeFalsePositiveRate = 0.001
)

type fetcherOptions struct {
	static       bool
	timeout      time.Duration
	chrome       string
	recycleAfter int64
}

func newFetcher(opts fetcherOptions, logger *slog.Logger) (dealrater.Fetcher, error) {
	if opts.static {
		return dealslog.NewLoggingFetcher(dealhttp.NewFetcher(dealhttp.WithTimeout(opts.timeout)), logger), nil
	}
	rodOpts := []rod.Option{rod.WithFetchTimeout(opts.timeout)}
	if opts.chrome != "" {
		rodOpts = append(rodOpts, rod.WithChrome(opts.chrome))
	}
	if opts.recycleAfter > 0 {
		rodOpts = append(rodOpts, rod.WithRecycleAfter(opts.recycleAfter))
	}
	f, err := rod.NewFetcher(rodOpts...)
	if err != nil {
		return nil, err
	}
	return dealslog.NewLoggingFetcher(f, logger), nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "dealrater.db"
	}
	dir := filepath.Join(home, ".dealrater")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "dealrater.db")
}
