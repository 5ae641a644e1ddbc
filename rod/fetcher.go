// Package rod provides a dealrater.Fetcher that renders dealer pages in
// headless Chrome, for inventory grids populated by JavaScript.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/dealrater"
)

// DefaultFetchTimeout bounds a single page load including rendering.
const DefaultFetchTimeout = 60 * time.Second

// DefaultIdleTimeout is how long Fetch waits for the page to go idle after
// load. Pages that never settle are captured as-is.
const DefaultIdleTimeout = 2 * time.Second

// Ensure Fetcher implements dealrater.Fetcher at compile time.
var _ dealrater.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using a stealth Chrome page per request.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager      *BrowserManager
	fetchTimeout time.Duration
	idleTimeout  time.Duration
	closed       atomic.Bool
}

// Option configures a Fetcher.
type Option func(*fetcherConfig)

type fetcherConfig struct {
	fetchTimeout time.Duration
	idleTimeout  time.Duration
	managerOpts  []ManagerOption
}

// WithFetchTimeout sets the per-page timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.fetchTimeout = d
	}
}

// WithIdleTimeout sets how long to wait for the page to go idle after load.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *fetcherConfig) {
		c.idleTimeout = d
	}
}

// WithRecycleAfter replaces the browser after n pages.
func WithRecycleAfter(n int64) Option {
	return func(c *fetcherConfig) {
		c.managerOpts = append(c.managerOpts, WithMaxPages(n))
	}
}

// WithChrome uses the browser binary at path.
func WithChrome(path string) Option {
	return func(c *fetcherConfig) {
		c.managerOpts = append(c.managerOpts, WithBrowserBin(path))
	}
}

// NewFetcher launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{
		fetchTimeout: DefaultFetchTimeout,
		idleTimeout:  DefaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	manager, err := NewBrowserManager(cfg.managerOpts...)
	if err != nil {
		return nil, err
	}

	return &Fetcher{
		manager:      manager,
		fetchTimeout: cfg.fetchTimeout,
		idleTimeout:  cfg.idleTimeout,
	}, nil
}

// Fetch navigates to url and returns the HTML after the page has loaded.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", dealrater.Errorf(dealrater.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	page, release, err := f.manager.NewPage()
	if err != nil {
		return "", err
	}
	defer release()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	// Late-loading inventory grids keep the page busy; give up quietly.
	_ = page.WaitIdle(f.idleTimeout)

	html, err := page.HTML()
	if err != nil {
		return "", err
	}
	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the running browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
