package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/dealrater"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry calls fetch until it succeeds, sleeping delays[i] before
// retry i, so at most len(delays)+1 attempts are made. Errors that another
// attempt cannot fix are returned at once. logger may be nil.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	for attempt := 0; ; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		if !retryable(err) || attempt == len(delays) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if logger != nil {
			logger.Warn("retrying fetch", "url", url, "attempt", attempt+2, "err", err)
		}

		timer := time.NewTimer(delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

// retryable reports whether a failed fetch is worth repeating. A page that
// timed out on its own deadline may load on the next attempt, but a request
// abandoned by its caller will not.
func retryable(err error) bool {
	switch dealrater.ErrorCode(err) {
	case dealrater.EINVALID, dealrater.ENOTFOUND:
		return false
	}
	return !errors.Is(err, context.Canceled)
}
