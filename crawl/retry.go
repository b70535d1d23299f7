package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/docsift"
)

// RenderFunc renders one page.
type RenderFunc func(ctx context.Context, url string) (*docsift.RenderResult, error)

// DefaultRetryDelays returns the backoff delays for render retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RenderWithRetry calls render, retrying after each of delays in turn while
// it fails. Server errors (5xx) are retried like render errors; other
// statuses are returned to the caller as is. A nil logger discards.
func RenderWithRetry(ctx context.Context, url string, render RenderFunc, delays []time.Duration, logger *slog.Logger) (*docsift.RenderResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		page, err := render(ctx, url)
		switch {
		case err != nil:
			lastErr = err
		case page.Status >= http.StatusInternalServerError:
			lastErr = fmt.Errorf("unexpected status %d", page.Status)
			if attempt == maxAttempts-1 {
				return page, nil
			}
		default:
			return page, nil
		}

		if attempt >= maxAttempts-1 {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		logger.Debug("render retry", "url", url, "attempt", attempt+2, "err", lastErr)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}
