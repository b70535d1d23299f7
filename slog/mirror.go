package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docsift"
)

// Ensure LoggingMirror implements docsift.MirrorStore.
var _ docsift.MirrorStore = (*LoggingMirror)(nil)

// LoggingMirror wraps a MirrorStore with operation logging.
type LoggingMirror struct {
	next   docsift.MirrorStore
	logger *slog.Logger
}

// NewLoggingMirror creates a new LoggingMirror.
func NewLoggingMirror(next docsift.MirrorStore, logger *slog.Logger) *LoggingMirror {
	return &LoggingMirror{next: next, logger: logger}
}

// SavePage logs at debug level and delegates.
func (m *LoggingMirror) SavePage(ctx context.Context, siteKey, pageURL string, entries []docsift.MirrorEntry) (err error) {
	defer func(begin time.Time) {
		m.logger.Debug("mirror save",
			"site", siteKey,
			"url", pageURL,
			"entries", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.SavePage(ctx, siteKey, pageURL, entries)
}

// LoadEntries logs the entry count and delegates.
func (m *LoggingMirror) LoadEntries(ctx context.Context, siteKey string) (entries []docsift.MirrorEntry, err error) {
	defer func(begin time.Time) {
		m.logger.Info("mirror load",
			"site", siteKey,
			"entries", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.LoadEntries(ctx, siteKey)
}

// DeleteSite logs and delegates.
func (m *LoggingMirror) DeleteSite(ctx context.Context, siteKey string) (err error) {
	defer func(begin time.Time) {
		m.logger.Info("mirror delete",
			"site", siteKey,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.DeleteSite(ctx, siteKey)
}
