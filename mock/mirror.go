package mock

import (
	"context"

	"github.com/fwojciec/docsift"
)

var _ docsift.MirrorStore = (*MirrorStore)(nil)

// MirrorStore is a mock implementation of docsift.MirrorStore.
type MirrorStore struct {
	SavePageFn    func(ctx context.Context, siteKey, pageURL string, entries []docsift.MirrorEntry) error
	LoadEntriesFn func(ctx context.Context, siteKey string) ([]docsift.MirrorEntry, error)
	DeleteSiteFn  func(ctx context.Context, siteKey string) error
}

func (m *MirrorStore) SavePage(ctx context.Context, siteKey, pageURL string, entries []docsift.MirrorEntry) error {
	return m.SavePageFn(ctx, siteKey, pageURL, entries)
}

func (m *MirrorStore) LoadEntries(ctx context.Context, siteKey string) ([]docsift.MirrorEntry, error) {
	return m.LoadEntriesFn(ctx, siteKey)
}

func (m *MirrorStore) DeleteSite(ctx context.Context, siteKey string) error {
	return m.DeleteSiteFn(ctx, siteKey)
}
