package mock

import (
	"context"

	"github.com/fwojciec/docsift"
)

var _ docsift.SiteService = (*SiteService)(nil)

// SiteService is a mock implementation of docsift.SiteService.
type SiteService struct {
	SaveSiteFn      func(ctx context.Context, site *docsift.Site) error
	FindSiteByKeyFn func(ctx context.Context, key string) (*docsift.Site, error)
	FindSitesFn     func(ctx context.Context, filter docsift.SiteFilter) ([]*docsift.Site, error)
	DeleteSiteFn    func(ctx context.Context, key string) error
}

func (s *SiteService) SaveSite(ctx context.Context, site *docsift.Site) error {
	return s.SaveSiteFn(ctx, site)
}

func (s *SiteService) FindSiteByKey(ctx context.Context, key string) (*docsift.Site, error) {
	return s.FindSiteByKeyFn(ctx, key)
}

func (s *SiteService) FindSites(ctx context.Context, filter docsift.SiteFilter) ([]*docsift.Site, error) {
	return s.FindSitesFn(ctx, filter)
}

func (s *SiteService) DeleteSite(ctx context.Context, key string) error {
	return s.DeleteSiteFn(ctx, key)
}
