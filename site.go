package docsift

import (
	"context"
	"time"
)

// Site is a documentation website that has been crawled and indexed.
// Key names both its mirror directory and its vector collection.
type Site struct {
	Key       string    `json:"key"`
	BaseURL   string    `json:"baseUrl"`
	Pages     int       `json:"pages"`
	Chunks    int       `json:"chunks"`
	CrawledAt time.Time `json:"crawledAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the site contains invalid fields.
func (s *Site) Validate() error {
	if s.Key == "" {
		return Errorf(EINVALID, "site key required")
	}
	if s.BaseURL == "" {
		return Errorf(EINVALID, "site base URL required")
	}
	if s.Pages < 0 || s.Chunks < 0 {
		return Errorf(EINVALID, "site counts must not be negative")
	}
	return nil
}

// SiteService represents a registry of crawled sites.
type SiteService interface {
	// SaveSite creates the site or replaces the record with the same key.
	SaveSite(ctx context.Context, site *Site) error

	// FindSiteByKey retrieves a site by its collection key.
	// Returns ENOTFOUND if the site does not exist.
	FindSiteByKey(ctx context.Context, key string) (*Site, error)

	// FindSites retrieves sites matching the filter, most recently crawled first.
	FindSites(ctx context.Context, filter SiteFilter) ([]*Site, error)

	// DeleteSite removes the site record.
	// Returns ENOTFOUND if the site does not exist.
	DeleteSite(ctx context.Context, key string) error
}

// SiteFilter represents a filter for FindSites.
type SiteFilter struct {
	Key *string `json:"key"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
