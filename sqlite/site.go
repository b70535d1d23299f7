package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/docsift"
)

// Compile-time interface verification.
var _ docsift.SiteService = (*SiteService)(nil)

// SiteService implements docsift.SiteService using SQLite.
type SiteService struct {
	db *DB
}

// NewSiteService creates a new SiteService.
func NewSiteService(db *DB) *SiteService {
	return &SiteService{db: db}
}

const siteColumns = "key, base_url, pages, chunks, crawled_at, created_at, updated_at"

// SaveSite inserts the site or replaces the record with the same key.
// CreatedAt is preserved across saves; UpdatedAt is set to now.
func (s *SiteService) SaveSite(ctx context.Context, site *docsift.Site) error {
	if err := site.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if site.CrawledAt.IsZero() {
		site.CrawledAt = now
	}
	site.UpdatedAt = now

	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sites (key, base_url, pages, chunks, crawled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			base_url = excluded.base_url,
			pages = excluded.pages,
			chunks = excluded.chunks,
			crawled_at = excluded.crawled_at,
			updated_at = excluded.updated_at
		RETURNING created_at
	`, site.Key, site.BaseURL, site.Pages, site.Chunks,
		site.CrawledAt.UTC().Format(time.RFC3339),
		now.Format(time.RFC3339),
		site.UpdatedAt.Format(time.RFC3339)).Scan(&createdAt)
	if err != nil {
		return err
	}

	site.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	return err
}

// FindSiteByKey retrieves a site by its collection key.
func (s *SiteService) FindSiteByKey(ctx context.Context, key string) (*docsift.Site, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+siteColumns+" FROM sites WHERE key = ?", key)

	site, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, docsift.Errorf(docsift.ENOTFOUND, "site not found")
	}
	if err != nil {
		return nil, err
	}
	return site, nil
}

// FindSites retrieves sites matching the filter, most recently crawled first.
func (s *SiteService) FindSites(ctx context.Context, filter docsift.SiteFilter) ([]*docsift.Site, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + siteColumns + " FROM sites WHERE 1=1")

	if filter.Key != nil {
		query.WriteString(" AND key = ?")
		args = append(args, *filter.Key)
	}

	query.WriteString(" ORDER BY crawled_at DESC, key ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := []*docsift.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// DeleteSite permanently removes a site record.
func (s *SiteService) DeleteSite(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sites WHERE key = ?", key)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return docsift.Errorf(docsift.ENOTFOUND, "site not found")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSite(row scanner) (*docsift.Site, error) {
	var site docsift.Site
	var crawledAt, createdAt, updatedAt string

	if err := row.Scan(&site.Key, &site.BaseURL, &site.Pages, &site.Chunks,
		&crawledAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if site.CrawledAt, err = parseRFC3339(crawledAt, "crawled_at"); err != nil {
		return nil, err
	}
	if site.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if site.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &site, nil
}
