package docsift

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// maxSlugLen bounds page slugs so mirror file names stay filesystem-safe.
// Longer slugs are truncated and suffixed with a hash of the full slug.
const maxSlugLen = 150

// ParseBaseURL validates a site base URL. Only absolute http(s) URLs with a
// host are accepted.
func ParseBaseURL(rawURL string) (*url.URL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, Errorf(EINVALID, "base URL required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid base URL %q: %v", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, Errorf(EINVALID, "base URL %q must use http or https", rawURL)
	}
	if u.Host == "" {
		return nil, Errorf(EINVALID, "base URL %q has no host", rawURL)
	}
	return u, nil
}

// NormalizeURL returns the canonical form of rawURL used for deduplication
// and storage keys: the fragment is removed and a single trailing slash is
// stripped, unless the URL equals the base URL verbatim.
func NormalizeURL(rawURL, baseURL string) string {
	u := stripFragment(rawURL)
	if u == stripFragment(baseURL) {
		return u
	}
	return strings.TrimSuffix(u, "/")
}

func stripFragment(s string) string {
	if idx := strings.IndexByte(s, '#'); idx != -1 {
		return s[:idx]
	}
	return s
}

// ToSlug converts s into a filesystem- and collection-safe token: lowercase
// ASCII letters and digits, with every other run of characters collapsed to
// a single underscore. Leading and trailing separators are dropped.
func ToSlug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// CollectionKey derives the Site identity from its base URL. Ingestion,
// retrieval, the mirror directory and the vector collection all use it.
func CollectionKey(baseURL string) string {
	return ToSlug(baseURL)
}

// PageSlug derives the mirror file name (without extension) for a page.
func PageSlug(pageURL string) string {
	slug := ToSlug(pageURL)
	if slug == "" {
		return "index"
	}
	if len(slug) > maxSlugLen {
		return fmt.Sprintf("%s_%016x", slug[:maxSlugLen-17], xxhash.Sum64String(slug))
	}
	return slug
}
