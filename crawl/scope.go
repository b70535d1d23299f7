package crawl

import (
	"net/url"
	"strings"

	"github.com/fwojciec/docsift"
)

// docSegments mark paths that hold documentation even outside the base path.
var docSegments = []string{"/docs/", "/guide/", "/api/", "/reference/"}

// InScope reports whether link belongs to the documentation rooted at base:
// same hostname, and either under the base path or on a documentation-like
// path.
func InScope(link string, base *url.URL) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !strings.EqualFold(u.Hostname(), base.Hostname()) {
		return false
	}

	basePath := strings.TrimSuffix(base.Path, "/")
	if basePath == "" || u.Path == basePath || strings.HasPrefix(u.Path, basePath+"/") {
		return true
	}

	path := u.Path + "/"
	for _, seg := range docSegments {
		if strings.Contains(path, seg) {
			return true
		}
	}
	return false
}

// ScopeLinks normalizes links, keeps those in scope of base, and drops
// duplicates while preserving order.
func ScopeLinks(links []string, base *url.URL) []string {
	baseURL := base.String()
	seen := make(map[string]struct{}, len(links))
	var kept []string
	for _, link := range links {
		normalized := docsift.NormalizeURL(link, baseURL)
		if !InScope(normalized, base) {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		kept = append(kept, normalized)
	}
	return kept
}
