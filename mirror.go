package docsift

import "context"

// MirrorMetadata describes where a mirrored chunk came from.
type MirrorMetadata struct {
	PageURL     string `json:"pageUrl"`
	LinksFound  int    `json:"linksFound"`
	SectionPath string `json:"sectionPath"`
	ChunkIndex  int    `json:"chunkIndex"`
}

// MirrorEntry is one chunk as written to the local mirror.
type MirrorEntry struct {
	Chunk    string         `json:"chunk"`
	Metadata MirrorMetadata `json:"metadata"`
}

// MirrorStore is the local copy of every indexed chunk, grouped by site and
// page. It is the source for lexical search when the vector store fails.
type MirrorStore interface {
	// SavePage writes the entries of one page, replacing earlier ones.
	SavePage(ctx context.Context, siteKey, pageURL string, entries []MirrorEntry) error

	// LoadEntries returns every entry stored for the site.
	// Returns ENOTFOUND if nothing is mirrored for the site.
	LoadEntries(ctx context.Context, siteKey string) ([]MirrorEntry, error)

	// DeleteSite removes everything mirrored for the site.
	DeleteSite(ctx context.Context, siteKey string) error
}
