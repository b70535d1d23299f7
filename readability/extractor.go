// Package readability extracts article content with go-readability. It
// serves as the fallback when the primary extractor finds nothing.
package readability

import (
	"strings"

	"github.com/fwojciec/docsift"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements docsift.Extractor at compile time.
var _ docsift.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. Pages that
// readability cannot parse as an article yield an empty result.
func (e *Extractor) Extract(rawHTML string) (*docsift.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docsift.Errorf(docsift.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &docsift.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: strings.TrimSpace(article.Content),
	}, nil
}
