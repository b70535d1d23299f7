// Package trafilatura extracts the main content of documentation pages.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docsift"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements docsift.Extractor at compile time.
var _ docsift.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura. When trafilatura fails or finds no
// content, the page is handed to Fallback if one is set.
type Extractor struct {
	Fallback docsift.Extractor
}

// NewExtractor creates a new Extractor with an optional fallback.
func NewExtractor(fallback docsift.Extractor) *Extractor {
	return &Extractor{Fallback: fallback}
}

// Extract processes raw HTML and returns the main content. A result with
// empty ContentHTML means neither extractor found anything usable.
func (e *Extractor) Extract(rawHTML string) (*docsift.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docsift.Errorf(docsift.EINVALID, "empty HTML input")
	}

	result, err := e.extract(rawHTML)
	if err == nil && hasText(result.ContentHTML) {
		return result, nil
	}
	if e.Fallback == nil {
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	fallback, ferr := e.Fallback.Extract(rawHTML)
	if ferr != nil {
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	if fallback.Title == "" && result != nil {
		fallback.Title = result.Title
	}
	return fallback, nil
}

func (e *Extractor) extract(rawHTML string) (*docsift.ExtractResult, error) {
	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &docsift.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// hasText reports whether an HTML fragment contains any non-space text.
func hasText(fragment string) bool {
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.TextToken:
			if len(bytes.TrimSpace(z.Text())) > 0 {
				return true
			}
		}
	}
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
