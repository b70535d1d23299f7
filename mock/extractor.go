package mock

import "github.com/fwojciec/docsift"

var _ docsift.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docsift.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docsift.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docsift.ExtractResult, error) {
	return e.ExtractFn(html)
}
