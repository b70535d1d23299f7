package mock

import "github.com/fwojciec/docsift"

var _ docsift.Converter = (*Converter)(nil)

// Converter is a mock implementation of docsift.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
