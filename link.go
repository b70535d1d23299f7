package docsift

// LinkExtractor extracts outgoing links from HTML.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns absolute http(s) URLs in document
	// order without duplicates. The baseURL is used to resolve relative URLs.
	ExtractLinks(html string, baseURL string) ([]string, error)
}
