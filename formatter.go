package docsift

import (
	"fmt"
	"strings"
)

// FormatSearchResults renders query results as plain text, one block per
// query, each result with its rank, score to four decimals, source URL,
// section path when known and chunk text. Blocks are separated by blank
// lines.
func FormatSearchResults(all []QueryResults) string {
	if len(all) == 0 {
		return ""
	}

	var b strings.Builder
	for i, qr := range all {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "## Query: %s\n", qr.Query)
		if len(qr.Results) == 0 {
			b.WriteString("No results found.\n")
			continue
		}
		for rank, r := range qr.Results {
			fmt.Fprintf(&b, "\n%d. [%.4f] %s (%s)\n", rank+1, r.Score, r.PageURL, r.Method)
			if r.SectionPath != "" {
				fmt.Fprintf(&b, "   Section: %s\n", r.SectionPath)
			}
			b.WriteString(r.ChunkText)
			b.WriteString("\n")
		}
	}
	return b.String()
}
