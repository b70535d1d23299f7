package docsift_test

import (
	"testing"

	"github.com/fwojciec/docsift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSections(t *testing.T) {
	t.Parallel()

	t.Run("extracts levels and titles in document order", func(t *testing.T) {
		t.Parallel()

		markdown := "# H1\n## H2\n### H3\n#### H4\n##### H5\n###### H6"

		sections := docsift.ExtractSections(markdown)

		require.Len(t, sections, 6)
		for i, s := range sections {
			assert.Equal(t, i+1, s.Level)
		}
		assert.Equal(t, "H1", sections[0].Title)
		assert.Equal(t, "H6", sections[5].Title)
	})

	t.Run("returns nothing for empty markdown", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, docsift.ExtractSections(""))
	})

	t.Run("returns nothing for markdown without headings", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, docsift.ExtractSections("Just some text\n\nWith paragraphs."))
	})

	t.Run("strips closing hashes and ignores empty or malformed markers", func(t *testing.T) {
		t.Parallel()

		markdown := "# Title ##\n#NoSpace\n#######  Seven\n##   \n## Real"

		sections := docsift.ExtractSections(markdown)

		require.Len(t, sections, 2)
		assert.Equal(t, "Title", sections[0].Title)
		assert.Equal(t, "Real", sections[1].Title)
	})

	t.Run("builds breadcrumbs under the nearest higher heading", func(t *testing.T) {
		t.Parallel()

		markdown := "# Guide\n## Install\n### Linux\n## Usage\n#### Flags\n### Examples\n# API"

		sections := docsift.ExtractSections(markdown)

		paths := make([]string, 0, len(sections))
		for _, s := range sections {
			paths = append(paths, s.Path)
		}
		assert.Equal(t, []string{
			"Guide",
			"Guide > Install",
			"Guide > Install > Linux",
			"Guide > Usage",
			"Guide > Usage > Flags",
			"Guide > Usage > Examples",
			"API",
		}, paths)
	})

	t.Run("attaches deeper headings that skip levels", func(t *testing.T) {
		t.Parallel()

		sections := docsift.ExtractSections("### Deep\n# Top\n### Child")

		require.Len(t, sections, 3)
		assert.Equal(t, "Deep", sections[0].Path)
		assert.Equal(t, "Top > Child", sections[2].Path)
	})

	t.Run("ignores headings inside code fences", func(t *testing.T) {
		t.Parallel()

		markdown := "# Real Heading\n\n```bash\n# This is a comment\necho hello\n```\n\n~~~\n## Also code\n~~~\n\n## Another Real Heading"

		sections := docsift.ExtractSections(markdown)

		require.Len(t, sections, 2)
		assert.Equal(t, "Real Heading", sections[0].Title)
		assert.Equal(t, "Another Real Heading", sections[1].Title)
	})

	t.Run("closes a fence only with its own marker", func(t *testing.T) {
		t.Parallel()

		markdown := "# Top\n\n```markdown\n~~~\n# Inside backticks\n```\n\n~~~\n```\n# Inside tildes\n~~~\n\n## After"

		sections := docsift.ExtractSections(markdown)

		require.Len(t, sections, 2)
		assert.Equal(t, "Top", sections[0].Title)
		assert.Equal(t, "Top > After", sections[1].Path)
	})

	t.Run("needs a closing run at least as long as the opening one", func(t *testing.T) {
		t.Parallel()

		markdown := "````\n```\n# Still code\n````\n# Heading"

		sections := docsift.ExtractSections(markdown)

		require.Len(t, sections, 1)
		assert.Equal(t, "Heading", sections[0].Title)
	})

	t.Run("does not close a fence on a delimiter with an info string", func(t *testing.T) {
		t.Parallel()

		markdown := "```\n```go\n# Still code\n```\n# Heading"

		sections := docsift.ExtractSections(markdown)

		require.Len(t, sections, 1)
		assert.Equal(t, "Heading", sections[0].Title)
	})
}
