package docsift_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/docsift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	const base = "https://example.com/docs/"

	t.Run("strips fragment", func(t *testing.T) {
		t.Parallel()

		got := docsift.NormalizeURL("https://example.com/docs/intro#setup", base)

		assert.Equal(t, "https://example.com/docs/intro", got)
	})

	t.Run("strips a single trailing slash", func(t *testing.T) {
		t.Parallel()

		got := docsift.NormalizeURL("https://example.com/docs/guide/", base)

		assert.Equal(t, "https://example.com/docs/guide", got)
	})

	t.Run("keeps trailing slash on the base URL", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, base, docsift.NormalizeURL(base, base))
		assert.Equal(t, base, docsift.NormalizeURL(base+"#top", base))
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		once := docsift.NormalizeURL("https://example.com/docs/a/#x", base)

		assert.Equal(t, once, docsift.NormalizeURL(once, base))
	})
}

func TestToSlug(t *testing.T) {
	t.Parallel()

	t.Run("collapses non-alphanumeric runs", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "https_example_com_docs", docsift.ToSlug("https://example.com/docs/"))
	})

	t.Run("lowercases", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "https_docs_example_org_api_v2", docsift.ToSlug("HTTPS://Docs.Example.org/API/v2"))
	})

	t.Run("is deterministic", func(t *testing.T) {
		t.Parallel()

		u := "https://example.com/docs/getting-started"

		assert.Equal(t, docsift.ToSlug(u), docsift.ToSlug(u))
	})

	t.Run("distinct documentation paths do not collide", func(t *testing.T) {
		t.Parallel()

		urls := []string{
			"https://example.com/docs",
			"https://example.com/docs/intro",
			"https://example.com/docs/guide/install",
			"https://example.com/docs/guide/configure",
			"https://example.com/docs/api/v1",
			"https://example.com/docs/api/v2",
		}
		seen := make(map[string]string)
		for _, u := range urls {
			slug := docsift.ToSlug(u)
			prev, dup := seen[slug]
			assert.False(t, dup, "%s collides with %s", u, prev)
			seen[slug] = u
		}
	})
}

func TestCollectionKey_MatchesSlug(t *testing.T) {
	t.Parallel()

	u := "https://example.com/docs/"

	assert.Equal(t, docsift.ToSlug(u), docsift.CollectionKey(u))
}

func TestPageSlug(t *testing.T) {
	t.Parallel()

	t.Run("short URLs slug verbatim", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "https_example_com_docs_intro", docsift.PageSlug("https://example.com/docs/intro"))
	})

	t.Run("long URLs are truncated with a hash suffix", func(t *testing.T) {
		t.Parallel()

		a := "https://example.com/docs/" + strings.Repeat("segment/", 40) + "a"
		b := "https://example.com/docs/" + strings.Repeat("segment/", 40) + "b"

		assert.Len(t, docsift.PageSlug(a), 150)
		assert.NotEqual(t, docsift.PageSlug(a), docsift.PageSlug(b))
	})
}

func TestParseBaseURL(t *testing.T) {
	t.Parallel()

	t.Run("accepts absolute https URL", func(t *testing.T) {
		t.Parallel()

		u, err := docsift.ParseBaseURL("https://example.com/docs")

		require.NoError(t, err)
		assert.Equal(t, "example.com", u.Hostname())
	})

	t.Run("rejects relative URL", func(t *testing.T) {
		t.Parallel()

		_, err := docsift.ParseBaseURL("/docs")

		require.Error(t, err)
		assert.Equal(t, docsift.EINVALID, docsift.ErrorCode(err))
	})

	t.Run("rejects non-http scheme", func(t *testing.T) {
		t.Parallel()

		_, err := docsift.ParseBaseURL("ftp://example.com/docs")

		require.Error(t, err)
		assert.Equal(t, docsift.EINVALID, docsift.ErrorCode(err))
	})

	t.Run("rejects empty URL", func(t *testing.T) {
		t.Parallel()

		_, err := docsift.ParseBaseURL("  ")

		require.Error(t, err)
		assert.Equal(t, docsift.EINVALID, docsift.ErrorCode(err))
	})
}
