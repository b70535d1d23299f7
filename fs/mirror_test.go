package fs_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Local Mirror
// Every indexed page is kept as a JSON file per site so search can fall
// back to it when the vector store is unavailable.

func entry(pageURL, text string, index int) docsift.MirrorEntry {
	return docsift.MirrorEntry{
		Chunk: text,
		Metadata: docsift.MirrorMetadata{
			PageURL:     pageURL,
			LinksFound:  2,
			SectionPath: "Guide",
			ChunkIndex:  index,
		},
	}
}

func TestMirror_SavePageWritesJSONToEveryRoot(t *testing.T) {
	t.Parallel()

	// Given a mirror with two roots
	project, user := t.TempDir(), t.TempDir()
	mirror := fs.NewMirror(project, user)

	// When I save a page
	err := mirror.SavePage(context.Background(), "https_example_com", "https://example.com/docs/intro", []docsift.MirrorEntry{
		entry("https://example.com/docs/intro", "hello", 0),
	})

	// Then the file exists under both roots
	require.NoError(t, err)
	for _, root := range []string{project, user} {
		path := filepath.Join(root, "https_example_com", "https_example_com_docs_intro.json")
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		// And it holds the chunk with its metadata
		var got []map[string]any
		require.NoError(t, json.Unmarshal(data, &got))
		require.Len(t, got, 1)
		assert.Equal(t, "hello", got[0]["chunk"])
		meta, ok := got[0]["metadata"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "https://example.com/docs/intro", meta["pageUrl"])
		assert.InDelta(t, 2, meta["linksFound"], 0)
		assert.Equal(t, "Guide", meta["sectionPath"])
		assert.InDelta(t, 0, meta["chunkIndex"], 0)
	}
}

func TestMirror_SavePageReplacesEarlierContent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mirror := fs.NewMirror(t.TempDir())
	page := "https://example.com/a"

	require.NoError(t, mirror.SavePage(ctx, "site", page, []docsift.MirrorEntry{entry(page, "old", 0), entry(page, "old2", 1)}))
	require.NoError(t, mirror.SavePage(ctx, "site", page, []docsift.MirrorEntry{entry(page, "new", 0)}))

	entries, err := mirror.LoadEntries(ctx, "site")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Chunk)
}

func TestMirror_LoadEntriesReadsAllPages(t *testing.T) {
	t.Parallel()

	// Given a site with two mirrored pages
	ctx := context.Background()
	mirror := fs.NewMirror(t.TempDir())
	require.NoError(t, mirror.SavePage(ctx, "site", "https://example.com/b", []docsift.MirrorEntry{entry("https://example.com/b", "b", 0)}))
	require.NoError(t, mirror.SavePage(ctx, "site", "https://example.com/a", []docsift.MirrorEntry{entry("https://example.com/a", "a", 0)}))

	// When I load the site
	entries, err := mirror.LoadEntries(ctx, "site")

	// Then entries of both pages come back in file name order
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Chunk)
	assert.Equal(t, "b", entries[1].Chunk)
}

func TestMirror_LoadEntriesFallsBackToLaterRoot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	project, user := t.TempDir(), t.TempDir()
	require.NoError(t, fs.NewMirror(user).SavePage(ctx, "site", "https://example.com", []docsift.MirrorEntry{entry("https://example.com", "only in user dir", 0)}))

	entries, err := fs.NewMirror(project, user).LoadEntries(ctx, "site")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "only in user dir", entries[0].Chunk)
}

func TestMirror_LoadEntriesSkipsCorruptFiles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	mirror := fs.NewMirror(root)
	require.NoError(t, mirror.SavePage(ctx, "site", "https://example.com/ok", []docsift.MirrorEntry{entry("https://example.com/ok", "ok", 0)}))
	require.NoError(t, os.WriteFile(filepath.Join(root, "site", "broken.json"), []byte("{not json"), 0644))

	entries, err := mirror.LoadEntries(ctx, "site")

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ok", entries[0].Chunk)
}

func TestMirror_LoadEntriesReturnsNotFoundForUnknownSite(t *testing.T) {
	t.Parallel()

	_, err := fs.NewMirror(t.TempDir()).LoadEntries(context.Background(), "missing")

	assert.Equal(t, docsift.ENOTFOUND, docsift.ErrorCode(err))
}

func TestMirror_DeleteSiteRemovesDirectories(t *testing.T) {
	t.Parallel()

	// Given a site mirrored in two roots
	ctx := context.Background()
	project, user := t.TempDir(), t.TempDir()
	mirror := fs.NewMirror(project, user)
	require.NoError(t, mirror.SavePage(ctx, "site", "https://example.com", []docsift.MirrorEntry{entry("https://example.com", "x", 0)}))

	// When I delete it
	require.NoError(t, mirror.DeleteSite(ctx, "site"))

	// Then both directories are gone
	for _, root := range []string{project, user} {
		_, err := os.Stat(filepath.Join(root, "site"))
		assert.True(t, os.IsNotExist(err))
	}

	// And deleting again is not an error
	assert.NoError(t, mirror.DeleteSite(ctx, "site"))
}

func TestMirror_RejectsUnsafeSiteKeys(t *testing.T) {
	t.Parallel()

	mirror := fs.NewMirror(t.TempDir())

	err := mirror.SavePage(context.Background(), "../escape", "https://example.com", nil)
	assert.Equal(t, docsift.EINVALID, docsift.ErrorCode(err))

	err = mirror.DeleteSite(context.Background(), "")
	assert.Equal(t, docsift.EINVALID, docsift.ErrorCode(err))
}
