package crawl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/crawl"
	"github.com/fwojciec/docsift/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lengthExtractor returns the HTML itself as content.
func lengthExtractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(html string) (*docsift.ExtractResult, error) {
			return &docsift.ExtractResult{ContentHTML: html}, nil
		},
	}
}

func TestContentDiffers(t *testing.T) {
	t.Parallel()

	extractor := lengthExtractor()

	for _, tc := range []struct {
		name    string
		static  string
		browser string
		want    bool
	}{
		{name: "browser content more than 50% longer", static: "short content", browser: "much longer content from the browser render", want: true},
		{name: "similar lengths", static: "some content here", browser: "similar size text", want: false},
		{name: "exactly 50% longer", static: "1234567890", browser: "123456789012345", want: false},
		{name: "static empty and browser has content", static: "", browser: "content", want: true},
		{name: "both empty", static: "", browser: "", want: false},
		{name: "static longer", static: "a long static page body", browser: "short", want: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, crawl.ContentDiffers(tc.static, tc.browser, extractor))
		})
	}

	t.Run("extraction errors count as a difference", func(t *testing.T) {
		t.Parallel()

		failing := &mock.Extractor{
			ExtractFn: func(html string) (*docsift.ExtractResult, error) {
				return nil, errors.New("parse error")
			},
		}

		assert.True(t, crawl.ContentDiffers("a", "b", failing))
	})
}

type fakeRenderer struct {
	html    string
	status  int
	err     error
	renders int
	closed  bool
}

func (f *fakeRenderer) mock() *mock.Renderer {
	return &mock.Renderer{
		RenderFn: func(ctx context.Context, url string) (*docsift.RenderResult, error) {
			f.renders++
			if f.err != nil {
				return nil, f.err
			}
			return &docsift.RenderResult{URL: url, FinalURL: url, Status: f.status, HTML: f.html}, nil
		},
		CloseFn: func() error {
			f.closed = true
			return nil
		},
	}
}

func newAuto(static, browser *fakeRenderer, browserErr error) *crawl.AutoRenderer {
	return &crawl.AutoRenderer{
		Static: static.mock(),
		NewBrowser: func() (docsift.Renderer, error) {
			if browserErr != nil {
				return nil, browserErr
			}
			return browser.mock(), nil
		},
		Extractor: lengthExtractor(),
	}
}

func TestAutoRenderer(t *testing.T) {
	t.Parallel()

	t.Run("keeps the static renderer when scripts add nothing", func(t *testing.T) {
		t.Parallel()

		static := &fakeRenderer{html: "same content", status: 200}
		browser := &fakeRenderer{html: "same content", status: 200}
		auto := newAuto(static, browser, nil)

		_, err := auto.Render(context.Background(), "https://example.com/docs")
		require.NoError(t, err)
		_, err = auto.Render(context.Background(), "https://example.com/docs/a")
		require.NoError(t, err)

		assert.Equal(t, 2, static.renders)
		assert.Equal(t, 1, browser.renders)
		assert.True(t, browser.closed, "unused browser should be released")
		require.NoError(t, auto.Close())
		assert.True(t, static.closed)
	})

	t.Run("switches to the browser when scripts add content", func(t *testing.T) {
		t.Parallel()

		static := &fakeRenderer{html: "<div id=root></div>", status: 200}
		browser := &fakeRenderer{html: "<div id=root><h1>Guide</h1><p>Rendered by scripts with plenty of text.</p></div>", status: 200}
		auto := newAuto(static, browser, nil)

		page, err := auto.Render(context.Background(), "https://example.com/docs")
		require.NoError(t, err)
		assert.Equal(t, browser.html, page.HTML)

		_, err = auto.Render(context.Background(), "https://example.com/docs/a")
		require.NoError(t, err)

		assert.Equal(t, 1, static.renders)
		assert.Equal(t, 2, browser.renders)
		require.NoError(t, auto.Close())
		assert.True(t, browser.closed)
		assert.True(t, static.closed)
	})

	t.Run("uses the browser when the static render fails", func(t *testing.T) {
		t.Parallel()

		static := &fakeRenderer{status: 403}
		browser := &fakeRenderer{html: "content", status: 200}
		auto := newAuto(static, browser, nil)

		page, err := auto.Render(context.Background(), "https://example.com/docs")

		require.NoError(t, err)
		assert.Equal(t, 200, page.Status)
		assert.Equal(t, 1, browser.renders)
	})

	t.Run("falls back to static rendering without a browser", func(t *testing.T) {
		t.Parallel()

		static := &fakeRenderer{html: "content", status: 200}
		auto := newAuto(static, nil, errors.New("chrome not found"))

		page, err := auto.Render(context.Background(), "https://example.com/docs")
		require.NoError(t, err)
		assert.Equal(t, "content", page.HTML)

		_, err = auto.Render(context.Background(), "https://example.com/docs/a")
		require.NoError(t, err)
		assert.Equal(t, 2, static.renders)
	})

	t.Run("AutoFactory builds a fresh renderer per run", func(t *testing.T) {
		t.Parallel()

		var built int
		factory := crawl.AutoFactory(
			func() (docsift.Renderer, error) {
				built++
				return (&fakeRenderer{status: 200}).mock(), nil
			},
			func() (docsift.Renderer, error) { return nil, errors.New("unused") },
			lengthExtractor(),
			nil,
		)

		first, err := factory()
		require.NoError(t, err)
		second, err := factory()
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Equal(t, 2, built)
	})
}
