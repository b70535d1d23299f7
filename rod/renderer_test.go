//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/docsift"
	"github.com/fwojciec/docsift/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render_ReturnsRenderedHTML(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
<div id="content">Loading...</div>
<script>
document.getElementById('content').textContent = 'JavaScript Rendered';
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)
	defer renderer.Close()

	result, err := renderer.Render(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Status)
	assert.True(t, result.OK())
	assert.Contains(t, result.HTML, "JavaScript Rendered")
	assert.NotContains(t, result.HTML, "Loading...")
}

func TestRenderer_Render_ReportsStatusAndFinalURL(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>moved</body></html>`))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)
	defer renderer.Close()

	result, err := renderer.Render(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/new", result.FinalURL)
	assert.Equal(t, http.StatusOK, result.Status)

	result, err = renderer.Render(context.Background(), srv.URL+"/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, result.Status)
	assert.False(t, result.OK())
}

func TestRenderer_Render_ContextCancellation(t *testing.T) {
	t.Parallel()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)
	defer renderer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = renderer.Render(ctx, "http://example.com")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_Render_TimeoutTriggersOnSlowPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`<html><body>delayed</body></html>`))
	}))
	defer srv.Close()

	renderer, err := rod.NewRenderer(rod.WithRenderTimeout(100 * time.Millisecond))
	require.NoError(t, err)
	defer renderer.Close()

	_, err = renderer.Render(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRenderer_Close_Idempotent(t *testing.T) {
	t.Parallel()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)

	require.NoError(t, renderer.Close())
	require.NoError(t, renderer.Close())
}

func TestRenderer_Render_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)
	require.NoError(t, renderer.Close())

	_, err = renderer.Render(context.Background(), "http://example.com")

	require.Error(t, err)
	assert.Equal(t, docsift.EINVALID, docsift.ErrorCode(err))
	assert.Contains(t, docsift.ErrorMessage(err), "closed")
}
