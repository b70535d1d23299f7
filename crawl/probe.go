package crawl

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fwojciec/docsift"
)

var _ docsift.Renderer = (*AutoRenderer)(nil)

// ContentDiffers reports whether the browser-rendered HTML carries
// substantially more main content than the static HTML: more than 50%
// longer once extracted, or any content where the static page had none.
// Extraction errors count as a difference.
func ContentDiffers(staticHTML, browserHTML string, extractor docsift.Extractor) bool {
	staticResult, err := extractor.Extract(staticHTML)
	if err != nil {
		return true
	}
	browserResult, err := extractor.Extract(browserHTML)
	if err != nil {
		return true
	}

	staticLen := len(staticResult.ContentHTML)
	browserLen := len(browserResult.ContentHTML)

	if staticLen == 0 && browserLen > 0 {
		return true
	}
	return float64(browserLen) > float64(staticLen)*1.5
}

// AutoRenderer chooses between a static and a browser renderer on the
// first page it renders and keeps that choice for the rest of the run.
// The browser wins when the static page fails or when ContentDiffers finds
// that scripts add content.
type AutoRenderer struct {
	Static     docsift.Renderer
	NewBrowser func() (docsift.Renderer, error)
	Extractor  docsift.Extractor
	Logger     *slog.Logger

	mu      sync.Mutex
	chosen  docsift.Renderer
	browser docsift.Renderer
}

// AutoFactory returns a renderer factory for Crawler.NewRenderer that
// builds one AutoRenderer per run.
func AutoFactory(newStatic, newBrowser func() (docsift.Renderer, error), extractor docsift.Extractor, logger *slog.Logger) func() (docsift.Renderer, error) {
	return func() (docsift.Renderer, error) {
		static, err := newStatic()
		if err != nil {
			return nil, err
		}
		return &AutoRenderer{
			Static:     static,
			NewBrowser: newBrowser,
			Extractor:  extractor,
			Logger:     logger,
		}, nil
	}
}

// Render renders url with the chosen renderer, probing both on first use.
func (a *AutoRenderer) Render(ctx context.Context, url string) (*docsift.RenderResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.chosen != nil {
		return a.chosen.Render(ctx, url)
	}
	return a.probe(ctx, url)
}

func (a *AutoRenderer) probe(ctx context.Context, url string) (*docsift.RenderResult, error) {
	staticPage, staticErr := a.Static.Render(ctx, url)
	staticOK := staticErr == nil && staticPage.OK()

	browser, err := a.NewBrowser()
	if err != nil {
		a.logger().Warn("browser unavailable, rendering statically", "err", err)
		a.chosen = a.Static
		return staticPage, staticErr
	}
	a.browser = browser

	if !staticOK {
		a.logger().Info("static render failed, using browser", "url", url)
		a.chosen = browser
		return browser.Render(ctx, url)
	}

	browserPage, err := browser.Render(ctx, url)
	if err != nil || !browserPage.OK() || !ContentDiffers(staticPage.HTML, browserPage.HTML, a.Extractor) {
		a.logger().Info("using static renderer", "url", url)
		a.chosen = a.Static
		a.closeBrowser()
		return staticPage, nil
	}

	a.logger().Info("page needs scripts, using browser", "url", url)
	a.chosen = browser
	return browserPage, nil
}

func (a *AutoRenderer) closeBrowser() {
	if a.browser == nil {
		return
	}
	if err := a.browser.Close(); err != nil {
		a.logger().Warn("close browser", "err", err)
	}
	a.browser = nil
}

// Close releases both renderers.
func (a *AutoRenderer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.browser != nil {
		errs = append(errs, a.browser.Close())
		a.browser = nil
	}
	errs = append(errs, a.Static.Close())
	return errors.Join(errs...)
}

func (a *AutoRenderer) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}
