// Package rod renders pages in a headless Chrome browser.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/docsift"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultRenderTimeout bounds one Render call.
const DefaultRenderTimeout = 60 * time.Second

// Ensure Renderer implements docsift.Renderer at compile time.
var _ docsift.Renderer = (*Renderer)(nil)

// Renderer retrieves rendered HTML from URLs using Chrome browser automation.
// Renderer is safe for concurrent use by multiple goroutines.
type Renderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	closed   atomic.Bool
	mu       sync.Mutex
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithRenderTimeout sets the per-page render timeout.
func WithRenderTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// NewRenderer launches a headless Chrome browser.
// Close must be called when the Renderer is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{timeout: DefaultRenderTimeout}
	for _, opt := range opts {
		opt(r)
	}

	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, docsift.Errorf(docsift.EUNAVAILABLE, "launching browser: %v", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, docsift.Errorf(docsift.EUNAVAILABLE, "connecting to browser: %v", err)
	}

	r.browser = browser
	r.launcher = l
	return r, nil
}

// Factory returns a constructor suitable for crawl.Crawler.NewRenderer.
func Factory(opts ...Option) func() (docsift.Renderer, error) {
	return func() (docsift.Renderer, error) {
		return NewRenderer(opts...)
	}
}

// Render navigates to url, waits for the load event and returns the
// serialized DOM with the main document's status and the final URL.
func (r *Renderer) Render(ctx context.Context, url string) (*docsift.RenderResult, error) {
	if r.closed.Load() {
		return nil, docsift.Errorf(docsift.EINVALID, "renderer closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	// Subscribes before navigation; the listener ends with ctx or the page.
	status := newDocumentStatus()
	evCtx, stop := context.WithCancel(ctx)
	defer stop()
	go page.Context(evCtx).EachEvent(func(e *proto.NetworkResponseReceived) {
		if e.Type == proto.NetworkResourceTypeDocument && e.FrameID == page.FrameID {
			status.set(e.Response.Status)
		}
	})()

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigating: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for load: %w", err)
	}

	code := status.wait(ctx, statusWait)
	if code == 0 {
		code = navigationStatus(page)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("serializing page: %w", err)
	}

	finalURL := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &docsift.RenderResult{
		URL:      url,
		FinalURL: finalURL,
		Status:   code,
		HTML:     html,
	}, nil
}

// statusWait bounds how long Render waits after load for the document
// response event.
const statusWait = 2 * time.Second

// documentStatus holds the HTTP status of a page's main document. It is set
// by the network event listener and read by Render once the page loads.
type documentStatus struct {
	code atomic.Int64
	once sync.Once
	got  chan struct{}
}

func newDocumentStatus() *documentStatus {
	return &documentStatus{got: make(chan struct{})}
}

// set records code. Later responses, such as the target of a redirect,
// replace earlier ones.
func (s *documentStatus) set(code int) {
	s.code.Store(int64(code))
	s.once.Do(func() { close(s.got) })
}

// wait returns the recorded status, blocking up to timeout for the first
// one. It returns 0 when no response arrived.
func (s *documentStatus) wait(ctx context.Context, timeout time.Duration) int {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.got:
	case <-ctx.Done():
	case <-timer.C:
	}
	return int(s.code.Load())
}

// navigationStatus reads the main document status from the Navigation
// Timing API. It returns 0 when the browser does not report one.
func navigationStatus(page *rod.Page) int {
	res, err := page.Eval(`() => {
		const nav = performance.getEntriesByType("navigation")[0];
		return nav && nav.responseStatus ? nav.responseStatus : 0;
	}`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

// Close releases browser resources. Close is safe to call multiple times.
func (r *Renderer) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
	}
	if r.launcher != nil {
		r.launcher.Kill()
	}
	return err
}

// LauncherPID returns the process ID of the browser launcher.
func (r *Renderer) LauncherPID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.launcher == nil {
		return 0
	}
	return r.launcher.PID()
}
