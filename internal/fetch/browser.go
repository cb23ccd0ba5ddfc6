package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the extracted text length below which a page is
// assumed to render its post client-side.
const MinContentLength = 500

// DefaultRenderTimeout bounds one headless render.
const DefaultRenderTimeout = 30 * time.Second

// ShouldUseBrowser reports whether plain HTTP returned too little text.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// RenderOptions controls a headless render.
type RenderOptions struct {
	Timeout time.Duration
	// WaitFor is a CSS selector that appears once the post body has rendered.
	// Empty waits for body and then Settle.
	WaitFor string
	// Settle is extra time for client-side rendering after WaitFor is ready.
	Settle time.Duration
}

// Render loads url in headless Chrome and returns the rendered HTML.
// Chrome or Chromium must be installed.
func Render(ctx context.Context, url string, opts RenderOptions, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRenderTimeout
	}
	waitFor := opts.WaitFor
	if waitFor == "" {
		waitFor = "body"
		if opts.Settle == 0 {
			opts.Settle = 2 * time.Second
		}
	}
	logger.Debug("rendering page", zap.String("url", url), zap.String("wait_for", waitFor))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancel := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var html string
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady(waitFor, chromedp.ByQuery),
	}
	if opts.Settle > 0 {
		actions = append(actions, chromedp.Sleep(opts.Settle))
	}
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	logger.Debug("rendered page", zap.String("url", url), zap.Int("bytes", len(html)))
	return html, nil
}
