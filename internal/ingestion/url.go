package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/voicedna/internal/fetch"
	"go.uber.org/zap"
)

var (
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// ImportOptions controls how a writing sample is pulled from the web.
type ImportOptions struct {
	// UseBrowser falls back to headless rendering when the HTTP body has too
	// little text, which is common for JS-rendered blogs.
	UseBrowser bool
	Fetch      *fetch.Options
	Logger     *zap.Logger
}

// ImportFromURL fetches a published post, extracts its article text with
// platform-specific selectors and returns the cleaned text with metadata.
func ImportFromURL(ctx context.Context, urlStr string, opts ImportOptions) (string, *Metadata, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	platform := fetch.DetectPlatform(urlStr)
	logger.Debug("importing writing sample", zap.String("url", urlStr), zap.String("platform", string(platform)))

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	logger.Debug("fetched HTML", zap.Int("bytes", len(result.HTML)))

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	textContent, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	title := fetch.ExtractTitle(result.HTML)

	if opts.UseBrowser && fetch.ShouldUseBrowser(textContent) {
		logger.Debug("content too short, rendering in browser",
			zap.Int("chars", len(textContent)), zap.Int("min", fetch.MinContentLength))

		render := fetch.RenderOptions{}
		if platform != fetch.PlatformUnknown && len(contentSelectors) > 0 {
			render.WaitFor = contentSelectors[0]
		}
		browserHTML, browserErr := fetch.Render(ctx, urlStr, render, logger)
		if browserErr != nil {
			// Keep the HTTP content
			logger.Warn("browser rendering failed", zap.Error(browserErr))
		} else if rendered, extractErr := fetch.ExtractMainText(browserHTML, contentSelectors, noiseSelectors...); extractErr != nil {
			logger.Warn("browser content extraction failed", zap.Error(extractErr))
		} else {
			textContent = rendered
			if title == "" {
				title = fetch.ExtractTitle(browserHTML)
			}
		}
	}

	cleanedText := CleanText(textContent)
	if cleanedText == "" {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, ErrEmptySample)
	}

	metadata := NewMetadata(cleanedText, urlStr)
	metadata.Platform = string(platform)
	metadata.Title = title
	logger.Debug("imported writing sample", zap.Int("words", metadata.WordCount), zap.String("title", title))

	return cleanedText, metadata, nil
}
