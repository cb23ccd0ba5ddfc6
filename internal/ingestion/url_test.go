package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestImportFromURL_InvalidURL(t *testing.T) {
	tests := []struct {
		name   string
		urlStr string
	}{
		{"empty URL", ""},
		{"malformed URL", "not-a-url"},
		{"no scheme", "example.com"},
		{"no host", "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ImportFromURL(context.Background(), tt.urlStr, ImportOptions{})
			assert.True(t, errors.Is(err, ErrHTTPRequestFailed))
		})
	}
}

func TestImportFromURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><meta property="og:title" content="What I learned shipping weekly"></head>
<body>
<nav>Nav</nav>
<article>
<h1>What I learned shipping weekly</h1>
<p>Honestly,   the cadence mattered more than the features.</p>
<div class="social-share">Share on X</div>
</article>
<section class="comments">Nice!</section>
<footer>Footer</footer>
</body>
</html>`))
	}))
	defer server.Close()

	text, metadata, err := ImportFromURL(context.Background(), server.URL, ImportOptions{Logger: zap.NewNop()})
	require.NoError(t, err)

	assert.Equal(t, "What I learned shipping weekly\n\nHonestly, the cadence mattered more than the features.", text)
	assert.NotContains(t, text, "Share on X")
	assert.Equal(t, server.URL, metadata.URL)
	assert.Equal(t, "unknown", metadata.Platform)
	assert.Equal(t, "What I learned shipping weekly", metadata.Title)
	assert.Equal(t, fingerprint(strings.Fields(text)), metadata.Hash)
}

func TestImportFromURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, metadata, err := ImportFromURL(context.Background(), server.URL, ImportOptions{})
	assert.True(t, errors.Is(err, ErrHTTPRequestFailed))
	assert.Nil(t, metadata)
}

func TestImportFromURL_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><nav>only navigation</nav></body></html>`))
	}))
	defer server.Close()

	_, _, err := ImportFromURL(context.Background(), server.URL, ImportOptions{})
	assert.True(t, errors.Is(err, ErrContentExtractionFailed))
	assert.True(t, errors.Is(err, ErrEmptySample))
}
