// Package fetch - platform.go provides platform detection and platform-specific selectors.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known publishing platform.
type Platform string

const (
	// PlatformMedium is medium.com and its custom subdomains
	PlatformMedium Platform = "medium"
	// PlatformSubstack is a Substack newsletter
	PlatformSubstack Platform = "substack"
	// PlatformLinkedIn is a LinkedIn article or post
	PlatformLinkedIn Platform = "linkedin"
	// PlatformGhost is a Ghost-hosted blog
	PlatformGhost Platform = "ghost"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// DetectPlatform identifies the publishing platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)

	switch {
	case host == "medium.com" || strings.HasSuffix(host, ".medium.com"):
		return PlatformMedium
	case strings.HasSuffix(host, "substack.com"):
		return PlatformSubstack
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		return PlatformLinkedIn
	case strings.HasSuffix(host, ".ghost.io"):
		return PlatformGhost
	}

	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors optimized for a specific platform.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformMedium:
		return []string{
			"[data-testid='storyContent']",
			"article",
			"main",
		}
	case PlatformSubstack:
		return []string{
			".available-content",
			".body.markup",
			"article",
		}
	case PlatformLinkedIn:
		return []string{
			".article-main__content",
			".reader-article-content",
			"article",
			"main",
		}
	case PlatformGhost:
		return []string{
			".gh-content",
			".post-content",
			"article",
		}
	default:
		return ArticleSelectors()
	}
}

// PlatformNoiseSelectors returns noise exclusion selectors for a specific platform.
func PlatformNoiseSelectors(platform Platform) []string {
	common := []string{
		// Newsletter and signup prompts
		"form",
		".subscribe",
		".subscribe-widget",
		".newsletter-signup",

		// Comments and related content
		".comments",
		"#comments",
		".related-posts",

		// Social and share buttons
		".social-share",
		".share-buttons",

		// Cookie and GDPR
		".cookie-banner",
		".cookie-consent",
	}

	switch platform {
	case PlatformMedium:
		return append(common,
			"[data-testid='headerClapButton']",
			".pw-responses",
		)
	case PlatformSubstack:
		return append(common,
			".subscription-widget-wrap",
			".post-footer",
			".comments-section",
		)
	case PlatformLinkedIn:
		return append(common,
			".article-main__related-articles",
			".comments-comments-list",
		)
	case PlatformGhost:
		return append(common,
			".gh-subscribe",
			".gh-comments",
		)
	default:
		return common
	}
}
