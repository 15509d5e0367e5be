package utils

import "strings"

// ParseUserAgent extracts device class, browser and OS from a raw
// User-Agent header. Parsing is best-effort: unrecognized agents
// return empty strings and never block click recording.
func ParseUserAgent(ua string) (device, browser, os string) {
	if ua == "" {
		return "", "", ""
	}
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		device = "tablet"
	case strings.Contains(lower, "mobi") || strings.Contains(lower, "iphone") ||
		strings.Contains(lower, "android"):
		device = "mobile"
	case strings.Contains(lower, "bot") || strings.Contains(lower, "spider") ||
		strings.Contains(lower, "crawl"):
		device = "bot"
	default:
		device = "desktop"
	}

	// Order matters: Edge and Opera embed "Chrome", Chrome embeds "Safari".
	switch {
	case strings.Contains(lower, "edg/") || strings.Contains(lower, "edge/"):
		browser = "Edge"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera"):
		browser = "Opera"
	case strings.Contains(lower, "firefox/"):
		browser = "Firefox"
	case strings.Contains(lower, "chrome/") || strings.Contains(lower, "crios/"):
		browser = "Chrome"
	case strings.Contains(lower, "safari/"):
		browser = "Safari"
	case strings.Contains(lower, "curl/"):
		browser = "curl"
	}

	switch {
	case strings.Contains(lower, "windows"):
		os = "Windows"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") ||
		strings.Contains(lower, "ios"):
		os = "iOS"
	case strings.Contains(lower, "mac os") || strings.Contains(lower, "macintosh"):
		os = "macOS"
	case strings.Contains(lower, "android"):
		os = "Android"
	case strings.Contains(lower, "linux"):
		os = "Linux"
	}

	return device, browser, os
}
