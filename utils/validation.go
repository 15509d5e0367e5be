package utils

import (
	"net/url"
	"regexp"
	"strings"

	"url-shortener-service/models"
)

var shortCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// NormalizeURL trims whitespace and prepends http:// when no scheme
// is present. It never fails; validation happens separately.
func NormalizeURL(raw string) string {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return normalized
	}
	if !strings.Contains(normalized, "://") {
		normalized = "http://" + normalized
	}
	return normalized
}

// ValidateURL normalizes raw input and checks it is a well-formed
// http/https URL. Returns the normalized URL or a ValidationError.
func ValidateURL(raw string) (string, error) {
	normalized := NormalizeURL(raw)
	if normalized == "" {
		return "", &models.ValidationError{Message: "Original URL is required"}
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", &models.ValidationError{Message: "Invalid URL format"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &models.ValidationError{Message: "URL must use http or https"}
	}
	if u.Host == "" {
		return "", &models.ValidationError{Message: "URL must have a host"}
	}
	return normalized, nil
}

// IsValidShortCode reports whether code is 3-20 characters of
// [A-Za-z0-9_-].
func IsValidShortCode(code string) bool {
	return shortCodeRe.MatchString(code)
}
