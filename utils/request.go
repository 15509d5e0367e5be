package utils

import (
	"net/http"
	"strings"
)

// ExtractIP extracts the client IP address from the request.
// Handles X-Forwarded-For header for proxied requests
func ExtractIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// ExtractGeo pulls best-effort country and city from CDN-injected
// headers. Returns empty strings when no proxy geo data is present.
func ExtractGeo(r *http.Request) (country, city string) {
	country = r.Header.Get("CF-IPCountry")
	if country == "" {
		country = r.Header.Get("CloudFront-Viewer-Country")
	}
	if country == "" {
		country = r.Header.Get("X-Geo-Country")
	}
	city = r.Header.Get("CF-IPCity")
	if city == "" {
		city = r.Header.Get("X-Geo-City")
	}
	return country, city
}

// ExtractShortCode extracts the short code from the URL path.
// Expects path format: /{shortCode}
func ExtractShortCode(path string) string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	parts := strings.Split(path, "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}
