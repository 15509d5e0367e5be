package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashVisitor creates a SHA256 hash of IP address and user agent.
// This is used to identify unique visitors without storing raw IPs
// in aggregate tables.
func HashVisitor(ip, userAgent string) string {
	hash := sha256.Sum256([]byte(ip + userAgent))
	return hex.EncodeToString(hash[:])
}
