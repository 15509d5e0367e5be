package models

import "time"

// Url represents a short code to original URL mapping
type Url struct {
	ID          int64      `json:"id"`
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	IsExternal  bool       `json:"is_external"`
	TotalClicks int64      `json:"total_clicks"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the mapping is past its expiry time.
// Mappings without an expiry never expire.
func (u *Url) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && u.ExpiresAt.Before(now)
}

// UrlSummary is the list-endpoint projection of a mapping.
// It carries the aggregate click count but never the history itself.
type UrlSummary struct {
	OriginalURL string     `json:"originalUrl"`
	ShortCode   string     `json:"shortCode"`
	TotalClicks int64      `json:"totalClicks"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// Click is one recorded visit against a mapping
type Click struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip,omitempty"`
	Country   string    `json:"country,omitempty"`
	City      string    `json:"city,omitempty"`
	Device    string    `json:"device,omitempty"`
	Browser   string    `json:"browser,omitempty"`
	OS        string    `json:"os,omitempty"`
	Referer   string    `json:"referer,omitempty"`
}

// ClickInput carries the best-effort visit attributes captured at
// redirect time. Every field is optional. VisitorHash feeds the
// unique-visitor aggregate and is never exposed in history payloads.
type ClickInput struct {
	IP          string `json:"ip"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Device      string `json:"device"`
	Browser     string `json:"browser"`
	OS          string `json:"os"`
	Referer     string `json:"referer"`
	VisitorHash string `json:"visitor_hash"`
}

// UrlStats is the aggregate view exposed by the stats endpoint
type UrlStats struct {
	ShortCode      string `json:"shortCode"`
	TotalClicks    int64  `json:"totalClicks"`
	UniqueVisitors int64  `json:"uniqueVisitors"`
}

// ClickEvent is a queued click waiting for the analytics workers
type ClickEvent struct {
	ShortCode string     `json:"short_code"`
	Timestamp time.Time  `json:"timestamp"`
	Visit     ClickInput `json:"visit"`
}
