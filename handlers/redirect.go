package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"url-shortener-service/db"
	"url-shortener-service/models"
	"url-shortener-service/utils"
)

// Cache is the shared second cache tier behind the in-process one
// (Redis in production).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

const cacheTTL = time.Hour

// l1Cache is an in-memory cache for hot mappings. sync.Map suits the
// read-heavy redirect workload; entries carry their expiry so an
// expired mapping is never served from cache.
var l1Cache sync.Map

// lookupGroup collapses concurrent store lookups for the same code on
// cache misses.
var lookupGroup singleflight.Group

type cacheEntry struct {
	originalURL string
	expiresAt   *time.Time
}

// cachedLink is the shared-cache value. The expiry rides along with
// the URL so a hit promoted into L1 keeps the mapping's real
// lifetime instead of living forever.
type cachedLink struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (e cacheEntry) expired(now time.Time) bool {
	return e.expiresAt != nil && e.expiresAt.Before(now)
}

func getFromL1Cache(shortCode string) (string, bool) {
	val, ok := l1Cache.Load(shortCode)
	if !ok {
		return "", false
	}
	entry, ok := val.(cacheEntry)
	if !ok {
		return "", false
	}
	if entry.expired(time.Now()) {
		l1Cache.Delete(shortCode)
		return "", false
	}
	return entry.originalURL, true
}

// SetL1Cache stores a mapping in the in-memory cache.
func SetL1Cache(shortCode, originalURL string, expiresAt *time.Time) {
	l1Cache.Store(shortCode, cacheEntry{originalURL: originalURL, expiresAt: expiresAt})
}

// ResetL1Cache drops all cached mappings (test hook).
func ResetL1Cache() {
	l1Cache.Range(func(key, _ interface{}) bool {
		l1Cache.Delete(key)
		return true
	})
}

// PrePopulateL1Cache loads all live mappings into the in-memory cache
// at startup so most redirects never touch the database.
func PrePopulateL1Cache(store db.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	urls, err := store.GetAllURLs(ctx)
	if err != nil {
		log.Printf("Warning: failed to pre-populate L1 cache: %v", err)
		return
	}

	count := 0
	now := time.Now()
	for _, url := range urls {
		if url.Expired(now) {
			continue
		}
		SetL1Cache(url.ShortCode, url.OriginalURL, url.ExpiresAt)
		count++
	}

	log.Printf("Pre-populated L1 cache with %d mappings", count)
}

// redisTTL bounds the shared-cache TTL so an entry never outlives the
// mapping's expiry.
func redisTTL(expiresAt *time.Time) time.Duration {
	if expiresAt == nil {
		return cacheTTL
	}
	remaining := time.Until(*expiresAt)
	if remaining < cacheTTL {
		return remaining
	}
	return cacheTTL
}

// HandleRedirect handles GET /{shortCode} (critical path).
// The redirect response never waits on analytics writes.
func HandleRedirect(store db.Store, cache Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := utils.ExtractShortCode(r.URL.Path)
		if shortCode == "" {
			http.NotFound(w, r)
			return
		}

		originalURL, found := getFromL1Cache(shortCode)
		if !found {
			url, err := lookupURL(r.Context(), store, cache, shortCode)
			if err != nil {
				if models.IsNotFound(err) {
					http.NotFound(w, r)
					return
				}
				log.Printf("Error resolving short code %s: %v", shortCode, err)
				writeError(w, http.StatusInternalServerError, "Server error")
				return
			}
			originalURL = url
		}

		// Respond before any bookkeeping; direct header write beats
		// http.Redirect on this path.
		w.Header().Set("Location", originalURL)
		w.WriteHeader(http.StatusFound)

		// Analytics are fire-and-forget from the client's perspective.
		EnqueueClick(buildClickEvent(r, shortCode))
	}
}

// lookupURL resolves a cache miss: Redis tier first, then the store,
// with singleflight collapsing concurrent misses for one code.
func lookupURL(ctx context.Context, store db.Store, cache Cache, shortCode string) (string, error) {
	val, err, _ := lookupGroup.Do(shortCode, func() (interface{}, error) {
		if cache != nil {
			if raw, err := cache.Get(ctx, "link:"+shortCode); err == nil {
				var link cachedLink
				if err := json.Unmarshal([]byte(raw), &link); err == nil && link.URL != "" {
					entry := cacheEntry{originalURL: link.URL, expiresAt: link.ExpiresAt}
					if !entry.expired(time.Now()) {
						SetL1Cache(shortCode, link.URL, link.ExpiresAt)
						return link.URL, nil
					}
					// Expired in cache; fall through to the store so
					// the lookup fails the same way an uncached one does.
				}
			}
		}

		queryCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()

		url, err := store.GetURLByCode(queryCtx, shortCode)
		if err != nil {
			return "", err
		}

		SetL1Cache(shortCode, url.OriginalURL, url.ExpiresAt)
		if cache != nil {
			go func(link cachedLink) {
				payload, err := json.Marshal(link)
				if err != nil {
					return
				}
				bgCtx, bgCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer bgCancel()
				if err := cache.Set(bgCtx, "link:"+shortCode, string(payload), redisTTL(link.ExpiresAt)); err != nil {
					log.Printf("Warning: failed to cache %s: %v", shortCode, err)
				}
			}(cachedLink{URL: url.OriginalURL, ExpiresAt: url.ExpiresAt})
		}
		return url.OriginalURL, nil
	})
	if err != nil {
		return "", err
	}
	return val.(string), nil
}
