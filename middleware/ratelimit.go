package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"url-shortener-service/utils"
)

// Counter is a windowed counter backend (Redis in production).
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit limits requests per client IP and path using a windowed
// counter. Counter failures fail open: availability wins over
// enforcement.
func RateLimit(counter Counter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ExtractIP(r)
			key := fmt.Sprintf("ratelimit:%s:%s", ip, r.URL.Path)

			count, err := counter.Incr(r.Context(), key, window)
			if err != nil {
				log.Printf("Rate limit check failed: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(limit) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"success":false,"message":"Rate limit exceeded"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
