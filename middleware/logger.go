package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type logEntry struct {
	RequestID  string  `json:"request_id"`
	Method     string  `json:"method"`
	Path       string  `json:"path"`
	Status     int     `json:"status"`
	DurationMS float64 `json:"duration_ms"`
	RemoteAddr string  `json:"remote_addr"`
}

// Logger middleware logs HTTP requests as JSON lines, tagging each
// request with an ID echoed in the X-Request-ID header.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip health checks (noise)
		path := r.URL.Path
		if path == "/health" || path == "/ready" {
			next.ServeHTTP(w, r)
			return
		}

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		entry := logEntry{
			RequestID:  requestID,
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     wrapped.statusCode,
			DurationMS: float64(time.Since(start).Microseconds()) / 1000,
			RemoteAddr: r.RemoteAddr,
		}

		jsonData, _ := json.Marshal(entry)
		log.Println(string(jsonData))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
