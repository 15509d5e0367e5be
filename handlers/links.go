package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"url-shortener-service/db"
	"url-shortener-service/models"
)

type ListURLsResponse struct {
	Success bool                 `json:"success"`
	Count   int                  `json:"count"`
	Urls    []*models.UrlSummary `json:"urls"`
}

type ClickHistoryResponse struct {
	Success   bool           `json:"success"`
	ShortCode string         `json:"shortCode"`
	Count     int            `json:"count"`
	Clicks    []models.Click `json:"clicks"`
}

// ListURLs handles GET /api/urls?limit=&offset=
func ListURLs(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		limit := queryInt(r, "limit", db.MaxListLimit)
		offset := queryInt(r, "offset", 0)

		urls, err := store.ListURLs(r.Context(), limit, offset)
		if err != nil {
			log.Printf("Error fetching URLs: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error while fetching URLs")
			return
		}

		writeJSON(w, http.StatusOK, ListURLsResponse{
			Success: true,
			Count:   len(urls),
			Urls:    urls,
		})
	}
}

// GetClickHistory handles GET /api/urls/{shortCode}/clicks
func GetClickHistory(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		// Path shape: /api/urls/{shortCode}/clicks
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		var shortCode string
		if len(parts) >= 4 && parts[0] == "api" && parts[1] == "urls" && parts[3] == "clicks" {
			shortCode = parts[2]
		} else if len(parts) >= 3 && parts[0] == "urls" && parts[2] == "clicks" {
			shortCode = parts[1]
		}
		if shortCode == "" {
			writeError(w, http.StatusBadRequest, "Short code required")
			return
		}

		clicks, err := store.GetClickHistory(r.Context(), shortCode)
		if err != nil {
			if models.IsNotFound(err) {
				writeError(w, http.StatusNotFound, "Short URL not found")
				return
			}
			log.Printf("Error fetching click history: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error while fetching click history")
			return
		}

		writeJSON(w, http.StatusOK, ClickHistoryResponse{
			Success:   true,
			ShortCode: shortCode,
			Count:     len(clicks),
			Clicks:    clicks,
		})
	}
}

// GetURLStats handles GET /api/urls/{shortCode}/stats
func GetURLStats(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		var shortCode string
		if len(parts) >= 4 && parts[0] == "api" && parts[1] == "urls" && parts[3] == "stats" {
			shortCode = parts[2]
		} else if len(parts) >= 3 && parts[0] == "urls" && parts[2] == "stats" {
			shortCode = parts[1]
		}
		if shortCode == "" {
			writeError(w, http.StatusBadRequest, "Short code required")
			return
		}

		stats, err := store.GetURLStats(r.Context(), shortCode)
		if err != nil {
			if models.IsNotFound(err) {
				writeError(w, http.StatusNotFound, "Short URL not found")
				return
			}
			log.Printf("Error fetching url stats: %v", err)
			writeError(w, http.StatusInternalServerError, "Server error while fetching stats")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"stats":   stats,
		})
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
