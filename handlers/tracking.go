package handlers

import (
	"log"
	"net/http"
	"strings"

	"url-shortener-service/db"
	"url-shortener-service/models"
	"url-shortener-service/utils"
)

// TrackClick handles POST /api/track/{shortCode} - explicit click
// recording for frontends that resolve links themselves. Unlike the
// redirect path this records synchronously: the caller asked for the
// write, so it sees NotFound, but storage hiccups are still swallowed.
func TrackClick(store db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/api")
		path = strings.TrimPrefix(path, "/track")
		shortCode := utils.ExtractShortCode(path)
		if shortCode == "" {
			writeError(w, http.StatusBadRequest, "Short code required")
			return
		}

		event := buildClickEvent(r, shortCode)
		if err := store.RecordClick(r.Context(), shortCode, event.Visit, event.Timestamp); err != nil {
			if models.IsNotFound(err) {
				writeError(w, http.StatusNotFound, "Short URL not found")
				return
			}
			// Analytics loss is not the caller's problem.
			log.Printf("Error recording click for %s: %v", shortCode, err)
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"status":  "tracked",
		})
	}
}
