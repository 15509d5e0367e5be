package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"url-shortener-service/db"
	"url-shortener-service/generator"
	"url-shortener-service/models"
	"url-shortener-service/utils"
)

// CodeIssuer abstracts the generator so the handler can be tested
// with a fake allocation strategy.
type CodeIssuer interface {
	Issue(ctx context.Context, originalURL string) (*generator.Result, error)
}

type CreateRequest struct {
	OriginalURL string     `json:"originalUrl"`
	CustomCode  string     `json:"customCode,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type CreateResponse struct {
	Success     bool   `json:"success"`
	ShortURL    string `json:"shortUrl"`
	ShortCode   string `json:"shortCode"`
	OriginalURL string `json:"originalUrl"`
	IsExternal  bool   `json:"isExternal"`
}

// createRetries bounds insert attempts when a locally generated code
// loses the uniqueness race at the store.
const createRetries = 5

// CreateShortURL handles POST /api/shorten
func CreateShortURL(store db.Store, gen CodeIssuer, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		normalized, err := utils.ValidateURL(req.OriginalURL)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
			writeError(w, http.StatusBadRequest, "expiresAt must be in the future")
			return
		}

		if req.CustomCode != "" {
			createWithCustomCode(w, r, store, baseURL, normalized, req)
			return
		}

		result, err := gen.Issue(r.Context(), normalized)
		if err != nil {
			respondIssueError(w, err)
			return
		}

		url := &models.Url{
			ShortCode:   result.Code,
			OriginalURL: normalized,
			IsExternal:  result.External,
			ExpiresAt:   req.ExpiresAt,
		}

		if result.External {
			// The issuer guarantees uniqueness and the external link works
			// whether or not we persist it. A failed save is logged and the
			// caller still gets a working short URL (degraded success).
			if err := store.CreateURL(r.Context(), url); err != nil {
				log.Printf("Error saving externally issued mapping %s (might be duplicate): %v",
					result.Code, err)
			}
			writeJSON(w, http.StatusCreated, CreateResponse{
				Success:     true,
				ShortURL:    result.ShortURL,
				ShortCode:   result.Code,
				OriginalURL: normalized,
				IsExternal:  true,
			})
			return
		}

		// Local codes: the unique index decides races between concurrent
		// creations; regenerate and retry on collision.
		for attempt := 0; ; attempt++ {
			err := store.CreateURL(r.Context(), url)
			if err == nil {
				break
			}
			if !models.IsDuplicateCode(err) {
				log.Printf("Error creating short URL: %v", err)
				writeError(w, http.StatusInternalServerError, "Server error while creating short URL")
				return
			}
			if attempt == createRetries-1 {
				log.Printf("Failed to create short URL after %d retries", createRetries)
				writeError(w, http.StatusInternalServerError, "Server error while creating short URL")
				return
			}
			result, err = gen.Issue(r.Context(), normalized)
			if err != nil {
				respondIssueError(w, err)
				return
			}
			url.ShortCode = result.Code
		}

		writeJSON(w, http.StatusCreated, CreateResponse{
			Success:     true,
			ShortURL:    baseURL + "/" + url.ShortCode,
			ShortCode:   url.ShortCode,
			OriginalURL: normalized,
			IsExternal:  false,
		})
	}
}

func createWithCustomCode(w http.ResponseWriter, r *http.Request, store db.Store,
	baseURL, normalized string, req CreateRequest) {

	if !utils.IsValidShortCode(req.CustomCode) {
		writeError(w, http.StatusBadRequest,
			"Custom code must be 3-20 characters of letters, digits, hyphen or underscore")
		return
	}

	url := &models.Url{
		ShortCode:   req.CustomCode,
		OriginalURL: normalized,
		ExpiresAt:   req.ExpiresAt,
	}
	if err := store.CreateURL(r.Context(), url); err != nil {
		if models.IsDuplicateCode(err) {
			writeError(w, http.StatusConflict, "Short code already in use")
			return
		}
		log.Printf("Error creating short URL: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error while creating short URL")
		return
	}

	writeJSON(w, http.StatusCreated, CreateResponse{
		Success:     true,
		ShortURL:    baseURL + "/" + url.ShortCode,
		ShortCode:   url.ShortCode,
		OriginalURL: normalized,
		IsExternal:  false,
	})
}

// respondIssueError maps generator failures onto the API contract:
// provider-reported rejections pass the provider message through as a
// 400, transport failures are a 502, everything else is a generic 500.
func respondIssueError(w http.ResponseWriter, err error) {
	var issuerErr *models.IssuerError
	if errors.As(err, &issuerErr) {
		if issuerErr.Code != 0 {
			writeError(w, http.StatusBadRequest, issuerErr.Message)
			return
		}
		log.Printf("Issuer failure: %v", issuerErr)
		writeError(w, http.StatusBadGateway, "Short URL issuer unavailable")
		return
	}
	log.Printf("Error issuing short code: %v", err)
	writeError(w, http.StatusInternalServerError, "Server error while creating short URL")
}
