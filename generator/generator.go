// Package generator allocates short codes, either by synthesizing
// them locally or by delegating to an external issuer.
package generator

import (
	"context"
	"fmt"
	"log"
	"strings"

	gonanoid "github.com/jaevor/go-nanoid"

	"url-shortener-service/config"
	"url-shortener-service/issuer"
	"url-shortener-service/models"
)

const (
	alphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	maxAttempts = 5
)

// CodeChecker is the slice of the store the local strategy needs.
// Existence must include expired mappings: a code stays taken forever.
type CodeChecker interface {
	CodeExists(ctx context.Context, shortCode string) (bool, error)
}

// Result is an allocated short code. ShortURL is set only when an
// external issuer produced the full link.
type Result struct {
	Code     string
	ShortURL string
	External bool
}

// Service picks codes per the configured strategy.
type Service struct {
	strategy string
	store    CodeChecker
	issuer   issuer.Client
	newCode  func() string
	fallback bool
}

func New(cfg *config.Config, store CodeChecker, issuerClient issuer.Client) (*Service, error) {
	newCode, err := gonanoid.CustomASCII(alphabet, cfg.CodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to build code generator: %w", err)
	}
	if cfg.Strategy == config.StrategyExternal && issuerClient == nil {
		return nil, fmt.Errorf("external strategy requires an issuer client")
	}
	return &Service{
		strategy: cfg.Strategy,
		store:    store,
		issuer:   issuerClient,
		newCode:  newCode,
		fallback: cfg.FallbackToLocal,
	}, nil
}

// Issue obtains a short code for originalURL. External issuer codes
// are authoritative and skip the local uniqueness check.
func (s *Service) Issue(ctx context.Context, originalURL string) (*Result, error) {
	if s.strategy == config.StrategyExternal {
		res, err := s.issueExternal(ctx, originalURL)
		if err == nil {
			return res, nil
		}
		if !s.fallback {
			return nil, err
		}
		log.Printf("Issuer failed, falling back to local synthesis: %v", err)
	}
	return s.issueLocal(ctx)
}

func (s *Service) issueExternal(ctx context.Context, originalURL string) (*Result, error) {
	shortURL, err := s.issuer.Issue(ctx, originalURL)
	if err != nil {
		return nil, err
	}
	return &Result{
		Code:     codeFromShortURL(shortURL),
		ShortURL: shortURL,
		External: true,
	}, nil
}

func (s *Service) issueLocal(ctx context.Context) (*Result, error) {
	for i := 0; i < maxAttempts; i++ {
		code := s.newCode()
		exists, err := s.store.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check code availability: %w", err)
		}
		if !exists {
			return &Result{Code: code}, nil
		}
	}
	return nil, &models.CodeExhaustedError{Attempts: maxAttempts}
}

// codeFromShortURL extracts the trailing path segment of an issuer
// link, e.g. https://is.gd/abc123 -> abc123. The code is opaque; no
// format check applies to externally issued codes.
func codeFromShortURL(shortURL string) string {
	trimmed := strings.TrimSuffix(shortURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
