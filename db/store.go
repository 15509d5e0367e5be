package db

import (
	"context"
	"time"

	"url-shortener-service/models"
)

// Store is the persistence contract for URL mappings and their click
// history. PostgresDB is the production implementation; tests use
// in-memory fakes.
type Store interface {
	Ping(ctx context.Context) error

	// CreateURL inserts a new mapping with a zero click count. Returns
	// a DuplicateCodeError when the short code is already taken.
	CreateURL(ctx context.Context, url *models.Url) error

	// GetURLByCode returns the mapping for a code. Missing and expired
	// codes both return a NotFoundError; expired rows are kept.
	GetURLByCode(ctx context.Context, shortCode string) (*models.Url, error)

	// CodeExists reports whether a code is taken, expired rows included.
	CodeExists(ctx context.Context, shortCode string) (bool, error)

	// GetAllURLs returns every mapping, newest first (cache warm-up).
	GetAllURLs(ctx context.Context) ([]*models.Url, error)

	// ListURLs returns summaries ordered by created_at descending.
	// limit is clamped to MaxListLimit.
	ListURLs(ctx context.Context, limit, offset int) ([]*models.UrlSummary, error)

	// GetClickHistory returns the full chronological visit list for a
	// code, expired mappings included. Unknown codes return NotFoundError.
	GetClickHistory(ctx context.Context, shortCode string) ([]models.Click, error)

	// GetURLStats returns aggregate counters for a code, expired
	// mappings included. Unknown codes return NotFoundError.
	GetURLStats(ctx context.Context, shortCode string) (*models.UrlStats, error)

	// RecordClick appends one visit and increments total_clicks in a
	// single transaction. Missing or expired codes return NotFoundError.
	RecordClick(ctx context.Context, shortCode string, visit models.ClickInput, ts time.Time) error

	// BatchRecordClicks is the worker path: appends a batch of visits
	// and bumps the affected counters transactionally. Events against
	// unknown or expired codes are skipped, not errors.
	BatchRecordClicks(ctx context.Context, events []models.ClickEvent) error
}

// MaxListLimit caps the number of summaries a single list call returns.
const MaxListLimit = 100
