package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"url-shortener-service/models"
)

// uniqueViolation is the Postgres error code for unique constraint hits.
const uniqueViolation = "23505"

type PostgresDB struct {
	db *sql.DB
}

var _ Store = (*PostgresDB)(nil)

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{db: db}, nil
}

func (p *PostgresDB) Close() error {
	return p.db.Close()
}

// Ping checks database connectivity
func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresDB) CreateURL(ctx context.Context, url *models.Url) error {
	query := `INSERT INTO urls (short_code, original_url, is_external, total_clicks, created_at, expires_at)
	          VALUES ($1, $2, $3, 0, $4, $5) RETURNING id, created_at`

	err := p.db.QueryRowContext(ctx, query, url.ShortCode, url.OriginalURL, url.IsExternal,
		time.Now(), url.ExpiresAt).Scan(&url.ID, &url.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &models.DuplicateCodeError{ShortCode: url.ShortCode}
		}
		return fmt.Errorf("failed to create url: %w", err)
	}
	url.TotalClicks = 0
	return nil
}

func (p *PostgresDB) GetURLByCode(ctx context.Context, shortCode string) (*models.Url, error) {
	query := `SELECT id, short_code, original_url, is_external, total_clicks, created_at, expires_at
	          FROM urls WHERE short_code = $1`

	url := &models.Url{}
	err := p.db.QueryRowContext(ctx, query, shortCode).
		Scan(&url.ID, &url.ShortCode, &url.OriginalURL, &url.IsExternal,
			&url.TotalClicks, &url.CreatedAt, &url.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Message: "short code not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get url: %w", err)
	}
	// Soft expiry: the row stays, lookups stop resolving.
	if url.Expired(time.Now()) {
		return nil, &models.NotFoundError{Message: "short code expired"}
	}
	return url, nil
}

func (p *PostgresDB) CodeExists(ctx context.Context, shortCode string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM urls WHERE short_code = $1)`, shortCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

// GetAllURLs retrieves all mappings (for cache pre-population)
func (p *PostgresDB) GetAllURLs(ctx context.Context) ([]*models.Url, error) {
	query := `SELECT id, short_code, original_url, is_external, total_clicks, created_at, expires_at
	          FROM urls ORDER BY created_at DESC`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query urls: %w", err)
	}
	defer rows.Close()

	var urls []*models.Url
	for rows.Next() {
		url := &models.Url{}
		if err := rows.Scan(&url.ID, &url.ShortCode, &url.OriginalURL, &url.IsExternal,
			&url.TotalClicks, &url.CreatedAt, &url.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return urls, nil
}

func (p *PostgresDB) ListURLs(ctx context.Context, limit, offset int) ([]*models.UrlSummary, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT original_url, short_code, total_clicks, created_at, expires_at
	          FROM urls ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := p.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query urls: %w", err)
	}
	defer rows.Close()

	summaries := make([]*models.UrlSummary, 0, limit)
	for rows.Next() {
		s := &models.UrlSummary{}
		if err := rows.Scan(&s.OriginalURL, &s.ShortCode, &s.TotalClicks,
			&s.CreatedAt, &s.ExpiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan url summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return summaries, nil
}

func (p *PostgresDB) GetClickHistory(ctx context.Context, shortCode string) ([]models.Click, error) {
	// History stays readable after expiry, so resolve without the
	// expiry check used by GetURLByCode.
	var urlID int64
	err := p.db.QueryRowContext(ctx, `SELECT id FROM urls WHERE short_code = $1`, shortCode).
		Scan(&urlID)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Message: "short code not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve url: %w", err)
	}

	query := `SELECT id, clicked_at, ip, country, city, device, browser, os, referer
	          FROM clicks WHERE url_id = $1 ORDER BY clicked_at ASC, id ASC`

	rows, err := p.db.QueryContext(ctx, query, urlID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clicks: %w", err)
	}
	defer rows.Close()

	clicks := []models.Click{}
	for rows.Next() {
		var c models.Click
		if err := rows.Scan(&c.ID, &c.Timestamp, &c.IP, &c.Country, &c.City,
			&c.Device, &c.Browser, &c.OS, &c.Referer); err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		clicks = append(clicks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return clicks, nil
}

func (p *PostgresDB) GetURLStats(ctx context.Context, shortCode string) (*models.UrlStats, error) {
	query := `SELECT u.total_clicks, COUNT(DISTINCT NULLIF(c.visitor_hash, ''))
	          FROM urls u LEFT JOIN clicks c ON c.url_id = u.id
	          WHERE u.short_code = $1
	          GROUP BY u.id`

	stats := &models.UrlStats{ShortCode: shortCode}
	err := p.db.QueryRowContext(ctx, query, shortCode).
		Scan(&stats.TotalClicks, &stats.UniqueVisitors)
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Message: "short code not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get url stats: %w", err)
	}
	return stats, nil
}

func (p *PostgresDB) RecordClick(ctx context.Context, shortCode string, visit models.ClickInput, ts time.Time) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var urlID int64
	var expiresAt *time.Time
	err = tx.QueryRowContext(ctx, `SELECT id, expires_at FROM urls WHERE short_code = $1`, shortCode).
		Scan(&urlID, &expiresAt)
	if err == sql.ErrNoRows {
		return &models.NotFoundError{Message: "short code not found"}
	}
	if err != nil {
		return fmt.Errorf("failed to resolve url: %w", err)
	}
	if expiresAt != nil && expiresAt.Before(time.Now()) {
		return &models.NotFoundError{Message: "short code expired"}
	}

	if err := insertClick(ctx, tx, urlID, visit, ts); err != nil {
		return err
	}

	// The append and the increment share one transaction, so
	// total_clicks never drifts from the history length.
	if _, err := tx.ExecContext(ctx,
		`UPDATE urls SET total_clicks = total_clicks + 1 WHERE id = $1`, urlID); err != nil {
		return fmt.Errorf("failed to increment total_clicks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (p *PostgresDB) BatchRecordClicks(ctx context.Context, events []models.ClickEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Resolve each distinct code once per batch.
	ids := make(map[string]int64)
	counts := make(map[int64]int64)

	for _, event := range events {
		urlID, ok := ids[event.ShortCode]
		if !ok {
			var expiresAt *time.Time
			err := tx.QueryRowContext(ctx,
				`SELECT id, expires_at FROM urls WHERE short_code = $1`, event.ShortCode).
				Scan(&urlID, &expiresAt)
			if err == sql.ErrNoRows {
				// Code disappeared or never existed; skip the event.
				ids[event.ShortCode] = -1
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to resolve url: %w", err)
			}
			if expiresAt != nil && expiresAt.Before(time.Now()) {
				ids[event.ShortCode] = -1
				continue
			}
			ids[event.ShortCode] = urlID
		}
		if urlID = ids[event.ShortCode]; urlID < 0 {
			continue
		}

		if err := insertClick(ctx, tx, urlID, event.Visit, event.Timestamp); err != nil {
			return err
		}
		counts[urlID]++
	}

	for urlID, n := range counts {
		if _, err := tx.ExecContext(ctx,
			`UPDATE urls SET total_clicks = total_clicks + $2 WHERE id = $1`, urlID, n); err != nil {
			return fmt.Errorf("failed to increment total_clicks: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertClick(ctx context.Context, tx *sql.Tx, urlID int64, visit models.ClickInput, ts time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO clicks (url_id, clicked_at, ip, country, city, device, browser, os, referer, visitor_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		urlID, ts, visit.IP, visit.Country, visit.City, visit.Device, visit.Browser,
		visit.OS, visit.Referer, visit.VisitorHash)
	if err != nil {
		return fmt.Errorf("failed to insert click: %w", err)
	}
	return nil
}
