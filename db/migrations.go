package db

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it does not exist. short_code carries
// the unique constraint that decides creation races; created_at is
// indexed for the newest-first list ordering.
func (p *PostgresDB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS urls (
			id            BIGSERIAL PRIMARY KEY,
			short_code    TEXT NOT NULL UNIQUE,
			original_url  TEXT NOT NULL,
			is_external   BOOLEAN NOT NULL DEFAULT FALSE,
			total_clicks  BIGINT NOT NULL DEFAULT 0 CHECK (total_clicks >= 0),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at    TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_urls_created_at ON urls (created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS clicks (
			id          BIGSERIAL PRIMARY KEY,
			url_id      BIGINT NOT NULL REFERENCES urls(id),
			clicked_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ip          TEXT NOT NULL DEFAULT '',
			country     TEXT NOT NULL DEFAULT '',
			city        TEXT NOT NULL DEFAULT '',
			device      TEXT NOT NULL DEFAULT '',
			browser     TEXT NOT NULL DEFAULT '',
			os          TEXT NOT NULL DEFAULT '',
			referer     TEXT NOT NULL DEFAULT '',
			visitor_hash TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clicks_url_id ON clicks (url_id, clicked_at)`,
	}

	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
