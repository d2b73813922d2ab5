package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// documentsSchema creates the documents table. Idempotent; applied at
// startup by the serve command.
const documentsSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id                 UUID PRIMARY KEY,
	url                TEXT NOT NULL,
	instructions       TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT 'pending',
	title              TEXT NOT NULL DEFAULT '',
	scraped_content    TEXT NOT NULL DEFAULT '',
	analysis_summary   TEXT NOT NULL DEFAULT '',
	analysis_blocks    JSONB NOT NULL DEFAULT '[]',
	error_detail       TEXT,
	word_count         INTEGER NOT NULL DEFAULT 0,
	pages_crawled      INTEGER NOT NULL DEFAULT 0,
	processing_time_ms BIGINT NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents (status);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, documentsSchema); err != nil {
		return fmt.Errorf("apply documents schema: %w", err)
	}
	return nil
}
