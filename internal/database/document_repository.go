package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/docify/internal/domain"
)

// ErrDocumentNotFound is returned when no document matches the given id.
var ErrDocumentNotFound = errors.New("document not found")

// documentColumns is the full column list used by SELECT queries.
const documentColumns = `id, url, instructions, status, title, scraped_content,
	analysis_summary, analysis_blocks, error_detail, word_count,
	pages_crawled, processing_time_ms, created_at, updated_at`

// DocumentRepository handles database operations for documents.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new pending document, assigning an id when missing.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.Status == "" {
		doc.Status = domain.StatusPending
	}
	if doc.AnalysisBlocks == nil {
		doc.AnalysisBlocks = domain.BlockList{}
	}

	query := `
		INSERT INTO documents (id, url, instructions, status, analysis_blocks)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		doc.ID,
		doc.URL,
		doc.Instructions,
		doc.Status,
		doc.AnalysisBlocks,
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by its id.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document

	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// ListFilters narrows List results.
type ListFilters struct {
	Status domain.Status
	Limit  int
	Offset int
}

// defaultListLimit bounds unfiltered listings.
const defaultListLimit = 50

// List returns documents newest first, optionally filtered by status.
func (r *DocumentRepository) List(ctx context.Context, filters ListFilters) ([]*domain.Document, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultListLimit
	}

	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []any{}

	if filters.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filters.Status)
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filters.Limit, filters.Offset)

	var docs []*domain.Document
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// ListStalePending returns pending documents older than the given age,
// oldest first. The reconciler uses this to find stuck runs.
func (r *DocumentRepository) ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3
	`

	cutoff := time.Now().Add(-olderThan)

	var docs []*domain.Document
	if err := r.db.SelectContext(ctx, &docs, query, domain.StatusPending, cutoff, limit); err != nil {
		return nil, fmt.Errorf("failed to list stale pending documents: %w", err)
	}

	return docs, nil
}

// UpdateStatus writes only the status and updated_at columns. Used by the
// pipeline for intermediate stage transitions.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	query := `UPDATE documents SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if execErr := execRequireRows(result, err, ErrDocumentNotFound); execErr != nil {
		if errors.Is(execErr, ErrDocumentNotFound) {
			return execErr
		}
		return fmt.Errorf("failed to update document status: %w", execErr)
	}

	return nil
}

// SaveResult writes the full analysis result in one statement. This is the
// single terminal write of a pipeline run.
func (r *DocumentRepository) SaveResult(ctx context.Context, doc *domain.Document) error {
	query := `
		UPDATE documents
		SET status = $1,
		    title = $2,
		    scraped_content = $3,
		    analysis_summary = $4,
		    analysis_blocks = $5,
		    error_detail = $6,
		    word_count = $7,
		    pages_crawled = $8,
		    processing_time_ms = $9,
		    updated_at = NOW()
		WHERE id = $10
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		doc.Status,
		doc.Title,
		doc.ScrapedContent,
		doc.AnalysisSummary,
		doc.AnalysisBlocks,
		doc.ErrorDetail,
		doc.WordCount,
		doc.PagesCrawled,
		doc.ProcessingTimeMs,
		doc.ID,
	)
	if execErr := execRequireRows(result, err, ErrDocumentNotFound); execErr != nil {
		if errors.Is(execErr, ErrDocumentNotFound) {
			return execErr
		}
		return fmt.Errorf("failed to save document result: %w", execErr)
	}

	return nil
}

// Count returns document counts grouped by status.
func (r *DocumentRepository) Count(ctx context.Context) (map[domain.Status]int, error) {
	query := `SELECT status, COUNT(*) AS count FROM documents GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	defer rows.Close()

	counts := map[domain.Status]int{}
	for rows.Next() {
		var status domain.Status
		var count int
		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			return nil, fmt.Errorf("failed to scan document count: %w", scanErr)
		}
		counts[status] = count
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate document counts: %w", rowsErr)
	}

	return counts, nil
}
