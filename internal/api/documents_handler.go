package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/docify/internal/database"
	"github.com/jonesrussell/docify/internal/domain"
	"github.com/jonesrussell/docify/internal/logger"
	"github.com/jonesrussell/docify/internal/pipeline"
)

const (
	defaultLimit  = 50
	defaultOffset = 0
)

// DocumentRepository is the persistence surface the handlers need.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, filters database.ListFilters) ([]*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	Count(ctx context.Context) (map[domain.Status]int, error)
}

// Runner executes the pipeline for one document.
type Runner interface {
	Run(ctx context.Context, doc *domain.Document) error
}

// Enqueuer hands a document id to the analysis queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, documentID string) (string, error)
}

// DocumentsHandler handles document HTTP requests.
type DocumentsHandler struct {
	repo     DocumentRepository
	runner   Runner
	enqueuer Enqueuer
	log      logger.Interface
}

// NewDocumentsHandler creates a documents handler. The enqueuer may be
// nil, in which case newly created documents run in-process.
func NewDocumentsHandler(repo DocumentRepository, runner Runner, enqueuer Enqueuer, log logger.Interface) *DocumentsHandler {
	return &DocumentsHandler{
		repo:     repo,
		runner:   runner,
		enqueuer: enqueuer,
		log:      log.WithComponent("api"),
	}
}

// CreateDocumentRequest is the POST /v1/documents body.
type CreateDocumentRequest struct {
	URL          string `json:"url"          binding:"required"`
	Instructions string `json:"instructions"`
}

// CreateDocument handles POST /v1/documents: it creates a pending
// document and hands it to the queue (or an in-process worker) for
// analysis.
func (h *DocumentsHandler) CreateDocument(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if len(req.Instructions) > domain.MaxInstructionsLength {
		respondBadRequest(c, "Instructions too long")
		return
	}

	doc := &domain.Document{
		URL:          req.URL,
		Instructions: req.Instructions,
	}

	if err := h.repo.Create(c.Request.Context(), doc); err != nil {
		h.log.Error("failed to create document", "error", err.Error())
		respondInternalError(c, "Failed to create document")
		return
	}

	h.dispatch(c.Request.Context(), doc)

	c.JSON(http.StatusCreated, doc)
}

// dispatch queues the document for analysis, falling back to an
// in-process run when no queue is configured.
func (h *DocumentsHandler) dispatch(ctx context.Context, doc *domain.Document) {
	if h.enqueuer != nil {
		_, err := h.enqueuer.Enqueue(ctx, doc.ID)
		if err == nil {
			return
		}
		h.log.Warn("enqueue failed, running in-process",
			"document_id", doc.ID,
			"error", err.Error(),
		)
	}

	runDoc := *doc
	go func() {
		runCtx := context.WithoutCancel(ctx)
		if err := h.runner.Run(runCtx, &runDoc); err != nil {
			h.log.Warn("background run failed", "document_id", runDoc.ID, "error", err.Error())
		}
	}()
}

// AnalyzeResponse is the POST /v1/documents/:id/analyze response.
type AnalyzeResponse struct {
	Success          bool   `json:"success"`
	Title            string `json:"title,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	Error            string `json:"error,omitempty"`
}

// AnalyzeDocument handles POST /v1/documents/:id/analyze: a synchronous
// pipeline run. Failed documents are reset to pending first; documents
// already in flight are rejected.
func (h *DocumentsHandler) AnalyzeDocument(c *gin.Context) {
	id := c.Param("id")

	doc, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			respondNotFound(c, "document")
			return
		}
		respondInternalError(c, "Failed to load document")
		return
	}

	switch doc.Status {
	case domain.StatusPending:
	case domain.StatusFailed:
		if resetErr := h.repo.UpdateStatus(c.Request.Context(), doc.ID, domain.StatusPending); resetErr != nil {
			respondInternalError(c, "Failed to reset document")
			return
		}
		doc.Status = domain.StatusPending
		doc.ErrorDetail = nil
	default:
		respondError(c, http.StatusConflict, "Document is not in an analyzable state: "+string(doc.Status))
		return
	}

	start := time.Now()
	runErr := h.runner.Run(c.Request.Context(), doc)

	response := AnalyzeResponse{
		Success:          runErr == nil,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}

	if runErr != nil {
		var pipeErr *pipeline.Error
		if errors.As(runErr, &pipeErr) {
			response.Error = pipeErr.Detail()
		} else {
			response.Error = runErr.Error()
		}
		c.JSON(http.StatusUnprocessableEntity, response)
		return
	}

	response.Title = doc.Title
	c.JSON(http.StatusOK, response)
}

// GetDocument handles GET /v1/documents/:id.
func (h *DocumentsHandler) GetDocument(c *gin.Context) {
	id := c.Param("id")
	if id == "" || id == "undefined" {
		respondBadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrDocumentNotFound) {
			respondNotFound(c, "document")
			return
		}
		respondInternalError(c, "Failed to load document")
		return
	}

	c.JSON(http.StatusOK, doc)
}

// ListDocuments handles GET /v1/documents.
func (h *DocumentsHandler) ListDocuments(c *gin.Context) {
	limit, offset := parseLimitOffset(c, defaultLimit, defaultOffset)

	docs, err := h.repo.List(c.Request.Context(), database.ListFilters{
		Status: domain.Status(c.Query("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondInternalError(c, "Failed to list documents")
		return
	}

	counts, err := h.repo.Count(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to count documents")
		return
	}

	if docs == nil {
		docs = []*domain.Document{}
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": docs,
		"counts":    counts,
	})
}
