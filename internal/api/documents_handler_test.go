package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/docify/internal/api"
	"github.com/jonesrussell/docify/internal/database"
	"github.com/jonesrussell/docify/internal/domain"
	"github.com/jonesrussell/docify/internal/logger"
	"github.com/jonesrussell/docify/internal/pipeline"
)

type mockRepo struct {
	mu      sync.Mutex
	docs    map[string]*domain.Document
	created *domain.Document
}

func newMockRepo(docs ...*domain.Document) *mockRepo {
	m := &mockRepo{docs: map[string]*domain.Document{}}
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return m
}

func (m *mockRepo) Create(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.ID = "doc-new"
	doc.Status = domain.StatusPending
	m.docs[doc.ID] = doc
	m.created = doc
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, database.ErrDocumentNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockRepo) List(_ context.Context, filters database.ListFilters) ([]*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs []*domain.Document
	for _, d := range m.docs {
		if filters.Status == "" || d.Status == filters.Status {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id string, status domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return database.ErrDocumentNotFound
	}
	doc.Status = status
	return nil
}

func (m *mockRepo) Count(context.Context) (map[domain.Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[domain.Status]int{}
	for _, d := range m.docs {
		counts[d.Status]++
	}
	return counts, nil
}

type mockRunner struct {
	mu   sync.Mutex
	err  error
	runs []string
	fill func(doc *domain.Document)
}

func (r *mockRunner) Run(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, doc.ID)
	if r.err != nil {
		return r.err
	}
	if r.fill != nil {
		r.fill(doc)
	}
	return nil
}

type mockEnqueuer struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (e *mockEnqueuer) Enqueue(_ context.Context, documentID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	e.ids = append(e.ids, documentID)
	return "1-0", nil
}

func newRouter(repo api.DocumentRepository, runner api.Runner, enqueuer api.Enqueuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := api.NewDocumentsHandler(repo, runner, enqueuer, logger.NewNoop())
	return api.SetupRouter(logger.NewNoop(), handler)
}

func TestCreateDocumentEnqueues(t *testing.T) {
	t.Parallel()

	repo := newMockRepo()
	enqueuer := &mockEnqueuer{}
	router := newRouter(repo, &mockRunner{}, enqueuer)

	body := `{"url":"https://example.com/guide","instructions":"focus on the api"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var doc domain.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "doc-new", doc.ID)
	assert.Equal(t, domain.StatusPending, doc.Status)

	assert.Equal(t, []string{"doc-new"}, enqueuer.ids)
}

func TestCreateDocumentRequiresURL(t *testing.T) {
	t.Parallel()

	router := newRouter(newMockRepo(), &mockRunner{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewBufferString(`{"instructions":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeDocumentSynchronousSuccess(t *testing.T) {
	t.Parallel()

	doc := &domain.Document{ID: "doc-1", URL: "https://example.com", Status: domain.StatusPending}
	repo := newMockRepo(doc)
	runner := &mockRunner{fill: func(d *domain.Document) {
		d.Status = domain.StatusCompleted
		d.Title = "Guide"
	}}
	router := newRouter(repo, runner, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/analyze", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response api.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, "Guide", response.Title)
	assert.Empty(t, response.Error)
	assert.Equal(t, []string{"doc-1"}, runner.runs)
}

func TestAnalyzeDocumentResetsFailed(t *testing.T) {
	t.Parallel()

	detail := "Could not retrieve the page: timeout"
	doc := &domain.Document{ID: "doc-1", Status: domain.StatusFailed, ErrorDetail: &detail}
	repo := newMockRepo(doc)
	runner := &mockRunner{}
	router := newRouter(repo, runner, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/analyze", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"doc-1"}, runner.runs)
}

func TestAnalyzeDocumentRejectsInFlight(t *testing.T) {
	t.Parallel()

	doc := &domain.Document{ID: "doc-1", Status: domain.StatusAnalyzing}
	router := newRouter(newMockRepo(doc), &mockRunner{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/analyze", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAnalyzeDocumentReportsPipelineError(t *testing.T) {
	t.Parallel()

	doc := &domain.Document{ID: "doc-1", Status: domain.StatusPending}
	runner := &mockRunner{err: &pipeline.Error{
		Category: pipeline.CategoryFetch,
		Err:      errors.New("all fetch personas failed"),
	}}
	router := newRouter(newMockRepo(doc), runner, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/analyze", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response api.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.Contains(t, response.Error, "Could not retrieve the page")
}

func TestAnalyzeDocumentNotFound(t *testing.T) {
	t.Parallel()

	router := newRouter(newMockRepo(), &mockRunner{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/missing/analyze", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDocument(t *testing.T) {
	t.Parallel()

	doc := &domain.Document{ID: "doc-1", URL: "https://example.com", Status: domain.StatusCompleted, Title: "Guide"}
	router := newRouter(newMockRepo(doc), &mockRunner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got domain.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Guide", got.Title)
}

func TestListDocumentsFiltersByStatus(t *testing.T) {
	t.Parallel()

	repo := newMockRepo(
		&domain.Document{ID: "a", Status: domain.StatusCompleted},
		&domain.Document{ID: "b", Status: domain.StatusFailed},
	)
	router := newRouter(repo, &mockRunner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents?status=failed", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Documents []*domain.Document    `json:"documents"`
		Counts    map[domain.Status]int `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Documents, 1)
	assert.Equal(t, "b", response.Documents[0].ID)
	assert.Equal(t, 1, response.Counts[domain.StatusCompleted])
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := newRouter(newMockRepo(), &mockRunner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
