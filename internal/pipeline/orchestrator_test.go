package pipeline_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/docify/internal/analyze"
	"github.com/jonesrussell/docify/internal/domain"
	"github.com/jonesrussell/docify/internal/extract"
	"github.com/jonesrussell/docify/internal/fetch"
	"github.com/jonesrussell/docify/internal/logger"
	"github.com/jonesrussell/docify/internal/pipeline"
)

type fakeStore struct {
	mu       sync.Mutex
	statuses []domain.Status
	saved    *domain.Document
	failOn   domain.Status
}

func (s *fakeStore) UpdateStatus(_ context.Context, _ string, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && status == s.failOn {
		return errors.New("store unavailable")
	}
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *fakeStore) SaveResult(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *doc
	s.saved = &copied
	s.statuses = append(s.statuses, doc.Status)
	return nil
}

type fakeFetcher struct {
	result *fetch.Result
	err    error
	calls  int
}

func (f *fakeFetcher) Fetch(context.Context, string) (*fetch.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeAnalyzer struct {
	result *analyze.Result
	err    error
	input  analyze.Input
}

func (a *fakeAnalyzer) Analyze(_ context.Context, in analyze.Input) (*analyze.Result, error) {
	a.input = in
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

type fakeCrawler struct {
	pages []*extract.ExtractedPage
	err   error
}

func (c *fakeCrawler) Crawl(context.Context, string) ([]*extract.ExtractedPage, error) {
	return c.pages, c.err
}

func htmlResult() *fetch.Result {
	body := "<html><head><title>Guide</title></head><body><main><p>" +
		strings.Repeat("Useful documentation content. ", 10) +
		"</p></main></body></html>"
	return &fetch.Result{Body: []byte(body), StatusCode: 200, ContentType: "text/html"}
}

func analysisResult() *analyze.Result {
	return &analyze.Result{
		Title:   "Guide",
		Summary: "A guide to the thing.",
		Blocks: []domain.AnalysisBlock{
			{ID: "summary", Type: domain.BlockSummary, Size: domain.SizeMedium, Title: "Summary", Content: "A guide."},
			{ID: "kp", Type: domain.BlockKeyPoints, Size: domain.SizeMedium, Title: "Key Points", Content: "Points."},
		},
	}
}

func pendingDoc() *domain.Document {
	return &domain.Document{
		ID:     "doc-1",
		URL:    "https://example.com/guide",
		Status: domain.StatusPending,
	}
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	fetcher := &fakeFetcher{result: htmlResult()}
	analyzer := &fakeAnalyzer{result: analysisResult()}

	o := pipeline.New(store, fetcher, nil, analyzer, logger.NewNoop())

	doc := pendingDoc()
	err := o.Run(context.Background(), doc)
	require.NoError(t, err)

	// Stage transitions in order, terminal status via the full-record save.
	assert.Equal(t, []domain.Status{
		domain.StatusScraping,
		domain.StatusAnalyzing,
		domain.StatusCompleted,
	}, store.statuses)

	require.NotNil(t, store.saved)
	saved := store.saved
	assert.Equal(t, domain.StatusCompleted, saved.Status)
	assert.Equal(t, "Guide", saved.Title)
	assert.Equal(t, "A guide to the thing.", saved.AnalysisSummary)
	assert.NotEmpty(t, saved.ScrapedContent)
	assert.Equal(t, 1, saved.PagesCrawled)
	assert.Positive(t, saved.WordCount)
	assert.Nil(t, saved.ErrorDetail)
	require.NotEmpty(t, saved.AnalysisBlocks)
	assert.Equal(t, domain.BlockSummary, saved.AnalysisBlocks[0].Type)
	assert.LessOrEqual(t, domain.TotalUnits(saved.AnalysisBlocks), domain.MaxGridUnits)
}

func TestRunFailsFastOnInvalidURL(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	fetcher := &fakeFetcher{result: htmlResult()}

	o := pipeline.New(store, fetcher, nil, &fakeAnalyzer{}, logger.NewNoop())

	doc := pendingDoc()
	doc.URL = "ftp://example.com/file"

	err := o.Run(context.Background(), doc)
	require.Error(t, err)

	var pipeErr *pipeline.Error
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, pipeline.CategoryInput, pipeErr.Category)

	// No network call happened and the document went straight to failed.
	assert.Zero(t, fetcher.calls)
	require.NotNil(t, store.saved)
	assert.Equal(t, domain.StatusFailed, store.saved.Status)
	require.NotNil(t, store.saved.ErrorDetail)
	assert.Contains(t, *store.saved.ErrorDetail, "Invalid request")
}

func TestRunRejectsOversizedInstructions(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	o := pipeline.New(store, &fakeFetcher{}, nil, &fakeAnalyzer{}, logger.NewNoop())

	doc := pendingDoc()
	doc.Instructions = strings.Repeat("x", domain.MaxInstructionsLength+1)

	err := o.Run(context.Background(), doc)
	require.Error(t, err)

	var pipeErr *pipeline.Error
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, pipeline.CategoryInput, pipeErr.Category)
}

func TestRunAllFetchAttemptsFail(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	fetcher := &fakeFetcher{err: fetch.ErrAllPersonasFailed}

	o := pipeline.New(store, fetcher, nil, &fakeAnalyzer{}, logger.NewNoop())

	doc := pendingDoc()
	err := o.Run(context.Background(), doc)
	require.Error(t, err)

	var pipeErr *pipeline.Error
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, pipeline.CategoryFetch, pipeErr.Category)

	require.NotNil(t, store.saved)
	assert.Equal(t, domain.StatusFailed, store.saved.Status)
	require.NotNil(t, store.saved.ErrorDetail)
	assert.Contains(t, *store.saved.ErrorDetail, "Could not retrieve the page")
	assert.GreaterOrEqual(t, store.saved.ProcessingTimeMs, int64(0))
}

func TestRunAnalysisFailureIsTerminal(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	fetcher := &fakeFetcher{result: htmlResult()}
	analyzer := &fakeAnalyzer{err: errors.New("model unavailable")}

	o := pipeline.New(store, fetcher, nil, analyzer, logger.NewNoop())

	err := o.Run(context.Background(), pendingDoc())
	require.Error(t, err)

	var pipeErr *pipeline.Error
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, pipeline.CategoryAnalysis, pipeErr.Category)
	assert.Equal(t, domain.StatusFailed, store.saved.Status)
}

func TestRunInvalidBlocksFailValidation(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	fetcher := &fakeFetcher{result: htmlResult()}
	analyzer := &fakeAnalyzer{result: &analyze.Result{
		Title:   "Guide",
		Summary: "s",
		Blocks: []domain.AnalysisBlock{
			{ID: "x", Type: "poetry", Size: domain.SizeSmall, Title: "t", Content: "c"},
		},
	}}

	o := pipeline.New(store, fetcher, nil, analyzer, logger.NewNoop())

	err := o.Run(context.Background(), pendingDoc())
	require.Error(t, err)

	var pipeErr *pipeline.Error
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, pipeline.CategoryValidation, pipeErr.Category)
}

func TestRunUsesCrawlerWhenConfigured(t *testing.T) {
	t.Parallel()

	pages := []*extract.ExtractedPage{
		{URL: "https://example.com/", Title: "Home", Text: strings.Repeat("home content ", 20), WordCount: 40, Type: extract.TypeHTML},
		{URL: "https://example.com/docs", Title: "Docs", Text: strings.Repeat("docs content ", 20), WordCount: 40, Type: extract.TypeHTML},
	}

	store := &fakeStore{}
	fetcher := &fakeFetcher{}
	analyzer := &fakeAnalyzer{result: analysisResult()}

	o := pipeline.New(store, fetcher, &fakeCrawler{pages: pages}, analyzer, logger.NewNoop())

	err := o.Run(context.Background(), pendingDoc())
	require.NoError(t, err)

	assert.Zero(t, fetcher.calls, "single fetch bypassed when crawling")
	assert.Equal(t, 2, store.saved.PagesCrawled)
	assert.Contains(t, analyzer.input.Content, "docs content")
}

func TestRunStatusWriteFailureAborts(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failOn: domain.StatusScraping}
	fetcher := &fakeFetcher{result: htmlResult()}

	o := pipeline.New(store, fetcher, nil, &fakeAnalyzer{}, logger.NewNoop())

	err := o.Run(context.Background(), pendingDoc())
	require.Error(t, err)

	var pipeErr *pipeline.Error
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, pipeline.CategoryStorage, pipeErr.Category)
	assert.Zero(t, fetcher.calls)
}
