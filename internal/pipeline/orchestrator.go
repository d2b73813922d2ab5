// Package pipeline orchestrates one document's run through fetch,
// extraction, analysis, and persistence. The orchestrator owns all status
// writes: stages receive and return a pipeline context value and never
// touch the store, and every run ends in exactly one terminal status.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jonesrussell/docify/internal/analyze"
	"github.com/jonesrussell/docify/internal/blocks"
	"github.com/jonesrussell/docify/internal/domain"
	"github.com/jonesrussell/docify/internal/extract"
	"github.com/jonesrussell/docify/internal/fetch"
	"github.com/jonesrussell/docify/internal/logger"
)

// runBudget is the wall-clock ceiling for one document run.
const runBudget = 5 * time.Minute

// DocumentStore is the persistence surface the orchestrator needs.
type DocumentStore interface {
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	SaveResult(ctx context.Context, doc *domain.Document) error
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Crawler discovers and extracts same-domain pages.
type Crawler interface {
	Crawl(ctx context.Context, rootURL string) ([]*extract.ExtractedPage, error)
}

// Analyzer produces structured blocks for extracted content.
type Analyzer interface {
	Analyze(ctx context.Context, in analyze.Input) (*analyze.Result, error)
}

// runContext is the value threaded through the pipeline stages.
type runContext struct {
	doc       *domain.Document
	pages     []*extract.ExtractedPage
	combined  *extract.CombinedDocument
	analysis  *analyze.Result
	blocks    []domain.AnalysisBlock
	startedAt time.Time
}

// Orchestrator runs documents through the pipeline.
type Orchestrator struct {
	store    DocumentStore
	fetcher  Fetcher
	crawler  Crawler
	analyzer Analyzer
	log      logger.Interface
}

// New creates an Orchestrator. The crawler may be nil, in which case every
// run is a single-page fetch.
func New(
	store DocumentStore,
	fetcher Fetcher,
	crawler Crawler,
	analyzer Analyzer,
	log logger.Interface,
) *Orchestrator {
	return &Orchestrator{
		store:    store,
		fetcher:  fetcher,
		crawler:  crawler,
		analyzer: analyzer,
		log:      log.WithComponent("pipeline"),
	}
}

// Run processes one document to a terminal status. The returned error
// mirrors what was persisted; the document has already been updated when
// Run returns. Rerunning with the same URL and instructions overwrites the
// previous result.
func (o *Orchestrator) Run(ctx context.Context, doc *domain.Document) error {
	ctx, cancel := context.WithTimeout(ctx, runBudget)
	defer cancel()

	run := &runContext{doc: doc, startedAt: time.Now()}
	log := o.log.WithDocument(doc.ID)

	log.Info("pipeline run started", "url", doc.URL)

	if err := validateInput(doc); err != nil {
		return o.fail(ctx, run, stageErr(CategoryInput, err))
	}

	if err := o.transition(ctx, run, domain.StatusScraping); err != nil {
		return o.fail(ctx, run, stageErr(CategoryStorage, err))
	}

	if err := o.scrape(ctx, run); err != nil {
		return o.fail(ctx, run, err)
	}

	if err := o.transition(ctx, run, domain.StatusAnalyzing); err != nil {
		return o.fail(ctx, run, stageErr(CategoryStorage, err))
	}

	if err := o.analyze(ctx, run); err != nil {
		return o.fail(ctx, run, err)
	}

	if err := o.complete(ctx, run); err != nil {
		return o.fail(ctx, run, stageErr(CategoryStorage, err))
	}

	log.Info("pipeline run completed",
		"pages", run.doc.PagesCrawled,
		"blocks", len(run.doc.AnalysisBlocks),
		"duration_ms", run.doc.ProcessingTimeMs,
	)

	return nil
}

// validateInput rejects a document before any network call.
func validateInput(doc *domain.Document) error {
	parsed, err := url.Parse(doc.URL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("url has no host")
	}
	if len(doc.Instructions) > domain.MaxInstructionsLength {
		return fmt.Errorf("instructions exceed %d characters", domain.MaxInstructionsLength)
	}
	return nil
}

// scrape fills the run with extracted pages, via crawl when configured,
// otherwise a single persona fetch.
func (o *Orchestrator) scrape(ctx context.Context, run *runContext) error {
	if o.crawler != nil {
		pages, err := o.crawler.Crawl(ctx, run.doc.URL)
		if err != nil {
			return stageErr(CategoryFetch, err)
		}
		run.pages = pages
	} else {
		page, err := o.fetchSingle(ctx, run.doc.URL)
		if err != nil {
			return err
		}
		run.pages = []*extract.ExtractedPage{page}
	}

	if len(run.pages) == 0 {
		return stageErr(CategoryExtraction, errors.New("no pages with usable content"))
	}

	run.combined = extract.Combine(run.pages)
	run.doc.ScrapedContent = run.combined.Content
	run.doc.Title = run.combined.Title
	run.doc.WordCount = run.combined.WordCount
	run.doc.PagesCrawled = run.combined.PageCount

	return nil
}

// fetchSingle retrieves and extracts one page.
func (o *Orchestrator) fetchSingle(ctx context.Context, pageURL string) (*extract.ExtractedPage, error) {
	result, err := o.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, stageErr(CategoryFetch, err)
	}

	page, err := extract.Extract(result.Body, result.ContentType, pageURL)
	if err != nil {
		return nil, stageErr(CategoryExtraction, err)
	}

	if !page.IsUsable() {
		return nil, stageErr(CategoryExtraction, errors.New("page has no usable content"))
	}

	return page, nil
}

// analyze runs the model and packs the resulting blocks.
func (o *Orchestrator) analyze(ctx context.Context, run *runContext) error {
	result, err := o.analyzer.Analyze(ctx, analyze.Input{
		Title:        run.combined.Title,
		Description:  run.combined.Description,
		Content:      run.combined.Content,
		Instructions: run.doc.Instructions,
	})
	if err != nil {
		return stageErr(CategoryAnalysis, err)
	}
	run.analysis = result

	packed, err := blocks.ValidateAndPack(result.Blocks, run.doc.Instructions)
	if err != nil {
		return stageErr(CategoryValidation, err)
	}
	run.blocks = packed

	run.doc.Title = result.Title
	run.doc.AnalysisSummary = result.Summary
	run.doc.AnalysisBlocks = packed

	return nil
}

// complete persists the finished document in one full-record write.
func (o *Orchestrator) complete(ctx context.Context, run *runContext) error {
	if err := ValidateTransition(run.doc.Status, domain.StatusCompleted); err != nil {
		return err
	}

	run.doc.Status = domain.StatusCompleted
	run.doc.ErrorDetail = nil
	run.doc.ProcessingTimeMs = time.Since(run.startedAt).Milliseconds()

	return o.store.SaveResult(ctx, run.doc)
}

// transition validates and persists an intermediate status change.
func (o *Orchestrator) transition(ctx context.Context, run *runContext, to domain.Status) error {
	if err := ValidateTransition(run.doc.Status, to); err != nil {
		return err
	}

	if err := o.store.UpdateStatus(ctx, run.doc.ID, to); err != nil {
		return fmt.Errorf("update status to %s: %w", to, err)
	}

	run.doc.Status = to
	return nil
}

// fail records the terminal failed status with a categorized detail. The
// status write is best-effort last resort: a store failure here is logged
// and the original pipeline error still returned.
func (o *Orchestrator) fail(ctx context.Context, run *runContext, err error) error {
	var pipeErr *Error
	if !errors.As(err, &pipeErr) {
		pipeErr = stageErr(CategoryAnalysis, err)
	}

	detail := pipeErr.Detail()
	run.doc.Status = domain.StatusFailed
	run.doc.ErrorDetail = &detail
	run.doc.ProcessingTimeMs = time.Since(run.startedAt).Milliseconds()

	// The run context may already be cancelled; the terminal write gets
	// its own deadline.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if saveErr := o.store.SaveResult(saveCtx, run.doc); saveErr != nil {
		o.log.Error("failed to persist terminal status",
			"document_id", run.doc.ID,
			"error", saveErr.Error(),
		)
	}

	o.log.Warn("pipeline run failed",
		"document_id", run.doc.ID,
		"category", string(pipeErr.Category),
		"error", pipeErr.Err.Error(),
	)

	return pipeErr
}
