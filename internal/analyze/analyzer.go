// Package analyze turns extracted document content into structured
// analysis blocks by prompting an Anthropic model and coercing its JSON
// response into domain types. Transport failures and malformed responses
// are retried with exponential backoff before the run is declared failed.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/docify/internal/domain"
	"github.com/jonesrussell/docify/internal/logger"
	"github.com/jonesrussell/docify/internal/retry"
)

// ErrResponseFormat reports a model response that could not be parsed into
// the expected JSON shape. It is retryable.
var ErrResponseFormat = errors.New("model response not in expected format")

// titleWordLimit bounds the derived short title.
const titleWordLimit = 4

// Result is the outcome of one analysis run.
type Result struct {
	Title   string
	Summary string
	Blocks  []domain.AnalysisBlock
	// RawResponse preserves the model's text for debugging.
	RawResponse string
}

// modelResponse is the JSON contract the prompt demands.
type modelResponse struct {
	Summary string                 `json:"summary"`
	Blocks  []domain.AnalysisBlock `json:"blocks"`
}

// Analyzer drives the model and shapes its output.
type Analyzer struct {
	model ModelClient
	log   logger.Interface
	retry retry.Config
}

// New creates an Analyzer.
func New(model ModelClient, log logger.Interface) *Analyzer {
	cfg := retry.DefaultConfig()
	cfg.IsRetryable = func(err error) bool {
		return errors.Is(err, ErrResponseFormat) || retry.DefaultIsRetryable(err)
	}

	return &Analyzer{
		model: model,
		log:   log.WithComponent("analyze"),
		retry: cfg,
	}
}

// Analyze prompts the model for the given input and returns the parsed
// result. The summary block is always synthesized from the response
// summary and placed first; model-provided summary blocks are discarded
// in its favor.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Result, error) {
	in.Content = prepareContent(in.Content)
	prompt := buildPrompt(in)

	a.log.Info("requesting analysis",
		"title", in.Title,
		"content_chars", len(in.Content),
	)

	start := time.Now()

	var parsed modelResponse
	var raw string

	err := retry.Do(ctx, a.retry, func() error {
		text, completeErr := a.model.Complete(ctx, prompt)
		if completeErr != nil {
			return completeErr
		}
		raw = text

		response, parseErr := parseResponse(text)
		if parseErr != nil {
			a.log.Warn("model response rejected", "error", parseErr.Error())
			return parseErr
		}

		parsed = *response
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("analyze content: %w", err)
	}

	summary := truncateSummary(parsed.Summary)
	blocks := append(
		[]domain.AnalysisBlock{summaryBlock(summary)},
		withoutSummaryBlocks(parsed.Blocks)...,
	)

	a.log.Info("analysis received",
		"blocks", len(blocks),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Title:       DeriveTitle(in.Title),
		Summary:     summary,
		Blocks:      blocks,
		RawResponse: raw,
	}, nil
}

// parseResponse extracts the first JSON object from the model text and
// validates its structure.
func parseResponse(text string) (*modelResponse, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrResponseFormat)
	}

	var response modelResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &response); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseFormat, err)
	}

	if response.Summary == "" {
		return nil, fmt.Errorf("%w: missing summary", ErrResponseFormat)
	}
	if response.Blocks == nil {
		return nil, fmt.Errorf("%w: missing blocks array", ErrResponseFormat)
	}

	return &response, nil
}

// summaryBlock builds the synthesized summary block placed at the head of
// every block list.
func summaryBlock(summary string) domain.AnalysisBlock {
	return domain.AnalysisBlock{
		ID:       "summary",
		Type:     domain.BlockSummary,
		Size:     domain.SizeMedium,
		Title:    "Document Summary",
		Content:  summary,
		Metadata: map[string]any{"priority": "high"},
	}
}

// withoutSummaryBlocks strips model-provided summary blocks; the
// synthesized one supersedes them.
func withoutSummaryBlocks(blocks []domain.AnalysisBlock) []domain.AnalysisBlock {
	kept := make([]domain.AnalysisBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == domain.BlockSummary {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

// truncateSummary caps the stored summary length without splitting a
// multi-byte rune at the cut.
func truncateSummary(summary string) string {
	if len(summary) <= domain.MaxSummaryLength {
		return summary
	}
	return truncateValid(summary, domain.MaxSummaryLength-3) + "..."
}

// DeriveTitle shortens a page title to a compact 2-4 word label, cutting
// at the first site-name separator.
func DeriveTitle(pageTitle string) string {
	title := pageTitle
	for _, sep := range []string{" | ", " - ", " — ", " · ", ": "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
		}
	}

	words := strings.Fields(title)
	if len(words) == 0 {
		return "Untitled Document"
	}
	if len(words) > titleWordLimit {
		words = words[:titleWordLimit]
	}

	return strings.Join(words, " ")
}
