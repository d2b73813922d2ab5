package analyze_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/docify/internal/analyze"
	"github.com/jonesrussell/docify/internal/domain"
	"github.com/jonesrussell/docify/internal/logger"
)

// fakeModel replays canned responses and records every prompt it is given.
type fakeModel struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeModel) Complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)

	if idx < len(f.errs) && f.errs[idx] != nil {
		return "", f.errs[idx]
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return "", errors.New("no response configured")
}

const validResponse = `Here is the analysis you asked for:
{
  "summary": "A service that ingests URLs and produces structured analysis blocks.",
  "blocks": [
    {"id": "kp-1", "type": "key_points", "size": "medium", "title": "Key Points", "content": "Three personas, one render fallback."},
    {"id": "arch-1", "type": "architecture", "size": "large", "title": "Architecture", "content": "Fetch, extract, analyze, persist."}
  ]
}
Let me know if you need anything else.`

func newAnalyzer(t *testing.T, model analyze.ModelClient) *analyze.Analyzer {
	t.Helper()
	a := analyze.New(model, logger.NewNoop())
	a.SetRetryDelay(time.Millisecond)
	return a
}

func TestAnalyzeParsesEmbeddedJSON(t *testing.T) {
	t.Parallel()

	model := &fakeModel{responses: []string{validResponse}}
	a := newAnalyzer(t, model)

	result, err := a.Analyze(context.Background(), analyze.Input{
		Title:   "Docify Reference | docify.app",
		Content: "Persona-based fetching and block packing.",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, model.calls)
	assert.Equal(t, "Docify Reference", result.Title)
	assert.Contains(t, result.Summary, "structured analysis blocks")

	require.Len(t, result.Blocks, 3)
	assert.Equal(t, domain.BlockSummary, result.Blocks[0].Type)
	assert.Equal(t, domain.BlockKeyPoints, result.Blocks[1].Type)
	assert.Equal(t, domain.BlockArchitecture, result.Blocks[2].Type)
}

func TestAnalyzeRetriesMalformedResponses(t *testing.T) {
	t.Parallel()

	// Two malformed responses then a valid one: exactly three model calls.
	model := &fakeModel{responses: []string{
		"I could not produce JSON this time.",
		`{"summary": "", "blocks": []}`,
		validResponse,
	}}
	a := newAnalyzer(t, model)

	result, err := a.Analyze(context.Background(), analyze.Input{Title: "Doc", Content: "content"})
	require.NoError(t, err)

	assert.Equal(t, 3, model.calls)
	require.NotEmpty(t, result.Blocks)
	assert.Equal(t, domain.BlockSummary, result.Blocks[0].Type)
}

func TestAnalyzeGivesUpAfterThreeAttempts(t *testing.T) {
	t.Parallel()

	model := &fakeModel{responses: []string{"nope", "still nope", "nothing"}}
	a := newAnalyzer(t, model)

	_, err := a.Analyze(context.Background(), analyze.Input{Title: "Doc", Content: "content"})
	require.Error(t, err)
	assert.Equal(t, 3, model.calls)
	assert.ErrorIs(t, err, analyze.ErrResponseFormat)
}

func TestAnalyzeStopsOnNonRetryableError(t *testing.T) {
	t.Parallel()

	model := &fakeModel{errs: []error{errors.New("invalid api key")}}
	a := newAnalyzer(t, model)

	_, err := a.Analyze(context.Background(), analyze.Input{Title: "Doc", Content: "content"})
	require.Error(t, err)
	assert.Equal(t, 1, model.calls)
}

func TestAnalyzeSynthesizesSummaryOverModelSummaryBlocks(t *testing.T) {
	t.Parallel()

	response := `{
	  "summary": "Canonical summary.",
	  "blocks": [
	    {"id": "s-1", "type": "summary", "size": "large", "title": "Model Summary", "content": "Should be superseded."},
	    {"id": "code-1", "type": "code", "size": "small", "title": "Example", "content": "fetch(url)"}
	  ]
	}`
	model := &fakeModel{responses: []string{response}}
	a := newAnalyzer(t, model)

	result, err := a.Analyze(context.Background(), analyze.Input{Title: "Doc", Content: "content"})
	require.NoError(t, err)

	require.Len(t, result.Blocks, 2)
	assert.Equal(t, domain.BlockSummary, result.Blocks[0].Type)
	assert.Equal(t, "Canonical summary.", result.Blocks[0].Content)
	assert.Equal(t, domain.BlockCode, result.Blocks[1].Type)
}

func TestAnalyzeTruncatesLongSummary(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("summary text ", 40)
	response := `{"summary": "` + long + `", "blocks": []}`
	model := &fakeModel{responses: []string{response}}
	a := newAnalyzer(t, model)

	result, err := a.Analyze(context.Background(), analyze.Input{Title: "Doc", Content: "content"})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(result.Summary), domain.MaxSummaryLength)
	assert.True(t, strings.HasSuffix(result.Summary, "..."))
}

func TestAnalyzeTruncatesMultiByteSummaryOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// 150 two-byte runes; the byte cap falls mid-rune.
	long := strings.Repeat("é", 150)
	response := `{"summary": "` + long + `", "blocks": []}`
	model := &fakeModel{responses: []string{response}}
	a := newAnalyzer(t, model)

	result, err := a.Analyze(context.Background(), analyze.Input{Title: "Doc", Content: "content"})
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(result.Summary))
	assert.LessOrEqual(t, len(result.Summary), domain.MaxSummaryLength)
	assert.True(t, strings.HasSuffix(result.Summary, "..."))
	assert.True(t, utf8.ValidString(result.Blocks[0].Content))
}

func TestAnalyzePromptCarriesInstructionsAndContent(t *testing.T) {
	t.Parallel()

	model := &fakeModel{responses: []string{validResponse}}
	a := newAnalyzer(t, model)

	_, err := a.Analyze(context.Background(), analyze.Input{
		Title:        "API Handbook",
		Description:  "Endpoints and auth",
		Content:      "POST /v1/things with an oauth token.",
		Instructions: "focus on the api surface",
	})
	require.NoError(t, err)

	require.Len(t, model.prompts, 1)
	prompt := model.prompts[0]
	assert.Contains(t, prompt, "API Handbook")
	assert.Contains(t, prompt, "focus on the api surface")
	assert.Contains(t, prompt, "POST /v1/things")
	assert.Contains(t, prompt, "api_reference, code, guide")
}

func TestDeriveTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"site suffix stripped", "Getting Started | Docify Docs", "Getting Started"},
		{"long title capped", "A Very Long Documentation Page Title Here", "A Very Long Documentation"},
		{"empty falls back", "", "Untitled Document"},
		{"short kept", "Quickstart", "Quickstart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, analyze.DeriveTitle(tt.in))
		})
	}
}
